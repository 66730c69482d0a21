package console

import (
	"fmt"
	"strings"

	"github.com/voltfall/tactics/internal/game/combat"
)

// Glyph returns the single-letter map marker for an actor: uppercase for
// the squad, lowercase for hostiles, assigned in roster order.
func Glyph(enc *combat.Encounter, id string) byte {
	playerIdx, opponentIdx := 0, 0
	for _, a := range enc.Actors() {
		if a.Team == combat.TeamPlayer {
			if a.ID == id {
				return byte('A' + playerIdx%26)
			}
			playerIdx++
		} else {
			if a.ID == id {
				return byte('a' + opponentIdx%26)
			}
			opponentIdx++
		}
	}
	return '?'
}

// RenderMap draws the arena grid with one glyph per living actor. The
// active actor is bold; squad members are green, hostiles red.
func RenderMap(enc *combat.Encounter) string {
	t := enc.Tuning()
	active := enc.ActiveActor()

	type cell struct {
		glyph byte
		color string
		bold  bool
	}
	cells := make(map[combat.Point]cell)
	for _, a := range enc.Actors() {
		if !a.IsAlive() {
			continue
		}
		c := cell{glyph: Glyph(enc, a.ID), color: BrightRed}
		if a.Team == combat.TeamPlayer {
			c.color = BrightGreen
		}
		if active != nil && a.ID == active.ID {
			c.bold = true
		}
		cells[a.Pos] = c
	}

	var b strings.Builder
	b.WriteString("    ")
	for x := 0; x < t.GridWidth; x++ {
		fmt.Fprintf(&b, "%d ", x%10)
	}
	b.WriteString("\n")
	for y := 0; y < t.GridHeight; y++ {
		fmt.Fprintf(&b, "%2d  ", y)
		for x := 0; x < t.GridWidth; x++ {
			c, ok := cells[combat.Point{X: x, Y: y}]
			if !ok {
				b.WriteString(Colorize(Dim, ". "))
				continue
			}
			style := c.color
			if c.bold {
				style = Bold + c.color
			}
			b.WriteString(Colorize(style, string(c.glyph)+" "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderRoster lists both squads with HP bars, AP, cover, and morale.
func RenderRoster(enc *combat.Encounter) string {
	var b strings.Builder
	b.WriteString(Colorize(BrightWhite, "Squad:"))
	b.WriteString("\n")
	for _, a := range enc.Actors() {
		if a.Team == combat.TeamPlayer {
			b.WriteString(renderActorLine(enc, a))
		}
	}
	b.WriteString(Colorize(BrightWhite, "Hostiles:"))
	b.WriteString("\n")
	for _, a := range enc.Actors() {
		if a.Team == combat.TeamOpponent {
			b.WriteString(renderActorLine(enc, a))
		}
	}
	return b.String()
}

func renderActorLine(enc *combat.Encounter, a *combat.Actor) string {
	glyph := Glyph(enc, a.ID)
	if !a.IsAlive() {
		return fmt.Sprintf("  %c %-14s %s\n", glyph, a.Name, Colorize(Red, "DOWN"))
	}
	line := fmt.Sprintf("  %c %-14s %s %3d/%-3d  AP %d  morale %d",
		glyph, a.Name, hpBar(a.CurrentHP, a.MaxHP, 10), a.CurrentHP, a.MaxHP, a.AP, a.Morale)
	if a.Cover != combat.CoverNone {
		line += fmt.Sprintf("  %s cover", a.Cover)
	}
	return line + "\n"
}

// hpBar renders a fixed-width bar colored by the remaining HP fraction.
func hpBar(cur, max, width int) string {
	if max <= 0 {
		max = 1
	}
	filled := cur * width / max
	if filled < 1 && cur > 0 {
		filled = 1
	}
	if filled > width {
		filled = width
	}
	color := Green
	switch {
	case cur*4 <= max:
		color = Red
	case cur*2 <= max:
		color = Yellow
	}
	bar := strings.Repeat("=", filled) + strings.Repeat("-", width-filled)
	return "[" + Colorize(color, bar) + "]"
}

// RenderTurnBanner announces the active turn, mirroring the round banner
// in the combat log. Empty once the encounter has terminated.
func RenderTurnBanner(enc *combat.Encounter) string {
	active := enc.ActiveActor()
	if active == nil {
		return ""
	}
	banner := Colorize(BrightYellow,
		fmt.Sprintf("=== Round %d. %s's turn (AP %d/%d). ===", enc.Round(), active.Name, active.AP, active.MaxAP))
	if enc.EscapeAvailable() {
		banner += "\n" + Colorize(Yellow, "The exit corridor is open: 'escape' is on the table.")
	}
	return banner + "\n"
}

// RenderOrder shows the initiative order with the active actor marked.
func RenderOrder(enc *combat.Encounter) string {
	active := enc.ActiveActor()
	parts := make([]string, 0, len(enc.TurnOrder()))
	for _, id := range enc.TurnOrder() {
		a, ok := enc.ActorByID(id)
		if !ok {
			continue
		}
		label := fmt.Sprintf("%s (%d)", a.Name, a.Initiative)
		switch {
		case !a.IsAlive():
			label = Colorize(Dim, label+" down")
		case active != nil && a.ID == active.ID:
			label = Colorize(BrightWhite, "*"+label)
		}
		parts = append(parts, label)
	}
	return Colorize(Cyan, "Turn order: ") + strings.Join(parts, ", ") + "\n"
}

// RenderLogTail returns the last n combat log lines, oldest first. All
// lines when n <= 0.
func RenderLogTail(enc *combat.Encounter, n int) string {
	log := enc.Log()
	if n > 0 && len(log) > n {
		log = log[len(log)-n:]
	}
	var b strings.Builder
	for _, line := range log {
		b.WriteString(Colorize(Dim, "  "+line))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderOutcome returns the terminal banner for a finished encounter, or
// empty while it is still in progress.
func RenderOutcome(enc *combat.Encounter) string {
	switch enc.Outcome() {
	case combat.OutcomeVictory:
		return Colorize(BrightGreen, "=== VICTORY: the squad holds the field. ===") + "\n"
	case combat.OutcomeDefeat:
		return Colorize(BrightRed, "=== DEFEAT: the squad is wiped out. ===") + "\n"
	case combat.OutcomeFled:
		return Colorize(BrightYellow, "=== ESCAPED: the squad slips away. ===") + "\n"
	default:
		return ""
	}
}
