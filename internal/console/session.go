// Package console provides the interactive terminal front end for
// encounters: a command registry, ANSI arena rendering, and the session
// loop that lets an operator drive the player squad by hand.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/voltfall/tactics/internal/game/combat"
)

// Session drives one encounter from a line-oriented terminal. Opponent
// turns resolve inside the engine, so the loop only ever prompts for the
// squad.
type Session struct {
	enc      *combat.Encounter
	registry *Registry
	in       io.Reader
	out      io.Writer
	logger   *zap.Logger
	seen     int // combat log lines already printed
}

// NewSession wires an encounter to an input/output pair.
//
// Precondition: enc must be a freshly constructed, in-progress encounter.
func NewSession(enc *combat.Encounter, in io.Reader, out io.Writer, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		enc:      enc,
		registry: DefaultRegistry(),
		in:       in,
		out:      out,
		logger:   logger,
	}
}

// Run reads commands until the encounter terminates, the operator quits,
// or input ends.
//
// Postcondition: Returns nil on termination, quit, or end of input;
// ctx.Err() on cancellation; a wrapped error on input failure.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprint(s.out, RenderMap(s.enc))
	fmt.Fprint(s.out, RenderRoster(s.enc))
	s.flushLog()

	scanner := bufio.NewScanner(s.in)
	for s.enc.Active() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		active := s.enc.ActiveActor()
		if active == nil {
			break
		}
		fmt.Fprint(s.out, RenderTurnBanner(s.enc))
		fmt.Fprint(s.out, Colorf(BrightCyan, "[%s AP:%d]> ", active.Name, active.AP))

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			fmt.Fprintln(s.out)
			return nil // end of input abandons the encounter
		}

		parsed := ParseLine(scanner.Text())
		if parsed.Command == "" {
			continue
		}
		cmd, ok := s.registry.Resolve(parsed.Command)
		if !ok {
			fmt.Fprintln(s.out, Colorf(Dim, "You don't know how to '%s'. Try 'help'.", parsed.Command))
			continue
		}
		s.logger.Debug("console command",
			zap.String("command", cmd.Name),
			zap.Strings("args", parsed.Args),
		)

		quit, err := s.dispatch(cmd, parsed)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}

	s.flushLog()
	fmt.Fprint(s.out, RenderOutcome(s.enc))
	return nil
}

// dispatch executes one resolved command. The quit result ends the
// session without terminating the encounter.
func (s *Session) dispatch(cmd *Command, parsed ParseResult) (quit bool, err error) {
	switch cmd.Handler {
	case HandlerMove:
		return false, s.handleMove(parsed)

	case HandlerAttack:
		if parsed.RawArgs == "" {
			fmt.Fprintln(s.out, Colorize(Red, "Attack what?"))
			return false, nil
		}
		id, ok := s.findActorID(parsed.RawArgs)
		if !ok {
			fmt.Fprintln(s.out, Colorf(Red, "No target called '%s'.", parsed.RawArgs))
			return false, nil
		}
		return false, s.act(s.enc.Attack(id))

	case HandlerEndTurn:
		return false, s.act(s.enc.EndTurn())

	case HandlerEscape:
		sacrifice := ""
		if parsed.RawArgs != "" {
			id, ok := s.findActorID(parsed.RawArgs)
			if !ok {
				fmt.Fprintln(s.out, Colorf(Red, "Nobody called '%s' to leave behind.", parsed.RawArgs))
				return false, nil
			}
			sacrifice = id
		}
		return false, s.act(s.enc.AttemptEscape(sacrifice))

	case HandlerStatus:
		fmt.Fprint(s.out, RenderRoster(s.enc))
		return false, nil

	case HandlerMap:
		fmt.Fprint(s.out, RenderMap(s.enc))
		return false, nil

	case HandlerLog:
		n := 10
		if len(parsed.Args) > 0 {
			if v, err := strconv.Atoi(parsed.Args[0]); err == nil {
				n = v
			}
		}
		fmt.Fprint(s.out, RenderLogTail(s.enc, n))
		return false, nil

	case HandlerOrder:
		fmt.Fprint(s.out, RenderOrder(s.enc))
		return false, nil

	case HandlerHelp:
		s.showHelp()
		return false, nil

	case HandlerQuit:
		fmt.Fprintln(s.out, Colorize(Cyan, "You pull the squad back into the dark."))
		return true, nil

	default:
		fmt.Fprintln(s.out, Colorf(Dim, "You don't know how to '%s'.", cmd.Name))
		return false, nil
	}
}

// handleMove accepts either a compass word or an explicit dx dy offset.
func (s *Session) handleMove(parsed ParseResult) error {
	var dx, dy int
	switch len(parsed.Args) {
	case 1:
		var ok bool
		dx, dy, ok = ParseCompass(parsed.Args[0])
		if !ok {
			fmt.Fprintln(s.out, Colorize(Red, "Usage: move <dx> <dy> or move <n|s|e|w|ne|nw|se|sw>"))
			return nil
		}
	case 2:
		x, errX := strconv.Atoi(parsed.Args[0])
		y, errY := strconv.Atoi(parsed.Args[1])
		if errX != nil || errY != nil {
			fmt.Fprintln(s.out, Colorize(Red, "Usage: move <dx> <dy> or move <n|s|e|w|ne|nw|se|sw>"))
			return nil
		}
		dx, dy = x, y
	default:
		fmt.Fprintln(s.out, Colorize(Red, "Usage: move <dx> <dy> or move <n|s|e|w|ne|nw|se|sw>"))
		return nil
	}
	return s.act(s.enc.Move(dx, dy))
}

// act prints everything the engine logged for the action and converts
// refusals into console messages instead of errors.
func (s *Session) act(err error) error {
	s.flushLog()
	if err == nil {
		return nil
	}
	if errors.Is(err, combat.ErrNotAllowed) {
		msg := strings.TrimSuffix(err.Error(), ": "+combat.ErrNotAllowed.Error())
		fmt.Fprintln(s.out, Colorize(Red, "Refused: "+msg+"."))
		return nil
	}
	return err
}

// flushLog prints combat log lines that have not been shown yet.
func (s *Session) flushLog() {
	log := s.enc.Log()
	for _, line := range log[s.seen:] {
		fmt.Fprintln(s.out, Colorize(White, line))
	}
	s.seen = len(log)
}

// findActorID resolves a target query against actor IDs, names, name
// prefixes, and map glyphs, in that order.
func (s *Session) findActorID(query string) (string, bool) {
	if _, ok := s.enc.ActorByID(query); ok {
		return query, true
	}
	q := strings.ToLower(query)
	for _, a := range s.enc.Actors() {
		if strings.ToLower(a.Name) == q {
			return a.ID, true
		}
	}
	match, count := "", 0
	for _, a := range s.enc.Actors() {
		if strings.HasPrefix(strings.ToLower(a.Name), q) {
			match = a.ID
			count++
		}
	}
	if count == 1 {
		return match, true
	}
	if len(query) == 1 {
		for _, a := range s.enc.Actors() {
			if Glyph(s.enc, a.ID) == query[0] {
				return a.ID, true
			}
		}
	}
	return "", false
}

// showHelp displays the command list organized by category.
func (s *Session) showHelp() {
	fmt.Fprintln(s.out, Colorize(BrightWhite, "Available commands:"))

	categories := []struct {
		name  string
		label string
	}{
		{CategoryAction, "Turn actions"},
		{CategoryInfo, "Information"},
		{CategorySystem, "System"},
	}

	byCategory := s.registry.CommandsByCategory()
	for _, cat := range categories {
		cmds := byCategory[cat.name]
		if len(cmds) == 0 {
			continue
		}
		fmt.Fprintln(s.out, Colorf(BrightYellow, "  %s:", cat.label))
		for _, cmd := range cmds {
			aliases := ""
			if len(cmd.Aliases) > 0 {
				aliases = " (" + strings.Join(cmd.Aliases, ", ") + ")"
			}
			fmt.Fprintln(s.out, Colorf(Green, "    %-8s", cmd.Name)+aliases+" - "+cmd.Help)
		}
	}
}
