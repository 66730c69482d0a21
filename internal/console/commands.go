package console

import "strings"

// Categories for organizing commands.
const (
	CategoryAction = "action"
	CategoryInfo   = "info"
	CategorySystem = "system"
)

// Handler identifiers mapping commands to session handlers.
const (
	HandlerMove    = "move"
	HandlerAttack  = "attack"
	HandlerEndTurn = "end"
	HandlerEscape  = "escape"
	HandlerStatus  = "status"
	HandlerMap     = "map"
	HandlerLog     = "log"
	HandlerOrder   = "order"
	HandlerHelp    = "help"
	HandlerQuit    = "quit"
)

// Command defines an operator-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text displayed to the operator.
	Help string
	// Category groups the command (action, info, system).
	Category string
	// Handler maps to the session handler.
	Handler string
}

// BuiltinCommands returns all built-in commands for the encounter console.
func BuiltinCommands() []Command {
	return []Command{
		// Turn actions
		{Name: "move", Aliases: []string{"m", "go"}, Help: "Move by offset or compass step (move 1 -2, move ne)", Category: CategoryAction, Handler: HandlerMove},
		{Name: "attack", Aliases: []string{"a", "att"}, Help: "Attack a target by ID or name", Category: CategoryAction, Handler: HandlerAttack},
		{Name: "end", Aliases: []string{"pass", "done"}, Help: "End the current turn", Category: CategoryAction, Handler: HandlerEndTurn},
		{Name: "escape", Aliases: []string{"esc", "flee"}, Help: "Attempt a squad escape (escape [sacrifice])", Category: CategoryAction, Handler: HandlerEscape},

		// Information
		{Name: "status", Aliases: []string{"st"}, Help: "Show both squads' condition", Category: CategoryInfo, Handler: HandlerStatus},
		{Name: "map", Aliases: []string{"grid"}, Help: "Draw the arena", Category: CategoryInfo, Handler: HandlerMap},
		{Name: "log", Aliases: nil, Help: "Show recent combat log (log [n])", Category: CategoryInfo, Handler: HandlerLog},
		{Name: "order", Aliases: []string{"init"}, Help: "Show the initiative order", Category: CategoryInfo, Handler: HandlerOrder},

		// System
		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Help: "Abandon the encounter", Category: CategorySystem, Handler: HandlerQuit},
	}
}

// ParseCompass maps a compass word to a single-tile offset. North is up on
// the rendered map, which is decreasing y.
func ParseCompass(word string) (dx, dy int, ok bool) {
	switch strings.ToLower(word) {
	case "n", "north":
		return 0, -1, true
	case "s", "south":
		return 0, 1, true
	case "e", "east":
		return 1, 0, true
	case "w", "west":
		return -1, 0, true
	case "ne", "northeast":
		return 1, -1, true
	case "nw", "northwest":
		return -1, -1, true
	case "se", "southeast":
		return 1, 1, true
	case "sw", "southwest":
		return -1, 1, true
	default:
		return 0, 0, false
	}
}
