package scripting

import (
	"fmt"
	"os"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// decideFn is the global function every policy script must define.
const decideFn = "decide"

// ActorView is a snapshot of one combatant handed to Lua policies.
type ActorView struct {
	ID     string
	Name   string
	X, Y   int
	HP     int
	MaxHP  int
	AP     int
	Morale int
	Range  int
	Damage int
}

// TurnView is the snapshot of the active turn handed to a policy's decide
// function. Allies and Enemies hold living actors only, and Allies excludes
// the active actor itself.
type TurnView struct {
	Round           int
	GridWidth       int
	GridHeight      int
	EscapeAvailable bool
	Active          ActorView
	Allies          []ActorView
	Enemies         []ActorView
}

// Decision is the action a policy picked for the active actor.
type Decision struct {
	// Action is one of "move", "attack", "end_turn", "escape".
	Action string
	// Target is the actor ID to attack.
	Target string
	// X, Y is the move destination.
	X, Y int
	// Sacrifice optionally names the squadmate left behind on "escape".
	Sacrifice string
}

// Policy hosts one sandboxed Lua VM holding a squad policy script.
// Calls are serialized internally; the VM is single-threaded.
type Policy struct {
	mu        sync.Mutex
	state     *lua.LState
	instLimit int
	logger    *zap.Logger
	path      string
}

// LoadPolicy creates a sandboxed VM, registers the engine.* modules, executes
// the script at path and verifies it defined a decide function.
//
// Precondition: logger must be non-nil; path must be a readable Lua file.
// Postcondition: Returns a ready Policy or a non-nil error. The caller must
// Close() the Policy when done.
func LoadPolicy(path string, instLimit int, logger *zap.Logger) (*Policy, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("scripting: policy script %q: %w", path, err)
	}

	L := NewSandboxedState(instLimit)
	RegisterModules(L, logger)

	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("scripting: loading policy %q: %w", path, err)
	}
	if _, ok := L.GetGlobal(decideFn).(*lua.LFunction); !ok {
		L.Close()
		return nil, fmt.Errorf("scripting: policy %q does not define a %s function", path, decideFn)
	}

	return &Policy{state: L, instLimit: instLimit, logger: logger, path: path}, nil
}

// Close releases the Lua VM. A closed Policy refuses further Decide calls.
func (p *Policy) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != nil {
		p.state.Close()
		p.state = nil
	}
}

// Decide calls the script's decide function with a snapshot of the active
// turn. Each call gets a fresh opcode budget. Lua runtime errors, budget
// overruns and malformed return values are reported as errors; the caller
// picks the fallback behavior.
//
// Postcondition: Returns a Decision with a known Action, or an error.
func (p *Policy) Decide(view TurnView) (Decision, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == nil {
		return Decision{}, fmt.Errorf("scripting: policy %q is closed", p.path)
	}

	L := p.state
	armBudget(L, p.instLimit)

	if err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal(decideFn),
		NRet:    1,
		Protect: true,
	}, viewTable(L, view)); err != nil {
		return Decision{}, fmt.Errorf("scripting: policy %q: %w", p.path, err)
	}

	ret := L.Get(-1)
	L.Pop(1)
	return parseDecision(ret)
}

// viewTable converts a TurnView into a Lua table.
func viewTable(L *lua.LState, view TurnView) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("round", lua.LNumber(view.Round))
	tbl.RawSetString("grid_width", lua.LNumber(view.GridWidth))
	tbl.RawSetString("grid_height", lua.LNumber(view.GridHeight))
	tbl.RawSetString("escape_available", lua.LBool(view.EscapeAvailable))
	tbl.RawSetString("active", actorTable(L, view.Active))

	allies := L.NewTable()
	for _, a := range view.Allies {
		allies.Append(actorTable(L, a))
	}
	tbl.RawSetString("allies", allies)

	enemies := L.NewTable()
	for _, e := range view.Enemies {
		enemies.Append(actorTable(L, e))
	}
	tbl.RawSetString("enemies", enemies)

	return tbl
}

func actorTable(L *lua.LState, a ActorView) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("id", lua.LString(a.ID))
	tbl.RawSetString("name", lua.LString(a.Name))
	tbl.RawSetString("x", lua.LNumber(a.X))
	tbl.RawSetString("y", lua.LNumber(a.Y))
	tbl.RawSetString("hp", lua.LNumber(a.HP))
	tbl.RawSetString("max_hp", lua.LNumber(a.MaxHP))
	tbl.RawSetString("ap", lua.LNumber(a.AP))
	tbl.RawSetString("morale", lua.LNumber(a.Morale))
	tbl.RawSetString("range", lua.LNumber(a.Range))
	tbl.RawSetString("damage", lua.LNumber(a.Damage))
	return tbl
}

// parseDecision validates the table a decide call returned.
func parseDecision(lv lua.LValue) (Decision, error) {
	tbl, ok := lv.(*lua.LTable)
	if !ok {
		return Decision{}, fmt.Errorf("scripting: decide must return a table, got %s", lv.Type())
	}

	action, ok := tbl.RawGetString("action").(lua.LString)
	if !ok {
		return Decision{}, fmt.Errorf("scripting: decision table has no action string")
	}

	d := Decision{Action: string(action)}
	switch d.Action {
	case "move":
		x, xok := tbl.RawGetString("x").(lua.LNumber)
		y, yok := tbl.RawGetString("y").(lua.LNumber)
		if !xok || !yok {
			return Decision{}, fmt.Errorf("scripting: move decision needs numeric x and y")
		}
		d.X, d.Y = int(x), int(y)
	case "attack":
		target, tok := tbl.RawGetString("target").(lua.LString)
		if !tok || target == "" {
			return Decision{}, fmt.Errorf("scripting: attack decision needs a target id")
		}
		d.Target = string(target)
	case "escape":
		if s, sok := tbl.RawGetString("sacrifice").(lua.LString); sok {
			d.Sacrifice = string(s)
		}
	case "end_turn":
	default:
		return Decision{}, fmt.Errorf("scripting: unknown action %q", d.Action)
	}
	return d, nil
}
