package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.* Lua tables into L.
//
// Precondition: L must be from NewSandboxedState; logger must be non-nil.
// Postcondition: engine global is defined in L.
func RegisterModules(L *lua.LState, logger *zap.Logger) {
	engine := L.NewTable()
	L.SetGlobal("engine", engine)

	logTbl := L.NewTable()
	engine.RawSetString("log", logTbl)
	logTbl.RawSetString("debug", L.NewFunction(logFn(logger.Debug)))
	logTbl.RawSetString("info", L.NewFunction(logFn(logger.Info)))
	logTbl.RawSetString("warn", L.NewFunction(logFn(logger.Warn)))
	logTbl.RawSetString("error", L.NewFunction(logFn(logger.Error)))

	engine.RawSetString("dist", L.NewFunction(distFn))
}

// logFn adapts one zap level method into a Lua function taking a message.
func logFn(emit func(msg string, fields ...zap.Field)) lua.LGFunction {
	return func(L *lua.LState) int {
		emit(L.CheckString(1), zap.String("source", "policy"))
		return 0
	}
}

// distFn returns the king-move distance between two tiles, the same metric
// the engine uses for weapon range and movement.
func distFn(L *lua.LState) int {
	dx := int(L.CheckNumber(1)) - int(L.CheckNumber(3))
	dy := int(L.CheckNumber(2)) - int(L.CheckNumber(4))
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dy > dx {
		dx = dy
	}
	L.Push(lua.LNumber(dx))
	return 1
}
