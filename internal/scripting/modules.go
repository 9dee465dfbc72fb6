package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the engine.* helpers into L:
//
//	engine.log(msg)          -- info-level log line
//	engine.clamp(v, lo, hi)  -- v limited to [lo, hi]
//
// Precondition: L came from NewSandboxedState.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Info("script log", zap.String("message", L.CheckString(1)))
		return 0
	}))
	L.SetField(engine, "clamp", L.NewFunction(func(L *lua.LState) int {
		v := float64(L.CheckNumber(1))
		lo := float64(L.CheckNumber(2))
		hi := float64(L.CheckNumber(3))
		L.Push(lua.LNumber(min(max(v, lo), hi)))
		return 1
	}))
	L.SetGlobal("engine", engine)
}
