package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Fields is a snapshot of a roll target passed to Lua as a table. Supported
// value types are float64, int, string, bool and []string; others are skipped.
type Fields map[string]any

// Manager owns one sandboxed VM holding every loaded policy script.
//
// Manager serializes calls into its VM and is safe for concurrent use.
type Manager struct {
	mu     sync.Mutex
	L      *lua.LState
	limit  int
	logger *zap.Logger
	loaded []string
}

// NewManager creates a Manager with an empty VM.
//
// Precondition: limit >= 0 (0 selects DefaultInstructionLimit).
// Postcondition: the VM has the engine.* helpers registered.
func NewManager(limit int, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{L: NewSandboxedState(), limit: limit, logger: logger}
	m.RegisterModules(m.L)
	return m
}

// Close releases the VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.L.Close()
}

// Loaded returns the names of loaded scripts in load order.
func (m *Manager) Loaded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.loaded...)
}

// LoadDir executes every *.lua file in dir in lexicographic order.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns an error naming the first file that fails to load.
func (m *Manager) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("scripting: reading %q: %w", path, err)
		}
		if err := m.LoadString(path, string(src)); err != nil {
			return err
		}
	}
	return nil
}

// LoadString executes src under name within the opcode budget.
func (m *Manager) LoadString(name, src string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	err := WithBudget(m.L, m.limit, func() error { return m.L.DoString(src) })
	if err != nil {
		return fmt.Errorf("scripting: loading %q: %w", name, err)
	}
	m.loaded = append(m.loaded, name)
	m.logger.Debug("script loaded", zap.String("script", name))
	return nil
}

// Has reports whether hook is defined as a global function.
func (m *Manager) Has(hook string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.L.GetGlobal(hook).(*lua.LFunction)
	return ok
}

// call invokes hook with fields and returns its first result. Missing hooks
// and Lua runtime errors yield (LNil, false); runtime errors are logged at warn.
func (m *Manager) call(hook string, fields Fields) (lua.LValue, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn, ok := m.L.GetGlobal(hook).(*lua.LFunction)
	if !ok {
		return lua.LNil, false
	}
	arg := m.toTable(fields)
	err := WithBudget(m.L, m.limit, func() error {
		return m.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, arg)
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, false
	}
	ret := m.L.Get(-1)
	m.L.Pop(1)
	return ret, true
}

// CallNumber calls hook and returns its numeric result.
//
// Postcondition: ok is false when the hook is missing, fails, or returns a non-number.
func (m *Manager) CallNumber(hook string, fields Fields) (float64, bool) {
	ret, ok := m.call(hook, fields)
	if !ok {
		return 0, false
	}
	n, isNum := ret.(lua.LNumber)
	if !isNum {
		m.logger.Warn("scripting: hook returned a non-number",
			zap.String("hook", hook),
			zap.String("type", ret.Type().String()),
		)
		return 0, false
	}
	return float64(n), true
}

// CallBool calls hook and returns the truthiness of its result.
//
// Postcondition: ok is false when the hook is missing or fails.
func (m *Manager) CallBool(hook string, fields Fields) (bool, bool) {
	ret, ok := m.call(hook, fields)
	if !ok {
		return false, false
	}
	return lua.LVAsBool(ret), true
}

func (m *Manager) toTable(fields Fields) *lua.LTable {
	t := m.L.NewTable()
	for k, v := range fields {
		switch val := v.(type) {
		case float64:
			t.RawSetString(k, lua.LNumber(val))
		case int:
			t.RawSetString(k, lua.LNumber(val))
		case string:
			t.RawSetString(k, lua.LString(val))
		case bool:
			t.RawSetString(k, lua.LBool(val))
		case []string:
			list := m.L.NewTable()
			for _, s := range val {
				list.Append(lua.LString(s))
			}
			t.RawSetString(k, list)
		}
	}
	return t
}
