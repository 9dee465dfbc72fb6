package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nb2rs/dtx/internal/scripting"
)

func newTestManager(t *testing.T) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	m := scripting.NewManager(0, zap.New(core))
	t.Cleanup(m.Close)
	return m, logs
}

func writeTempLua(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestManager_LoadDir_LoadsInLexicalOrder(t *testing.T) {
	m, _ := newTestManager(t)
	dir := t.TempDir()
	writeTempLua(t, dir, "b.lua", `base = base * 2`)
	writeTempLua(t, dir, "a.lua", `base = 21 function answer(t) return base end`)
	writeTempLua(t, dir, "notes.txt", `this is not lua`)

	require.NoError(t, m.LoadDir(dir))

	got, ok := m.CallNumber("answer", nil)
	require.True(t, ok)
	assert.Equal(t, 42.0, got)
	assert.Len(t, m.Loaded(), 2)
}

func TestManager_LoadDir_MissingDir(t *testing.T) {
	m, _ := newTestManager(t)
	err := m.LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestManager_LoadString_SyntaxErrorNamesScript(t *testing.T) {
	m, _ := newTestManager(t)
	err := m.LoadString("broken.lua", `function (`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.lua")
}

func TestManager_CallNumber_ReadsFields(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.LoadString("rate", `
function luck_rate(t)
  return engine.clamp(t.luck * 2 + t.level, 0, 50)
end`))

	got, ok := m.CallNumber("luck_rate", scripting.Fields{"luck": 10.0, "level": 5})
	require.True(t, ok)
	assert.Equal(t, 25.0, got)

	got, ok = m.CallNumber("luck_rate", scripting.Fields{"luck": 100.0, "level": 5})
	require.True(t, ok)
	assert.Equal(t, 50.0, got)
}

func TestManager_CallBool_TagsArePassedAsList(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.LoadString("inc", `
function has_boss(t)
  for _, tag in ipairs(t.tags) do
    if tag == "boss" then return true end
  end
  return false
end`))

	got, ok := m.CallBool("has_boss", scripting.Fields{"tags": []string{"elite", "boss"}})
	require.True(t, ok)
	assert.True(t, got)

	got, ok = m.CallBool("has_boss", scripting.Fields{"tags": []string{}})
	require.True(t, ok)
	assert.False(t, got)
}

func TestManager_MissingHook(t *testing.T) {
	m, _ := newTestManager(t)
	assert.False(t, m.Has("nothing"))
	_, ok := m.CallNumber("nothing", nil)
	assert.False(t, ok)
	_, ok = m.CallBool("nothing", nil)
	assert.False(t, ok)
}

func TestManager_RuntimeErrorIsLoggedAndDegrades(t *testing.T) {
	m, logs := newTestManager(t)
	require.NoError(t, m.LoadString("bad", `function boom(t) error("kaboom") end`))

	_, ok := m.CallNumber("boom", nil)
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())
}

func TestManager_NonNumberReturnIsRejected(t *testing.T) {
	m, logs := newTestManager(t)
	require.NoError(t, m.LoadString("str", `function word(t) return "ten" end`))

	_, ok := m.CallNumber("word", nil)
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("scripting: hook returned a non-number").Len())
}

func TestManager_RunawayHookIsStopped(t *testing.T) {
	core, _ := observer.New(zapcore.WarnLevel)
	m := scripting.NewManager(500, zap.New(core))
	defer m.Close()
	require.NoError(t, m.LoadString("spin", `function spin(t) while true do end end`))

	_, ok := m.CallBool("spin", nil)
	assert.False(t, ok)

	// The VM is still usable after a budget cancel.
	require.NoError(t, m.LoadString("ok", `function one(t) return 1 end`))
	got, ok := m.CallNumber("one", nil)
	require.True(t, ok)
	assert.Equal(t, 1.0, got)
}

func TestManager_EngineLog(t *testing.T) {
	m, logs := newTestManager(t)
	require.NoError(t, m.LoadString("log", `engine.log("hello")`))
	assert.Equal(t, 1, logs.FilterMessage("script log").Len())
}
