package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nb2rs/dtx/internal/content"
)

// execute runs the root command against the testdata content with a fixed seed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	base := []string{"--tables", "testdata/tables", "--scripts", "testdata/scripts", "--seed", "1"}
	cmd.SetArgs(append(args, base...))
	err := cmd.Execute()
	return buf.String(), err
}

func assertGolden(t *testing.T, name, got string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(got))
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate")
	require.NoError(t, err)
	assertGolden(t, "validate", out)
}

func TestValidate_MissingScriptsFails(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"validate", "--tables", "testdata/tables"})
	err := cmd.Execute()
	require.ErrorIs(t, err, content.ErrUnknownScript)
}

func TestRoll_Sequential(t *testing.T) {
	out, err := execute(t, "roll", "--table", "daily", "--count", "4")
	require.NoError(t, err)
	assertGolden(t, "roll_daily", out)
}

func TestRoll_TagsReachTarget(t *testing.T) {
	out, err := execute(t, "roll", "--table", "boss", "--tag", "boss")
	require.NoError(t, err)
	assert.Equal(t, "roll 1: crown x1, cape x1\n", out)

	out, err = execute(t, "roll", "--table", "boss")
	require.NoError(t, err)
	assert.Equal(t, "roll 1: cape x1\n", out)
}

func TestRoll_ExhaustedDeckPrintsNothing(t *testing.T) {
	out, err := execute(t, "roll", "--table", "deck", "--count", "3")
	require.NoError(t, err)
	assert.Equal(t, "roll 1: ace x1\nroll 2: ace x1\nroll 3: nothing\n", out)
}

func TestRoll_ScriptedDropRate(t *testing.T) {
	out, err := execute(t, "roll", "--table", "vault", "--luck", "80", "--arg", "source=chest")
	require.NoError(t, err)
	assert.Equal(t, "roll 1: gem x1\n", out)
}

func TestRoll_Errors(t *testing.T) {
	_, err := execute(t, "roll", "--table", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown table "ghost"`)

	_, err = execute(t, "roll", "--table", "daily", "--count", "0")
	require.Error(t, err)

	_, err = execute(t, "roll")
	require.Error(t, err)
}

func TestSimulate_Sequential(t *testing.T) {
	out, err := execute(t, "simulate", "--table", "daily", "--rolls", "6")
	require.NoError(t, err)
	assertGolden(t, "simulate_daily", out)
}

func TestSimulate_DefaultRollsFromConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dtx.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sim:\n  rolls: 3\nlogging:\n  level: error\n"), 0o644))

	out, err := execute(t, "simulate", "--table", "daily", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "rolls     3\n")
}

func TestInspect(t *testing.T) {
	out, err := execute(t, "inspect")
	require.NoError(t, err)
	assertGolden(t, "inspect", out)
}
