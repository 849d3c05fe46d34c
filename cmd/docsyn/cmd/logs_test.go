package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeServerLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.log")
	lines := []string{
		`{"time":"2026-10-15T09:00:00.000Z","level":"INFO","msg":"synonyms_installed","dictionary":"nicknames"}`,
		`{"time":"2026-10-15T09:00:01.000Z","level":"DEBUG","msg":"conditions_rewritten","fields":1}`,
		`{"time":"2026-10-15T09:00:02.000Z","level":"WARN","msg":"synonyms_reload_failed","dictionary":"team"}`,
		`not json at all`,
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestLogsCmd_Flags(t *testing.T) {
	cmd := NewRootCmd()

	logsCmd, _, err := cmd.Find([]string{"logs"})
	require.NoError(t, err)

	lines := logsCmd.Flags().Lookup("lines")
	require.NotNil(t, lines)
	assert.Equal(t, "50", lines.DefValue)
	assert.Equal(t, "n", lines.Shorthand)
	assert.Equal(t, "f", logsCmd.Flags().Lookup("follow").Shorthand)
}

func TestLogsCmd_Tail(t *testing.T) {
	isolate(t)
	path := writeServerLog(t)

	out, err := execute(t, "logs", "--file", path, "--no-color")

	require.NoError(t, err)
	assert.Contains(t, out, "synonyms_installed dictionary=nicknames")
	assert.Contains(t, out, "conditions_rewritten")
	assert.Contains(t, out, "not json at all")
}

func TestLogsCmd_LevelAndFilter(t *testing.T) {
	isolate(t)
	path := writeServerLog(t)

	out, err := execute(t, "logs", "--file", path, "--no-color", "--level", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, "synonyms_reload_failed")
	assert.NotContains(t, out, "synonyms_installed")

	out, err = execute(t, "logs", "--file", path, "--no-color", "--filter", "install")
	require.NoError(t, err)
	assert.Contains(t, out, "synonyms_installed")
	assert.NotContains(t, out, "synonyms_reload_failed")

	_, err = execute(t, "logs", "--file", path, "--filter", "(")
	assert.Error(t, err)
}

func TestLogsCmd_Lines(t *testing.T) {
	isolate(t)
	path := writeServerLog(t)

	out, err := execute(t, "logs", "--file", path, "--no-color", "-n", "1")

	require.NoError(t, err)
	assert.Equal(t, "not json at all\n", out)
}

func TestLogsCmd_MissingFile(t *testing.T) {
	isolate(t)

	_, err := execute(t, "logs")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "docsyn serve")
}
