package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPaths(t *testing.T) {
	assert.Equal(t, "logs", filepath.Base(DefaultLogDir()))
	assert.Equal(t, ".docsyn", filepath.Base(filepath.Dir(DefaultLogDir())))
	assert.Equal(t, filepath.Join(DefaultLogDir(), "server.log"), DefaultLogPath())
}

func TestServerConfig_FileOnly(t *testing.T) {
	cfg := ServerConfig("debug")

	assert.Equal(t, "debug", cfg.Level)
	assert.False(t, cfg.WriteToStderr)
	assert.Equal(t, DefaultLogPath(), cfg.FilePath)
}

func TestSetup_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "server.log")

	logger, cleanup, err := Setup(Config{Level: "warn", FilePath: path})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("dictionary_reload_failed", slog.String("source", "nicknames"))
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), `"msg":"dictionary_reload_failed"`)
	assert.Contains(t, string(data), `"source":"nicknames"`)
}

func TestLevelFromString(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, LevelFromString(in), in)
	}
}

func TestNewConsole(t *testing.T) {
	var buf strings.Builder
	logger := NewConsole(&buf, "info")

	logger.Debug("skipped")
	logger.Info("synonyms_installed", slog.String("dictionary", "nicknames"))

	assert.NotContains(t, buf.String(), "skipped")
	assert.Contains(t, buf.String(), "dictionary=nicknames")
}

func TestFindLogFile(t *testing.T) {
	_, err := FindLogFile(filepath.Join(t.TempDir(), "missing.log"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "server.log")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	got, err := FindLogFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestRotatingWriter_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	w, err := NewRotatingWriter(path, 1, 2)
	require.NoError(t, err)
	defer w.Close()

	chunk := []byte(strings.Repeat("x", 600*1024) + "\n")
	for i := 0; i < 4; i++ {
		_, err := w.Write(chunk)
		require.NoError(t, err)
	}

	assert.FileExists(t, path)
	assert.FileExists(t, path+".1")
	assert.FileExists(t, path+".2")
	assert.NoFileExists(t, path+".3")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(chunk)), info.Size())
}

func TestRotatingWriter_AppendsToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	w, err := NewRotatingWriter(path, 0, 0)
	require.NoError(t, err)
	_, err = w.Write([]byte("new\n"))
	require.NoError(t, err)
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\nnew\n", string(data))

	_, err = w.Write([]byte("late"))
	assert.Error(t, err)
}

func TestRotatingWriter_ConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	w, err := NewRotatingWriter(path, 10, 2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = fmt.Fprintf(w, "writer %d line %d\n", i, j)
			}
		}(i)
	}
	wg.Wait()
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1000, strings.Count(string(data), "\n"))
}

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

const (
	debugLine = `{"time":"2026-01-02T03:04:05.006Z","level":"DEBUG","msg":"conditions_rewritten","fields":1}`
	infoLine  = `{"time":"2026-01-02T03:04:06.007Z","level":"INFO","msg":"synonyms_installed","dictionary":"nicknames","ops":3}`
	warnLine  = `{"time":"2026-01-02T03:04:07.008Z","level":"WARN","msg":"dictionary_reload_failed","source":"brands"}`
)

func TestViewer_TailAndFilters(t *testing.T) {
	path := writeLog(t, debugLine, "not json", infoLine, warnLine)

	v := NewViewer(ViewerConfig{NoColor: true}, nil)
	entries, err := v.Tail(path, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.False(t, entries[0].IsValid)
	assert.Equal(t, "synonyms_installed", entries[1].Msg)
	assert.Equal(t, "nicknames", entries[1].Attrs["dictionary"])

	v = NewViewer(ViewerConfig{Level: "warn", NoColor: true}, nil)
	entries, err = v.Tail(path, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "not json", entries[0].Raw)
	assert.Equal(t, "dictionary_reload_failed", entries[1].Msg)

	v = NewViewer(ViewerConfig{Pattern: regexp.MustCompile(`nicknames`), NoColor: true}, nil)
	entries, err = v.Tail(path, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0].Level)

	_, err = v.Tail(filepath.Join(t.TempDir(), "missing.log"), 10)
	assert.Error(t, err)
}

func TestViewer_FormatEntry(t *testing.T) {
	var out strings.Builder
	v := NewViewer(ViewerConfig{NoColor: true}, &out)

	entries, err := v.Tail(writeLog(t, infoLine, "plain text"), 10)
	require.NoError(t, err)
	v.Print(entries)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "03:04:06.007 INFO  synonyms_installed dictionary=nicknames ops=3", lines[0])
	assert.Equal(t, "plain text", lines[1])
}

func TestViewer_Follow(t *testing.T) {
	path := writeLog(t, infoLine)
	v := NewViewer(ViewerConfig{Level: "info"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	entries := make(chan LogEntry, 10)
	done := make(chan error, 1)
	go func() { done <- v.Follow(ctx, path, entries) }()
	time.Sleep(150 * time.Millisecond)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(debugLine + "\n" + warnLine + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	select {
	case entry := <-entries:
		assert.Equal(t, "dictionary_reload_failed", entry.Msg)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for followed entry")
	}

	cancel()
	assert.NoError(t, <-done)
}
