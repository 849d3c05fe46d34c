package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitBatch(t *testing.T, w *DictionaryWatcher) []Event {
	t.Helper()
	select {
	case batch, ok := <-w.Events():
		require.True(t, ok, "events channel closed")
		return batch
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event batch")
		return nil
	}
}

func TestDictionaryWatcher_ReportsChangedSources(t *testing.T) {
	for _, polling := range []bool{false, true} {
		t.Run(map[bool]string{false: "fsnotify", true: "polling"}[polling], func(t *testing.T) {
			dir := t.TempDir()
			w, err := New(Options{
				DebounceWindow: 30 * time.Millisecond,
				PollInterval:   20 * time.Millisecond,
				ForcePolling:   polling,
			})
			require.NoError(t, err)
			if polling {
				assert.Equal(t, "polling", w.WatcherType())
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go func() { _ = w.Start(ctx, dir, dir) }()
			time.Sleep(100 * time.Millisecond)

			assert.Len(t, w.Dirs(), 1)

			// Several writes within the window collapse to one event.
			path := filepath.Join(dir, "nicknames.json")
			for i := 0; i < 3; i++ {
				require.NoError(t, os.WriteFile(path, []byte(`{"a":["b"]}`), 0o644))
			}
			require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

			batch := waitBatch(t, w)
			require.Len(t, batch, 1)
			assert.Equal(t, "nicknames", batch[0].Name)
			assert.Equal(t, path, batch[0].Path)

			require.NoError(t, w.Stop())
			require.NoError(t, w.Stop())
		})
	}
}

func TestDictionaryWatcher_MissingDirIsSkipped(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Options{DebounceWindow: 20 * time.Millisecond})
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx, filepath.Join(dir, "missing"), dir) }()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "brands.yaml"), []byte("a: [b]\n"), 0o644))

	batch := waitBatch(t, w)
	require.Len(t, batch, 1)
	assert.Equal(t, "brands", batch[0].Name)
}

func TestRun_DispatchesBatchesUntilCanceled(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Options{DebounceWindow: 20 * time.Millisecond})
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		names []string
	)
	got := make(chan struct{}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, w, []string{dir}, func(_ context.Context, batch []Event) {
			mu.Lock()
			for _, ev := range batch {
				names = append(names, ev.Name)
			}
			mu.Unlock()
			select {
			case got <- struct{}{}:
			default:
			}
		})
	}()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "places.toml"), []byte("a = [\"b\"]\n"), 0o644))

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for dispatch")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"places"}, names)
}
