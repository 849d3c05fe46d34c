// Package watcher watches dictionary directories and reports which
// dictionary sources changed on disk.
//
// fsnotify is used when available, with directory polling as a fallback for
// file systems where it fails (network mounts, some container volumes).
// Events are debounced per file so an editor's save burst yields one event.
//
// Usage:
//
//	w, err := watcher.New(watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	go w.Start(ctx, dirs...)
//
//	for batch := range w.Events() {
//	    for _, ev := range batch {
//	        registry.InvalidateSource(ev.Name)
//	    }
//	}
package watcher
