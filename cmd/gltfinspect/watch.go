package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events a single save produces.
const watchDebounce = 100 * time.Millisecond

// watch inspects path once, then again after every change to it until ctx ends.
// Load failures are reported and watching continues.
//
// Parameters:
//   - ctx: cancels the watch
//   - in: the inspector whose cached scene is evicted on each change
//   - path: the file to inspect
//   - errOut: where load failures are reported
//
// Returns:
//   - error: error if the watcher cannot be created
func watch(ctx context.Context, in *inspector, path string, errOut io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files on save, so the directory is watched instead of the file.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	target := filepath.Clean(path)
	run := func() {
		if err := in.reload(path); err != nil {
			fmt.Fprintln(errOut, "gltfinspect:", err)
		}
	}
	run()

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if isTargetChange(event, target) {
				debounce = time.After(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(errOut, "gltfinspect: watch:", err)
		case <-debounce:
			debounce = nil
			run()
		}
	}
}

// isTargetChange reports whether event modifies the watched file itself.
func isTargetChange(event fsnotify.Event, target string) bool {
	if filepath.Clean(event.Name) != target {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}
