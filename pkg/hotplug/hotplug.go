// Package hotplug notices cameras being plugged in or removed by watching
// the device directory for video nodes.
package hotplug

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events a single plug produces.
const DefaultDebounce = 500 * time.Millisecond

// Watcher calls OnChange after video device nodes appear or disappear.
type Watcher struct {
	Dir      string
	Prefix   string        // node name prefix, "video" when empty
	Debounce time.Duration // DefaultDebounce when zero
	OnChange func()
}

func (w *Watcher) prefix() string {
	if w.Prefix == "" {
		return "video"
	}
	return w.Prefix
}

// relevant reports whether ev creates or removes a video node.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !strings.HasPrefix(filepath.Base(ev.Name), w.prefix()) {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

// Run watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new file change watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.Dir, err)
	}
	slog.Info("Watching for camera hot-plug", "dir", w.Dir, "prefix", w.prefix())

	debounce := w.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	// fire is armed by each relevant event, so a burst yields one call.
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			slog.Debug("Video device node changed", "name", ev.Name, "op", ev.Op.String())
			fire = time.After(debounce)
		case <-fire:
			fire = nil
			if w.OnChange != nil {
				w.OnChange()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Device watcher error", "error", err)
		}
	}
}
