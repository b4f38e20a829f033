package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fsnotify/fsnotify"
)

// Watch rescans dir whenever a file is added, removed or renamed in it and
// delivers the listing. The directory is created if it does not exist. The
// channel is closed when ctx is done.
func Watch(ctx context.Context, dir string, logger *slog.Logger) (<-chan []File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create ornaments dir: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create ornaments watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch ornaments dir: %w", err)
	}

	out := make(chan []File, 1)
	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) &&
					!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
					continue
				}
				files, err := Scan(dir)
				if err != nil {
					logger.Warn("rescan ornaments", "dir", dir, "error", err)
					continue
				}
				select {
				case <-out:
				default:
				}
				select {
				case out <- files:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("ornaments watcher", "error", err)
			}
		}
	}()
	return out, nil
}
