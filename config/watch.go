package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads path whenever it is written and delivers the result on the
// returned channel. The parent directory is watched so editors that replace
// the file by rename are picked up. Corrupt files deliver Default, matching
// Load. The channel is closed when ctx is done.
func Watch(ctx context.Context, path string, logger *slog.Logger) (<-chan Config, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create settings watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("resolve settings path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch settings dir: %w", err)
	}

	out := make(chan Config, 1)
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
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, err := Load(abs)
				if err != nil {
					level := slog.LevelWarn
					if !errors.Is(err, ErrCorrupt) {
						level = slog.LevelError
					}
					logger.Log(ctx, level, "reload settings", "path", abs, "error", err)
				}
				// Keep only the newest snapshot if the consumer is behind.
				select {
				case <-out:
				default:
				}
				select {
				case out <- cfg:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("settings watcher", "error", err)
			}
		}
	}()
	return out, nil
}
