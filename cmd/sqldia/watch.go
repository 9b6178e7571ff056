package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tordrt/sqldia/internal/config"
)

// watchDebounce collapses the burst of events editors emit for one save
var watchDebounce = 100 * time.Millisecond

// watchInputs calls render after files change, until ctx is done. Parent
// directories are watched so files replaced by rename are still seen.
func watchInputs(ctx context.Context, files []string, render func() error) error {
	logger := config.GetLogger(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	inputs := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		inputs[abs] = true

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	logger.Info("watching for changes", slog.Int("files", len(inputs)))

	var pending <-chan time.Time
	var changed string
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !inputs[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			changed = event.Name
			pending = time.After(watchDebounce)

		case <-pending:
			pending = nil
			logger.Info("change detected", slog.String("file", filepath.Base(changed)))
			if err := render(); err != nil {
				logger.Error("render failed", slog.Any("error", err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", slog.Any("error", err))
		}
	}
}
