package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 200 * time.Millisecond

// watchablePaths returns the local files among the inputs.
func watchablePaths(inputs []string) []string {
	var paths []string
	for _, raw := range inputs {
		raw = strings.TrimSpace(raw)
		if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
			if strings.EqualFold(u.Scheme, "file") {
				paths = append(paths, normalizePath(fileURLPath(u)))
			}
			continue
		}
		paths = append(paths, normalizePath(raw))
	}
	return paths
}

// watch runs fn once and then again after every change to one of paths,
// until ctx is done. Directories are watched rather than the files so
// editors that replace files on save keep being followed.
func watch(ctx context.Context, logger *slog.Logger, paths []string, fn func() error) error {
	if len(paths) == 0 {
		return fmt.Errorf("%w: --watch needs local input files", errUsage)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	files := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		files[p] = struct{}{}
		dir := filepath.Dir(p)
		if _, ok := dirs[dir]; ok {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = struct{}{}
	}

	if err := fn(); err != nil {
		logger.Error("render failed", "error", err)
	}
	logger.Info("watching inputs", "files", len(files))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if _, ok := files[filepath.Clean(event.Name)]; !ok {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("input changed", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := fn(); err != nil {
				logger.Error("render failed", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("file watcher error", "error", err)
		}
	}
}
