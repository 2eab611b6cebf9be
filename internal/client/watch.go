package client

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchFile watches a decklist file and calls submit with its contents on
// every change, plus once at startup. It blocks until ctx is done.
//
// Editors often replace files instead of writing in place, so the watch is
// on the parent directory and filtered by name; a remove/rename is treated
// as a pending rewrite, not an error.
func WatchFile(ctx context.Context, path string, logger *slog.Logger, submit func(text string)) error {
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	readAndSubmit := func() {
		data, err := os.ReadFile(abs)
		if err != nil {
			logger.Warn("failed to read decklist file", "path", abs, "error", err)
			return
		}
		submit(string(data))
	}

	readAndSubmit()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				readAndSubmit()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("decklist watch error", "error", err)
		}
	}
}
