package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the configuration file at path whenever it is written or
// replaced, calling fn with each result. A file which fails to load is passed
// to fn as an error, so the caller can keep its previous configuration.
// Watch blocks until ctx is done or the watcher fails.
func Watch(ctx context.Context, path string, fn func(*Config, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory rather than the file. Editors often save by
	// renaming a new file over the old one, which drops a watch on the file.
	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				fn(Load(path, false))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fn(nil, err)
		}
	}
}
