package file

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docsearch-mcp/internal/logger"
)

// Watch invokes onChange whenever the cache file is replaced, until ctx is
// cancelled. Because saves rename a temp file into place, a replacement
// shows up as a Create or Rename event on the cache path.
//
// The long-running MCP server uses this to reload the search engine after
// an external reindex.
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cache: create watcher: %w", err)
	}

	// Watch the directory, not the file: the file may not exist yet, and
	// rename-based writes replace the inode.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("cache: watch %s: %w", dir, err)
	}
	base := filepath.Base(s.path)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				logger.Debug("cache file changed (%s), reloading", event.Op)
				onChange()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("cache watcher: %v", err)
			}
		}
	}()
	return nil
}
