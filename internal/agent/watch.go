package agent

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces bursts of filesystem events (editors often fire
// several per save) into a single reload.
const watchDebounce = 500 * time.Millisecond

// Watch reloads the catalog whenever an agent definition file in its
// directory changes, and calls onReload after each successful reload. It
// blocks until ctx is cancelled.
func (c *Catalog) Watch(ctx context.Context, onReload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(c.dir); err != nil {
		return fmt.Errorf("watch agents directory %s: %w", c.dir, err)
	}

	var timer *time.Timer
	reloads := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".md" {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case reloads <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("agents watcher error", "error", err)
		case <-reloads:
			if err := c.Reload(); err != nil {
				c.logger.Warn("agents reload failed", "error", err)
				continue
			}
			if onReload != nil {
				onReload()
			}
		}
	}
}
