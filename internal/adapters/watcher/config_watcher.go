// Package watcher detects changes to the project configuration file. Raw
// fsnotify events are debounced and gated behind a content hash, so saves
// that leave the file byte-identical do not trigger a reload.
package watcher

import (
	"context"
	"fmt"
	"time"

	"go.trai.ch/pynix/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultDebounceWindow is the quiet period after the last file event
// before a change is acted on.
const DefaultDebounceWindow = 200 * time.Millisecond

// ConfigWatcher watches one configuration file and invokes a callback
// when its content actually changes.
type ConfigWatcher struct {
	watcher   ports.Watcher
	debouncer *Debouncer
	hashes    *HashCache
	logger    ports.Logger
	path      string
	onChange  func()
}

// NewConfigWatcher creates a watcher for the config file at path. The
// onChange callback runs on a background goroutine once per debounced
// content change.
func NewConfigWatcher(w ports.Watcher, logger ports.Logger, path string, window time.Duration, onChange func()) *ConfigWatcher {
	cw := &ConfigWatcher{
		watcher:  w,
		hashes:   NewHashCache(),
		logger:   logger,
		path:     path,
		onChange: onChange,
	}
	cw.debouncer = NewDebouncer(window, cw.evaluate)

	return cw
}

// Start primes the content hash and begins watching. The current content
// is recorded first so startup does not count as a change.
func (c *ConfigWatcher) Start(ctx context.Context) error {
	if _, err := c.hashes.Changed(c.path); err != nil {
		return zerr.Wrap(err, "failed to prime config hash")
	}

	if err := c.watcher.Start(ctx, c.path); err != nil {
		return zerr.Wrap(err, "failed to start config watcher")
	}

	go c.consume()

	return nil
}

// Stop stops watching and flushes any pending events synchronously.
func (c *ConfigWatcher) Stop() error {
	err := c.watcher.Stop()
	c.debouncer.Flush()

	return err
}

func (c *ConfigWatcher) consume() {
	for event := range c.watcher.Events() {
		c.debouncer.Add(event.Path)
	}
}

func (c *ConfigWatcher) evaluate(paths []string) {
	for _, path := range paths {
		changed, err := c.hashes.Changed(path)
		if err != nil {
			c.logger.Warn(fmt.Sprintf("failed to hash %s: %v", path, err))
			continue
		}

		if changed {
			c.logger.Info(fmt.Sprintf("configuration change detected in %s", path))
			c.onChange()

			return
		}

		c.logger.Debug(fmt.Sprintf("ignoring event without content change: %s", path))
	}
}
