// internal/app/system/rolecatalog/provider.go
package rolecatalog

import (
	"context"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Provider publishes the current catalog snapshot. Replacement is atomic:
// a reader holds either the previous complete catalog or the new one.
type Provider struct {
	cur atomic.Pointer[Catalog]
	log *zap.Logger
}

// NewProvider wraps an initial catalog.
func NewProvider(c *Catalog, logger *zap.Logger) *Provider {
	p := &Provider{log: logger}
	p.cur.Store(c)
	return p
}

// Open loads the catalog at path, falling back to the built-in default when
// path is empty or the file fails to load. A load failure is logged, not
// fatal: permission checks must stay deterministic, so the service runs on
// the default catalog rather than crashing or serving a partial one.
func Open(path string, logger *zap.Logger) *Provider {
	if path == "" {
		logger.Info("role catalog: no file configured, using built-in default")
		return NewProvider(Default(), logger)
	}
	c, err := Load(path)
	if err != nil {
		logger.Error("role catalog: load failed, using built-in default",
			zap.String("path", path), zap.Error(err))
		return NewProvider(Default(), logger)
	}
	logger.Info("role catalog: loaded", zap.String("path", path))
	return NewProvider(c, logger)
}

// Current returns the active catalog snapshot.
func (p *Provider) Current() *Catalog {
	return p.cur.Load()
}

// Replace atomically publishes a new catalog.
func (p *Provider) Replace(c *Catalog) {
	p.cur.Store(c)
}

// Watch reloads the catalog when its file changes, until ctx is cancelled.
// A reload that fails validation keeps the previous catalog in place.
// Intended to run in its own goroutine from Startup.
func (p *Provider) Watch(ctx context.Context, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return err
	}
	p.log.Info("role catalog: watching for changes", zap.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			c, err := Load(path)
			if err != nil {
				p.log.Error("role catalog: reload failed, keeping previous catalog",
					zap.String("path", path), zap.Error(err))
				continue
			}
			p.Replace(c)
			p.log.Info("role catalog: reloaded", zap.String("path", path))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			p.log.Error("role catalog: watcher error", zap.Error(err))
		}
	}
}
