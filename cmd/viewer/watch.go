package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"orbit-renderer/config"
)

// configWatcher re-reads a config file whenever it is written and offers the
// result on Updates. Only the newest unread config is kept; the frame loop
// drains it between frames.
type configWatcher struct {
	path    string
	log     *zap.Logger
	watcher *fsnotify.Watcher
	updates chan config.Config
	done    chan struct{}
}

// watchConfig watches the directory holding path, so editors that replace
// the file on save are still seen.
func watchConfig(ctx context.Context, path string, log *zap.Logger) (*configWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %q: %w", filepath.Dir(abs), err)
	}

	cw := &configWatcher{
		path:    abs,
		log:     log.Named("watch"),
		watcher: w,
		updates: make(chan config.Config, 1),
		done:    make(chan struct{}),
	}
	go cw.run(ctx)
	return cw, nil
}

func (cw *configWatcher) Updates() <-chan config.Config {
	return cw.updates
}

// Close stops the watcher and waits for its goroutine.
func (cw *configWatcher) Close() error {
	err := cw.watcher.Close()
	<-cw.done
	return err
}

func (cw *configWatcher) run(ctx context.Context) {
	defer close(cw.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cw.reload()
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.log.Warn("watch error", zap.Error(err))
		}
	}
}

func (cw *configWatcher) reload() {
	cfg, err := config.Load(cw.path)
	if err != nil {
		// Half-written files show up here too; the next write event retries.
		cw.log.Warn("config reload failed", zap.String("path", cw.path), zap.Error(err))
		return
	}
	select {
	case <-cw.updates:
	default:
	}
	cw.updates <- cfg
	cw.log.Debug("config reloaded", zap.String("path", cw.path))
}
