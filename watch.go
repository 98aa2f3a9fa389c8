package deslash

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher re-converts Python files as they are written. Converted output
// is stable under re-conversion, so watching a tree that deslash itself
// rewrites does not loop.
type Watcher struct {
	watcher *fsnotify.Watcher
	cfg     Config
	logger  *zap.Logger
	done    chan struct{}
}

// NewWatcher creates a watcher converting with cfg.
func NewWatcher(cfg Config, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		watcher: fw,
		cfg:     cfg,
		logger:  logger,
		done:    make(chan struct{}),
	}, nil
}

// Add registers paths with the watcher; directories are walked recursively
// so that files in subdirectories are picked up too.
func (w *Watcher) Add(paths []string) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("error accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("error watching %s: %w", path, err)
			}
			continue
		}
		err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				if strings.HasPrefix(filepath.Base(p), ".") && p != path {
					return filepath.SkipDir
				}
				return w.watcher.Add(p)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("error watching %s: %w", path, err)
		}
	}
	return nil
}

// Start blocks, converting every Python file as it changes, until Stop is
// called.
func (w *Watcher) Start() {
	if w.logger != nil {
		w.logger.Info("watching for changes to Python files")
	}
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Error("watcher error", zap.Error(err))
			}
		case <-w.done:
			return
		}
	}
}

// Stop ends the watch loop and releases the underlying watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Write != fsnotify.Write {
		return
	}
	switch filepath.Ext(event.Name) {
	case ".py", ".pyw":
	default:
		return
	}

	// Editors often emit a burst of writes; let the file settle first.
	time.Sleep(100 * time.Millisecond)

	changed, err := ConvertFile(event.Name, w.cfg)
	if err != nil {
		if w.logger != nil {
			w.logger.Error("failed to convert file",
				zap.String("file", event.Name),
				zap.Error(err))
		}
		return
	}
	if changed && w.logger != nil {
		w.logger.Info("converted file", zap.String("file", event.Name))
	}
}
