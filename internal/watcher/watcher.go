// Package watcher turns changes to a workbook file on disk into edit events.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/botivate/sheetsync/internal/services"
	"github.com/botivate/sheetsync/pkg/logger"
	"github.com/botivate/sheetsync/pkg/metrics"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WorkbookWatcher calls the edit trigger each time the workbook is written.
// It watches the parent directory so saves that replace the file are seen too.
type WorkbookWatcher struct {
	path    string
	trigger services.EditTriggerInterface
}

// New creates a watcher for the workbook at path
func New(path string, trigger services.EditTriggerInterface) *WorkbookWatcher {
	return &WorkbookWatcher{
		path:    filepath.Clean(path),
		trigger: trigger,
	}
}

// Run blocks until ctx is done, delivering events one at a time
func (w *WorkbookWatcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	logger.Info("Watching workbook for edits", zap.String("path", w.path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.isEdit(event) {
				continue
			}
			logger.Debug("Workbook changed",
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()))
			metrics.EditsReceived.WithLabelValues("watcher").Inc()
			w.trigger.OnEdit(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error", zap.Error(err))
		}
	}
}

func (w *WorkbookWatcher) isEdit(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
