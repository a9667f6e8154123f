package services

import (
	"context"

	"github.com/botivate/sheetsync/pkg/logger"
	"go.uber.org/zap"
)

// EditTrigger turns any edit into exactly one change notification.
// Which cell changed does not matter; consumers always re-fetch full state.
type EditTrigger struct {
	notifier NotifierServiceInterface
}

// NewEditTrigger creates a trigger bound to notifier
func NewEditTrigger(notifier NotifierServiceInterface) *EditTrigger {
	return &EditTrigger{notifier: notifier}
}

// OnEdit notifies once and logs the outcome. It always returns normally.
func (t *EditTrigger) OnEdit(ctx context.Context) {
	result := t.notifier.NotifyChange(ctx)

	switch {
	case result.Skipped:
		logger.Debug("Edit received, no webhook configured")
	case result.Delivered:
		logger.Info("Change notification delivered",
			zap.String("notification_id", result.ID),
			zap.Int("status_code", result.StatusCode))
	default:
		logger.Warn("Change notification failed",
			zap.String("notification_id", result.ID),
			zap.Int("status_code", result.StatusCode),
			zap.Error(result.Err))
	}
}
