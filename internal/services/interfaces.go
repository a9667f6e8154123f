package services

import (
	"context"

	"github.com/botivate/sheetsync/internal/models"
)

// ExtractServiceInterface builds the current sync document
type ExtractServiceInterface interface {
	Extract(ctx context.Context) (*models.SyncDocument, error)
}

// NotifierServiceInterface tells the downstream consumer that data changed.
// It never fails; the outcome is reported in the result.
type NotifierServiceInterface interface {
	NotifyChange(ctx context.Context) models.NotificationResult
}

// EditTriggerInterface receives "something changed" from any edit adapter
type EditTriggerInterface interface {
	OnEdit(ctx context.Context)
}

// TableResetServiceInterface resets destination tables
type TableResetServiceInterface interface {
	Reset(ctx context.Context, tableName, createStatement string) (string, error)
}

// SnapshotServiceInterface archives the sync document to object storage
type SnapshotServiceInterface interface {
	Archive(ctx context.Context) (string, error)
}

// ObjectStore is where snapshots are written
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}
