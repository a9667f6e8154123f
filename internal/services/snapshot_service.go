package services

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/botivate/sheetsync/pkg/logger"
	"go.uber.org/zap"
)

// SnapshotService writes the current sync document to object storage so
// past states can be inspected after the workbook has moved on.
type SnapshotService struct {
	extractor ExtractServiceInterface
	store     ObjectStore
	prefix    string
	now       func() time.Time
}

// NewSnapshotService creates a snapshot archiver writing under prefix
func NewSnapshotService(extractor ExtractServiceInterface, store ObjectStore, prefix string) *SnapshotService {
	return &SnapshotService{
		extractor: extractor,
		store:     store,
		prefix:    prefix,
		now:       time.Now,
	}
}

// Archive extracts the document and uploads it, returning the object location
func (s *SnapshotService) Archive(ctx context.Context) (string, error) {
	doc, err := s.extractor.Extract(ctx)
	if err != nil {
		return "", err
	}

	body, err := doc.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("failed to encode sync document: %w", err)
	}

	key := path.Join(s.prefix, s.now().UTC().Format("20060102T150405.000Z")+".json")

	location, err := s.store.Put(ctx, key, "application/json", body)
	if err != nil {
		return "", err
	}

	logger.Info("Sync document archived",
		zap.String("location", location),
		zap.Int("sheets", doc.Len()),
		zap.Int("records", doc.TotalRecords()))
	return location, nil
}
