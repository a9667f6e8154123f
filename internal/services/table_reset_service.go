package services

import (
	"context"
	"strings"

	"github.com/botivate/sheetsync/internal/repository"
	apperrors "github.com/botivate/sheetsync/pkg/errors"
	"github.com/botivate/sheetsync/pkg/logger"
	"go.uber.org/zap"
)

// TableResetService exposes the destination's reset_table capability
type TableResetService struct {
	repo repository.TableRepository
}

// NewTableResetService creates a reset service over repo
func NewTableResetService(repo repository.TableRepository) *TableResetService {
	return &TableResetService{repo: repo}
}

// Reset drops and recreates tableName from createStatement. Database
// rejections are returned wrapping apperrors.ErrSchema and are not retried.
func (s *TableResetService) Reset(ctx context.Context, tableName, createStatement string) (string, error) {
	tableName = strings.TrimSpace(tableName)
	if tableName == "" {
		return "", apperrors.InvalidInputError("table_name", "must not be empty")
	}
	if strings.TrimSpace(createStatement) == "" {
		return "", apperrors.InvalidInputError("create_statement", "must not be empty")
	}

	message, err := s.repo.ResetTable(ctx, tableName, createStatement)
	if err != nil {
		logger.Error("Table reset failed",
			zap.String("table", tableName),
			zap.Error(err))
		return "", err
	}

	logger.Info("Table reset",
		zap.String("table", tableName),
		zap.String("message", message))
	return message, nil
}
