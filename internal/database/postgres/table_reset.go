package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/botivate/sheetsync/pkg/errors"
	"github.com/botivate/sheetsync/pkg/logger"
	"github.com/botivate/sheetsync/pkg/metrics"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ResetTable drops tableName if it exists and recreates it from createStatement
// through the reset_table database function. It returns the function's
// confirmation message.
func (c *Client) ResetTable(ctx context.Context, tableName, createStatement string) (string, error) {
	start := time.Now()
	operation := "resetTable"

	var message string
	err := c.pool.QueryRow(ctx, "SELECT reset_table($1, $2)", tableName, createStatement).Scan(&message)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration,
			zap.String("table", tableName),
			zap.Error(err),
		)

		// Anything the server rejected is a problem with the caller's DDL or
		// with objects depending on the table; everything else is transport.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return "", apperrors.SchemaError(tableName, err)
		}
		return "", fmt.Errorf("failed to reset table %s: %w", tableName, err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall(ctx, "postgres", operation, "success", duration,
		zap.String("table", tableName),
	)

	return message, nil
}
