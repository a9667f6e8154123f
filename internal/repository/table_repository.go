package repository

import (
	"context"

	"github.com/botivate/sheetsync/internal/database/postgres"
)

// TableRepository is the destination-side table reset capability
type TableRepository interface {
	// ResetTable drops tableName if present and recreates it from createStatement
	ResetTable(ctx context.Context, tableName, createStatement string) (string, error)
}

// PostgresTableRepository resets tables through the reset_table function
type PostgresTableRepository struct {
	client *postgres.Client
}

// NewTableRepository creates a repository backed by the postgres client
func NewTableRepository(client *postgres.Client) *PostgresTableRepository {
	return &PostgresTableRepository{client: client}
}

// ResetTable implements TableRepository
func (r *PostgresTableRepository) ResetTable(ctx context.Context, tableName, createStatement string) (string, error) {
	return r.client.ResetTable(ctx, tableName, createStatement)
}
