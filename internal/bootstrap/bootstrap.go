// Package bootstrap builds the pieces shared by the server and the CLI from config.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/botivate/sheetsync/config"
	"github.com/botivate/sheetsync/internal/database/postgres"
	"github.com/botivate/sheetsync/internal/models"
	"github.com/botivate/sheetsync/internal/repository"
	"github.com/botivate/sheetsync/internal/services"
	"github.com/botivate/sheetsync/pkg/db"
	"github.com/botivate/sheetsync/pkg/objectstore"
	"github.com/botivate/sheetsync/pkg/spreadsheet"
)

// NewSource opens the spreadsheet source selected by cfg.Kind
func NewSource(ctx context.Context, cfg config.SourceConfig) (spreadsheet.Source, error) {
	switch cfg.Kind {
	case config.SourceXLSX:
		return spreadsheet.NewXLSXSource(cfg.XLSXPath), nil
	case config.SourceGSheets:
		return spreadsheet.NewGoogleSheetsSource(ctx, cfg.SpreadsheetID, cfg.CredentialsFile)
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}

// NewExtractService wires the configured source and allow-list
func NewExtractService(ctx context.Context, cfg *config.Config) (*services.ExtractService, error) {
	source, err := NewSource(ctx, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s source: %w", cfg.Source.Kind, err)
	}
	return services.NewExtractService(source, models.NewAllowList(cfg.Sync.AllowedSheets...)), nil
}

// NewDatabase connects to Postgres. A nil client means no database is configured.
func NewDatabase(ctx context.Context, cfg config.DatabaseConfig) (*postgres.Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	return postgres.NewClient(ctx, db.PoolConfig{
		URL:        cfg.URL,
		MaxConns:   cfg.MaxConns,
		MinConns:   cfg.MinConns,
		CACertPath: cfg.CACertPath,
	})
}

// NewTableResetService builds the reset service on top of a connected client
func NewTableResetService(client *postgres.Client) *services.TableResetService {
	return services.NewTableResetService(repository.NewTableRepository(client))
}

// NewSnapshotService returns nil when snapshot storage is not configured
func NewSnapshotService(cfg config.SnapshotConfig, extractor services.ExtractServiceInterface) (*services.SnapshotService, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	store, err := objectstore.NewStorageClient(objectstore.Options{
		Bucket:          cfg.Bucket,
		Endpoint:        cfg.Endpoint,
		Region:          cfg.Region,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}
	return services.NewSnapshotService(extractor, store, cfg.Prefix), nil
}
