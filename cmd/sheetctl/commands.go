package main

import (
	"bytes"
	"fmt"

	"github.com/botivate/sheetsync/internal/bootstrap"
	"github.com/botivate/sheetsync/internal/models"
	"github.com/botivate/sheetsync/internal/services"
	"github.com/botivate/sheetsync/pkg/jwt"
	"github.com/botivate/sheetsync/pkg/metrics"
	"github.com/botivate/sheetsync/pkg/spreadsheet"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	var sanitized, pretty bool

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Print the document the publish endpoint would serve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			extractor, err := bootstrap.NewExtractService(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			doc, err := extractor.Extract(cmd.Context())
			if err != nil {
				return fmt.Errorf("extraction failed: %w", err)
			}
			if sanitized {
				doc = sanitizeDocument(doc)
			}

			body, err := doc.MarshalJSON()
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}
			if pretty {
				var buf bytes.Buffer
				if err := json.Indent(&buf, body, "", "  "); err != nil {
					return fmt.Errorf("serialization failed: %w", err)
				}
				body = buf.Bytes()
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return nil
		},
	}

	cmd.Flags().BoolVar(&sanitized, "sanitized", false, "Key sheets by their destination table name")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

// sanitizeDocument renames every sheet to the table name it would load into
func sanitizeDocument(doc *models.SyncDocument) *models.SyncDocument {
	out := models.NewSyncDocument()
	for _, name := range doc.Sheets() {
		out.Add(spreadsheet.SanitizeIdentifier(name), doc.Records(name))
	}
	return out
}

func newNotifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Send one change notification to the downstream consumer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			metrics.EditsReceived.WithLabelValues("cli").Inc()

			result := services.NewNotifierService(cfg.Sync).NotifyChange(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), result.String())

			return result.Err
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <table> <create-sql>",
		Short: "Drop a destination table and recreate it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := bootstrap.NewDatabase(cmd.Context(), cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			if client == nil {
				return fmt.Errorf("DATABASE_URL is required for reset")
			}
			defer client.Close()

			message, err := bootstrap.NewTableResetService(client).Reset(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		},
	}
}

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Extract the document and archive it to object storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			extractor, err := bootstrap.NewExtractService(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			snapshots, err := bootstrap.NewSnapshotService(cfg.Snapshot, extractor)
			if err != nil {
				return err
			}
			if snapshots == nil {
				return fmt.Errorf("SNAPSHOT_BUCKET and credentials are required for snapshot")
			}

			location, err := snapshots.Archive(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), location)
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var subject, role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the admin API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Admin.JWTSecret == "" {
				return fmt.Errorf("ADMIN_JWT_SECRET is required to mint tokens")
			}

			tm := jwt.NewTokenManager(cfg.Admin.JWTSecret, cfg.Admin.JWTIssuer, cfg.Admin.TokenTTLHours)
			token, err := tm.GenerateToken(subject, role)
			if err != nil {
				return fmt.Errorf("failed to mint token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "operator", "Token subject")
	cmd.Flags().StringVar(&role, "role", jwt.RoleAdmin, "Token role")
	return cmd
}
