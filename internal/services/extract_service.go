package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/botivate/sheetsync/internal/models"
	apperrors "github.com/botivate/sheetsync/pkg/errors"
	"github.com/botivate/sheetsync/pkg/logger"
	"github.com/botivate/sheetsync/pkg/metrics"
	"github.com/botivate/sheetsync/pkg/spreadsheet"
	"github.com/botivate/sheetsync/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ExtractService turns the live workbook into a SyncDocument
type ExtractService struct {
	source    spreadsheet.Source
	allowList models.AllowList
}

// NewExtractService creates an extractor restricted to allowList
func NewExtractService(source spreadsheet.Source, allowList models.AllowList) *ExtractService {
	return &ExtractService{
		source:    source,
		allowList: allowList,
	}
}

// Extract reads every sheet from the source and builds a fresh document.
// Only a failure to read the workbook as a whole is returned as an error.
func (s *ExtractService) Extract(ctx context.Context) (*models.SyncDocument, error) {
	ctx, span := tracing.StartSpan(ctx, "sheets.extract",
		attribute.String("source", s.source.Name()))
	defer span.End()

	start := time.Now()
	sheets, err := s.source.Sheets(ctx)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.SourceReadDuration.WithLabelValues(s.source.Name(), "error").Observe(duration)
		metrics.SourceReadTotal.WithLabelValues(s.source.Name(), "error").Inc()
		logger.LogAPICall(ctx, s.source.Name(), "readSheets", "error", duration, zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "source unavailable")
		return nil, apperrors.SourceUnavailableError(s.source.Name(), err)
	}

	metrics.SourceReadDuration.WithLabelValues(s.source.Name(), "success").Observe(duration)
	metrics.SourceReadTotal.WithLabelValues(s.source.Name(), "success").Inc()

	doc := Build(sheets, s.allowList)

	metrics.RecordsPublished.Observe(float64(doc.TotalRecords()))
	span.SetAttributes(
		attribute.Int("sheets", doc.Len()),
		attribute.Int("records", doc.TotalRecords()),
	)
	logger.LogAPICall(ctx, s.source.Name(), "readSheets", "success", duration,
		zap.Int("sheets_seen", len(sheets)),
		zap.Int("sheets_published", doc.Len()),
		zap.Int("records", doc.TotalRecords()),
	)

	return doc, nil
}

// Build assembles a SyncDocument from raw sheets. Sheets not in allowList and
// sheets with fewer than two rows are left out; everything else keeps the
// workbook's sheet order and row order.
func Build(sheets []spreadsheet.Sheet, allowList models.AllowList) *models.SyncDocument {
	doc := models.NewSyncDocument()

	for _, sheet := range sheets {
		if !allowList.Contains(sheet.Name) {
			metrics.SheetsExtracted.WithLabelValues("not_allowed").Inc()
			continue
		}
		if len(sheet.Rows) < 2 {
			metrics.SheetsExtracted.WithLabelValues("too_short").Inc()
			logger.Debug("Skipping sheet without data rows",
				zap.String("sheet", sheet.Name),
				zap.Int("rows", len(sheet.Rows)))
			continue
		}

		header := headerNames(sheet.Rows[0])
		if dups := duplicateNames(header); len(dups) > 0 {
			logger.Warn("Sheet has duplicate header names; later columns overwrite earlier ones",
				zap.String("sheet", sheet.Name),
				zap.Strings("headers", dups))
		}

		records := make([]*models.Record, 0, len(sheet.Rows)-1)
		for _, row := range sheet.Rows[1:] {
			records = append(records, buildRecord(header, row))
		}

		doc.Add(sheet.Name, records)
		metrics.SheetsExtracted.WithLabelValues("published").Inc()
	}

	return doc
}

func buildRecord(header []string, row []any) *models.Record {
	rec := models.NewRecord(len(header))
	for i, name := range header {
		var value any = ""
		if i < len(row) && row[i] != nil {
			value = row[i]
		}
		rec.Set(name, value)
	}
	return rec
}

func headerNames(row []any) []string {
	names := make([]string, len(row))
	for i, v := range row {
		names[i] = headerName(v)
	}
	return names
}

func headerName(v any) string {
	switch h := v.(type) {
	case nil:
		return ""
	case string:
		return h
	case int64:
		return strconv.FormatInt(h, 10)
	case float64:
		return strconv.FormatFloat(h, 'f', -1, 64)
	case bool:
		if h {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(h)
	}
}

func duplicateNames(header []string) []string {
	seen := make(map[string]int, len(header))
	var dups []string
	for _, h := range header {
		seen[h]++
		if seen[h] == 2 {
			dups = append(dups, h)
		}
	}
	return dups
}
