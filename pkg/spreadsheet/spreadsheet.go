// Package spreadsheet reads named 2-D grids of cell values from a workbook.
//
// A Source returns every sheet of its workbook in native order. Sheet rows are
// raw grids: the first row is whatever the author typed as a header, rows may
// be ragged, and nothing is filtered here.
package spreadsheet

import (
	"context"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Sheet is a named grid of normalized cell values
type Sheet struct {
	Name string
	Rows [][]any
}

// Source provides the current state of a workbook
type Source interface {
	// Name identifies the source in logs and metrics
	Name() string
	// Sheets returns every sheet in native workbook order
	Sheets(ctx context.Context) ([]Sheet, error)
}

// ParseCell converts the formatted text of a cell into a JSON-friendly value:
// int64 for integers, float64 for finite decimals, bool for TRUE/FALSE and the
// original string otherwise. Values with leading zeros ("007") stay strings.
// Only sources that expose nothing but display text use it; workbook files
// carry real cell types and are read from those instead.
func ParseCell(s string) any {
	if s == "" {
		return ""
	}

	switch s {
	case "TRUE", "true":
		return true
	case "FALSE", "false":
		return false
	}

	if hasLeadingZero(s) {
		return s
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	if looksNumeric(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return f
		}
	}

	return s
}

// looksNumeric rejects spellings ParseFloat accepts but a sheet never means as a number
// ("Inf", "nan", "0x1p-2", "1_000").
func looksNumeric(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == '-', r == '+', r == 'e', r == 'E':
		default:
			return false
		}
	}
	return true
}

func hasLeadingZero(s string) bool {
	digits := strings.TrimLeft(s, "+-")
	return len(digits) > 1 && digits[0] == '0' && digits[1] >= '0' && digits[1] <= '9'
}

// ParseRow applies ParseCell to every cell of a formatted row
func ParseRow(cells []string) []any {
	row := make([]any, len(cells))
	for i, c := range cells {
		row[i] = ParseCell(c)
	}
	return row
}

// parseGrid converts formatted rows into a Sheet grid. The header row stays
// verbatim text so "TRUE" or "007" headers keep their spelling.
func parseGrid(rows [][]string) [][]any {
	grid := make([][]any, len(rows))
	for i, r := range rows {
		if i == 0 {
			header := make([]any, len(r))
			for j, c := range r {
				header[j] = c
			}
			grid[i] = header
			continue
		}
		grid[i] = ParseRow(r)
	}
	return grid
}

// SanitizeIdentifier maps a sheet or header name onto a destination-safe
// identifier: every rune that is not a letter or digit becomes '_'.
func SanitizeIdentifier(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
