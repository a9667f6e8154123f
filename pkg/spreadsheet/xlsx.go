package spreadsheet

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXSource reads a workbook file from disk on every call
type XLSXSource struct {
	path string
}

// NewXLSXSource creates a source for the workbook at path
func NewXLSXSource(path string) *XLSXSource {
	return &XLSXSource{path: path}
}

// Name implements Source
func (s *XLSXSource) Name() string {
	return "xlsx"
}

// Path returns the workbook location
func (s *XLSXSource) Path() string {
	return s.path
}

// Sheets implements Source. Data cells are typed from the stored cell type and
// raw value, never from the displayed text, so a "#,##0" number stays numeric
// and a number typed as text stays a string. A sheet whose rows cannot be read
// is returned with no rows so the caller's short-sheet rule excludes it.
func (s *XLSXSource) Sheets(ctx context.Context) ([]Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", filepath.Base(s.path), err)
	}
	defer f.Close()

	r := &workbookReader{f: f, dateStyles: make(map[int]bool)}
	names := f.GetSheetList()
	sheets := make([]Sheet, 0, len(names))

	for _, name := range names {
		rows, err := r.rows(name)
		if err != nil {
			sheets = append(sheets, Sheet{Name: name})
			continue
		}

		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}

	return sheets, nil
}

// workbookReader converts one open workbook into typed grids
type workbookReader struct {
	f *excelize.File
	// style index -> whether its number format renders a date or time
	dateStyles map[int]bool
}

func (r *workbookReader) rows(sheet string) ([][]any, error) {
	formatted, err := r.f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	raw, err := r.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	grid := make([][]any, len(formatted))
	for i, row := range formatted {
		out := make([]any, len(row))
		for j, text := range row {
			if i == 0 {
				out[j] = text
				continue
			}

			var rawValue string
			if i < len(raw) && j < len(raw[i]) {
				rawValue = raw[i][j]
			}

			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			out[j] = r.cellValue(sheet, cell, text, rawValue)
		}
		grid[i] = out
	}

	return grid, nil
}

// cellValue picks the JSON value of one data cell from its stored type
func (r *workbookReader) cellValue(sheet, cell, text, rawValue string) any {
	cellType, err := r.f.GetCellType(sheet, cell)
	if err != nil {
		return text
	}

	switch cellType {
	case excelize.CellTypeBool:
		return rawValue == "1" || strings.EqualFold(rawValue, "true")
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if rawValue == "" {
			return text
		}
		if r.isDateCell(sheet, cell) {
			return text
		}
		if n, err := strconv.ParseInt(rawValue, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(rawValue, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return f
		}
		return text
	default:
		// shared and inline strings, formula strings, errors and ISO dates
		return text
	}
}

func (r *workbookReader) isDateCell(sheet, cell string) bool {
	idx, err := r.f.GetCellStyle(sheet, cell)
	if err != nil || idx == 0 {
		return false
	}
	if isDate, ok := r.dateStyles[idx]; ok {
		return isDate
	}

	isDate := false
	if style, err := r.f.GetStyle(idx); err == nil && style != nil {
		isDate = isDateNumFmt(style.NumFmt, style.CustomNumFmt)
	}
	r.dateStyles[idx] = isDate
	return isDate
}

// isDateNumFmt reports whether a built-in format ID or custom format code
// displays a serial number as a date or time.
func isDateNumFmt(id int, custom *string) bool {
	if custom != nil {
		return hasDateTokens(*custom)
	}

	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

// hasDateTokens looks for y, m, d, h or s outside quoted literals, escapes and
// bracketed sections such as [Red] or [$-409].
func hasDateTokens(code string) bool {
	inQuote, inBracket := false, false

	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case inQuote:
			if ch == '"' {
				inQuote = false
			}
		case inBracket:
			if ch == ']' {
				inBracket = false
			}
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		case ch == '\\' || ch == '_' || ch == '*':
			i++
		default:
			switch ch | 0x20 {
			case 'y', 'm', 'd', 'h', 's':
				return true
			}
		}
	}

	return false
}
