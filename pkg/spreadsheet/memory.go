package spreadsheet

import (
	"context"
	"sync"
)

// MemorySource is an in-process workbook for tests and embedding callers; it
// is not selectable through SOURCE_KIND. SetSheet and RemoveSheet stand in for
// user edits.
type MemorySource struct {
	mu     sync.RWMutex
	sheets []Sheet
}

// NewMemorySource returns a source holding a copy of sheets
func NewMemorySource(sheets ...Sheet) *MemorySource {
	m := &MemorySource{}
	for _, s := range sheets {
		m.SetSheet(s.Name, s.Rows)
	}
	return m
}

// Name implements Source
func (m *MemorySource) Name() string {
	return "memory"
}

// Sheets implements Source
func (m *MemorySource) Sheets(ctx context.Context) ([]Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Sheet, len(m.sheets))
	for i, s := range m.sheets {
		out[i] = Sheet{Name: s.Name, Rows: copyRows(s.Rows)}
	}
	return out, nil
}

// SetSheet replaces the rows of an existing sheet or appends a new one
func (m *MemorySource) SetSheet(name string, rows [][]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.sheets {
		if m.sheets[i].Name == name {
			m.sheets[i].Rows = copyRows(rows)
			return
		}
	}
	m.sheets = append(m.sheets, Sheet{Name: name, Rows: copyRows(rows)})
}

// RemoveSheet deletes a sheet by name; unknown names are ignored
func (m *MemorySource) RemoveSheet(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.sheets {
		if m.sheets[i].Name == name {
			m.sheets = append(m.sheets[:i], m.sheets[i+1:]...)
			return
		}
	}
}

func copyRows(rows [][]any) [][]any {
	if rows == nil {
		return nil
	}
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = append([]any(nil), r...)
	}
	return out
}
