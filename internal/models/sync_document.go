package models

import (
	"bytes"

	"github.com/goccy/go-json"
)

// AllowList is the ordered set of sheet names that may be published
type AllowList struct {
	names []string
	index map[string]struct{}
}

// NewAllowList builds an allow-list, dropping blanks and duplicates
func NewAllowList(names ...string) AllowList {
	a := AllowList{index: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := a.index[n]; ok {
			continue
		}
		a.index[n] = struct{}{}
		a.names = append(a.names, n)
	}
	return a
}

// Contains reports whether a sheet name is allowed
func (a AllowList) Contains(name string) bool {
	_, ok := a.index[name]
	return ok
}

// Names returns the configured order
func (a AllowList) Names() []string {
	return append([]string(nil), a.names...)
}

// Len returns the number of allowed sheets
func (a AllowList) Len() int {
	return len(a.names)
}

// Record is one data row keyed by header. Keys keep header order; setting an
// existing key replaces its value in place.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord allocates a record for the given number of columns
func NewRecord(size int) *Record {
	return &Record{
		keys:   make([]string, 0, size),
		values: make(map[string]any, size),
	}
}

// Set stores a value, returning true if the key was already present
func (r *Record) Set(key string, value any) bool {
	_, exists := r.values[key]
	if !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
	return exists
}

// Get returns the value for key
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the field names in header order
func (r *Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of fields
func (r *Record) Len() int {
	return len(r.keys)
}

// MarshalJSON encodes the record as an object in header order
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Record) writeJSON(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKeyValue(buf, k, r.values[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

type sheetRecords struct {
	name    string
	records []*Record
}

// SyncDocument maps each published sheet to its records, in workbook order
type SyncDocument struct {
	sheets []sheetRecords
}

// NewSyncDocument returns an empty document
func NewSyncDocument() *SyncDocument {
	return &SyncDocument{}
}

// Add appends a sheet. Callers add each sheet once, in workbook order.
func (d *SyncDocument) Add(sheet string, records []*Record) {
	d.sheets = append(d.sheets, sheetRecords{name: sheet, records: records})
}

// Len returns the number of sheets in the document
func (d *SyncDocument) Len() int {
	return len(d.sheets)
}

// Sheets returns the sheet names in document order
func (d *SyncDocument) Sheets() []string {
	names := make([]string, len(d.sheets))
	for i, s := range d.sheets {
		names[i] = s.name
	}
	return names
}

// Records returns the records of a sheet, or nil if it is not in the document
func (d *SyncDocument) Records(sheet string) []*Record {
	for _, s := range d.sheets {
		if s.name == sheet {
			return s.records
		}
	}
	return nil
}

// TotalRecords counts records across all sheets
func (d *SyncDocument) TotalRecords() int {
	total := 0
	for _, s := range d.sheets {
		total += len(s.records)
	}
	return total
}

// MarshalJSON encodes the document as {"Sheet":[{...},...],...}
func (d *SyncDocument) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range d.sheets {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, s.name); err != nil {
			return nil, err
		}
		buf.WriteByte('[')
		for j, rec := range s.records {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := rec.writeJSON(&buf); err != nil {
				return nil, err
			}
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	return nil
}

func writeKeyValue(buf *bytes.Buffer, key string, value any) error {
	if err := writeKey(buf, key); err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(v)
	return nil
}
