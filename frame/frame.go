// Package frame holds the small column-oriented table the EVDS service's
// CSV responses are decoded into before they are reshaped into typed
// catalog rows or observation tables.
package frame

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMissingColumn reports a header the response was expected to carry but
// did not. Callers fail fast on it instead of reshaping a table they do not
// understand.
var ErrMissingColumn = errors.New("frame: missing column")

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Frame is an ordered set of named string columns of equal length.
type Frame struct {
	headers []string
	columns map[string][]string
}

// New builds an empty frame with the given headers.
func New(headers ...string) *Frame {
	f := &Frame{columns: make(map[string][]string, len(headers))}
	for _, h := range headers {
		f.headers = append(f.headers, h)
		f.columns[h] = nil
	}
	return f
}

// ReadCSV decodes a CSV document whose first row is the header. A UTF-8 BOM
// is stripped and lazy quoting tolerated; the service is not strict about
// either.
func ReadCSV(data []byte) (*Frame, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	r := csv.NewReader(bytes.NewReader(data))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return New(), nil
		}
		return nil, fmt.Errorf("frame: read header: %w", err)
	}

	f := &Frame{columns: make(map[string][]string, len(header))}
	for _, h := range header {
		h = strings.TrimSpace(h)
		f.headers = append(f.headers, h)
		f.columns[h] = []string{}
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("frame: read row: %w", err)
		}
		for i, h := range f.headers {
			cell := ""
			if i < len(record) {
				cell = strings.TrimSpace(record[i])
			}
			f.columns[h] = append(f.columns[h], cell)
		}
	}
	return f, nil
}

// Headers returns the column names in order.
func (f *Frame) Headers() []string {
	out := make([]string, len(f.headers))
	copy(out, f.headers)
	return out
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if len(f.headers) == 0 {
		return 0
	}
	return len(f.columns[f.headers[0]])
}

// Has reports whether the frame carries the named column.
func (f *Frame) Has(name string) bool {
	_, ok := f.columns[name]
	return ok
}

// Col returns the named column, or ErrMissingColumn.
func (f *Frame) Col(name string) ([]string, error) {
	col, ok := f.columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	return col, nil
}

// Cell returns a single value; out-of-range rows and absent columns yield "".
func (f *Frame) Cell(name string, row int) string {
	col, ok := f.columns[name]
	if !ok || row < 0 || row >= len(col) {
		return ""
	}
	return col[row]
}

// Rename changes a column's header in place.
func (f *Frame) Rename(from, to string) error {
	col, ok := f.columns[from]
	if !ok {
		return fmt.Errorf("%w: %q", ErrMissingColumn, from)
	}
	if from == to {
		return nil
	}
	delete(f.columns, from)
	f.columns[to] = col
	for i, h := range f.headers {
		if h == from {
			f.headers[i] = to
		}
	}
	return nil
}

// Drop removes a column if present; absent columns are a no-op.
func (f *Frame) Drop(name string) {
	if _, ok := f.columns[name]; !ok {
		return
	}
	delete(f.columns, name)
	kept := f.headers[:0]
	for _, h := range f.headers {
		if h != name {
			kept = append(kept, h)
		}
	}
	f.headers = kept
}

// Project reduces the frame to the named columns, in the given order.
// Every requested column must exist.
func (f *Frame) Project(names ...string) error {
	for _, name := range names {
		if _, ok := f.columns[name]; !ok {
			return fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}
	columns := make(map[string][]string, len(names))
	for _, name := range names {
		columns[name] = f.columns[name]
	}
	f.headers = append([]string(nil), names...)
	f.columns = columns
	return nil
}

// Transform applies fn to every cell of the named column in place.
func (f *Frame) Transform(name string, fn func(string) string) error {
	col, ok := f.columns[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	for i := range col {
		col[i] = fn(col[i])
	}
	return nil
}

// AppendRow adds a row given in header order; short rows are padded with "".
func (f *Frame) AppendRow(cells ...string) {
	for i, h := range f.headers {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		f.columns[h] = append(f.columns[h], cell)
	}
}

// Concat appends other's rows, matching columns by header. Columns missing
// from other are padded with "" so the frame stays rectangular.
func (f *Frame) Concat(other *Frame) {
	n := other.Len()
	for _, h := range f.headers {
		col, ok := other.columns[h]
		for i := 0; i < n; i++ {
			cell := ""
			if ok && i < len(col) {
				cell = col[i]
			}
			f.columns[h] = append(f.columns[h], cell)
		}
	}
}
