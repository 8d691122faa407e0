// Package csv reads and writes tabular data as CSV, the framing format the
// tabstore entrypoints most often carry. It is a thin layer over
// encoding/csv: a Table is a header row plus string cells, with optional
// index-column round-tripping and date-column parsing on read.
package csv

import (
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

// ErrRaggedTable is returned when a Table's rows do not all match the header
// width.
var ErrRaggedTable = errors.New("csv: rows do not match header width")

// dateLayouts are tried in order when parsing date columns. Parsed values
// are reformatted with canonicalLayout so equal instants compare equal as
// strings regardless of input layout.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

const canonicalLayout = "2006-01-02 15:04:05"

// Table is an in-memory tabular payload: one header row and zero or more
// data rows of the same width.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Equal reports whether two tables have identical headers and cells.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if len(t.Columns) != len(other.Columns) || len(t.Rows) != len(other.Rows) {
		return false
	}
	for i, c := range t.Columns {
		if other.Columns[i] != c {
			return false
		}
	}
	for i, row := range t.Rows {
		if len(row) != len(other.Rows[i]) {
			return false
		}
		for j, cell := range row {
			if other.Rows[i][j] != cell {
				return false
			}
		}
	}
	return true
}

// validate checks that every row matches the header width.
func (t *Table) validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("%w: row %d has %d cells, header has %d",
				ErrRaggedTable, i, len(row), len(t.Columns))
		}
	}
	return nil
}

// WriteOptions controls Write.
type WriteOptions struct {
	// Index prepends a positional index column: an empty header cell and
	// 0-based row numbers.
	Index bool
}

// ReadOptions controls Read.
type ReadOptions struct {
	// IndexCol drops the column at this position after reading, restoring a
	// table written with Index set. Negative means no index column.
	IndexCol int

	// ParseDates names columns whose cells are parsed as dates and
	// reformatted canonically. Unparseable cells are an error.
	ParseDates []string
}

// DefaultReadOptions returns ReadOptions with no index column.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{IndexCol: -1}
}

// Write encodes a table as CSV.
func Write(w io.Writer, t *Table, opts WriteOptions) error {
	if err := t.validate(); err != nil {
		return err
	}

	cw := stdcsv.NewWriter(w)

	header := t.Columns
	if opts.Index {
		header = append([]string{""}, t.Columns...)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csv: writing header: %w", err)
	}

	for i, row := range t.Rows {
		out := row
		if opts.Index {
			out = append([]string{strconv.Itoa(i)}, row...)
		}
		if err := cw.Write(out); err != nil {
			return fmt.Errorf("csv: writing row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read decodes a CSV table.
func Read(r io.Reader, opts ReadOptions) (*Table, error) {
	cr := stdcsv.NewReader(r)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: reading: %w", err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	table := &Table{
		Columns: records[0],
		Rows:    records[1:],
	}

	if opts.IndexCol >= 0 {
		if table, err = dropColumn(table, opts.IndexCol); err != nil {
			return nil, err
		}
	}

	for _, name := range opts.ParseDates {
		if err := parseDateColumn(table, name); err != nil {
			return nil, err
		}
	}

	return table, nil
}

func dropColumn(t *Table, col int) (*Table, error) {
	if col >= len(t.Columns) {
		return nil, fmt.Errorf("csv: index column %d out of range (%d columns)", col, len(t.Columns))
	}

	out := &Table{
		Columns: append(append([]string{}, t.Columns[:col]...), t.Columns[col+1:]...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		if col >= len(row) {
			return nil, fmt.Errorf("csv: index column %d out of range in row %d", col, i)
		}
		out.Rows[i] = append(append([]string{}, row[:col]...), row[col+1:]...)
	}
	return out, nil
}

func parseDateColumn(t *Table, name string) error {
	col := -1
	for i, c := range t.Columns {
		if c == name {
			col = i
			break
		}
	}
	if col < 0 {
		return fmt.Errorf("csv: date column %q not found", name)
	}

	for i, row := range t.Rows {
		parsed, err := parseDate(row[col])
		if err != nil {
			return fmt.Errorf("csv: column %q row %d: %w", name, i, err)
		}
		row[col] = parsed.Format(canonicalLayout)
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
