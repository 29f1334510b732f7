package agg

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/flowcast/schema"
)

// Frame is a column-addressed table of string cells, read from a ticket CSV.
// Operations never modify a frame in place; they return a new one.
type Frame struct {
	columns []string
	index   map[string]int
	records [][]string
}

// NewFrame builds a frame from a header and its records.
func NewFrame(columns []string, records [][]string) *Frame {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}
	return &Frame{columns: slices.Clone(columns), index: index, records: records}
}

// ReadFrame parses CSV with a header row.
func ReadFrame(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("ticket table is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	return NewFrame(header, records), nil
}

// ReadFrameFile reads a ticket CSV file.
func ReadFrameFile(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadFrame(f)
}

// FromTickets builds a frame with the standard ticket columns.
func FromTickets(tickets []schema.Ticket) *Frame {
	records := make([][]string, len(tickets))
	for i, t := range tickets {
		records[i] = []string{
			t.PI, t.Name, t.Status, t.Project, t.Team,
			t.StatusDate.Format(schema.DateFormat), t.CreatedDate.Format(schema.DateFormat),
			t.Feature, t.Type, t.Priority, t.Scope,
			strconv.Itoa(t.TeamMembers), strconv.Itoa(t.StoryPoints),
		}
	}
	return NewFrame(schema.TicketColumns, records)
}

// Len returns the number of records.
func (f *Frame) Len() int { return len(f.records) }

// Has reports whether every named column exists.
func (f *Frame) Has(cols ...string) bool {
	for _, c := range cols {
		if _, ok := f.index[c]; !ok {
			return false
		}
	}
	return true
}

// Missing returns the named columns the frame lacks.
func (f *Frame) Missing(cols ...string) []string {
	var missing []string
	for _, c := range cols {
		if _, ok := f.index[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// Get returns a cell, or "" for an unknown column or short record.
func (f *Frame) Get(row int, col string) string {
	i, ok := f.index[col]
	if !ok || i >= len(f.records[row]) {
		return ""
	}
	return f.records[row][i]
}

// Filter keeps the records for which keep returns true.
func (f *Frame) Filter(keep func(row int) bool) *Frame {
	var records [][]string
	for i, r := range f.records {
		if keep(i) {
			records = append(records, r)
		}
	}
	return NewFrame(f.columns, records)
}

// SortBy orders records by a column, keeping the original order of equal cells.
func (f *Frame) SortBy(col string) *Frame {
	i := f.index[col]
	records := slices.Clone(f.records)
	slices.SortStableFunc(records, func(a, b []string) int {
		return strings.Compare(cell(a, i), cell(b, i))
	})
	return NewFrame(f.columns, records)
}

// WithColumn returns a frame with the column set to values, appending it if new.
func (f *Frame) WithColumn(name string, values []string) *Frame {
	columns := slices.Clone(f.columns)
	i, exists := f.index[name]
	if !exists {
		columns = append(columns, name)
		i = len(columns) - 1
	}
	records := make([][]string, len(f.records))
	for r, rec := range f.records {
		row := make([]string, len(columns))
		copy(row, rec)
		row[i] = values[r]
		records[r] = row
	}
	return NewFrame(columns, records)
}

// Select returns a frame holding only the named columns, in that order.
func (f *Frame) Select(cols ...string) *Frame {
	records := make([][]string, len(f.records))
	for r := range f.records {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = f.Get(r, c)
		}
		records[r] = row
	}
	return NewFrame(cols, records)
}

// WriteCSV writes the header and records as CSV.
func (f *Frame) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(f.columns); err != nil {
		return err
	}
	if err := writer.WriteAll(f.records); err != nil {
		return err
	}
	return writer.Error()
}

// cell returns a record cell or "" when the record is short.
func cell(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

// ParseDate reads the calendar date of a cell. Date-time cells keep only their date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{schema.DateFormat, time.DateTime, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return schema.TruncateDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
