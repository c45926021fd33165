package sizing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Table is a garment size chart: one row per size label, one column per
// measured dimension.
type Table struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
	// ImageURL points to a size chart image when the shop has no structured table.
	ImageURL string `json:"imageUrl,omitempty"`
}

// Row holds the measurements of a single size.
type Row struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// MalformedTableError reports a row whose length differs from the header count.
type MalformedTableError struct {
	Row  string
	Want int
	Got  int
}

func (e *MalformedTableError) Error() string {
	return fmt.Sprintf("malformed size table: row %q has %d values, want %d", e.Row, e.Got, e.Want)
}

// Validate reports the first row that does not line up with the headers.
// Callers treat the result as a data-quality signal; every read path tolerates
// short rows by treating the missing trailing cells as empty.
func (t *Table) Validate() error {
	if t == nil {
		return nil
	}
	for _, row := range t.Rows {
		if len(row.Values) != len(t.Headers) {
			return &MalformedTableError{Row: row.Name, Want: len(t.Headers), Got: len(row.Values)}
		}
	}
	return nil
}

// IsEmpty reports whether the table carries no measurable rows.
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Headers) == 0 || len(t.Rows) == 0
}

// Row returns the first row with the given size label.
func (t *Table) Row(name string) (Row, bool) {
	if t == nil {
		return Row{}, false
	}
	for _, row := range t.Rows {
		if row.Name == name {
			return row, true
		}
	}
	return Row{}, false
}

// RowNames returns size labels in table order.
func (t *Table) RowNames() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		names = append(names, row.Name)
	}
	return names
}

// Value returns the numeric value of the cell at idx.
func (r Row) Value(idx int) (float64, bool) {
	if idx < 0 || idx >= len(r.Values) {
		return 0, false
	}
	return ParseMeasurement(r.Values[idx])
}

// ParseMeasurement reads the leading decimal number of a cell, so "55", " 55.5 "
// and "55cm" parse while "-", "없음" and "" do not.
func ParseMeasurement(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	seenDigit, seenDot := false, false
scan:
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
		case r == '.' && !seenDot:
			seenDot = true
		case (r == '-' || r == '+') && i == 0:
		default:
			break scan
		}
		end = i + 1
	}
	if !seenDigit {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// UnmarshalJSON accepts both numeric and string cells, as stored wardrobes
// contain either.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name   json.RawMessage   `json:"name"`
		Values []json.RawMessage `json:"values"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Name = cellString(raw.Name)
	r.Values = make([]string, 0, len(raw.Values))
	for _, v := range raw.Values {
		r.Values = append(r.Values, cellString(v))
	}
	return nil
}

func cellString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	// null and anything else is treated as an empty cell
	return ""
}
