// Package ingest defines the inputs, options and results of the per-supplier
// import pipeline.
//
// A Source turns an already tokenized feed into raw records. Two shapes are
// supported: a header plus rows of cells (CSV-like) and a list of loosely
// typed documents (JSON-like). Both yield the same Row type, so the pipeline
// never sees the difference.
package ingest

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/errors"
)

// Row is one input row. Index counts data rows from 1. A row whose Err is
// set is malformed and carries no Raw record.
type Row struct {
	Index int
	Raw   catalogs.RawRecord
	Err   error
}

// Source yields the rows of one feed. A non-nil error means the feed as a
// whole is unusable.
type Source interface {
	Rows() ([]Row, error)
}

// Table is a header row followed by data rows.
type Table struct {
	Header []string
	Data   [][]string
}

// NewTable creates a Table source.
func NewTable(header []string, rows [][]string) *Table {
	return &Table{Header: header, Data: rows}
}

// Rows implements Source. A row with a different number of cells than the
// header is malformed. When the header repeats a name the last cell wins.
func (t *Table) Rows() ([]Row, error) {
	if len(t.Header) == 0 {
		return nil, &errors.ParseError{Format: "table", Message: "empty header"}
	}
	out := make([]Row, 0, len(t.Data))
	for i, cells := range t.Data {
		row := Row{Index: i + 1}
		if len(cells) != len(t.Header) {
			row.Err = errors.NewMalformedRowError(row.Index, "expected %d columns, got %d", len(t.Header), len(cells))
			out = append(out, row)
			continue
		}
		raw := make(catalogs.RawRecord, len(cells))
		for j, name := range t.Header {
			raw[name] = cells[j]
		}
		row.Raw = raw
		out = append(out, row)
	}
	return out, nil
}

// Documents is a list of decoded JSON values. Every entry must be an object.
type Documents []any

// Rows implements Source. Scalars are rendered as text, arrays of scalars
// comma-joined and nested structures as compact JSON.
func (d Documents) Rows() ([]Row, error) {
	out := make([]Row, 0, len(d))
	for i, doc := range d {
		row := Row{Index: i + 1}
		obj, ok := doc.(map[string]any)
		if !ok {
			row.Err = errors.NewMalformedRowError(row.Index, "expected an object, got %T", doc)
			out = append(out, row)
			continue
		}
		raw := make(catalogs.RawRecord, len(obj))
		for k, v := range obj {
			raw[k] = render(v)
		}
		row.Raw = raw
		out = append(out, row)
	}
	return out, nil
}

// Records is a Source over raw records that are already keyed by field name.
type Records []catalogs.RawRecord

// Rows implements Source.
func (r Records) Rows() ([]Row, error) {
	out := make([]Row, len(r))
	for i, raw := range r {
		out[i] = Row{Index: i + 1, Raw: raw.Clone()}
	}
	return out, nil
}

func render(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			switch e.(type) {
			case map[string]any, []any:
				return compact(t)
			}
			parts = append(parts, render(e))
		}
		return strings.Join(parts, ",")
	default:
		return compact(t)
	}
}

// compact renders v as JSON; encoding/json sorts object keys.
func compact(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
