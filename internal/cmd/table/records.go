package table

import (
	"sort"

	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/provenance"
)

// recordColumns are shown for every record; wide output adds the rest.
var recordColumns = []catalogs.Field{
	catalogs.FieldSupplierCode,
	catalogs.FieldName,
	catalogs.FieldCostPrice,
	catalogs.FieldRetailPrice,
	catalogs.FieldStockTotal,
}

// RecordsToTableData renders canonical records one per row. Wide output
// shows every field present in any record.
func RecordsToTableData(records []catalogs.Record, wide bool) Data {
	columns := recordColumns
	if wide {
		columns = presentFields(records)
	}

	headers := make([]string, len(columns))
	for i, f := range columns {
		headers[i] = f.String()
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, f := range columns {
			row[i] = dash(rec.String(f))
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows}
}

// RecordToTableData renders one record as field-value pairs.
func RecordToTableData(rec catalogs.Record) Data {
	fields := rec.Fields()
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, []string{f.String(), dash(rec.String(f))})
	}
	return Data{Headers: []string{"Field", "Value"}, Rows: rows}
}

// ProvenanceToTableData shows which supplier contributed each field of one
// identity.
func ProvenanceToTableData(fields provenance.Fields) Data {
	names := make([]catalogs.Field, 0, len(fields))
	for f := range fields {
		names = append(names, f)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	rows := make([][]string, 0, len(names))
	for _, f := range names {
		p := fields[f]
		rows = append(rows, []string{f.String(), dash(p.Value), p.Supplier, dash(p.Reason)})
	}
	return Data{
		Headers: []string{"Field", "Value", "Supplier", "Reason"},
		Rows:    rows,
	}
}

// presentFields returns the canonical fields set in any record, in catalog
// order.
func presentFields(records []catalogs.Record) []catalogs.Field {
	seen := make(map[catalogs.Field]bool)
	for _, rec := range records {
		for _, f := range rec.Fields() {
			seen[f] = true
		}
	}
	var out []catalogs.Field
	for _, f := range catalogs.Fields() {
		if seen[f] {
			out = append(out, f)
		}
	}
	return out
}
