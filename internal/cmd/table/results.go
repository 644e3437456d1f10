package table

import (
	"fmt"
	"strconv"
	"time"

	"github.com/agentstation/supplymap/pkg/ingest"
	pkgsync "github.com/agentstation/supplymap/pkg/sync"
)

// SyncResultToTableData lists what each supplier contributed to a run,
// highest priority first.
func SyncResultToTableData(result *pkgsync.Result) Data {
	rows := make([][]string, 0, len(result.Suppliers))
	for _, key := range result.SupplierKeys() {
		sr := result.Suppliers[key]
		status := "ok"
		if sr.Unavailable {
			status = "unavailable"
		}
		rows = append(rows, []string{
			sr.Supplier,
			strconv.Itoa(sr.Priority),
			strconv.Itoa(sr.Loaded),
			strconv.Itoa(sr.Grouped),
			strconv.Itoa(sr.NoIdentity),
			strconv.Itoa(sr.Duplicates),
			status,
		})
	}

	return Data{
		Headers: []string{"Supplier", "Priority", "Loaded", "Grouped", "No Identity", "Duplicates", "Status"},
		Rows:    rows,
		ColumnAlignment: []Align{
			AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight, AlignLeft,
		},
	}
}

// SyncTotalsToTableData renders the run totals as a key-value table.
func SyncTotalsToTableData(result *pkgsync.Result) Data {
	rows := [][]string{
		{"Run", result.RunID},
		{"State", result.State.String()},
		{"Dry Run", yesNo(result.DryRun)},
		{"Loaded", strconv.Itoa(result.Loaded)},
		{"Identities", strconv.Itoa(result.Identities)},
		{"Synced", strconv.Itoa(result.Synced)},
		{"Added", strconv.Itoa(result.Added)},
		{"Updated", strconv.Itoa(result.Updated)},
		{"Skipped", strconv.Itoa(result.Skipped)},
		{"Without Identity", strconv.Itoa(result.NoIdentity)},
		{"Duplicates", strconv.Itoa(result.Duplicates)},
		{"Duration", result.Duration.Round(time.Millisecond).String()},
	}
	return Data{Headers: []string{"Property", "Value"}, Rows: rows}
}

// ImportResultToTableData renders an import as a key-value table.
func ImportResultToTableData(result *ingest.Result) Data {
	rows := [][]string{
		{"Supplier", result.Supplier},
		{"Table", result.Table},
		{"Feed", dash(result.Name)},
		{"Imported", strconv.Itoa(result.Imported)},
		{"Updated", strconv.Itoa(result.Updated)},
		{"Skipped", strconv.Itoa(result.Skipped)},
		{"Total", strconv.Itoa(result.Total())},
		{"Truncated", yesNo(result.Truncated)},
		{"Duration", result.Duration.Round(time.Millisecond).String()},
	}
	return Data{Headers: []string{"Property", "Value"}, Rows: rows}
}

// ErrorsToTableData lists soft errors, numbered from 1.
func ErrorsToTableData(errs []error) Data {
	rows := make([][]string, 0, len(errs))
	for i, err := range errs {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), err.Error()})
	}
	return Data{
		Headers:         []string{"#", "Error"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft},
	}
}
