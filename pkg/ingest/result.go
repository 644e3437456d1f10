package ingest

import (
	"fmt"
	"time"
)

// MessageSucceeded is the message of a committed import.
const MessageSucceeded = "Import completed successfully"

// Result holds the statistics of a committed import. It is only returned
// when the transaction committed.
type Result struct {
	Supplier string
	Table    string
	Name     string
	Message  string

	Imported  int // rows inserted
	Updated   int // rows that replaced an existing staging row
	Skipped   int // malformed rows and rows without a natural key
	Truncated bool

	// Errors explains every skipped row.
	Errors []error

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// NewResult creates a result for supplier.
func NewResult(supplier, table, name string) *Result {
	return &Result{
		Supplier:  supplier,
		Table:     table,
		Name:      name,
		StartTime: time.Now(),
	}
}

// Skip records a skipped row.
func (r *Result) Skip(err error) {
	r.Skipped++
	r.Errors = append(r.Errors, err)
}

// Finalize stamps the end time and message.
func (r *Result) Finalize() {
	r.Message = MessageSucceeded
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// Total returns the number of rows processed.
func (r *Result) Total() int {
	return r.Imported + r.Updated + r.Skipped
}

// Summary returns a human-readable summary of the import.
func (r *Result) Summary() string {
	return fmt.Sprintf("%s: %d imported, %d updated, %d skipped of %d rows",
		r.Supplier, r.Imported, r.Updated, r.Skipped, r.Total())
}
