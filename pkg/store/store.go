// Package store defines the persistence contract used by the import
// pipeline and the sync orchestrator.
//
// Two kinds of tables exist. Staging tables hold one supplier's raw rows
// keyed by the row's natural identity. The canonical table holds merged
// records keyed by supplier_code. All writes happen inside InTx: either
// every write of a transaction becomes visible or none does.
package store

import (
	"context"

	"github.com/agentstation/supplymap/pkg/catalogs"
)

// Outcome tells whether an upsert created or replaced a row.
type Outcome int

// Upsert outcomes.
const (
	Inserted Outcome = iota
	Updated
)

// String returns the outcome name.
func (o Outcome) String() string {
	if o == Updated {
		return "updated"
	}
	return "inserted"
}

// Row is one staged supplier row.
type Row struct {
	Key string
	Raw catalogs.RawRecord
}

// Entry is one canonical record.
type Entry struct {
	Key    string
	Record catalogs.Record
}

// Store reads tables and runs transactions.
type Store interface {
	// Load returns every row of a staging table ordered by key.
	Load(ctx context.Context, table string) ([]Row, error)

	// Records returns every record of the canonical table ordered by key.
	Records(ctx context.Context, table string) ([]Entry, error)

	// InTx runs fn in a transaction. The transaction commits when fn
	// returns nil and rolls back otherwise; fn's error is returned.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the write side of a transaction.
type Tx interface {
	// Truncate removes every row of table.
	Truncate(ctx context.Context, table string) error

	// UpsertRaw writes a staging row.
	UpsertRaw(ctx context.Context, table, key string, raw catalogs.RawRecord) (Outcome, error)

	// UpsertRecord writes a canonical record.
	UpsertRecord(ctx context.Context, table, key string, rec catalogs.Record) (Outcome, error)
}
