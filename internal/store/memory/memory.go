// Package memory is an in-process transactional store.
//
// Transactions work on a copy of the tables that replaces the live tables
// on commit, so readers never observe a partial transaction. Faults can be
// injected to exercise rollback paths.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/errors"
	"github.com/agentstation/supplymap/pkg/store"
)

// Fault is consulted before every write. A non-nil error fails the write.
// op is "truncate", "upsert_raw" or "upsert_record".
type Fault func(op, table, key string) error

type table struct {
	raw     map[string]catalogs.RawRecord
	records map[string]catalogs.Record
}

func newTable() *table {
	return &table{
		raw:     make(map[string]catalogs.RawRecord),
		records: make(map[string]catalogs.Record),
	}
}

func (t *table) clone() *table {
	out := &table{
		raw:     make(map[string]catalogs.RawRecord, len(t.raw)),
		records: make(map[string]catalogs.Record, len(t.records)),
	}
	for k, v := range t.raw {
		out.raw[k] = v.Clone()
	}
	for k, v := range t.records {
		out.records[k] = v.Clone()
	}
	return out
}

// Store is a transactional in-memory store. It is safe for concurrent use;
// transactions are serialized.
type Store struct {
	mu          sync.RWMutex
	txMu        sync.Mutex
	tables      map[string]*table
	unavailable map[string]bool
	fault       Fault
}

// Option configures a Store.
type Option func(*Store)

// WithFault installs a write fault.
func WithFault(f Fault) Option {
	return func(s *Store) {
		s.fault = f
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		tables:      make(map[string]*table),
		unavailable: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FailAfter returns a fault that lets n writes of op succeed and fails every
// later one with errors.ErrConstraint.
func FailAfter(op string, n int) Fault {
	var mu sync.Mutex
	count := 0
	return func(gotOp, _, _ string) error {
		if gotOp != op {
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		count++
		if count > n {
			return errors.ErrConstraint
		}
		return nil
	}
}

// SetFault replaces the write fault; nil clears it.
func (s *Store) SetFault(f Fault) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.fault = f
}

// SetUnavailable makes reads of table fail, as if its backing store were down.
func (s *Store) SetUnavailable(name string, down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable[name] = down
}

// Load implements store.Store.
func (s *Store) Load(ctx context.Context, name string) ([]store.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.unavailable[name] {
		return nil, errors.NewStoreError("load", name, "", errors.ErrStoreUnavailable)
	}
	t, ok := s.tables[name]
	if !ok {
		return nil, nil
	}
	rows := make([]store.Row, 0, len(t.raw))
	for k, raw := range t.raw {
		rows = append(rows, store.Row{Key: k, Raw: raw.Clone()})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows, nil
}

// Records implements store.Store.
func (s *Store) Records(ctx context.Context, name string) ([]store.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.unavailable[name] {
		return nil, errors.NewStoreError("load", name, "", errors.ErrStoreUnavailable)
	}
	t, ok := s.tables[name]
	if !ok {
		return nil, nil
	}
	entries := make([]store.Entry, 0, len(t.records))
	for k, rec := range t.records {
		entries = append(entries, store.Entry{Key: k, Record: rec.Clone()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// InTx implements store.Store.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	working := make(map[string]*table, len(s.tables))
	for name, t := range s.tables {
		working[name] = t.clone()
	}
	s.mu.RUnlock()

	tx := &tx{tables: working, fault: s.fault}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.NewStoreError("commit", "", "", err)
	}

	s.mu.Lock()
	s.tables = working
	s.mu.Unlock()
	return nil
}

type tx struct {
	tables map[string]*table
	fault  Fault
}

func (t *tx) table(name string) *table {
	tb, ok := t.tables[name]
	if !ok {
		tb = newTable()
		t.tables[name] = tb
	}
	return tb
}

func (t *tx) check(ctx context.Context, op, name, key string) error {
	if err := ctx.Err(); err != nil {
		return errors.NewStoreError(op, name, key, err)
	}
	if t.fault != nil {
		if err := t.fault(op, name, key); err != nil {
			return errors.NewStoreError(op, name, key, err)
		}
	}
	return nil
}

func (t *tx) Truncate(ctx context.Context, name string) error {
	if err := t.check(ctx, "truncate", name, ""); err != nil {
		return err
	}
	t.tables[name] = newTable()
	return nil
}

func (t *tx) UpsertRaw(ctx context.Context, name, key string, raw catalogs.RawRecord) (store.Outcome, error) {
	if err := t.check(ctx, "upsert_raw", name, key); err != nil {
		return store.Inserted, err
	}
	tb := t.table(name)
	_, exists := tb.raw[key]
	tb.raw[key] = raw.Clone()
	if exists {
		return store.Updated, nil
	}
	return store.Inserted, nil
}

func (t *tx) UpsertRecord(ctx context.Context, name, key string, rec catalogs.Record) (store.Outcome, error) {
	if err := t.check(ctx, "upsert_record", name, key); err != nil {
		return store.Inserted, err
	}
	tb := t.table(name)
	_, exists := tb.records[key]
	tb.records[key] = rec.Clone()
	if exists {
		return store.Updated, nil
	}
	return store.Inserted, nil
}
