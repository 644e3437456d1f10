// Package postgres implements the store contract on PostgreSQL with pgx.
//
// Staging tables have the layout (natural_key text primary key, data jsonb,
// updated_at timestamptz). The canonical table keys the same layout by
// supplier_code. Table names are quoted, so any configured name is safe.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/errors"
	"github.com/agentstation/supplymap/pkg/store"
)

// Key columns of the two table kinds.
const (
	StagingKey   = "natural_key"
	CanonicalKey = "supplier_code"
)

// Store is a PostgreSQL-backed store.Store.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// Open connects to url and verifies the connection.
func Open(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, errors.NewStoreError("connect", "", "", fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, err))
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.NewStoreError("connect", "", "", fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, err))
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the staging tables and the canonical table when they
// do not exist.
func (s *Store) EnsureSchema(ctx context.Context, staging []string, canonical string) error {
	return s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		t := tx.(*txn)
		for _, table := range staging {
			if _, err := t.tx.Exec(ctx, createSQL(table, StagingKey)); err != nil {
				return errors.NewStoreError("create", table, "", classify(err))
			}
		}
		if _, err := t.tx.Exec(ctx, createSQL(canonical, CanonicalKey)); err != nil {
			return errors.NewStoreError("create", canonical, "", classify(err))
		}
		return nil
	})
}

// Load implements store.Store.
func (s *Store) Load(ctx context.Context, table string) ([]store.Row, error) {
	rows, err := s.pool.Query(ctx, selectSQL(table, StagingKey))
	if err != nil {
		return nil, errors.NewStoreError("load", table, "", classify(err))
	}
	defer rows.Close()

	var out []store.Row
	for rows.Next() {
		var key string
		var data []byte
		if err := rows.Scan(&key, &data); err != nil {
			return nil, errors.NewStoreError("load", table, key, err)
		}
		raw := make(catalogs.RawRecord)
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, errors.NewStoreError("load", table, key, errors.WrapParse("json", table, err))
		}
		out = append(out, store.Row{Key: key, Raw: raw})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("load", table, "", classify(err))
	}
	return out, nil
}

// Records implements store.Store.
func (s *Store) Records(ctx context.Context, table string) ([]store.Entry, error) {
	rows, err := s.pool.Query(ctx, selectSQL(table, CanonicalKey))
	if err != nil {
		return nil, errors.NewStoreError("load", table, "", classify(err))
	}
	defer rows.Close()

	var out []store.Entry
	for rows.Next() {
		var key string
		var data []byte
		if err := rows.Scan(&key, &data); err != nil {
			return nil, errors.NewStoreError("load", table, key, err)
		}
		var rec catalogs.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, errors.NewStoreError("load", table, key, errors.WrapParse("json", table, err))
		}
		out = append(out, store.Entry{Key: key, Record: rec})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("load", table, "", classify(err))
	}
	return out, nil
}

// InTx implements store.Store.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txn{tx: tx})
	})
	if err != nil {
		return errors.WrapStore("commit", "", "", classify(err))
	}
	return nil
}

type txn struct {
	tx pgx.Tx
}

func (t *txn) Truncate(ctx context.Context, table string) error {
	if _, err := t.tx.Exec(ctx, "TRUNCATE "+pq.QuoteIdentifier(table)); err != nil {
		return errors.NewStoreError("truncate", table, "", classify(err))
	}
	return nil
}

func (t *txn) UpsertRaw(ctx context.Context, table, key string, raw catalogs.RawRecord) (store.Outcome, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return store.Inserted, errors.NewStoreError("upsert", table, key, err)
	}
	return t.upsert(ctx, table, StagingKey, key, data)
}

func (t *txn) UpsertRecord(ctx context.Context, table, key string, rec catalogs.Record) (store.Outcome, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return store.Inserted, errors.NewStoreError("upsert", table, key, err)
	}
	return t.upsert(ctx, table, CanonicalKey, key, data)
}

func (t *txn) upsert(ctx context.Context, table, keyColumn, key string, data []byte) (store.Outcome, error) {
	var inserted bool
	if err := t.tx.QueryRow(ctx, upsertSQL(table, keyColumn), key, string(data)).Scan(&inserted); err != nil {
		return store.Inserted, errors.NewStoreError("upsert", table, key, classify(err))
	}
	if inserted {
		return store.Inserted, nil
	}
	return store.Updated, nil
}

func createSQL(table, keyColumn string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s text PRIMARY KEY,
	data jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`, pq.QuoteIdentifier(table), pq.QuoteIdentifier(keyColumn))
}

func selectSQL(table, keyColumn string) string {
	col := pq.QuoteIdentifier(keyColumn)
	return fmt.Sprintf("SELECT %s, data FROM %s ORDER BY %s", col, pq.QuoteIdentifier(table), col)
}

// upsertSQL returns true from RETURNING when the row was inserted: xmax is
// zero only for a tuple no transaction has updated.
func upsertSQL(table, keyColumn string) string {
	col := pq.QuoteIdentifier(keyColumn)
	return fmt.Sprintf(`INSERT INTO %s (%s, data, updated_at) VALUES ($1, $2::jsonb, now())
ON CONFLICT (%s) DO UPDATE SET data = EXCLUDED.data, updated_at = now()
RETURNING (xmax = 0)`, pq.QuoteIdentifier(table), col, col)
}

// classify tags driver errors with the store sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "23"):
			return fmt.Errorf("%w: %w", errors.ErrConstraint, err)
		case pgErr.Code == "42P01", strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			return fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, err)
		}
		return err
	}
	if pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, err)
	}
	return err
}
