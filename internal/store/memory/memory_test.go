package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/supplymap/internal/store/memory"
	"github.com/agentstation/supplymap/pkg/catalogs"
	pkgerrors "github.com/agentstation/supplymap/pkg/errors"
	"github.com/agentstation/supplymap/pkg/store"
)

var _ store.Store = (*memory.Store)(nil)

func TestUpsertAndLoad(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	err := s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		out, err := tx.UpsertRaw(ctx, "ls_rows", "B", catalogs.RawRecord{"STOCK CODE": "B"})
		require.NoError(t, err)
		assert.Equal(t, store.Inserted, out)

		_, err = tx.UpsertRaw(ctx, "ls_rows", "A", catalogs.RawRecord{"STOCK CODE": "A"})
		require.NoError(t, err)

		out, err = tx.UpsertRaw(ctx, "ls_rows", "B", catalogs.RawRecord{"STOCK CODE": "B", "AT": "3"})
		require.NoError(t, err)
		assert.Equal(t, store.Updated, out)
		return nil
	})
	require.NoError(t, err)

	rows, err := s.Load(ctx, "ls_rows")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].Key)
	assert.Equal(t, "3", rows[1].Raw["AT"])

	rows[1].Raw["AT"] = "99"
	again, err := s.Load(ctx, "ls_rows")
	require.NoError(t, err)
	assert.Equal(t, "3", again[1].Raw["AT"])
}

func TestRollbackOnError(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.UpsertRecord(ctx, "products", "P1", catalogs.Record{catalogs.FieldName: catalogs.Text("Widget")})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	entries, err := s.Records(ctx, "products")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFailAfter(t *testing.T) {
	ctx := context.Background()
	s := memory.New(memory.WithFault(memory.FailAfter("upsert_record", 2)))

	err := s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		for _, key := range []string{"P1", "P2", "P3"} {
			if _, err := tx.UpsertRecord(ctx, "products", key, catalogs.Record{}); err != nil {
				return err
			}
		}
		return nil
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsHard(err))
	assert.ErrorIs(t, err, pkgerrors.ErrConstraint)
	assert.Contains(t, err.Error(), "products[P3]")

	entries, err := s.Records(ctx, "products")
	require.NoError(t, err)
	assert.Empty(t, entries)

	s.SetFault(nil)
	require.NoError(t, s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.UpsertRecord(ctx, "products", "P1", catalogs.Record{})
		return err
	}))
	entries, err = s.Records(ctx, "products")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTruncate(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.UpsertRaw(ctx, "alloy_rows", "P1", catalogs.RawRecord{})
		return err
	}))

	require.NoError(t, s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.Truncate(ctx, "alloy_rows"); err != nil {
			return err
		}
		_, err := tx.UpsertRaw(ctx, "alloy_rows", "P2", catalogs.RawRecord{})
		return err
	}))

	rows, err := s.Load(ctx, "alloy_rows")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "P2", rows[0].Key)
}

func TestUnavailable(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	s.SetUnavailable("alloy_rows", true)

	_, err := s.Load(ctx, "alloy_rows")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrStoreUnavailable)

	s.SetUnavailable("alloy_rows", false)
	rows, err := s.Load(ctx, "alloy_rows")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCanceledContext(t *testing.T) {
	s := memory.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Load(ctx, "ls_rows")
	assert.ErrorIs(t, err, context.Canceled)

	err = s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.UpsertRaw(ctx, "ls_rows", "A", catalogs.RawRecord{})
		return err
	})
	assert.ErrorIs(t, err, context.Canceled)
}
