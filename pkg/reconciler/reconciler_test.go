package reconciler_test

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/errors"
	"github.com/agentstation/supplymap/pkg/logging"
	"github.com/agentstation/supplymap/pkg/reconciler"
)

func text(s string) catalogs.Value { return catalogs.Text(s) }

func TestMergeZeroIsNotEmpty(t *testing.T) {
	merged, prov := reconciler.Merge([]string{"A", "B"}, map[string]catalogs.Record{
		"A": {catalogs.FieldStockTotal: catalogs.Integer(0)},
		"B": {catalogs.FieldStockTotal: catalogs.Integer(50)},
	})

	n, ok := merged[catalogs.FieldStockTotal].Int()
	require.True(t, ok)
	assert.Zero(t, n)
	assert.Equal(t, "A", prov[catalogs.FieldStockTotal].Supplier)
}

func TestMergeSkipsEmptyValues(t *testing.T) {
	merged, prov := reconciler.Merge([]string{"ls", "supplier1", "alloy"}, map[string]catalogs.Record{
		"ls": {
			catalogs.FieldName:      text(""),
			catalogs.FieldCostPrice: catalogs.Null(catalogs.KindDecimal),
			catalogs.FieldBrandName: text("Acme"),
		},
		"supplier1": {
			catalogs.FieldName: text("Widget"),
		},
		"alloy": {
			catalogs.FieldName:      text("Widget Pro"),
			catalogs.FieldCostPrice: catalogs.Decimal(decimal.RequireFromString("9.5"), 2),
		},
	})

	assert.Equal(t, "Widget", merged.String(catalogs.FieldName))
	assert.Equal(t, "9.50", merged.String(catalogs.FieldCostPrice))
	assert.Equal(t, "Acme", merged.String(catalogs.FieldBrandName))
	assert.Equal(t, "supplier1", prov[catalogs.FieldName].Supplier)
	assert.Equal(t, "alloy", prov[catalogs.FieldCostPrice].Supplier)
}

func TestMergeOmitsFieldsWithoutValues(t *testing.T) {
	merged, _ := reconciler.Merge([]string{"A"}, map[string]catalogs.Record{
		"A": {catalogs.FieldTaxRate: catalogs.Null(catalogs.KindDecimal), catalogs.FieldName: text("X")},
	})
	_, present := merged[catalogs.FieldTaxRate]
	assert.False(t, present)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	a := catalogs.Record{catalogs.FieldName: text("A")}
	b := catalogs.Record{catalogs.FieldBrandName: text("B")}
	merged, _ := reconciler.Merge([]string{"a", "b"}, map[string]catalogs.Record{"a": a, "b": b})

	merged[catalogs.FieldWarranty] = text("1y")
	assert.Len(t, a, 1)
	assert.Len(t, b, 1)
}

func TestMergeUnlistedSupplierRanksLast(t *testing.T) {
	merged, prov := reconciler.Merge([]string{"b"}, map[string]catalogs.Record{
		"a": {catalogs.FieldName: text("from a")},
		"b": {catalogs.FieldName: text("from b")},
	})
	assert.Equal(t, "from b", merged.String(catalogs.FieldName))
	assert.Equal(t, "b", prov[catalogs.FieldName].Supplier)
}

func TestMergeIsDeterministic(t *testing.T) {
	build := func() map[string]catalogs.Record {
		return map[string]catalogs.Record{
			"ls": {
				catalogs.FieldSupplierCode: text("X1"),
				catalogs.FieldStockTotal:   catalogs.Integer(0),
				catalogs.FieldName:         text(""),
			},
			"supplier1": {
				catalogs.FieldSupplierCode: text("X1"),
				catalogs.FieldName:         text("Cable"),
				catalogs.FieldBarcode:      text("111"),
			},
			"alloy": {
				catalogs.FieldSupplierCode: text("X1"),
				catalogs.FieldName:         text("Cable 2m"),
				catalogs.FieldCostPrice:    catalogs.Decimal(decimal.RequireFromString("3"), 2),
			},
		}
	}
	order := []string{"ls", "supplier1", "alloy"}

	first, _ := reconciler.Merge(order, build())
	want, err := json.Marshal(first)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		merged, _ := reconciler.Merge(order, build())
		got, err := json.Marshal(merged)
		require.NoError(t, err)
		require.Equal(t, string(want), string(got))
	}
}

func TestStrategyFor(t *testing.T) {
	s, err := reconciler.StrategyFor("priority")
	require.NoError(t, err)
	assert.Equal(t, reconciler.StrategyTypePriority, s.Type())
	assert.NotEmpty(t, s.Description())

	for _, name := range []string{"newest", "custom"} {
		_, err := reconciler.StrategyFor(name)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrNotImplemented)
		assert.True(t, errors.IsConfig(err))
	}

	_, err = reconciler.StrategyFor("random")
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))
}

func TestValidateRequired(t *testing.T) {
	rec := catalogs.Record{catalogs.FieldSupplierCode: text("P1"), catalogs.FieldName: text("")}
	err := reconciler.ValidateRequired("P1", rec, []catalogs.Field{catalogs.FieldSupplierCode, catalogs.FieldName, catalogs.FieldCostPrice})
	require.Error(t, err)

	var verr *errors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name,cost_price", verr.Field)
	assert.Equal(t, "P1", verr.Identity)
	assert.Equal(t, rec, verr.Value)

	assert.NoError(t, reconciler.ValidateRequired("P1", rec, []catalogs.Field{catalogs.FieldSupplierCode}))
}

func TestReconcile(t *testing.T) {
	r, err := reconciler.New(reconciler.WithProvenance(true))
	require.NoError(t, err)

	res, err := r.Reconcile(context.Background(), []string{"ls", "alloy"}, map[string]reconciler.Group{
		"P2": {
			"alloy": {catalogs.FieldSupplierCode: text("P2"), catalogs.FieldName: text("Gadget")},
		},
		"P1": {
			"alloy": {
				catalogs.FieldSupplierCode:    text("P1"),
				catalogs.FieldName:            text("Widget"),
				catalogs.FieldDescriptionHTML: text("<p>USB-C</p>"),
			},
			"ls": {catalogs.FieldSupplierCode: text("P1"), catalogs.FieldBrandName: text("Acme")},
		},
		"NONAME": {
			"ls": {catalogs.FieldSupplierCode: text("NONAME")},
		},
	})
	require.NoError(t, err)

	require.Len(t, res.Merged, 2)
	assert.Equal(t, "P1", res.Merged[0].Identity)
	assert.Equal(t, "P2", res.Merged[1].Identity)
	assert.Equal(t, []string{"ls", "alloy"}, res.Merged[0].Suppliers)
	assert.Equal(t, "Acme", res.Merged[0].Record.String(catalogs.FieldBrandName))
	assert.Equal(t, "USB-C", res.Merged[0].Record.String(catalogs.FieldDescription))

	require.Len(t, res.Skipped, 1)
	assert.True(t, errors.IsValidationError(res.Skipped[0]))
	assert.True(t, errors.IsSoft(res.Skipped[0]))

	stats := res.Metadata.Stats
	assert.Equal(t, 3, stats.Identities)
	assert.Equal(t, 2, stats.Merged)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, "Reconciled 3 identities: 2 merged, 1 rejected, 0 failed", res.Summary())

	assert.Equal(t, "ls", res.Provenance["P1"][catalogs.FieldBrandName].Supplier)
	assert.Equal(t, "html_description", res.Provenance["P1"][catalogs.FieldDescription].Supplier)
	_, rejectedTracked := res.Provenance["NONAME"]
	assert.False(t, rejectedTracked)
}

// panicStrategy blows up on one field to exercise per-identity recovery.
type panicStrategy struct {
	reconciler.Strategy
}

func (p panicStrategy) ResolveConflict(f catalogs.Field, order []string, values map[string]catalogs.Value) (catalogs.Value, string, bool) {
	if v, ok := values["bad"]; ok && v.String() == "boom" {
		panic("corrupt value")
	}
	return p.Strategy.ResolveConflict(f, order, values)
}

func TestReconcileRecoversPerIdentity(t *testing.T) {
	r, err := reconciler.New(
		reconciler.WithStrategy(panicStrategy{reconciler.NewPriorityStrategy()}),
		reconciler.WithEnhancers(),
	)
	require.NoError(t, err)

	res, err := r.Reconcile(context.Background(), []string{"bad", "good"}, map[string]reconciler.Group{
		"A": {"bad": {catalogs.FieldSupplierCode: text("A"), catalogs.FieldName: text("boom")}},
		"B": {"good": {catalogs.FieldSupplierCode: text("B"), catalogs.FieldName: text("fine")}},
	})
	require.NoError(t, err)

	require.Len(t, res.Merged, 1)
	assert.Equal(t, "B", res.Merged[0].Identity)
	require.Len(t, res.Skipped, 1)
	var merr *errors.MergeError
	require.ErrorAs(t, res.Skipped[0], &merr)
	assert.Equal(t, "A", merr.Identity)
	assert.Equal(t, 1, res.Metadata.Stats.Failed)
}

func TestReconcileCanceled(t *testing.T) {
	r, err := reconciler.New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Reconcile(ctx, nil, map[string]reconciler.Group{"A": {}})
	require.Error(t, err)
	assert.True(t, errors.IsCanceled(err))
}

func TestWithStrategyNil(t *testing.T) {
	_, err := reconciler.New(reconciler.WithStrategy(nil))
	require.Error(t, err)
}

// failingEnhancer always errors, to observe pipeline logging.
type failingEnhancer struct{}

func (failingEnhancer) Name() string                    { return "failing" }
func (failingEnhancer) Priority() int                   { return 1 }
func (failingEnhancer) CanEnhance(catalogs.Record) bool { return true }
func (failingEnhancer) Enhance(context.Context, catalogs.Record) (catalogs.Record, error) {
	return nil, stderrors.New("boom")
}

func TestReconcileLogsIdentity(t *testing.T) {
	testLogger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), testLogger.Logger)

	r, err := reconciler.New(reconciler.WithEnhancers(failingEnhancer{}))
	require.NoError(t, err)

	res, err := r.Reconcile(ctx, []string{"ls"}, map[string]reconciler.Group{
		"P1": {"ls": {catalogs.FieldSupplierCode: text("P1"), catalogs.FieldName: text("Widget")}},
	})
	require.NoError(t, err)
	require.Len(t, res.Merged, 1)

	testLogger.AssertContains(t, "Enhancer failed for record")
	testLogger.AssertContains(t, `"identity":"P1"`)
}
