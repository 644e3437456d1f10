package enhancer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/enhancer"
	"github.com/agentstation/supplymap/pkg/logging"
	"github.com/agentstation/supplymap/pkg/provenance"
)

// testEnhancer is a configurable Enhancer for pipeline tests.
type testEnhancer struct {
	name     string
	priority int
	enhance  func(catalogs.Record) (catalogs.Record, error)
}

func (e *testEnhancer) Name() string                    { return e.name }
func (e *testEnhancer) Priority() int                   { return e.priority }
func (e *testEnhancer) CanEnhance(catalogs.Record) bool { return true }
func (e *testEnhancer) Enhance(_ context.Context, rec catalogs.Record) (catalogs.Record, error) {
	return e.enhance(rec)
}

func TestPipelineOrderAndFailure(t *testing.T) {
	var calls []string
	mark := func(name string, err error) *testEnhancer {
		return &testEnhancer{
			name:     name,
			priority: map[string]int{"low": 1, "high": 50, "broken": 10}[name],
			enhance: func(rec catalogs.Record) (catalogs.Record, error) {
				calls = append(calls, name)
				if err != nil {
					return nil, err
				}
				return rec.With(catalogs.FieldWarranty, catalogs.Text(name)), nil
			},
		}
	}

	testLogger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), testLogger.Logger)

	p := enhancer.NewPipeline(mark("low", nil), mark("broken", errors.New("boom")), mark("high", nil))
	out := p.Enhance(ctx, "P1", catalogs.Record{catalogs.FieldSupplierCode: catalogs.Text("P1")})

	assert.Equal(t, []string{"high", "broken", "low"}, calls)
	assert.Equal(t, "low", out.String(catalogs.FieldWarranty))
	testLogger.AssertContains(t, "Enhancer failed for record")
	testLogger.AssertContains(t, `"enhancer":"broken"`)
}

func TestHTMLDescription(t *testing.T) {
	e := enhancer.NewHTMLDescription()

	rec := catalogs.Record{
		catalogs.FieldDescriptionHTML: catalogs.Text("<p>Fast   <b>USB-C</b> charger</p><script>track()</script><ul><li>65W</li></ul>"),
	}
	require.True(t, e.CanEnhance(rec))
	out, err := e.Enhance(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "Fast USB-C charger 65W", out.String(catalogs.FieldDescription))

	rec[catalogs.FieldDescription] = catalogs.Text("Supplier text")
	assert.False(t, e.CanEnhance(rec))
}

func TestPipelineTracksDerivedFields(t *testing.T) {
	tracker := provenance.NewTracker(true)
	p := enhancer.NewPipeline(enhancer.Defaults()...).WithProvenance(tracker)
	assert.Equal(t, 1, p.Len())

	out := p.Enhance(context.Background(), "P1", catalogs.Record{
		catalogs.FieldSupplierCode:    catalogs.Text("P1"),
		catalogs.FieldDescriptionHTML: catalogs.Text("<p>Braided cable</p>"),
	})

	assert.Equal(t, "Braided cable", out.String(catalogs.FieldDescription))
	prov, ok := tracker.FindByField("P1", catalogs.FieldDescription)
	require.True(t, ok)
	assert.Equal(t, "html_description", prov.Supplier)
	assert.Equal(t, "derived", prov.Reason)
	_, ok = tracker.FindByField("P1", catalogs.FieldSupplierCode)
	assert.False(t, ok)
}
