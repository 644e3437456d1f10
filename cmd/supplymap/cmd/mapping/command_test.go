package mapping

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/supplymap/internal/cmd/application"
	"github.com/agentstation/supplymap/pkg/errors"
	"github.com/agentstation/supplymap/pkg/ingest"
)

func TestMap(t *testing.T) {
	src := ingest.NewTable(
		[]string{"PartNumber", "Name", "PriceCostEx"},
		[][]string{
			{"P1", "Widget", "10"},
			{"", "Orphan", "1"},
			{"P3"},
		},
	)

	p, err := Map(&application.Mock{}, "alloy", src)
	require.NoError(t, err)
	require.Len(t, p.Records, 1)
	assert.Equal(t, "10.00", p.Records[0]["cost_price"])
	assert.Len(t, p.Skipped, 2)
	assert.ErrorIs(t, p.errs[0], errors.ErrNoIdentity)
	assert.ErrorIs(t, p.errs[1], errors.ErrMalformedRow)

	var out bytes.Buffer
	require.NoError(t, Print(&out, &application.Mock{}, p))
	assert.Contains(t, out.String(), "Widget")
}

func TestMapUnknownSupplier(t *testing.T) {
	_, err := Map(&application.Mock{}, "nobody", ingest.Records{})
	assert.True(t, errors.IsConfig(err))
}
