package ingest_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/supplymap/pkg/errors"
	"github.com/agentstation/supplymap/pkg/ingest"
)

func TestTableRows(t *testing.T) {
	src := ingest.NewTable(
		[]string{"PartNumber", "Name", "PriceCostEx"},
		[][]string{
			{"P1", "Widget", "10.00"},
			{"P2", "Gadget"},
			{"P3", "Gizmo", ""},
		},
	)

	rows, err := src.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "10.00", rows[0].Raw["PriceCostEx"])
	assert.NoError(t, rows[0].Err)

	require.Error(t, rows[1].Err)
	assert.ErrorIs(t, rows[1].Err, errors.ErrMalformedRow)
	assert.Contains(t, rows[1].Err.Error(), "expected 3 columns, got 2")
	assert.Nil(t, rows[1].Raw)

	assert.Equal(t, 3, rows[2].Index)
	assert.Equal(t, "", rows[2].Raw["PriceCostEx"])
}

func TestTableEmptyHeader(t *testing.T) {
	_, err := ingest.NewTable(nil, [][]string{{"x"}}).Rows()
	require.Error(t, err)
}

func TestDocumentsRows(t *testing.T) {
	var docs ingest.Documents
	require.NoError(t, json.Unmarshal([]byte(`[
		{"PartNumber": "P1", "Qty_SYD": 4, "PDF_Available": true, "Tags": ["a", "b"], "Dims": {"w": 1}, "Note": null},
		"not an object"
	]`), &docs))

	rows, err := docs.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	raw := rows[0].Raw
	assert.Equal(t, "P1", raw["PartNumber"])
	assert.Equal(t, "4", raw["Qty_SYD"])
	assert.Equal(t, "true", raw["PDF_Available"])
	assert.Equal(t, "a,b", raw["Tags"])
	assert.Equal(t, `{"w":1}`, raw["Dims"])
	assert.Equal(t, "", raw["Note"])

	assert.ErrorIs(t, rows[1].Err, errors.ErrMalformedRow)
}

func TestResult(t *testing.T) {
	r := ingest.NewResult("alloy", "alloy_products", "feed.csv")
	r.Imported, r.Updated = 2, 1
	r.Skip(errors.NewMalformedRowError(4, "bad"))
	r.Finalize()

	assert.Equal(t, 4, r.Total())
	assert.Len(t, r.Errors, 1)
	assert.Equal(t, ingest.MessageSucceeded, r.Message)
	assert.Equal(t, "alloy: 2 imported, 1 updated, 1 skipped of 4 rows", r.Summary())
}

func TestOptions(t *testing.T) {
	o := ingest.Defaults().Apply(ingest.WithTruncate(true), ingest.WithName("feed.json"))
	assert.True(t, o.Truncate)
	assert.Equal(t, "feed.json", o.Name)
}
