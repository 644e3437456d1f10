package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/supplymap/pkg/errors"
	"github.com/agentstation/supplymap/pkg/ingest"
	pkgsync "github.com/agentstation/supplymap/pkg/sync"
)

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"table", "JSON", "yaml", "wide", ""} {
		_, err := ParseFormat(in)
		assert.NoError(t, err, in)
	}
	_, err := ParseFormat("xml")
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	err := Print(&buf, FormatTable, nil, func() Data {
		return Data{Headers: []string{"Key", "Priority"}, Rows: [][]string{{"ls", "1"}}}
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "ls")
	assert.Contains(t, strings.ToUpper(buf.String()), "PRIORITY")
}

func TestPrintStructured(t *testing.T) {
	res := ingest.NewResult("alloy", "alloy_products", "feed.csv")
	res.Imported = 2
	res.Skip(errors.New("row 3: malformed"))
	res.Finalize()

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, FormatJSON, NewImportReport(res), nil))
	assert.Contains(t, buf.String(), `"total": 3`)
	assert.Contains(t, buf.String(), `"row 3: malformed"`)

	buf.Reset()
	require.NoError(t, Print(&buf, FormatYAML, NewImportReport(res), nil))
	assert.Contains(t, buf.String(), "supplier: alloy")
}

func TestTableFormatterStructFallback(t *testing.T) {
	sr := pkgsync.NewResult("run-1", true)
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, NewSyncReport(sr)))
	assert.Contains(t, buf.String(), "Run Id")
	assert.Contains(t, buf.String(), "run-1")
}
