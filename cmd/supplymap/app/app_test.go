package app

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/supplymap"
	"github.com/agentstation/supplymap/internal/store/memory"
	"github.com/agentstation/supplymap/pkg/errors"
	"github.com/agentstation/supplymap/pkg/ingest"
	"github.com/agentstation/supplymap/pkg/logging"
)

func newTestApp(t *testing.T, config *Config, opts ...Option) *App {
	t.Helper()
	logging.DisableLoggingForTest(t)
	a, err := New("1.2.3", "abc123", "2026-01-01", "test", append([]Option{WithConfig(config)}, opts...)...)
	require.NoError(t, err)
	return a
}

func TestClientRequiresDatabaseURL(t *testing.T) {
	a := newTestApp(t, &Config{})
	_, err := a.Client(context.Background())
	assert.True(t, errors.IsConfig(err))
	require.NoError(t, a.Shutdown(context.Background()))
}

func TestRegistryDefaultsToEmbedded(t *testing.T) {
	a := newTestApp(t, &Config{})
	reg, err := a.Registry()
	require.NoError(t, err)
	assert.True(t, reg.Has("alloy"))

	again, err := a.Registry()
	require.NoError(t, err)
	assert.Same(t, reg, again)
}

func TestExecuteVersion(t *testing.T) {
	a := newTestApp(t, &Config{})
	root := a.createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "supplymap version 1.2.3")
	assert.Contains(t, out.String(), "commit: abc123")
}

func TestExecuteSuppliers(t *testing.T) {
	a := newTestApp(t, &Config{})
	root := a.createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"suppliers", "-o", "json"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), `"key": "alloy"`)
}

func TestExecuteRejectsBadFormat(t *testing.T) {
	a := newTestApp(t, &Config{})
	err := a.Execute(context.Background(), []string{"suppliers", "-o", "xml"})
	assert.True(t, errors.IsValidationError(err))
}

func TestExecuteRecordsWithClient(t *testing.T) {
	client, err := supplymap.New(memory.New())
	require.NoError(t, err)
	ctx := context.Background()
	_, err = client.Import(ctx, "alloy", ingest.Records{{"PartNumber": "P1", "Name": "Widget"}})
	require.NoError(t, err)
	_, err = client.Sync(ctx)
	require.NoError(t, err)

	a := newTestApp(t, &Config{}, WithClient(client))
	root := a.createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"records", "P1", "-o", "json"})
	require.NoError(t, root.ExecuteContext(ctx))
	assert.Contains(t, out.String(), `"name": "Widget"`)
	require.NoError(t, a.Shutdown(ctx))
}
