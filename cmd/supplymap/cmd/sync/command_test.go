package sync

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/supplymap"
	"github.com/agentstation/supplymap/internal/cmd/application"
	"github.com/agentstation/supplymap/internal/store/memory"
	"github.com/agentstation/supplymap/pkg/ingest"
	"github.com/agentstation/supplymap/pkg/logging"
)

func newApp(t *testing.T, format string) (*application.Mock, supplymap.Client) {
	t.Helper()
	logging.DisableLoggingForTest(t)
	client, err := supplymap.New(memory.New())
	require.NoError(t, err)
	_, err = client.Import(context.Background(), "alloy", ingest.Records{{"PartNumber": "P1", "Name": "Widget"}})
	require.NoError(t, err)
	return &application.Mock{
		ClientFunc:       func(context.Context) (supplymap.Client, error) { return client, nil },
		OutputFormatFunc: func() string { return format },
	}, client
}

func TestRun(t *testing.T) {
	app, client := newApp(t, "table")

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), app, &Flags{}, &out))
	assert.Contains(t, out.String(), "✓ Products synced successfully: 1 synced (1 added, 0 updated)")

	recs, err := client.Records(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRunDryRunYAML(t *testing.T) {
	app, client := newApp(t, "yaml")

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), app, &Flags{DryRun: true}, &out))
	assert.Contains(t, out.String(), "dry_run: true")
	assert.Contains(t, out.String(), "state: succeeded")

	recs, err := client.Records(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRunScheduledStopsOnCancel(t *testing.T) {
	app, _ := newApp(t, "table")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, RunScheduled(ctx, app, &Flags{Every: 50 * time.Millisecond}))
}

func TestFlagsOptions(t *testing.T) {
	assert.Len(t, (&Flags{}).Options(), 1)
	assert.Len(t, (&Flags{Provenance: "p.yaml"}).Options(), 2)
}
