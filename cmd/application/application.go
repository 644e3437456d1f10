// Package application provides the application interface for supplymap
// commands.
//
// Commands accept an Application rather than the concrete App so they can be
// tested with internal/cmd/application.Mock:
//
//	mock := &application.Mock{
//	    RegistryFunc: func() (*suppliers.Registry, error) {
//	        return suppliers.Default()
//	    },
//	}
//	cmd := suppliers.NewCommand(mock)
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/supplymap"
	"github.com/agentstation/supplymap/pkg/suppliers"
)

// Application provides what commands need from the application layer.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Client returns the engine client, connecting the store, run lock and
	// metrics on first use.
	Client(ctx context.Context) (supplymap.Client, error)

	// Registry returns the supplier registry without touching the store.
	Registry() (*suppliers.Registry, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// Quiet reports whether progress messages are suppressed.
	Quiet() bool

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
