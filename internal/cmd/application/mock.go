// Package application provides test doubles for the command application
// interface.
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/supplymap"
	app "github.com/agentstation/supplymap/cmd/application"
	"github.com/agentstation/supplymap/pkg/suppliers"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	ClientFunc       func(ctx context.Context) (supplymap.Client, error)
	RegistryFunc     func() (*suppliers.Registry, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	QuietValue       bool
}

// Client returns a client using the mock function or nil.
func (m *Mock) Client(ctx context.Context) (supplymap.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc(ctx)
	}
	return nil, nil
}

// Registry returns a registry using the mock function or the embedded
// default.
func (m *Mock) Registry() (*suppliers.Registry, error) {
	if m.RegistryFunc != nil {
		return m.RegistryFunc()
	}
	return suppliers.Default()
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Quiet returns QuietValue.
func (m *Mock) Quiet() bool { return m.QuietValue }

// Version returns "dev".
func (m *Mock) Version() string { return "dev" }

// Commit returns "unknown".
func (m *Mock) Commit() string { return "unknown" }

// Date returns "unknown".
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }

// Ensure Mock implements Application at compile time.
var _ app.Application = (*Mock)(nil)
