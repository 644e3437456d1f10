// Package app provides the application context and dependency management
// for the supplymap CLI: configuration, logging, and the lazily connected
// engine client with its store, run lock and metrics.
package app

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/supplymap"
	"github.com/agentstation/supplymap/cmd/application"
	"github.com/agentstation/supplymap/internal/observability"
	"github.com/agentstation/supplymap/internal/runlock"
	"github.com/agentstation/supplymap/internal/store/postgres"
	"github.com/agentstation/supplymap/pkg/errors"
	"github.com/agentstation/supplymap/pkg/suppliers"
)

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// App represents the supplymap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	mu       sync.Mutex
	registry *suppliers.Registry
	client   supplymap.Client
	closers  []func() error

	// Metrics server lifetime
	metricsStop context.CancelFunc
	metricsDone chan error
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Quiet reports whether progress messages are suppressed.
func (a *App) Quiet() bool {
	return a.config.Quiet
}

// Registry returns the supplier registry from suppliers_file, or the
// embedded default.
func (a *App) Registry() (*suppliers.Registry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadRegistry()
}

func (a *App) loadRegistry() (*suppliers.Registry, error) {
	if a.registry != nil {
		return a.registry, nil
	}
	var (
		reg *suppliers.Registry
		err error
	)
	if a.config.SuppliersFile != "" {
		reg, err = suppliers.LoadFile(a.config.SuppliersFile)
	} else {
		reg, err = suppliers.Default()
	}
	if err != nil {
		return nil, err
	}
	a.registry = reg
	return reg, nil
}

// Client returns the engine client, creating it on first use. The store
// schema is ensured, a Redis run lock is used when redis_url is set, and
// the metrics endpoint is started when metrics_port is set.
func (a *App) Client(ctx context.Context) (supplymap.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	reg, err := a.loadRegistry()
	if err != nil {
		return nil, err
	}
	if a.config.DatabaseURL == "" {
		return nil, errors.NewConfigError("config", "database_url is not set", nil)
	}

	st, err := postgres.Open(ctx, a.config.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { st.Close(); return nil })

	var staging []string
	for _, cfg := range reg.All() {
		if cfg.Staging != "" {
			staging = append(staging, cfg.Staging)
		}
	}
	if err := st.EnsureSchema(ctx, staging, a.config.CanonicalTable); err != nil {
		return nil, err
	}

	var locker supplymap.Locker = runlock.NewLocal()
	if a.config.RedisURL != "" {
		rl, err := runlock.Dial(ctx, a.config.RedisURL, runlock.WithTTL(a.config.LockTTL))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rl.Close)
		locker = rl
	}

	metrics := observability.New()
	if a.config.MetricsPort != "" {
		a.startMetrics(metrics, ":"+a.config.MetricsPort)
	}

	client, err := supplymap.New(st,
		supplymap.WithRegistry(reg),
		supplymap.WithCanonicalTable(a.config.CanonicalTable),
		supplymap.WithLocker(locker),
		supplymap.WithMetrics(metrics),
	)
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

func (a *App) startMetrics(m *observability.Metrics, addr string) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	a.metricsStop, a.metricsDone = cancel, done
	go func() {
		err := m.Serve(ctx, addr)
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			a.logger.Error().Err(err).Str("addr", addr).Msg("Metrics server stopped")
		}
		done <- err
	}()
}

// Shutdown stops scheduled syncs and the metrics server, then closes the
// store and run lock connections.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.client != nil {
		if err := a.client.AutoSyncOff(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.metricsStop != nil {
		a.metricsStop()
		select {
		case <-a.metricsDone:
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
		}
		a.metricsStop = nil
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	a.client = nil
	return stderrors.Join(errs...)
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a ready client (useful for testing).
func WithClient(c supplymap.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}

// WithRegistry sets the supplier registry.
func WithRegistry(reg *suppliers.Registry) Option {
	return func(a *App) error {
		a.registry = reg
		return nil
	}
}
