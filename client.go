// Package supplymap provides the main entry point for the supplier
// normalization and merge engine.
//
// A Client ties together the supplier registry, the field mapper, the merge
// reconciler and a transactional store. It offers two runs:
//
//   - Import ingests one supplier's feed into that supplier's staging table.
//   - Sync rebuilds the canonical catalog from every enabled supplier's
//     staging table and commits it in one transaction.
//
// Example usage:
//
//	st, err := postgres.Open(ctx, os.Getenv("DATABASE_URL"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
//
//	sm, err := supplymap.New(st)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sm.OnRecordAdded(func(identity string, rec catalogs.Record) {
//	    log.Printf("New product: %s", identity)
//	})
//
//	if _, err := sm.Import(ctx, "alloy", feed, ingest.WithTruncate(true)); err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := sm.Sync(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Summary())
//
// Runs do not lock anything themselves. Callers that may start runs
// concurrently supply a Locker with WithLocker.
package supplymap

import (
	"context"
	"time"

	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/errors"
	"github.com/agentstation/supplymap/pkg/ingest"
	"github.com/agentstation/supplymap/pkg/logging"
	"github.com/agentstation/supplymap/pkg/mapper"
	"github.com/agentstation/supplymap/pkg/store"
	"github.com/agentstation/supplymap/pkg/suppliers"
	pkgsync "github.com/agentstation/supplymap/pkg/sync"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Syncer rebuilds the canonical catalog.
type Syncer interface {
	// Sync runs one full synchronization. On a hard failure the returned
	// result is in the Failed state and carries the same error.
	Sync(ctx context.Context, opts ...pkgsync.Option) (*pkgsync.Result, error)
}

// Importer loads supplier feeds into staging tables.
type Importer interface {
	// Import ingests src for the supplier. Statistics are returned only
	// when the import committed.
	Import(ctx context.Context, supplierKey string, src ingest.Source, opts ...ingest.Option) (*ingest.Result, error)
}

// Catalog provides read access to the canonical catalog.
type Catalog interface {
	// Records returns the canonical records ordered by supplier_code.
	Records(ctx context.Context) ([]store.Entry, error)

	// Registry returns the supplier registry in use.
	Registry() *suppliers.Registry

	// Mapper returns the field mapper bound to the registry.
	Mapper() *mapper.Mapper
}

// Client manages supplier imports and catalog syncs with event hooks.
type Client interface {
	Syncer
	Importer
	Catalog

	// AutoSyncer provides access to periodic sync controls
	AutoSyncer

	// Hooks provides access to event callback registration
	Hooks
}

// Metrics observes finished runs.
type Metrics interface {
	ObserveSync(result *pkgsync.Result, elapsed time.Duration)
	ObserveImport(supplier string, result *ingest.Result, err error, elapsed time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) ObserveSync(*pkgsync.Result, time.Duration)                 {}
func (noopMetrics) ObserveImport(string, *ingest.Result, error, time.Duration) {}

// Locker serializes runs that share tables.
type Locker interface {
	// Lock blocks until name is held or fails. The returned function
	// releases it.
	Lock(ctx context.Context, name string) (unlock func(context.Context) error, err error)
}

// client is the internal implementation of the Client interface.
type client struct {
	options  *options
	store    store.Store
	registry *suppliers.Registry
	mapper   *mapper.Mapper
	hooks    *hooks
	auto     *autoSync
}

// New creates a new Client over st with the given options. Without
// WithRegistry or WithRegistryFile the embedded default registry is used.
func New(st store.Store, opts ...Option) (Client, error) {
	if st == nil {
		return nil, errors.NewConfigError("client", "store is required", nil)
	}

	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	reg := o.registry
	if reg == nil {
		if o.registryFile != "" {
			reg, err = suppliers.LoadFile(o.registryFile)
		} else {
			reg, err = suppliers.Default()
		}
		if err != nil {
			return nil, err
		}
	}

	logging.Debug().
		Int("suppliers", reg.Len()).
		Str("merge_strategy", reg.MergeStrategy()).
		Str("canonical_table", o.canonicalTable).
		Msg("Supplier registry loaded")

	return &client{
		options:  o,
		store:    st,
		registry: reg,
		mapper:   mapper.New(reg),
		hooks:    newHooks(),
		auto:     &autoSync{},
	}, nil
}

// Records returns the canonical records ordered by supplier_code.
func (c *client) Records(ctx context.Context) ([]store.Entry, error) {
	entries, err := c.store.Records(ctx, c.options.canonicalTable)
	if err != nil {
		return nil, errors.WrapStore("load", c.options.canonicalTable, "", err)
	}
	return entries, nil
}

// Registry returns the supplier registry in use.
func (c *client) Registry() *suppliers.Registry {
	return c.registry
}

// Mapper returns the field mapper bound to the registry.
func (c *client) Mapper() *mapper.Mapper {
	return c.mapper
}

// lock acquires the configured run lock. Without a Locker it is a no-op.
func (c *client) lock(ctx context.Context) (func(), error) {
	if c.options.locker == nil {
		return func() {}, nil
	}
	name := "supplymap:" + c.options.canonicalTable
	unlock, err := c.options.locker.Lock(ctx, name)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Str("lock", name).Msg("Could not release run lock")
		}
	}, nil
}

// requiredFields returns the registry's required fields plus supplier_code,
// which keys the canonical table.
func (c *client) requiredFields() []catalogs.Field {
	fields := c.registry.RequiredFields()
	for _, f := range fields {
		if f == catalogs.FieldSupplierCode {
			return fields
		}
	}
	return append([]catalogs.Field{catalogs.FieldSupplierCode}, fields...)
}
