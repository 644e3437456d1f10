package supplymap

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/errors"
	"github.com/agentstation/supplymap/pkg/identity"
	"github.com/agentstation/supplymap/pkg/logging"
	"github.com/agentstation/supplymap/pkg/mapper"
	"github.com/agentstation/supplymap/pkg/provenance"
	"github.com/agentstation/supplymap/pkg/reconciler"
	"github.com/agentstation/supplymap/pkg/store"
	"github.com/agentstation/supplymap/pkg/suppliers"
	pkgsync "github.com/agentstation/supplymap/pkg/sync"
)

// Sync rebuilds the canonical catalog from every enabled supplier's staging
// table. Per-record problems are collected on the result; a store failure
// while committing rolls everything back and fails the run.
func (c *client) Sync(ctx context.Context, opts ...pkgsync.Option) (*pkgsync.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// Step 1: Parse options
	options := pkgsync.Defaults().Apply(opts...)
	if err := options.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ctx = logging.WithOperation(ctx, "sync")
	ctx = logging.WithRun(ctx, runID)
	ctx = logging.WithTable(ctx, c.options.canonicalTable)
	logger := logging.FromContext(ctx)

	started := time.Now()
	machine := pkgsync.NewMachine()
	result := pkgsync.NewResult(runID, options.DryRun)
	defer func() {
		c.options.metrics.ObserveSync(result, time.Since(started))
		c.hooks.triggerSync(result)
	}()

	fail := func(err error) (*pkgsync.Result, error) {
		result.Fail(machine, err)
		logger.Error().Err(err).Str("state", machine.State().String()).Msg(result.Message)
		return result, err
	}

	// Step 2: Serialize against other runs on the same tables
	unlock, err := c.lock(ctx)
	if err != nil {
		return fail(err)
	}
	defer unlock()

	// Step 3: Build the reconciler from the registry's merge settings
	rec, err := c.newReconciler(options.Provenance)
	if err != nil {
		return fail(err)
	}

	// Step 4: Load every enabled supplier's staging rows
	machine.MustAdvance(pkgsync.Loading)
	enabled := c.registry.Enabled()
	loaded, err := c.load(ctx, enabled, result)
	if err != nil {
		return fail(err)
	}

	// Step 5: Map and group rows by identity
	machine.MustAdvance(pkgsync.Grouping)
	groups := c.group(ctx, enabled, loaded, result)

	// Step 6: Merge, enhance and validate each identity
	machine.MustAdvance(pkgsync.Merging)
	order := make([]string, len(enabled))
	for i, cfg := range enabled {
		order[i] = cfg.Key
	}
	reconciled, err := rec.Reconcile(ctx, order, groups)
	if err != nil {
		return fail(err)
	}
	result.Skipped = len(reconciled.Skipped)
	result.Errors = append(result.Errors, reconciled.Skipped...)
	result.Provenance = reconciled.Provenance

	if options.DryRun {
		result.Synced = len(reconciled.Merged)
		machine.MustAdvance(pkgsync.Succeeded)
		result.Succeed(machine)
		logger.Info().Bool("dry_run", true).Msg("Dry run completed - no changes applied")
		return result, nil
	}

	// Step 7: Commit every merged record in one transaction
	machine.MustAdvance(pkgsync.Committing)
	written, err := c.commit(ctx, reconciled.Merged)
	if err != nil {
		return fail(err)
	}
	for _, w := range written {
		if w.updated {
			result.Updated++
		} else {
			result.Added++
		}
	}
	result.Synced = len(written)
	machine.MustAdvance(pkgsync.Succeeded)
	result.Succeed(machine)

	logger.Info().
		Int("synced", result.Synced).
		Int("added", result.Added).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("no_identity", result.NoIdentity).
		Msg(result.Message)

	// Step 8: Notify and persist provenance
	c.hooks.triggerCommitted(written)
	if options.ProvenanceFile != "" {
		if err := provenance.WriteFile(options.ProvenanceFile, result.Provenance); err != nil {
			logger.Warn().Err(err).Str("path", options.ProvenanceFile).Msg("Could not write provenance")
			result.Errors = append(result.Errors, err)
		}
	}

	return result, nil
}

func (c *client) newReconciler(tracking bool) (reconciler.Reconciler, error) {
	strategy, err := reconciler.StrategyFor(c.registry.MergeStrategy())
	if err != nil {
		return nil, err
	}
	return reconciler.New(
		reconciler.WithStrategy(strategy),
		reconciler.WithEnhancers(c.options.enhancers...),
		reconciler.WithRequiredFields(c.requiredFields()...),
		reconciler.WithProvenance(tracking),
	)
}

// load reads the staging rows of every supplier. A missing staging binding is
// a configuration error; a failing read makes the supplier contribute nothing.
func (c *client) load(ctx context.Context, enabled []suppliers.Config, result *pkgsync.Result) (map[string][]store.Row, error) {
	for _, cfg := range enabled {
		if cfg.Staging == "" {
			return nil, errors.NewConfigError("registry", "supplier "+cfg.Key+" has no staging table", nil)
		}
	}

	loaded := make(map[string][]store.Row, len(enabled))
	for _, cfg := range enabled {
		sr := result.Supplier(cfg.Key, cfg.Priority)
		logger := logging.FromContext(logging.WithSupplier(ctx, cfg.Key))

		rows, err := c.store.Load(ctx, cfg.Staging)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.WrapStore("load", cfg.Staging, "", err)
			}
			sr.Unavailable = true
			uerr := &errors.SupplierUnavailableError{Supplier: cfg.Key, Err: err}
			result.Errors = append(result.Errors, uerr)
			logger.Warn().Err(err).Str("table", cfg.Staging).Msg("Supplier staging unavailable, continuing without it")
			continue
		}

		sr.Loaded = len(rows)
		result.Loaded += len(rows)
		loaded[cfg.Key] = rows
		logger.Debug().Int("rows", len(rows)).Msg("Loaded staging rows")
	}
	return loaded, nil
}

// group maps every row and buckets the records by identity. Rows without an
// identity and a supplier's repeated identities are dropped.
func (c *client) group(ctx context.Context, enabled []suppliers.Config, loaded map[string][]store.Row, result *pkgsync.Result) map[string]reconciler.Group {
	groups := make(map[string]reconciler.Group)
	for _, cfg := range enabled {
		sr := result.Supplier(cfg.Key, cfg.Priority)
		logger := logging.FromContext(logging.WithSupplier(ctx, cfg.Key))

		for i, row := range loaded[cfg.Key] {
			rec := mapper.MapWith(cfg, row.Raw)
			id, ok := identity.Resolve(rec)
			if !ok {
				sr.NoIdentity++
				result.NoIdentity++
				ierr := errors.NewIdentityError(cfg.Key, i+1)
				result.Errors = append(result.Errors, ierr)
				logger.Warn().Str("key", row.Key).Msg("Dropping record without identity")
				continue
			}

			g, exists := groups[id]
			if !exists {
				g = make(reconciler.Group)
				groups[id] = g
			}
			if _, dup := g[cfg.Key]; dup {
				sr.Duplicates++
				result.Duplicates++
				result.Errors = append(result.Errors, &errors.DuplicateError{Supplier: cfg.Key, Identity: id})
				logger.Warn().Str("identity", id).Msg("Dropping duplicate record")
				continue
			}
			g[cfg.Key] = rec
			sr.Grouped++
		}
	}
	result.Identities = len(groups)
	return groups
}

// commit upserts every merged record keyed by supplier_code in one
// transaction. Any error rolls back all of them.
func (c *client) commit(ctx context.Context, merged []reconciler.Merged) ([]committed, error) {
	table := c.options.canonicalTable
	var written []committed

	err := c.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		written = written[:0]
		for _, m := range merged {
			key := m.Record.String(catalogs.FieldSupplierCode)
			outcome, err := tx.UpsertRecord(ctx, table, key, m.Record)
			if err != nil {
				return errors.WrapStore("upsert", table, key, err)
			}
			written = append(written, committed{
				identity: m.Identity,
				record:   m.Record,
				updated:  outcome == store.Updated,
			})
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapStore("commit", table, "", err)
	}
	return written, nil
}
