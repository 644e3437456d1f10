package supplymap

import (
	"context"
	"time"

	"github.com/agentstation/supplymap/pkg/errors"
	"github.com/agentstation/supplymap/pkg/identity"
	"github.com/agentstation/supplymap/pkg/ingest"
	"github.com/agentstation/supplymap/pkg/logging"
	"github.com/agentstation/supplymap/pkg/mapper"
	"github.com/agentstation/supplymap/pkg/store"
)

// Import ingests one supplier feed into the supplier's staging table.
//
// Every row is mapped and coerced to find its natural key, the first
// identifying field it carries. The raw row is then upserted under that key.
// Malformed rows and rows without a key are skipped and counted. All writes
// share one transaction: a store error rolls the whole feed back and no
// statistics are returned.
func (c *client) Import(ctx context.Context, supplierKey string, src ingest.Source, opts ...ingest.Option) (*ingest.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	options := ingest.Defaults().Apply(opts...)
	started := time.Now()

	result, err := c.importFeed(ctx, supplierKey, src, options)
	c.options.metrics.ObserveImport(supplierKey, result, err, time.Since(started))
	if err != nil {
		return nil, err
	}
	c.hooks.triggerImport(result)
	return result, nil
}

func (c *client) importFeed(ctx context.Context, supplierKey string, src ingest.Source, options *ingest.Options) (*ingest.Result, error) {
	// Step 1: Resolve the supplier; configuration problems are fatal
	cfg, err := c.registry.Get(supplierKey)
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return nil, errors.NewConfigError("import", "supplier "+cfg.Key+" is disabled", errors.ErrSupplierDisabled)
	}
	if cfg.Staging == "" {
		return nil, errors.NewConfigError("import", "supplier "+cfg.Key+" has no staging table", nil)
	}

	ctx = logging.WithOperation(ctx, "import")
	ctx = logging.WithSupplier(ctx, cfg.Key)
	ctx = logging.WithTable(ctx, cfg.Staging)
	logger := logging.FromContext(ctx)

	// Step 2: Tokenize the feed
	rows, err := src.Rows()
	if err != nil {
		return nil, err
	}

	// Step 3: Serialize against other runs
	unlock, err := c.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Step 4: Write every row in one transaction
	var result *ingest.Result
	err = c.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		result = ingest.NewResult(cfg.Key, cfg.Staging, options.Name)

		if options.Truncate {
			if err := tx.Truncate(ctx, cfg.Staging); err != nil {
				return errors.WrapStore("truncate", cfg.Staging, "", err)
			}
			result.Truncated = true
			logger.Info().Msg("Truncated staging table")
		}

		for _, row := range rows {
			if row.Err != nil {
				result.Skip(row.Err)
				logger.Warn().Err(row.Err).Msg("Skipping malformed row")
				continue
			}

			rec := mapper.MapWith(cfg, row.Raw)
			key, ok := identity.Resolve(rec)
			if !ok {
				ierr := errors.NewIdentityError(cfg.Key, row.Index)
				result.Skip(ierr)
				logger.Warn().Int("row", row.Index).Msg("Skipping row without natural key")
				continue
			}

			outcome, err := tx.UpsertRaw(ctx, cfg.Staging, key, row.Raw)
			if err != nil {
				return errors.WrapStore("upsert", cfg.Staging, key, err)
			}
			if outcome == store.Updated {
				result.Updated++
			} else {
				result.Imported++
			}
		}
		return nil
	})
	if err != nil {
		err = errors.WrapStore("commit", cfg.Staging, "", err)
		logger.Error().Err(err).Msg("Import failed")
		return nil, err
	}

	result.Finalize()
	logger.Info().
		Str("feed", result.Name).
		Int("imported", result.Imported).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("total", result.Total()).
		Msg(result.Message)
	return result, nil
}
