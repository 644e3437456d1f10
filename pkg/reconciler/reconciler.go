// Package reconciler merges the records several suppliers hold for the same
// product into one canonical record.
//
// For every identity the reconciler combines the supplier records field by
// field with a Strategy, derives missing fields with the enhancer pipeline
// and validates required fields. Failures are confined to their identity:
// they are collected on the Result and the remaining identities proceed.
package reconciler

import (
	"context"
	"fmt"
	"sort"

	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/enhancer"
	"github.com/agentstation/supplymap/pkg/errors"
	"github.com/agentstation/supplymap/pkg/logging"
	"github.com/agentstation/supplymap/pkg/provenance"
)

// Group holds one product's records keyed by supplier.
type Group map[string]catalogs.Record

// Reconciler merges identity groups.
type Reconciler interface {
	// Reconcile merges every group. order lists supplier keys by ascending
	// priority number. The error is non-nil only when ctx is done.
	Reconcile(ctx context.Context, order []string, groups map[string]Group) (*Result, error)

	// Strategy returns the merge strategy in use.
	Strategy() Strategy
}

type reconciler struct {
	strategy  Strategy
	enhancers []enhancer.Enhancer
	required  []catalogs.Field
	tracking  bool
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{
		strategy:  o.strategy,
		enhancers: o.enhancers,
		required:  o.required,
		tracking:  o.tracking,
	}, nil
}

func (r *reconciler) Strategy() Strategy {
	return r.strategy
}

func (r *reconciler) Reconcile(ctx context.Context, order []string, groups map[string]Group) (*Result, error) {
	logger := logging.FromContext(ctx)
	result := NewResult()
	result.Metadata.Strategy = r.strategy.Type()
	if r.tracking {
		result.Provenance = make(provenance.Map)
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	result.Metadata.Stats.Identities = len(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrCanceled, err)
		}

		merged, prov, err := r.reconcileOne(ctx, order, id, groups[id])
		if err != nil {
			if errors.IsValidationError(err) {
				result.Metadata.Stats.Rejected++
			} else {
				result.Metadata.Stats.Failed++
			}
			result.Skipped = append(result.Skipped, err)
			logger.Warn().Err(err).Str("identity", id).Msg("Skipping record")
			continue
		}

		result.Merged = append(result.Merged, merged)
		if r.tracking {
			result.Provenance[id] = prov
		}
	}

	result.Finalize()
	logger.Debug().
		Int("identities", result.Metadata.Stats.Identities).
		Int("merged", result.Metadata.Stats.Merged).
		Int("skipped", len(result.Skipped)).
		Msg("Reconciled identity groups")
	return result, nil
}

// reconcileOne merges, enhances and validates one identity. A panic is
// turned into a MergeError so one bad group cannot abort the run.
func (r *reconciler) reconcileOne(ctx context.Context, order []string, id string, group Group) (m Merged, prov provenance.Fields, err error) {
	ctx = logging.WithIdentity(ctx, id)
	suppliers := contributors(order, group)
	defer func() {
		if p := recover(); p != nil {
			err = errors.NewMergeError(id, suppliers, fmt.Errorf("panic: %v", p))
		}
	}()

	rec, fields := MergeWith(r.strategy, order, group)

	tracker := provenance.NewTracker(r.tracking)
	for f, p := range fields {
		tracker.Track(id, f, p)
	}
	if len(r.enhancers) > 0 {
		rec = enhancer.NewPipeline(r.enhancers...).WithProvenance(tracker).Enhance(ctx, id, rec)
	}

	if err := ValidateRequired(id, rec, r.required); err != nil {
		return Merged{}, nil, err
	}
	return Merged{Identity: id, Record: rec, Suppliers: suppliers}, tracker.FindByIdentity(id), nil
}

// contributors lists the suppliers of group in priority order.
func contributors(order []string, group Group) []string {
	full := completeOrder(order, map[string]catalogs.Record(group))
	out := make([]string, 0, len(group))
	for _, s := range full {
		if _, ok := group[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
