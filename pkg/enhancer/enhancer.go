// Package enhancer derives canonical fields that suppliers leave out from
// fields they do provide. Enhancers run on merged records, before
// required-field validation, so they only derive fields that do not depend
// on which supplier contributed the inputs.
package enhancer

import (
	"context"
	"sort"

	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/logging"
	"github.com/agentstation/supplymap/pkg/provenance"
)

// Enhancer derives fields for a merged record.
type Enhancer interface {
	// Name returns the enhancer name
	Name() string

	// Priority orders enhancers; higher runs first
	Priority() int

	// CanEnhance reports whether the record has something to derive
	CanEnhance(rec catalogs.Record) bool

	// Enhance returns a new record with derived fields set
	Enhance(ctx context.Context, rec catalogs.Record) (catalogs.Record, error)
}

// Pipeline applies a chain of enhancers in priority order.
type Pipeline struct {
	enhancers []Enhancer
	tracker   provenance.Tracker
}

// NewPipeline creates a new enhancer pipeline
func NewPipeline(enhancers ...Enhancer) *Pipeline {
	sorted := append([]Enhancer(nil), enhancers...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})
	return &Pipeline{enhancers: sorted}
}

// Defaults returns the enhancers applied when none are configured.
func Defaults() []Enhancer {
	return []Enhancer{NewHTMLDescription()}
}

// WithProvenance records derived fields in tracker.
func (p *Pipeline) WithProvenance(tracker provenance.Tracker) *Pipeline {
	p.tracker = tracker
	return p
}

// Len returns the number of enhancers.
func (p *Pipeline) Len() int {
	return len(p.enhancers)
}

// Enhance runs every applicable enhancer over rec. A failing enhancer is
// logged and skipped; the record it received passes on unchanged.
func (p *Pipeline) Enhance(ctx context.Context, identity string, rec catalogs.Record) catalogs.Record {
	enhanced := rec
	for _, e := range p.enhancers {
		if !e.CanEnhance(enhanced) {
			continue
		}
		result, err := e.Enhance(ctx, enhanced)
		if err != nil {
			logging.FromContext(ctx).Warn().
				Err(err).
				Str("enhancer", e.Name()).
				Msg("Enhancer failed for record")
			continue
		}
		if p.tracker != nil {
			p.track(identity, enhanced, result, e)
		}
		enhanced = result
	}
	return enhanced
}

func (p *Pipeline) track(identity string, before, after catalogs.Record, e Enhancer) {
	for _, f := range after.Fields() {
		v := after[f]
		if old, ok := before[f]; ok && old.Equal(v) {
			continue
		}
		p.tracker.Track(identity, f, provenance.Provenance{
			Supplier: e.Name(),
			Value:    v.String(),
			Reason:   "derived",
		})
	}
}
