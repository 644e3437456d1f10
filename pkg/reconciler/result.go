package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/provenance"
)

// Merged is one record that passed validation.
type Merged struct {
	Identity  string
	Record    catalogs.Record
	Suppliers []string
}

// Result is the outcome of reconciling every identity group of a run.
type Result struct {
	// Merged holds the validated records in identity order.
	Merged []Merged

	// Skipped holds the soft errors of rejected identities.
	Skipped []error

	// Provenance is populated when tracking is enabled.
	Provenance provenance.Map

	Metadata ResultMetadata
}

// ResultMetadata contains metadata about the reconciliation.
type ResultMetadata struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Strategy  StrategyType
	Stats     ResultStatistics
}

// ResultStatistics counts what happened to each identity.
type ResultStatistics struct {
	Identities int
	Merged     int
	Rejected   int
	Failed     int
}

// NewResult creates a new result with defaults.
func NewResult() *Result {
	return &Result{
		Metadata: ResultMetadata{StartTime: time.Now()},
	}
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
	r.Metadata.Stats.Merged = len(r.Merged)
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	s := r.Metadata.Stats
	return fmt.Sprintf("Reconciled %d identities: %d merged, %d rejected, %d failed",
		s.Identities, s.Merged, s.Rejected, s.Failed)
}
