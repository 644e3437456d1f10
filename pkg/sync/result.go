package sync

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agentstation/supplymap/pkg/provenance"
)

// Result messages.
const (
	MessageSucceeded = "Products synced successfully"
	MessageFailedFmt = "Error syncing products: %v"
)

// Result represents the complete result of a sync run.
type Result struct {
	RunID   string
	Success bool
	Message string

	// State is the terminal state; History lists every transition.
	State   State
	History []Transition
	DryRun  bool

	// Overall statistics
	Loaded     int // raw rows read from staging tables
	Identities int // distinct identities grouped
	Synced     int // records committed (or that would be, on a dry run)
	Added      int
	Updated    int
	Skipped    int // identities rejected or failed during merging
	NoIdentity int // rows dropped during grouping
	Duplicates int // rows dropped as a supplier's repeated identity

	Suppliers map[string]*SupplierResult

	// Errors holds the soft errors of the run. Err is the hard error that
	// failed it.
	Errors []error
	Err    error

	Provenance provenance.Map

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// SupplierResult represents what one supplier contributed to a run.
type SupplierResult struct {
	Supplier    string
	Priority    int
	Loaded      int
	Grouped     int
	NoIdentity  int
	Duplicates  int
	Unavailable bool
}

// NewResult creates a result for the run id.
func NewResult(runID string, dryRun bool) *Result {
	return &Result{
		RunID:     runID,
		DryRun:    dryRun,
		Suppliers: make(map[string]*SupplierResult),
		StartTime: time.Now(),
	}
}

// Supplier returns the per-supplier result, creating it on first use.
func (r *Result) Supplier(key string, priority int) *SupplierResult {
	sr, ok := r.Suppliers[key]
	if !ok {
		sr = &SupplierResult{Supplier: key, Priority: priority}
		r.Suppliers[key] = sr
	}
	return sr
}

// Succeed marks the run successful.
func (r *Result) Succeed(m *Machine) {
	r.Success = true
	r.Err = nil
	r.Message = MessageSucceeded
	r.finish(m)
}

// Fail marks the run failed with err.
func (r *Result) Fail(m *Machine, err error) {
	m.Fail()
	r.Success = false
	r.Err = err
	r.Message = fmt.Sprintf(MessageFailedFmt, err)
	r.Synced = 0
	r.Added = 0
	r.Updated = 0
	r.finish(m)
}

func (r *Result) finish(m *Machine) {
	r.State = m.State()
	r.History = m.History()
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// HasErrors reports whether soft errors were collected.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// SupplierKeys returns the supplier keys ordered by priority, then key.
func (r *Result) SupplierKeys() []string {
	keys := make([]string, 0, len(r.Suppliers))
	for k := range r.Suppliers {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := r.Suppliers[keys[i]], r.Suppliers[keys[j]]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.Supplier < b.Supplier
	})
	return keys
}

// Summary returns a human-readable summary of the sync result.
func (r *Result) Summary() string {
	if !r.Success {
		return r.Message
	}

	summary := fmt.Sprintf("%d synced (%d added, %d updated), %d skipped, %d without identity",
		r.Synced, r.Added, r.Updated, r.Skipped, r.NoIdentity)

	var parts []string
	if r.DryRun {
		parts = append(parts, "(Dry run)")
	}
	if r.Duplicates > 0 {
		parts = append(parts, fmt.Sprintf("(%d duplicates)", r.Duplicates))
	}
	if len(parts) > 0 {
		summary += " " + strings.Join(parts, " ")
	}
	return summary
}

// Summary returns a human-readable summary of the supplier result.
func (sr *SupplierResult) Summary() string {
	if sr.Unavailable {
		return fmt.Sprintf("%s: unavailable", sr.Supplier)
	}
	return fmt.Sprintf("%s: %d loaded, %d grouped, %d without identity",
		sr.Supplier, sr.Loaded, sr.Grouped, sr.NoIdentity)
}
