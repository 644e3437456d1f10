package output

import (
	"time"

	"github.com/agentstation/supplymap/pkg/ingest"
	pkgsync "github.com/agentstation/supplymap/pkg/sync"
)

// SyncReport is the document form of a sync result.
type SyncReport struct {
	RunID      string                    `json:"run_id" yaml:"run_id"`
	Success    bool                      `json:"success" yaml:"success"`
	Message    string                    `json:"message" yaml:"message"`
	State      string                    `json:"state" yaml:"state"`
	DryRun     bool                      `json:"dry_run" yaml:"dry_run"`
	Loaded     int                       `json:"loaded" yaml:"loaded"`
	Identities int                       `json:"identities" yaml:"identities"`
	Synced     int                       `json:"synced" yaml:"synced"`
	Added      int                       `json:"added" yaml:"added"`
	Updated    int                       `json:"updated" yaml:"updated"`
	Skipped    int                       `json:"skipped" yaml:"skipped"`
	NoIdentity int                       `json:"no_identity" yaml:"no_identity"`
	Duplicates int                       `json:"duplicates" yaml:"duplicates"`
	Suppliers  []*pkgsync.SupplierResult `json:"suppliers" yaml:"suppliers"`
	Errors     []string                  `json:"errors,omitempty" yaml:"errors,omitempty"`
	Duration   string                    `json:"duration" yaml:"duration"`
}

// NewSyncReport builds the report of result.
func NewSyncReport(result *pkgsync.Result) SyncReport {
	r := SyncReport{
		RunID:      result.RunID,
		Success:    result.Success,
		Message:    result.Message,
		State:      result.State.String(),
		DryRun:     result.DryRun,
		Loaded:     result.Loaded,
		Identities: result.Identities,
		Synced:     result.Synced,
		Added:      result.Added,
		Updated:    result.Updated,
		Skipped:    result.Skipped,
		NoIdentity: result.NoIdentity,
		Duplicates: result.Duplicates,
		Errors:     messages(result.Errors),
		Duration:   result.Duration.Round(time.Millisecond).String(),
	}
	for _, key := range result.SupplierKeys() {
		r.Suppliers = append(r.Suppliers, result.Suppliers[key])
	}
	return r
}

// ImportReport is the document form of an import result.
type ImportReport struct {
	Supplier  string   `json:"supplier" yaml:"supplier"`
	Table     string   `json:"table" yaml:"table"`
	Feed      string   `json:"feed,omitempty" yaml:"feed,omitempty"`
	Message   string   `json:"message" yaml:"message"`
	Imported  int      `json:"imported" yaml:"imported"`
	Updated   int      `json:"updated" yaml:"updated"`
	Skipped   int      `json:"skipped" yaml:"skipped"`
	Total     int      `json:"total" yaml:"total"`
	Truncated bool     `json:"truncated" yaml:"truncated"`
	Errors    []string `json:"errors,omitempty" yaml:"errors,omitempty"`
	Duration  string   `json:"duration" yaml:"duration"`
}

// NewImportReport builds the report of result.
func NewImportReport(result *ingest.Result) ImportReport {
	return ImportReport{
		Supplier:  result.Supplier,
		Table:     result.Table,
		Feed:      result.Name,
		Message:   result.Message,
		Imported:  result.Imported,
		Updated:   result.Updated,
		Skipped:   result.Skipped,
		Total:     result.Total(),
		Truncated: result.Truncated,
		Errors:    messages(result.Errors),
		Duration:  result.Duration.Round(time.Millisecond).String(),
	}
}

func messages(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}
