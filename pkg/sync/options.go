// Package sync provides options, run state and results for synchronizing the
// canonical catalog from the suppliers' staging tables.
package sync

import (
	"os"
	"path/filepath"

	"github.com/agentstation/supplymap/pkg/errors"
)

// Options controls one Client.Sync run.
type Options struct {
	// DryRun stops after merging; nothing is written.
	DryRun bool

	// Provenance collects which supplier provided each merged field.
	Provenance bool

	// ProvenanceFile, when set, receives the provenance map as YAML after a
	// successful run. It implies Provenance.
	ProvenanceFile string
}

// Apply applies the given options to the sync options.
func (s *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defaults returns the default sync options.
func Defaults() *Options {
	return &Options{}
}

// Option is a function that configures sync Options.
type Option func(*Options)

// Validate checks if the sync options are valid.
func (s *Options) Validate() error {
	if s.ProvenanceFile != "" {
		dir := filepath.Dir(s.ProvenanceFile)
		if dir != "." && dir != "/" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return &errors.ValidationError{
					Field:   "ProvenanceFile",
					Value:   s.ProvenanceFile,
					Message: "directory " + dir + " does not exist",
				}
			}
		}
	}
	return nil
}

// WithDryRun configures dry run mode.
func WithDryRun(dryRun bool) Option {
	return func(opts *Options) {
		opts.DryRun = dryRun
	}
}

// WithProvenance configures provenance collection.
func WithProvenance(enabled bool) Option {
	return func(opts *Options) {
		opts.Provenance = enabled
	}
}

// WithProvenanceFile writes provenance to path after a successful run.
func WithProvenanceFile(path string) Option {
	return func(opts *Options) {
		opts.ProvenanceFile = path
		if path != "" {
			opts.Provenance = true
		}
	}
}
