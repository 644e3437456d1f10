package reconciler

import (
	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/constants"
	"github.com/agentstation/supplymap/pkg/enhancer"
	"github.com/agentstation/supplymap/pkg/errors"
)

type options struct {
	strategy  Strategy
	enhancers []enhancer.Enhancer
	required  []catalogs.Field
	tracking  bool
}

func defaultOptions() *options {
	required := make([]catalogs.Field, len(constants.DefaultRequiredFields))
	for i, f := range constants.DefaultRequiredFields {
		required[i] = catalogs.Field(f)
	}
	return &options{
		strategy:  NewPriorityStrategy(),
		enhancers: enhancer.Defaults(),
		required:  required,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithStrategy sets the merge strategy.
func WithStrategy(strategy Strategy) Option {
	return func(o *options) error {
		if strategy == nil {
			return &errors.ValidationError{Field: "strategy", Message: "cannot be nil"}
		}
		o.strategy = strategy
		return nil
	}
}

// WithEnhancers replaces the default enhancers. Passing none disables enhancement.
func WithEnhancers(enhancers ...enhancer.Enhancer) Option {
	return func(o *options) error {
		o.enhancers = enhancers
		return nil
	}
}

// WithRequiredFields sets the fields every merged record must carry.
func WithRequiredFields(fields ...catalogs.Field) Option {
	return func(o *options) error {
		o.required = append([]catalogs.Field(nil), fields...)
		return nil
	}
}

// WithProvenance enables field-level tracking.
func WithProvenance(enabled bool) Option {
	return func(o *options) error {
		o.tracking = enabled
		return nil
	}
}
