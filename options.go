package supplymap

import (
	"github.com/agentstation/supplymap/pkg/constants"
	"github.com/agentstation/supplymap/pkg/enhancer"
	"github.com/agentstation/supplymap/pkg/errors"
	"github.com/agentstation/supplymap/pkg/suppliers"
)

// options holds the configuration for a Client.
type options struct {
	registry       *suppliers.Registry
	registryFile   string
	canonicalTable string
	enhancers      []enhancer.Enhancer
	metrics        Metrics
	locker         Locker
}

func defaults() *options {
	return &options{
		canonicalTable: constants.DefaultCanonicalTable,
		enhancers:      enhancer.Defaults(),
		metrics:        noopMetrics{},
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Option is a function that configures a Client.
type Option func(*options) error

// WithRegistry uses reg instead of the embedded registry.
func WithRegistry(reg *suppliers.Registry) Option {
	return func(o *options) error {
		if reg == nil {
			return errors.NewConfigError("client", "registry cannot be nil", nil)
		}
		o.registry = reg
		return nil
	}
}

// WithRegistryFile loads the registry from a YAML file. An empty path keeps
// the embedded registry.
func WithRegistryFile(path string) Option {
	return func(o *options) error {
		o.registryFile = path
		return nil
	}
}

// WithCanonicalTable names the table merged records are committed to.
func WithCanonicalTable(name string) Option {
	return func(o *options) error {
		if name == "" {
			return errors.NewConfigError("client", "canonical table cannot be empty", nil)
		}
		o.canonicalTable = name
		return nil
	}
}

// WithEnhancers replaces the default enhancers. Passing none disables them.
func WithEnhancers(enhancers ...enhancer.Enhancer) Option {
	return func(o *options) error {
		o.enhancers = enhancers
		return nil
	}
}

// WithMetrics reports finished runs to m.
func WithMetrics(m Metrics) Option {
	return func(o *options) error {
		if m == nil {
			m = noopMetrics{}
		}
		o.metrics = m
		return nil
	}
}

// WithLocker serializes runs through l.
func WithLocker(l Locker) Option {
	return func(o *options) error {
		o.locker = l
		return nil
	}
}
