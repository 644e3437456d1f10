package suppliers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/constants"
	"github.com/agentstation/supplymap/pkg/errors"
)

// Merge strategy names accepted in a registry.
const (
	StrategyPriority = "priority"
	StrategyNewest   = "newest"
	StrategyCustom   = "custom"
)

// Registry is the immutable set of configured suppliers.
type Registry struct {
	suppliers []Config
	index     map[string]int
	required  []catalogs.Field
	strategy  string
}

// Option configures a Registry under construction.
type Option func(*Registry) error

// WithRequiredFields replaces the default required fields.
func WithRequiredFields(fields ...catalogs.Field) Option {
	return func(r *Registry) error {
		for _, f := range fields {
			if !catalogs.Known(f) {
				return errors.NewConfigError("registry", fmt.Sprintf("required field %q is not a canonical field", f), nil)
			}
		}
		r.required = append([]catalogs.Field(nil), fields...)
		return nil
	}
}

// WithMergeStrategy selects the merge strategy by name.
func WithMergeStrategy(name string) Option {
	return func(r *Registry) error {
		switch name {
		case StrategyPriority, StrategyNewest, StrategyCustom:
			r.strategy = name
			return nil
		case "":
			r.strategy = constants.DefaultMergeStrategy
			return nil
		default:
			return errors.NewConfigError("registry", fmt.Sprintf("unknown merge strategy %q", name), nil)
		}
	}
}

// NewRegistry validates cfgs and builds a registry preserving their order.
func NewRegistry(cfgs []Config, opts ...Option) (*Registry, error) {
	r := &Registry{
		index:    make(map[string]int, len(cfgs)),
		strategy: constants.DefaultMergeStrategy,
	}
	for _, f := range constants.DefaultRequiredFields {
		r.required = append(r.required, catalogs.Field(f))
	}

	for _, cfg := range cfgs {
		cfg = cfg.clone()
		if err := normalize(&cfg); err != nil {
			return nil, err
		}
		if _, dup := r.index[cfg.Key]; dup {
			return nil, errors.NewConfigError("registry", fmt.Sprintf("duplicate supplier key %q", cfg.Key), nil)
		}
		r.index[cfg.Key] = len(r.suppliers)
		r.suppliers = append(r.suppliers, cfg)
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func normalize(cfg *Config) error {
	cfg.Key = strings.TrimSpace(cfg.Key)
	if cfg.Key == "" {
		return errors.NewConfigError("registry", "supplier key is empty", nil)
	}
	component := "supplier " + cfg.Key
	if cfg.Priority < 0 {
		return errors.NewConfigError(component, fmt.Sprintf("priority must be positive, got %d", cfg.Priority), nil)
	}
	if cfg.Priority == 0 {
		cfg.Priority = constants.DefaultPriority
	}
	if cfg.Name == "" {
		cfg.Name = cfg.Key
	}
	for supplierField, canonical := range cfg.Mappings {
		if strings.TrimSpace(supplierField) == "" {
			return errors.NewConfigError(component, "mapping has an empty supplier field", nil)
		}
		if !catalogs.Known(canonical) {
			return errors.NewConfigError(component, fmt.Sprintf("field %q maps to unknown canonical field %q", supplierField, canonical), nil)
		}
	}
	return nil
}

// Get returns the supplier registered under key.
func (r *Registry) Get(key string) (Config, error) {
	i, ok := r.index[key]
	if !ok {
		return Config{}, errors.NewUnknownSupplierError(key)
	}
	return r.suppliers[i].clone(), nil
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	_, ok := r.index[key]
	return ok
}

// All returns every supplier in registration order.
func (r *Registry) All() []Config {
	out := make([]Config, len(r.suppliers))
	for i, s := range r.suppliers {
		out[i] = s.clone()
	}
	return out
}

// Enabled returns the enabled suppliers ordered by ascending priority.
// Equal priorities keep registration order.
func (r *Registry) Enabled() []Config {
	var out []Config
	for _, s := range r.suppliers {
		if s.Enabled {
			out = append(out, s.clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// Keys returns the supplier keys in registration order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.suppliers))
	for i, s := range r.suppliers {
		keys[i] = s.Key
	}
	return keys
}

// Len returns the number of registered suppliers.
func (r *Registry) Len() int {
	return len(r.suppliers)
}

// RequiredFields returns the fields every merged record must carry.
func (r *Registry) RequiredFields() []catalogs.Field {
	return append([]catalogs.Field(nil), r.required...)
}

// MergeStrategy returns the configured merge strategy name.
func (r *Registry) MergeStrategy() string {
	return r.strategy
}
