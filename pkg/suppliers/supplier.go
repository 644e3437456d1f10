// Package suppliers holds the supplier registry: the fixed set of suppliers
// the engine knows, their priorities, and how each supplier's field names
// map onto the canonical vocabulary.
//
// A Registry is built once, from a YAML file or from Go values, and is
// immutable afterwards. Every accessor returns copies.
package suppliers

import (
	"sort"

	"github.com/agentstation/supplymap/pkg/catalogs"
)

// Config describes one supplier.
type Config struct {
	// Key is the unique supplier identifier, e.g. "alloy".
	Key string
	// Name is the display name.
	Name string
	// Enabled suppliers take part in sync runs and accept imports.
	Enabled bool
	// Priority orders suppliers when merging; lower wins. Zero means
	// unset and is replaced by the default priority.
	Priority int
	// Staging is the store table holding the supplier's imported rows.
	Staging string
	// Mappings maps supplier field names to canonical fields.
	Mappings map[string]catalogs.Field
}

// SupplierFields returns the mapped supplier field names in sorted order.
func (c Config) SupplierFields() []string {
	fields := make([]string, 0, len(c.Mappings))
	for f := range c.Mappings {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Target returns the canonical field a supplier field maps to.
func (c Config) Target(supplierField string) (catalogs.Field, bool) {
	f, ok := c.Mappings[supplierField]
	return f, ok
}

func (c Config) clone() Config {
	out := c
	out.Mappings = make(map[string]catalogs.Field, len(c.Mappings))
	for k, v := range c.Mappings {
		out.Mappings[k] = v
	}
	return out
}
