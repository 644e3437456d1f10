// Package mapper translates supplier rows into canonical records and back,
// using the field-mapping tables of a supplier registry.
package mapper

import (
	"golang.org/x/text/cases"

	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/coerce"
	"github.com/agentstation/supplymap/pkg/suppliers"
)

// Mapper maps rows for the suppliers of one registry. It is safe for
// concurrent use.
type Mapper struct {
	registry *suppliers.Registry
}

// New returns a mapper bound to reg.
func New(reg *suppliers.Registry) *Mapper {
	return &Mapper{registry: reg}
}

// Map translates a raw supplier row into a canonical record.
//
// Supplier field names are matched exactly first and then
// case-insensitively. Unmapped raw fields are dropped and mapped fields with
// no raw value stay absent. When two supplier fields feed the same
// canonical field, the first one in supplier-field name order that yields a
// non-null value wins. A supplier reporting warehouse counters but no
// stock_total gets the counters' sum as its stock_total.
func (m *Mapper) Map(supplierKey string, raw catalogs.RawRecord) (catalogs.Record, error) {
	cfg, err := m.registry.Get(supplierKey)
	if err != nil {
		return nil, err
	}
	return MapWith(cfg, raw), nil
}

// MapWith maps raw with an already resolved supplier configuration.
func MapWith(cfg suppliers.Config, raw catalogs.RawRecord) catalogs.Record {
	lookup := newLookup(raw)
	out := make(catalogs.Record, len(cfg.Mappings))
	for _, supplierField := range cfg.SupplierFields() {
		target := cfg.Mappings[supplierField]
		if v, done := out[target]; done && !v.IsNull() {
			continue
		}
		value, ok := lookup.find(supplierField)
		if !ok {
			continue
		}
		if v, ok := coerce.Value(target, value); ok {
			out[target] = v
		}
	}
	if !out.Has(catalogs.FieldStockTotal) {
		if n, ok := out.WarehouseTotal(); ok {
			out[catalogs.FieldStockTotal] = catalogs.Integer(n)
		}
	}
	return out
}

// ToSupplier renders a canonical record under the supplier's own field
// names. Canonical fields the supplier does not map are omitted; when
// several supplier fields map to one canonical field each receives the value.
func (m *Mapper) ToSupplier(supplierKey string, rec catalogs.Record) (catalogs.RawRecord, error) {
	cfg, err := m.registry.Get(supplierKey)
	if err != nil {
		return nil, err
	}
	out := make(catalogs.RawRecord)
	for _, supplierField := range cfg.SupplierFields() {
		v, ok := rec[cfg.Mappings[supplierField]]
		if !ok || v.IsNull() {
			continue
		}
		out[supplierField] = v.String()
	}
	return out, nil
}

// lookup finds raw values by supplier field name, falling back to a
// case-folded match. An exact-case key wins even when its value is blank.
type lookup struct {
	raw    catalogs.RawRecord
	caser  cases.Caser
	folded map[string]string
}

func newLookup(raw catalogs.RawRecord) *lookup {
	return &lookup{raw: raw, caser: cases.Fold()}
}

func (l *lookup) find(field string) (string, bool) {
	if v, ok := l.raw[field]; ok {
		return v, true
	}
	if l.folded == nil {
		l.folded = make(map[string]string, len(l.raw))
		// Sorted keys make collisions between differently cased raw
		// names resolve the same way every time.
		for _, k := range l.raw.Keys() {
			fk := l.caser.String(k)
			if _, seen := l.folded[fk]; !seen && l.raw[k] != "" {
				l.folded[fk] = l.raw[k]
			}
		}
	}
	v, ok := l.folded[l.caser.String(field)]
	return v, ok
}
