// Package identity picks the cross-supplier key of a canonical record.
package identity

import "github.com/agentstation/supplymap/pkg/catalogs"

var order = []catalogs.Field{
	catalogs.FieldSupplierCode,
	catalogs.FieldSKU,
	catalogs.FieldBrandSKU,
	catalogs.FieldBarcode,
	catalogs.FieldEAN,
	catalogs.FieldUPC,
	catalogs.FieldASIN,
	catalogs.FieldISBN,
}

// Fields returns the identifier fields in the order they are tried.
func Fields() []catalogs.Field {
	return append([]catalogs.Field(nil), order...)
}

// Resolve returns the first non-empty identifier of rec. ok is false when
// rec has none, which callers treat as a reason to skip the record.
func Resolve(rec catalogs.Record) (key string, ok bool) {
	key, _, ok = ResolveField(rec)
	return key, ok
}

// ResolveField is Resolve that also reports which field supplied the key.
func ResolveField(rec catalogs.Record) (string, catalogs.Field, bool) {
	for _, f := range order {
		v, present := rec[f]
		if !present || v.IsEmpty() {
			continue
		}
		if s := v.String(); s != "" {
			return s, f, true
		}
	}
	return "", "", false
}
