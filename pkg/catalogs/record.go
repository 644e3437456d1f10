package catalogs

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RawRecord is one supplier row: supplier field name to raw text.
type RawRecord map[string]string

// Clone returns a copy of r.
func (r RawRecord) Clone() RawRecord {
	out := make(RawRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Keys returns the supplier field names in sorted order.
func (r RawRecord) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Record is a canonical product record. An absent field means "no value",
// which is distinct from a present zero.
type Record map[Field]Value

// Clone returns a copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Get returns the value of f and whether it is present.
func (r Record) Get(f Field) (Value, bool) {
	v, ok := r[f]
	return v, ok
}

// Has reports whether f is present with a non-empty value.
func (r Record) Has(f Field) bool {
	v, ok := r[f]
	return ok && !v.IsEmpty()
}

// WarehouseTotal sums the per-warehouse stock counters. It reports false
// when r carries none of them.
func (r Record) WarehouseTotal() (int64, bool) {
	var (
		sum   int64
		found bool
	)
	for _, f := range WarehouseStockFields {
		if n, ok := r[f].Int(); ok {
			sum += n
			found = true
		}
	}
	return sum, found
}

// String returns the rendered value of f, or "" when absent.
func (r Record) String(f Field) string {
	if v, ok := r[f]; ok {
		return v.String()
	}
	return ""
}

// With returns a copy of r with f set to v.
func (r Record) With(f Field, v Value) Record {
	out := r.Clone()
	out[f] = v
	return out
}

// Fields returns the present fields in name order.
func (r Record) Fields() []Field {
	fields := make([]Field, 0, len(r))
	for f := range r {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// Equal reports whether both records hold the same fields and values.
func (r Record) Equal(o Record) bool {
	if len(r) != len(o) {
		return false
	}
	for f, v := range r {
		ov, ok := o[f]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Strings renders every present field as text.
func (r Record) Strings() map[string]string {
	out := make(map[string]string, len(r))
	for f, v := range r {
		out[string(f)] = v.String()
	}
	return out
}

// MarshalJSON encodes the record as an object with sorted keys.
func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]Value, len(r))
	for f, v := range r {
		m[string(f)] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes a record written by MarshalJSON, typing each value
// by its field's declared kind.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Record, len(raw))
	for name, msg := range raw {
		f := Field(name)
		spec, ok := Lookup(f)
		if !ok {
			return fmt.Errorf("unknown canonical field %q", name)
		}
		v, err := decodeValue(spec, msg)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		out[f] = v
	}
	*r = out
	return nil
}

func decodeValue(spec Spec, msg json.RawMessage) (Value, error) {
	if string(msg) == "null" {
		return Null(spec.Kind), nil
	}
	switch spec.Kind {
	case KindInteger:
		var n int64
		if err := json.Unmarshal(msg, &n); err != nil {
			return Value{}, err
		}
		return Integer(n), nil
	case KindBoolean:
		var b bool
		if err := json.Unmarshal(msg, &b); err != nil {
			return Value{}, err
		}
		return Boolean(b), nil
	case KindDecimal:
		var d decimal.Decimal
		if err := json.Unmarshal(msg, &d); err != nil {
			return Value{}, err
		}
		return Decimal(d, spec.Scale), nil
	}

	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return Value{}, err
	}
	switch spec.Kind {
	case KindDate:
		t, err := time.Parse(DateLayout, s)
		if err != nil {
			return Value{}, err
		}
		return Date(t), nil
	case KindDateTime:
		t, err := time.Parse(DateTimeLayout, s)
		if err != nil {
			return Value{}, err
		}
		return DateTime(t), nil
	default:
		return Text(s), nil
	}
}
