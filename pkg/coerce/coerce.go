// Package coerce converts raw supplier text into canonically typed values.
//
// Coercion never fails loudly. Each kind has a fixed fallback for input it
// cannot read:
//
//	integer   non-numeric or out-of-range text becomes 0
//	decimal   non-numeric text becomes null
//	boolean   anything outside yes/true/1/y becomes false
//	date      unparseable text becomes null
//	text      surrounding whitespace is trimmed
//
// Blank input (empty after trimming) is never coerced; the field is left absent.
package coerce

import (
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"

	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/constants"
)

// Value coerces raw into the kind declared for field. The boolean is false
// when the field is outside the vocabulary or raw is blank.
func Value(field catalogs.Field, raw string) (catalogs.Value, bool) {
	spec, ok := catalogs.Lookup(field)
	if !ok {
		return catalogs.Value{}, false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return catalogs.Value{}, false
	}

	switch spec.Kind {
	case catalogs.KindInteger:
		return catalogs.Integer(Integer(raw)), true
	case catalogs.KindDecimal:
		d, ok := Decimal(raw)
		if !ok {
			return catalogs.Null(catalogs.KindDecimal), true
		}
		return catalogs.Decimal(d, spec.Scale), true
	case catalogs.KindBoolean:
		return catalogs.Boolean(Boolean(raw)), true
	case catalogs.KindDate:
		t, ok := Time(raw)
		if !ok {
			return catalogs.Null(catalogs.KindDate), true
		}
		return catalogs.Date(t), true
	case catalogs.KindDateTime:
		t, ok := Time(raw)
		if !ok {
			return catalogs.Null(catalogs.KindDateTime), true
		}
		return catalogs.DateTime(t), true
	default:
		return catalogs.Text(raw), true
	}
}

// Fields coerces a whole record of canonical field names to raw text.
// Fields outside the vocabulary and blank values are dropped.
func Fields(raw map[catalogs.Field]string) catalogs.Record {
	out := make(catalogs.Record, len(raw))
	for f, s := range raw {
		if v, ok := Value(f, s); ok {
			out[f] = v
		}
	}
	return out
}

var (
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// Integer reads raw as a whole number. Fractions are truncated toward zero;
// non-numeric text and numbers outside the int64 range yield 0.
func Integer(raw string) int64 {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	d = d.Truncate(0)
	if d.LessThan(minInt64) || d.GreaterThan(maxInt64) {
		return 0
	}
	return d.IntPart()
}

// Decimal reads raw as a fixed-point number.
func Decimal(raw string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Boolean reports whether raw is one of the accepted truthy spellings.
func Boolean(raw string) bool {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, truthy := range constants.Truthy {
		if s == truthy {
			return true
		}
	}
	return false
}

// Time parses free-form date text, reading zone-less input as UTC.
func Time(raw string) (time.Time, bool) {
	t, err := dateparse.ParseIn(strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
