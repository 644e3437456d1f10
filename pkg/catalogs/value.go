package catalogs

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Date layouts used for rendering.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = time.RFC3339
)

// Value is a canonically typed field value. The zero Value is a null text value.
//
// Values are built only through the typed constructors, so a Value always
// carries exactly one payload matching its Kind.
type Value struct {
	kind    Kind
	null    bool
	text    string
	integer int64
	dec     decimal.Decimal
	scale   int32
	boolean bool
	at      time.Time
}

// Null returns an explicit null of the given kind.
func Null(kind Kind) Value {
	return Value{kind: kind, null: true}
}

// Text returns a text value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Integer returns an integer value.
func Integer(n int64) Value {
	return Value{kind: KindInteger, integer: n}
}

// Decimal returns a fixed-point value rounded to scale places.
func Decimal(d decimal.Decimal, scale int32) Value {
	return Value{kind: KindDecimal, dec: d.Round(scale), scale: scale}
}

// Boolean returns a boolean value.
func Boolean(b bool) Value {
	return Value{kind: KindBoolean, boolean: b}
}

// Date returns a calendar date value; the time of day is dropped.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, at: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DateTime returns a timestamp value normalized to UTC.
func DateTime(t time.Time) Value {
	return Value{kind: KindDateTime, at: t.UTC()}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.null }

// IsEmpty reports whether v counts as missing when merging.
// Only null and the empty string are empty; integer 0, decimal 0 and
// boolean false are real values.
func (v Value) IsEmpty() bool {
	if v.null {
		return true
	}
	return v.kind == KindText && v.text == ""
}

// Text returns the payload of a text value.
func (v Value) Text() (string, bool) {
	if v.null || v.kind != KindText {
		return "", false
	}
	return v.text, true
}

// Int returns the payload of an integer value.
func (v Value) Int() (int64, bool) {
	if v.null || v.kind != KindInteger {
		return 0, false
	}
	return v.integer, true
}

// Decimal returns the payload of a decimal value.
func (v Value) Decimal() (decimal.Decimal, bool) {
	if v.null || v.kind != KindDecimal {
		return decimal.Zero, false
	}
	return v.dec, true
}

// Bool returns the payload of a boolean value.
func (v Value) Bool() (bool, bool) {
	if v.null || v.kind != KindBoolean {
		return false, false
	}
	return v.boolean, true
}

// Time returns the payload of a date or datetime value.
func (v Value) Time() (time.Time, bool) {
	if v.null || (v.kind != KindDate && v.kind != KindDateTime) {
		return time.Time{}, false
	}
	return v.at, true
}

// String renders the value as text. Null renders as "".
func (v Value) String() string {
	if v.null {
		return ""
	}
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.integer, 10)
	case KindDecimal:
		return v.dec.StringFixed(v.scale)
	case KindBoolean:
		return strconv.FormatBool(v.boolean)
	case KindDate:
		return v.at.Format(DateLayout)
	case KindDateTime:
		return v.at.Format(DateTimeLayout)
	default:
		return v.text
	}
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind || v.null != o.null {
		return false
	}
	if v.null {
		return true
	}
	switch v.kind {
	case KindInteger:
		return v.integer == o.integer
	case KindDecimal:
		return v.dec.Equal(o.dec) && v.scale == o.scale
	case KindBoolean:
		return v.boolean == o.boolean
	case KindDate, KindDateTime:
		return v.at.Equal(o.at)
	default:
		return v.text == o.text
	}
}

// MarshalJSON renders integers and booleans natively, decimals as fixed-point
// strings, dates in their layouts and null as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.null {
		return []byte("null"), nil
	}
	switch v.kind {
	case KindInteger:
		return []byte(strconv.FormatInt(v.integer, 10)), nil
	case KindBoolean:
		return []byte(strconv.FormatBool(v.boolean)), nil
	default:
		return json.Marshal(v.String())
	}
}
