package literal

import (
	"strconv"
	"strings"
)

// Value is a classified literal. The payload fields are only meaningful when
// Resolved is set, and only the one matching Kind is populated:
// Int64 for signed integers, Uint64 for unsigned ones, Float64 for float and
// double, Rune for char and Str for string.
type Value struct {
	Kind Kind
	// Base is 2, 8, 10 or 16 for integer kinds and 0 otherwise.
	Base     uint8
	Text     string
	Int64    int64
	Uint64   uint64
	Float64  float64
	Rune     rune
	Str      string
	Resolved bool
}

// AsInt64 converts any arithmetic value to int64 using C conversion rules
// (unsigned wraps, floats truncate).
func (v Value) AsInt64() int64 {
	switch {
	case v.Kind.IsUnsigned():
		return int64(v.Uint64) //nolint:gosec // C conversion wraps
	case v.Kind.IsFloat():
		return int64(v.Float64)
	case v.Kind == KindChar:
		return int64(v.Rune)
	default:
		return v.Int64
	}
}

// AsUint64 is the unsigned counterpart of AsInt64.
func (v Value) AsUint64() uint64 {
	if v.Kind.IsUnsigned() {
		return v.Uint64
	}
	if v.Kind.IsFloat() {
		return uint64(v.Float64)
	}
	return uint64(v.AsInt64()) //nolint:gosec // C conversion wraps
}

// AsFloat64 converts any arithmetic value to float64.
func (v Value) AsFloat64() float64 {
	switch {
	case v.Kind.IsFloat():
		return v.Float64
	case v.Kind.IsUnsigned():
		return float64(v.Uint64)
	default:
		return float64(v.AsInt64())
	}
}

// IsZero reports whether an arithmetic value compares equal to zero.
func (v Value) IsZero() bool {
	if v.Kind.IsFloat() {
		return v.Float64 == 0
	}
	return v.AsUint64() == 0
}

// String renders the value as a target-neutral constant.
func (v Value) String() string {
	if !v.Resolved {
		return v.Text
	}
	switch v.Kind {
	case KindUInt, KindULong:
		return strconv.FormatUint(v.Uint64, 10)
	case KindInt, KindSignedInt, KindLong:
		return strconv.FormatInt(v.Int64, 10)
	case KindFloat:
		return formatFloat(v.Float64, 32)
	case KindDouble:
		return formatFloat(v.Float64, 64)
	case KindChar:
		return strconv.QuoteRune(v.Rune)
	case KindString:
		return strconv.Quote(v.Str)
	}
	return v.Text
}

// Int builds a resolved signed value of the given kind.
func Int(kind Kind, n int64) Value {
	if kind == KindInt && n < 0 {
		kind = KindSignedInt
	}
	return Value{Kind: kind, Base: 10, Int64: n, Text: strconv.FormatInt(n, 10), Resolved: true}
}

// Uint builds a resolved unsigned value of the given kind.
func Uint(kind Kind, n uint64) Value {
	return Value{Kind: kind, Base: 10, Uint64: n, Text: strconv.FormatUint(n, 10), Resolved: true}
}

// Float builds a resolved float or double.
func Float(kind Kind, f float64) Value {
	if kind == KindFloat {
		f = float64(float32(f))
	}
	v := Value{Kind: kind, Float64: f, Resolved: true}
	v.Text = v.String()
	return v
}

// formatFloat keeps a decimal point so the constant stays floating.
func formatFloat(f float64, bits int) string {
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
