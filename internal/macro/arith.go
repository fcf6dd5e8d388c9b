package macro

import (
	"errors"
	"fmt"

	"modgen/internal/cdecl"
	"modgen/internal/literal"
)

var errDivByZero = errors.New("division by zero")

// normKind folds kinds that behave identically in arithmetic.
func normKind(k literal.Kind) literal.Kind {
	switch k {
	case literal.KindChar, literal.KindSignedInt:
		return literal.KindInt
	}
	return k
}

func intRank(k literal.Kind) int {
	if k == literal.KindLong || k == literal.KindULong {
		return 2
	}
	return 1
}

// commonKind implements the usual arithmetic conversions for LP64.
func commonKind(a, b literal.Kind) literal.Kind {
	a, b = normKind(a), normKind(b)
	switch {
	case a == literal.KindDouble || b == literal.KindDouble:
		return literal.KindDouble
	case a == literal.KindFloat || b == literal.KindFloat:
		return literal.KindFloat
	case a == b:
		return a
	}
	ua, ub := a.IsUnsigned(), b.IsUnsigned()
	if ua == ub {
		if intRank(a) >= intRank(b) {
			return a
		}
		return b
	}
	u, s := a, b
	if ub {
		u, s = b, a
	}
	if intRank(u) >= intRank(s) {
		return u
	}
	// long represents every unsigned int value
	return s
}

// convert casts v to kind with C truncation semantics.
func convert(v literal.Value, kind literal.Kind) literal.Value {
	switch normKind(kind) {
	case literal.KindDouble, literal.KindFloat:
		return literal.Float(kind, v.AsFloat64())
	case literal.KindUInt:
		return literal.Uint(literal.KindUInt, uint64(uint32(v.AsUint64()))) //nolint:gosec // truncation is the point
	case literal.KindLong:
		return literal.Int(literal.KindLong, v.AsInt64())
	case literal.KindULong:
		return literal.Uint(literal.KindULong, v.AsUint64())
	default:
		return literal.Int(literal.KindInt, int64(int32(v.AsInt64()))) //nolint:gosec // truncation is the point
	}
}

func boolValue(b bool) literal.Value {
	if b {
		return literal.Int(literal.KindInt, 1)
	}
	return literal.Int(literal.KindInt, 0)
}

func requireArithmetic(op string, vs ...literal.Value) error {
	for _, v := range vs {
		if !v.Kind.IsArithmetic() {
			return fmt.Errorf("operator %s applied to %s operand", op, v.Kind)
		}
	}
	return nil
}

func requireInteger(op string, vs ...literal.Value) error {
	for _, v := range vs {
		if v.Kind.IsFloat() || !v.Kind.IsArithmetic() {
			return fmt.Errorf("operator %s needs integer operands, got %s", op, v.Kind)
		}
	}
	return nil
}

func unary(op string, v literal.Value) (literal.Value, error) {
	if err := requireArithmetic(op, v); err != nil {
		return literal.Value{}, err
	}
	switch op {
	case "!":
		return boolValue(v.IsZero()), nil
	case "+":
		return convert(v, normKind(v.Kind)), nil
	case "-":
		k := normKind(v.Kind)
		switch {
		case k.IsFloat():
			return literal.Float(k, -v.Float64), nil
		case k.IsUnsigned():
			return convert(literal.Uint(k, -v.AsUint64()), k), nil
		default:
			return convert(literal.Int(k, -v.AsInt64()), k), nil
		}
	case "~":
		if err := requireInteger(op, v); err != nil {
			return literal.Value{}, err
		}
		k := normKind(v.Kind)
		if k.IsUnsigned() {
			return convert(literal.Uint(k, ^v.AsUint64()), k), nil
		}
		return convert(literal.Int(k, ^v.AsInt64()), k), nil
	}
	return literal.Value{}, fmt.Errorf("unknown unary operator %s", op)
}

func binary(op string, l, r literal.Value) (literal.Value, error) {
	if err := requireArithmetic(op, l, r); err != nil {
		return literal.Value{}, err
	}
	switch op {
	case "&&":
		return boolValue(!l.IsZero() && !r.IsZero()), nil
	case "||":
		return boolValue(!l.IsZero() || !r.IsZero()), nil
	case "<<", ">>":
		return shift(op, l, r)
	case "==", "!=", "<", ">", "<=", ">=":
		return compare(op, l, r), nil
	}

	k := commonKind(l.Kind, r.Kind)
	if k.IsFloat() {
		a, b := l.AsFloat64(), r.AsFloat64()
		switch op {
		case "+":
			return literal.Float(k, a+b), nil
		case "-":
			return literal.Float(k, a-b), nil
		case "*":
			return literal.Float(k, a*b), nil
		case "/":
			return literal.Float(k, a/b), nil
		}
		return literal.Value{}, fmt.Errorf("operator %s needs integer operands, got %s", op, k)
	}

	if k.IsUnsigned() {
		a, b := convert(l, k).Uint64, convert(r, k).Uint64
		var res uint64
		switch op {
		case "+":
			res = a + b
		case "-":
			res = a - b
		case "*":
			res = a * b
		case "/", "%":
			if b == 0 {
				return literal.Value{}, errDivByZero
			}
			if op == "/" {
				res = a / b
			} else {
				res = a % b
			}
		case "&":
			res = a & b
		case "|":
			res = a | b
		case "^":
			res = a ^ b
		default:
			return literal.Value{}, fmt.Errorf("unknown operator %s", op)
		}
		return convert(literal.Uint(k, res), k), nil
	}

	a, b := convert(l, k).Int64, convert(r, k).Int64
	var res int64
	switch op {
	case "+":
		res = a + b
	case "-":
		res = a - b
	case "*":
		res = a * b
	case "/", "%":
		if b == 0 {
			return literal.Value{}, errDivByZero
		}
		if op == "/" {
			res = a / b
		} else {
			res = a % b
		}
	case "&":
		res = a & b
	case "|":
		res = a | b
	case "^":
		res = a ^ b
	default:
		return literal.Value{}, fmt.Errorf("unknown operator %s", op)
	}
	return convert(literal.Int(k, res), k), nil
}

func shift(op string, l, r literal.Value) (literal.Value, error) {
	if err := requireInteger(op, l, r); err != nil {
		return literal.Value{}, err
	}
	k := normKind(l.Kind)
	count := r.AsInt64()
	if count < 0 || count >= int64(k.Bits()) {
		return literal.Value{}, fmt.Errorf("shift count %d out of range for %s", count, k)
	}
	if k.IsUnsigned() {
		a := l.AsUint64()
		if op == "<<" {
			return convert(literal.Uint(k, a<<count), k), nil
		}
		return convert(literal.Uint(k, a>>count), k), nil
	}
	a := l.AsInt64()
	if op == "<<" {
		return convert(literal.Int(k, a<<count), k), nil
	}
	return convert(literal.Int(k, a>>count), k), nil
}

func compare(op string, l, r literal.Value) literal.Value {
	k := commonKind(l.Kind, r.Kind)
	var c int
	switch {
	case k.IsFloat():
		a, b := l.AsFloat64(), r.AsFloat64()
		c = cmp3(a < b, a > b)
	case k.IsUnsigned():
		a, b := convert(l, k).Uint64, convert(r, k).Uint64
		c = cmp3(a < b, a > b)
	default:
		a, b := convert(l, k).Int64, convert(r, k).Int64
		c = cmp3(a < b, a > b)
	}
	switch op {
	case "==":
		return boolValue(c == 0)
	case "!=":
		return boolValue(c != 0)
	case "<":
		return boolValue(c < 0)
	case ">":
		return boolValue(c > 0)
	case "<=":
		return boolValue(c <= 0)
	default:
		return boolValue(c >= 0)
	}
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

// cast applies an explicit (type) conversion to a builtin scalar.
func cast(v literal.Value, t cdecl.TypeRef) (literal.Value, error) {
	sc, ok := t.(*cdecl.Scalar)
	if !ok {
		return literal.Value{}, fmt.Errorf("cannot cast to %s", t)
	}
	if err := requireArithmetic("cast", v); err != nil {
		return literal.Value{}, err
	}
	switch {
	case sc.IsFloat && sc.Width == 32:
		return literal.Float(literal.KindFloat, v.AsFloat64()), nil
	case sc.IsFloat && sc.Width == 64:
		return literal.Float(literal.KindDouble, v.AsFloat64()), nil
	case sc.IsFloat:
		return literal.Value{}, fmt.Errorf("cannot fold a cast to %s", sc.Name)
	case sc.IsBool:
		return boolValue(!v.IsZero()), nil
	case sc.Width == 64 && sc.Signed:
		return convert(v, literal.KindLong), nil
	case sc.Width == 64:
		return convert(v, literal.KindULong), nil
	case sc.Width == 32 && sc.Signed:
		return convert(v, literal.KindInt), nil
	case sc.Width == 32:
		return convert(v, literal.KindUInt), nil
	}
	// narrower types truncate and then promote to int
	shiftBits := 64 - uint(sc.Width)
	bits := v.AsUint64() << shiftBits
	if sc.Signed {
		return literal.Int(literal.KindInt, int64(bits)>>shiftBits), nil //nolint:gosec // sign extension
	}
	return literal.Int(literal.KindInt, int64(bits>>shiftBits)), nil //nolint:gosec // fits after truncation
}
