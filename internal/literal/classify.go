package literal

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Classify determines the kind and value of a macro body.
//
// Order of checks: quoted char and string literals, then an optional leading
// '-', then numeric forms by prefix (0b, 0x, leading 0), floats ('.' or an
// exponent), integer suffixes. Anything that looks like an identifier or
// operator expression returns ErrDeferred.
func Classify(body string) (Value, error) {
	text := strings.TrimSpace(body)
	if text == "" {
		return Value{}, ErrEmpty
	}
	switch text[0] {
	case '\'':
		if end := quotedEnd(text); end > 0 && end < len(text) && looksLikeExpression(text[end:]) {
			return Value{Text: text}, ErrDeferred
		}
		return classifyChar(text)
	case '"':
		return classifyString(text)
	}

	neg := false
	rest := text
	if rest[0] == '-' {
		neg = true
		rest = strings.TrimLeft(rest[1:], " \t")
	}
	if rest == "" {
		return Value{}, syntaxErr(text, "sign without operand")
	}
	if isNumberToken(rest) {
		v, err := classifyNumber(rest, neg)
		if err != nil {
			return Value{}, &SyntaxError{Body: text, Reason: "bad numeric literal", Err: err}
		}
		v.Text = text
		return v, nil
	}
	if looksLikeExpression(text) {
		return Value{Text: text}, ErrDeferred
	}
	return Value{}, syntaxErr(text, "not a literal")
}

// isNumberToken reports whether s is a single pp-number: it starts with a
// digit (or '.' digit) and has no operators except an exponent sign.
func isNumberToken(s string) bool {
	if s == "" {
		return false
	}
	if !isDigit(s[0]) && (s[0] != '.' || len(s) < 2 || !isDigit(s[1])) {
		return false
	}
	hex := len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isIdentChar(c) || c == '.':
		case (c == '+' || c == '-') && !hex && i > 0 && (s[i-1] == 'e' || s[i-1] == 'E'):
		default:
			return false
		}
	}
	return true
}

func classifyNumber(s string, neg bool) (Value, error) {
	if len(s) > 1 && s[0] == '0' {
		switch s[1] {
		case 'b', 'B':
			return classifyInt(s[2:], 2, neg)
		case 'x', 'X':
			return classifyInt(s[2:], 16, neg)
		}
	}
	if strings.ContainsAny(s, ".eE") {
		return classifyFloat(s, neg)
	}
	digits, _ := splitIntSuffix(s)
	if len(digits) > 1 && digits[0] == '0' {
		return classifyInt(s[1:], 8, neg)
	}
	return classifyInt(s, 10, neg)
}

func splitIntSuffix(s string) (digits, suffix string) {
	end := len(s)
	for end > 0 && strings.IndexByte("uUlL", s[end-1]) >= 0 {
		end--
	}
	return s[:end], s[end:]
}

type intSuffix struct {
	unsigned bool
	long     bool
}

func parseIntSuffix(suf string) (intSuffix, error) {
	var out intSuffix
	rest := suf
	for rest != "" {
		switch {
		case rest[0] == 'u' || rest[0] == 'U':
			if out.unsigned {
				return out, errors.New("repeated 'u' suffix")
			}
			out.unsigned = true
			rest = rest[1:]
		case strings.HasPrefix(rest, "ll") || strings.HasPrefix(rest, "LL"):
			if out.long {
				return out, errors.New("repeated 'l' suffix")
			}
			out.long = true
			rest = rest[2:]
		case rest[0] == 'l' || rest[0] == 'L':
			if out.long {
				return out, errors.New("mixed-case or repeated 'l' suffix")
			}
			out.long = true
			rest = rest[1:]
		default:
			return out, errors.New("invalid suffix")
		}
	}
	return out, nil
}

func classifyInt(s string, base uint8, neg bool) (Value, error) {
	digits, suf := splitIntSuffix(s)
	if digits == "" {
		return Value{}, errors.New("missing digits")
	}
	sfx, err := parseIntSuffix(suf)
	if err != nil {
		return Value{}, err
	}
	mag, err := strconv.ParseUint(digits, int(base), 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			return Value{}, numErr.Err
		}
		return Value{}, err
	}
	kind := pickIntKind(mag, base, sfx)
	v := Value{Kind: kind, Base: base, Resolved: true}
	switch kind {
	case KindUInt:
		u := uint32(mag) //nolint:gosec // pickIntKind guarantees the range
		if neg {
			u = -u
		}
		v.Uint64 = uint64(u)
	case KindULong:
		v.Uint64 = mag
		if neg {
			v.Uint64 = -mag
		}
	default:
		n := int64(mag) //nolint:gosec // pickIntKind guarantees mag <= MaxInt64
		if neg {
			n = -n
		}
		v.Int64 = n
		if kind == KindInt && neg {
			v.Kind = KindSignedInt
		}
	}
	return v, nil
}

// pickIntKind applies the C rule "first type in the list that can represent
// the value" for an LP64 target.
func pickIntKind(mag uint64, base uint8, sfx intSuffix) Kind {
	decimal := base == 10
	switch {
	case sfx.unsigned && sfx.long:
		return KindULong
	case sfx.unsigned:
		if mag <= math.MaxUint32 {
			return KindUInt
		}
		return KindULong
	case sfx.long:
		if mag <= math.MaxInt64 {
			return KindLong
		}
		return KindULong
	}
	switch {
	case mag <= math.MaxInt32:
		return KindInt
	case !decimal && mag <= math.MaxUint32:
		return KindUInt
	case mag <= math.MaxInt64:
		return KindLong
	default:
		return KindULong
	}
}

func classifyFloat(s string, neg bool) (Value, error) {
	kind := KindDouble
	num := s
	switch s[len(s)-1] {
	case 'f', 'F':
		kind = KindFloat
		num = s[:len(s)-1]
	case 'l', 'L':
		num = s[:len(s)-1]
	}
	if num == "" || strings.ContainsAny(num, "_xXpP") {
		return Value{}, errors.New("malformed float")
	}
	bits := 64
	if kind == KindFloat {
		bits = 32
	}
	f, err := strconv.ParseFloat(num, bits)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			return Value{}, numErr.Err
		}
		return Value{}, err
	}
	if neg {
		f = -f
	}
	return Value{Kind: kind, Float64: f, Resolved: true}, nil
}

func classifyChar(text string) (Value, error) {
	if len(text) < 3 || text[len(text)-1] != '\'' {
		return Value{}, syntaxErr(text, "unterminated character literal")
	}
	inner := text[1 : len(text)-1]
	r, rest, err := unescape(inner, '\'')
	if err != nil {
		return Value{}, &SyntaxError{Body: text, Reason: "bad character literal", Err: err}
	}
	if rest != "" {
		return Value{}, syntaxErr(text, "multi-character constant")
	}
	return Value{Kind: KindChar, Text: text, Rune: r, Resolved: true}, nil
}

// classifyString accepts one or more adjacent string literals and
// concatenates them.
func classifyString(text string) (Value, error) {
	var sb strings.Builder
	rest := text
	for rest != "" {
		if rest[0] != '"' {
			return Value{}, syntaxErr(text, "unexpected text after string literal")
		}
		rest = rest[1:]
		closed := false
		for rest != "" {
			if rest[0] == '"' {
				rest = rest[1:]
				closed = true
				break
			}
			r, tail, err := unescape(rest, '"')
			if err != nil {
				return Value{}, &SyntaxError{Body: text, Reason: "bad string literal", Err: err}
			}
			sb.WriteRune(r)
			rest = tail
		}
		if !closed {
			return Value{}, syntaxErr(text, "unterminated string literal")
		}
		rest = strings.TrimLeft(rest, " \t")
	}
	return Value{Kind: KindString, Text: text, Str: sb.String(), Resolved: true}, nil
}

// quotedEnd returns the index just past the literal that opens s, or -1.
func quotedEnd(s string) int {
	quote := s[0]
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		}
	}
	return -1
}

func looksLikeExpression(s string) bool {
	sawOperand := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isIdentChar(c) || c == '.':
			sawOperand = true
		case c == '\'':
			// char constants inside expressions are scanned by the resolver
			sawOperand = true
		case strings.IndexByte(" \t()+-*/%<>=!&|^~?:", c) >= 0:
		default:
			return false
		}
	}
	return sawOperand
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentChar(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
