package macro

import (
	"errors"
	"fmt"
	"strings"

	"modgen/internal/cdecl"
	"modgen/internal/literal"
)

// lookupFunc returns the value a referenced identifier stands for.
type lookupFunc func(name string) (literal.Value, error)

// exprError marks a malformed or non-constant expression; reference errors
// from lookup are passed through unchanged.
type exprError struct {
	err error
}

func (e *exprError) Error() string { return e.err.Error() }
func (e *exprError) Unwrap() error { return e.err }

func exprErrorf(format string, args ...any) error {
	return &exprError{err: fmt.Errorf(format, args...)}
}

type evaluator struct {
	toks     []token
	pos      int
	lookup   lookupFunc
	classify literal.Classifier
}

// evaluate folds a constant expression.
func evaluate(src string, lookup lookupFunc, classify literal.Classifier) (literal.Value, error) {
	toks, err := tokenize(src)
	if err != nil {
		return literal.Value{}, &exprError{err: err}
	}
	ev := &evaluator{toks: toks, lookup: lookup, classify: classify}
	v, err := ev.parseTernary()
	if err != nil {
		return literal.Value{}, err
	}
	if t := ev.peek(); t.kind != tokEOF {
		return literal.Value{}, exprErrorf("unexpected %s", t)
	}
	return v, nil
}

func (ev *evaluator) peek() token { return ev.toks[ev.pos] }

func (ev *evaluator) next() token {
	t := ev.toks[ev.pos]
	if t.kind != tokEOF {
		ev.pos++
	}
	return t
}

func (ev *evaluator) isOp(text string) bool {
	t := ev.peek()
	return t.kind == tokOp && t.text == text
}

func (ev *evaluator) parseTernary() (literal.Value, error) {
	cond, err := ev.parseBinary(1)
	if err != nil {
		return literal.Value{}, err
	}
	if !ev.isOp("?") {
		return cond, nil
	}
	ev.next()
	a, err := ev.parseTernary()
	if err != nil {
		return literal.Value{}, err
	}
	if !ev.isOp(":") {
		return literal.Value{}, exprErrorf("ternary without ':'")
	}
	ev.next()
	b, err := ev.parseTernary()
	if err != nil {
		return literal.Value{}, err
	}
	if err := requireArithmetic("?:", cond); err != nil {
		return literal.Value{}, &exprError{err: err}
	}
	if a.Kind.IsArithmetic() && b.Kind.IsArithmetic() {
		k := commonKind(a.Kind, b.Kind)
		a, b = convert(a, k), convert(b, k)
	} else if a.Kind != b.Kind {
		return literal.Value{}, exprErrorf("ternary branches have kinds %s and %s", a.Kind, b.Kind)
	}
	if cond.IsZero() {
		return b, nil
	}
	return a, nil
}

func precedence(op string) int {
	switch op {
	case "*", "/", "%":
		return 10
	case "+", "-":
		return 9
	case "<<", ">>":
		return 8
	case "<", ">", "<=", ">=":
		return 7
	case "==", "!=":
		return 6
	case "&":
		return 5
	case "^":
		return 4
	case "|":
		return 3
	case "&&":
		return 2
	case "||":
		return 1
	}
	return -1
}

// parseBinary is precedence climbing; every binary operator here is left
// associative.
func (ev *evaluator) parseBinary(minPrec int) (literal.Value, error) {
	l, err := ev.parseUnary()
	if err != nil {
		return literal.Value{}, err
	}
	for {
		t := ev.peek()
		if t.kind != tokOp {
			return l, nil
		}
		p := precedence(t.text)
		if p < minPrec {
			return l, nil
		}
		ev.next()
		r, err := ev.parseBinary(p + 1)
		if err != nil {
			return literal.Value{}, err
		}
		l, err = binary(t.text, l, r)
		if err != nil {
			return literal.Value{}, &exprError{err: err}
		}
	}
}

func (ev *evaluator) parseUnary() (literal.Value, error) {
	t := ev.next()
	switch t.kind {
	case tokOp:
		switch t.text {
		case "-", "+", "~", "!":
			v, err := ev.parseUnary()
			if err != nil {
				return literal.Value{}, err
			}
			v, err = unary(t.text, v)
			if err != nil {
				return literal.Value{}, &exprError{err: err}
			}
			return v, nil
		case "(":
			if typ, ok := ev.castType(); ok {
				v, err := ev.parseUnary()
				if err != nil {
					return literal.Value{}, err
				}
				v, err = cast(v, typ)
				if err != nil {
					return literal.Value{}, &exprError{err: err}
				}
				return v, nil
			}
			v, err := ev.parseTernary()
			if err != nil {
				return literal.Value{}, err
			}
			if !ev.isOp(")") {
				return literal.Value{}, exprErrorf("unclosed parenthesis")
			}
			ev.next()
			return v, nil
		}
		return literal.Value{}, exprErrorf("unexpected operator %s", t)
	case tokNumber, tokChar, tokString:
		v, err := ev.classify.Classify(t.text)
		if err != nil {
			if errors.Is(err, literal.ErrDeferred) {
				return literal.Value{}, exprErrorf("malformed operand %s", t)
			}
			return literal.Value{}, &exprError{err: err}
		}
		return v, nil
	case tokIdent:
		return ev.lookup(t.text)
	}
	return literal.Value{}, exprErrorf("expected operand, got %s", t)
}

// castType recognises "(builtin type)" right after an opening parenthesis
// and consumes it.
func (ev *evaluator) castType() (cdecl.TypeRef, bool) {
	var words []string
	i := ev.pos
	for ev.toks[i].kind == tokIdent {
		words = append(words, ev.toks[i].text)
		i++
	}
	if len(words) == 0 || ev.toks[i].kind != tokOp || ev.toks[i].text != ")" {
		return nil, false
	}
	t, ok := cdecl.Builtin(strings.Join(words, " "))
	if !ok {
		return nil, false
	}
	ev.pos = i + 1
	return t, true
}
