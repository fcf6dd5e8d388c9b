package macro

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"modgen/internal/cdecl"
	"modgen/internal/literal"
)

// ConstLookup supplies values for identifiers that are not macros, such as
// enum constants declared in the same unit.
type ConstLookup func(name string) (literal.Value, bool)

// Option configures a Resolver.
type Option func(*Resolver)

// WithConstants lets expressions reference non-macro constants.
func WithConstants(fn ConstLookup) Option {
	return func(r *Resolver) { r.consts = fn }
}

// WithPredefined makes defs visible to macro bodies, the way -D definitions
// are. A unit macro of the same name wins.
func WithPredefined(defs []cdecl.MacroDef) Option {
	return func(r *Resolver) {
		if len(defs) == 0 {
			return
		}
		r.predefined = make(map[string]cdecl.MacroDef, len(defs))
		for _, d := range defs {
			r.predefined[d.Name] = d
		}
	}
}

type outcome struct {
	val literal.Value
	err error
}

// Resolver resolves the macros of one unit. It is not safe for concurrent
// use; create one per unit.
type Resolver struct {
	unit       *cdecl.Unit
	classifier literal.Classifier
	consts     ConstLookup
	predefined map[string]cdecl.MacroDef

	memo    map[string]outcome
	stack   []string
	onStack map[string]int
	refs    map[string][]string

	evaluations int
}

// NewResolver prepares a resolver over unit. A nil classifier means
// literal.Default.
func NewResolver(unit *cdecl.Unit, classifier literal.Classifier, opts ...Option) *Resolver {
	if classifier == nil {
		classifier = literal.Default
	}
	r := &Resolver{
		unit:       unit,
		classifier: classifier,
		memo:       make(map[string]outcome),
		onStack:    make(map[string]int),
		refs:       make(map[string][]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the typed value of macro name. Results, failures included,
// are memoized: each macro body is evaluated at most once.
func (r *Resolver) Resolve(name string) (literal.Value, error) {
	if _, ok := r.lookup(name); !ok {
		return literal.Value{}, &Error{Kind: ErrKindUnresolved, Macro: name, Ref: name}
	}
	return r.resolve(name)
}

// Evaluate resolves an ad-hoc body against the unit's macros without
// recording it.
func (r *Resolver) Evaluate(body string) (literal.Value, error) {
	const owner = "<expr>"
	return r.compute(cdecl.MacroDef{Name: owner, Body: body})
}

func (r *Resolver) lookup(name string) (cdecl.MacroDef, bool) {
	if m, ok := r.unit.Macro(name); ok {
		return m, true
	}
	m, ok := r.predefined[name]
	return m, ok
}

// Evaluations reports how many macro bodies were actually evaluated.
func (r *Resolver) Evaluations() int { return r.evaluations }

func (r *Resolver) resolve(name string) (literal.Value, error) {
	if out, ok := r.memo[name]; ok {
		return out.val, out.err
	}
	if idx, ok := r.onStack[name]; ok {
		cycle := append(slices.Clone(r.stack[idx:]), name)
		return literal.Value{}, &Error{Kind: ErrKindCycle, Macro: name, Cycle: cycle}
	}
	m, _ := r.lookup(name)

	r.onStack[name] = len(r.stack)
	r.stack = append(r.stack, name)
	val, err := r.compute(m)
	r.stack = r.stack[:len(r.stack)-1]
	delete(r.onStack, name)

	var me *Error
	if errors.As(err, &me) && me.Kind == ErrKindUnresolved && me.Macro == name {
		if cycle := r.cyclePath(name); cycle != nil {
			err = &Error{Kind: ErrKindCycle, Macro: name, Cycle: cycle}
		}
	}

	r.memo[name] = outcome{val: val, err: err}
	return val, err
}

func (r *Resolver) compute(m cdecl.MacroDef) (literal.Value, error) {
	r.evaluations++
	v, err := r.classifier.Classify(m.Body)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, literal.ErrDeferred) {
		return literal.Value{}, &Error{Kind: ErrKindLiteral, Macro: m.Name, Err: err}
	}

	text := strings.TrimSpace(m.Body)
	if isIdent(text) {
		ref, err := r.reference(m.Name, text)
		if err != nil {
			return literal.Value{}, err
		}
		ref.Text = text
		return ref, nil
	}

	v, err = evaluate(text, func(id string) (literal.Value, error) {
		return r.reference(m.Name, id)
	}, r.classifier)
	if err != nil {
		var me *Error
		if errors.As(err, &me) {
			return literal.Value{}, me
		}
		return literal.Value{}, &Error{Kind: ErrKindLiteral, Macro: m.Name, Err: fmt.Errorf("%w: %w", literal.ErrUnclassifiable, err)}
	}
	v.Text = text
	return v, nil
}

// reference resolves identifier id used inside the body of owner.
func (r *Resolver) reference(owner, id string) (literal.Value, error) {
	if _, ok := r.lookup(id); !ok {
		if r.consts != nil {
			if v, ok := r.consts(id); ok {
				return v, nil
			}
		}
		return literal.Value{}, &Error{Kind: ErrKindUnresolved, Macro: owner, Ref: id}
	}
	v, err := r.resolve(id)
	if err == nil {
		return v, nil
	}
	var me *Error
	if errors.As(err, &me) && me.Kind == ErrKindCycle && slices.Contains(me.Cycle, owner) {
		return literal.Value{}, &Error{Kind: ErrKindCycle, Macro: owner, Cycle: rotateCycle(me.Cycle, owner)}
	}
	return literal.Value{}, &Error{Kind: ErrKindUnresolved, Macro: owner, Ref: id, Err: err}
}

// rotateCycle restarts a closed cycle at member.
func rotateCycle(cycle []string, member string) []string {
	open := cycle[:len(cycle)-1]
	i := slices.Index(open, member)
	if i <= 0 {
		return cycle
	}
	out := make([]string, 0, len(cycle))
	out = append(out, open[i:]...)
	out = append(out, open[:i]...)
	return append(out, member)
}

// macroRefs lists the macros named in the body of name, in order of first use.
func (r *Resolver) macroRefs(name string) []string {
	if refs, ok := r.refs[name]; ok {
		return refs
	}
	var refs []string
	if m, ok := r.lookup(name); ok {
		toks, _ := tokenize(m.Body)
		for _, tok := range toks {
			if tok.kind != tokIdent || slices.Contains(refs, tok.text) {
				continue
			}
			if _, ok := r.lookup(tok.text); ok {
				refs = append(refs, tok.text)
			}
		}
	}
	r.refs[name] = refs
	return refs
}

// cyclePath returns a reference path from name back to itself, or nil when
// name is not on any cycle. Membership follows the reference graph, not the
// order in which evaluation happened to fail.
func (r *Resolver) cyclePath(name string) []string {
	visited := map[string]bool{}
	path := []string{name}
	var walk func(cur string) bool
	walk = func(cur string) bool {
		for _, next := range r.macroRefs(cur) {
			if next == name {
				path = append(path, next)
				return true
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			path = append(path, next)
			if walk(next) {
				return true
			}
			path = path[:len(path)-1]
		}
		return false
	}
	if walk(name) {
		return path
	}
	return nil
}
