package translate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"modgen/internal/cdecl"
	"modgen/internal/diag"
	"modgen/internal/layout"
	"modgen/internal/literal"
	"modgen/internal/macro"
	"modgen/internal/source"
	"modgen/internal/trace"
	"modgen/internal/typemap"
	"modgen/internal/types"
)

// Options configures one translation.
type Options struct {
	Rules  NameRules
	Target layout.Target
	// Classifier defaults to literal.Default; the driver shares a cache.
	Classifier literal.Classifier
	// MaxDiagnostics caps the result bag; 0 means the bag default.
	MaxDiagnostics int
	// Reporter additionally receives every diagnostic.
	Reporter diag.Reporter
	// Strings is shared with the result's type interner when set.
	Strings *source.Interner
	// Off switches whole categories of entries off; they are neither
	// translated nor diagnosed.
	Off Category
	// Defines are macros visible to macro bodies without being translated
	// themselves. A unit macro of the same name wins.
	Defines []cdecl.MacroDef
}

// Result is the outcome of translating one unit.
type Result struct {
	Unit   *cdecl.Unit
	Types  *types.Interner
	Target layout.Target
	Decls  []Decl
	Bag    *diag.Bag
	// Evaluations counts macro bodies evaluated by the resolver.
	Evaluations int
	// Err is set when ctx was cancelled before every entry was visited.
	Err error
}

// Lookup finds an emitted declaration by exact name.
func (r *Result) Lookup(name string) (Decl, bool) {
	for _, d := range r.Decls {
		if d.Name == name {
			return d, true
		}
	}
	return Decl{}, false
}

// Count reports how many declarations of kind were emitted.
func (r *Result) Count(kind Kind) int {
	n := 0
	for _, d := range r.Decls {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

type translator struct {
	ctx    context.Context
	tracer trace.Tracer
	span   uint64

	unit     *cdecl.Unit
	mapper   *typemap.Mapper
	types    *types.Interner
	layout   *layout.LayoutEngine
	resolver *macro.Resolver
	names    *NameTable
	reporter diag.Reporter

	off          Category
	decls        []Decl
	enumsEmitted int
}

// Translate translates unit. It never fails as a whole: problems are
// reported through Result.Bag.
func Translate(ctx context.Context, unit *cdecl.Unit, opts Options) *Result {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := trace.Start(ctx, trace.ScopeUnit, "unit:"+unit.Name)

	bag := diag.NewBag(opts.MaxDiagnostics)
	var reporter diag.Reporter = diag.BagReporter{Bag: bag}
	if opts.Reporter != nil {
		reporter = diag.MultiReporter{reporter, opts.Reporter}
	}
	target := opts.Target
	if target.PtrSize == 0 {
		target = layout.X86_64LinuxGNU()
	}

	typesIn := types.NewInterner(opts.Strings)
	t := &translator{
		ctx:      ctx,
		tracer:   trace.FromContext(ctx),
		span:     span.ID(),
		unit:     unit,
		mapper:   typemap.New(typesIn),
		types:    typesIn,
		layout:   layout.New(target, typesIn),
		names:    NewNameTable(opts.Rules),
		reporter: reporter,
		off:      opts.Off,
	}
	t.resolver = macro.NewResolver(unit, opts.Classifier,
		macro.WithConstants(enumConstants(unit)),
		macro.WithPredefined(opts.Defines))

	res := &Result{Unit: unit, Types: typesIn, Target: target, Bag: bag}
	res.Err = t.run()
	res.Decls = t.decls
	res.Evaluations = t.resolver.Evaluations()

	span.WithExtra("decls", strconv.Itoa(len(t.decls))).
		WithExtra("diagnostics", strconv.Itoa(bag.Len())).
		End("")
	return res
}

func (t *translator) run() error {
	macros := t.unit.Macros()
	if t.off.Has(CategoryMacros) {
		macros = nil
	}
	for _, m := range macros {
		if err := t.ctx.Err(); err != nil {
			return err
		}
		t.macro(m)
	}
	for _, d := range t.unit.Decls() {
		if err := t.ctx.Err(); err != nil {
			return err
		}
		t.decl(d)
	}
	if t.off.Has(CategoryEnums) {
		return nil
	}
	// enums declared by tag only
	for _, name := range t.unit.TypeNames() {
		ty, _ := t.unit.Type(name)
		if _, ok := ty.(*cdecl.Enum); !ok || t.mapper.Seen(ty) {
			continue
		}
		if _, err := t.mapper.Map(ty); err != nil {
			t.fail(diag.UnsupportedType, name, source.Pos{}, err)
			continue
		}
		t.flushEnums(source.Pos{})
	}
	return nil
}

func (t *translator) macro(m cdecl.MacroDef) {
	if strings.TrimSpace(m.Body) == "" {
		diag.ReportWarning(t.reporter, diag.LitEmptyMacro, m.Name, m.Pos,
			fmt.Sprintf("macro %s has no value and is not translated", m.Name)).Emit()
		return
	}
	val, err := t.resolver.Resolve(m.Name)
	if err != nil {
		code := diag.UnclassifiableLiteral
		var me *macro.Error
		if errors.As(err, &me) {
			code = me.Code()
		}
		t.fail(code, m.Name, m.Pos, err)
		return
	}
	ty, ok := t.constType(val.Kind)
	if !ok {
		t.fail(diag.UnclassifiableLiteral, m.Name, m.Pos, fmt.Errorf("macro %s: value of kind %s", m.Name, val.Kind))
		return
	}
	t.emit(Decl{Kind: KindConst, Name: m.Name, Type: ty, Value: &val, Pos: m.Pos})
}

// constType is the target type of a constant of literal kind k.
func (t *translator) constType(k literal.Kind) (types.TypeID, bool) {
	b := t.types.Builtins()
	switch k {
	case literal.KindInt, literal.KindSignedInt:
		return b.Int32, true
	case literal.KindUInt:
		return b.Uint32, true
	case literal.KindLong:
		return b.Int64, true
	case literal.KindULong:
		return b.Uint64, true
	case literal.KindFloat:
		return b.Float32, true
	case literal.KindDouble:
		return b.Float64, true
	case literal.KindChar:
		return b.Char, true
	case literal.KindString:
		return b.String, true
	}
	return types.NoTypeID, false
}

func (t *translator) decl(d cdecl.Declaration) {
	switch d.Kind {
	case cdecl.DeclVariable:
		if cdecl.IsFunc(d.Type) {
			if !t.off.Has(CategoryFunctions) {
				t.function(d)
			}
			return
		}
		if !t.off.Has(CategoryVariables) {
			t.variable(d)
		}
	case cdecl.DeclFunction:
		if !t.off.Has(CategoryFunctions) {
			t.function(d)
		}
	case cdecl.DeclTypedef:
		t.alias(d)
	default:
		t.fail(diag.UnsupportedType, d.Name, d.Pos, fmt.Errorf("%s: unknown declaration kind %s", d.Name, d.Kind))
	}
}

func (t *translator) variable(d cdecl.Declaration) {
	if cdecl.IsVoid(d.Type) {
		t.fail(diag.UnsupportedType, d.Name, d.Pos, fmt.Errorf("variable %s: %w", d.Name, typemap.ErrUnsupported))
		return
	}
	id, err := t.mapper.Map(d.Type)
	if err != nil {
		t.fail(diag.UnsupportedType, d.Name, d.Pos, fmt.Errorf("variable %s: %w", d.Name, err))
		return
	}
	lay, ok := t.layoutOf(d, id)
	if !ok {
		return
	}
	linkage := LinkageInternal
	if d.External {
		linkage = LinkageExternal
	}
	t.emit(Decl{Kind: KindVar, Name: d.Name, Type: id, Linkage: linkage, ReadOnly: d.Const, Layout: lay, Pos: d.Pos})
	t.flushEnums(d.Pos)
}

func (t *translator) function(d cdecl.Declaration) {
	fn, ok := cdecl.Resolve(d.Type).(*cdecl.Func)
	if !ok {
		t.fail(diag.UnsupportedType, d.Name, d.Pos, fmt.Errorf("function %s: type %s is not a function", d.Name, d.Type))
		return
	}
	id, err := t.mapper.Map(d.Type)
	if err != nil {
		t.fail(diag.UnsupportedType, d.Name, d.Pos, fmt.Errorf("function %s: %w", d.Name, err))
		return
	}
	params := make([]Param, 0, len(fn.Params))
	for i, p := range fn.Params {
		pid, err := t.mapper.MapParam(p)
		if err != nil {
			t.fail(diag.UnsupportedType, d.Name, d.Pos, fmt.Errorf("function %s: parameter %d: %w", d.Name, i, err))
			return
		}
		params = append(params, Param{Name: paramName(d.ParamNames, i), Type: pid})
	}
	result, err := t.mapper.MapReturn(fn.Returns)
	if err != nil {
		t.fail(diag.UnsupportedType, d.Name, d.Pos, fmt.Errorf("function %s: result: %w", d.Name, err))
		return
	}
	linkage := LinkageExternal
	if d.Kind == cdecl.DeclVariable && !d.External {
		linkage = LinkageInternal
	}
	t.emit(Decl{Kind: KindFunc, Name: d.Name, Type: id, Linkage: linkage, Params: params, Result: result, Pos: d.Pos})
	t.flushEnums(d.Pos)
}

func paramName(names []string, i int) string {
	if i < len(names) && names[i] != "" {
		return names[i]
	}
	return "arg" + strconv.Itoa(i)
}

func (t *translator) alias(d cdecl.Declaration) {
	id, err := t.mapper.Map(d.Type)
	if err != nil {
		t.fail(diag.UnsupportedType, d.Name, d.Pos, fmt.Errorf("typedef %s: %w", d.Name, err))
		return
	}
	lay, ok := t.layoutOf(d, id)
	if !ok {
		return
	}
	t.emit(Decl{Kind: KindAlias, Name: d.Name, Type: id, Layout: lay, Pos: d.Pos})
	t.flushEnums(d.Pos)
}

func (t *translator) layoutOf(d cdecl.Declaration, id types.TypeID) (*layout.TypeLayout, bool) {
	l, err := t.layout.LayoutOf(id)
	if err != nil {
		t.fail(diag.UnsupportedType, d.Name, d.Pos, fmt.Errorf("%s %s: %w", d.Kind, d.Name, err))
		return nil, false
	}
	return &l, true
}

// flushEnums emits the constants of enums mapped since the last call.
func (t *translator) flushEnums(pos source.Pos) {
	enums := t.mapper.Enums()
	if t.off.Has(CategoryEnums) {
		t.enumsEmitted = len(enums)
		return
	}
	for ; t.enumsEmitted < len(enums); t.enumsEmitted++ {
		id := enums[t.enumsEmitted]
		info, ok := t.types.EnumInfo(id)
		if !ok {
			continue
		}
		for _, v := range info.Variants {
			val := enumValue(v.Value, t.types.Resolve(info.BaseType) == t.types.Builtins().Uint32)
			t.emit(Decl{
				Kind:  KindEnumConst,
				Name:  t.types.Strings.MustLookup(v.Name),
				Type:  id,
				Value: &val,
				Pos:   pos,
			})
		}
	}
}

func enumValue(v int64, unsigned bool) literal.Value {
	switch {
	case v >= math.MinInt32 && v <= math.MaxInt32:
		return literal.Int(literal.KindInt, v)
	case unsigned:
		return literal.Uint(literal.KindUInt, uint64(v)) //nolint:gosec // v is within uint32 range for uint32-based enums
	default:
		return literal.Int(literal.KindLong, v)
	}
}

// emit registers d in the name table and appends it.
func (t *translator) emit(d Decl) {
	prev, prevPos, ok := t.names.Declare(d.Name, d.Pos)
	if !ok {
		msg := fmt.Sprintf("%s %s conflicts with %s", d.Kind, d.Name, prev)
		b := diag.ReportError(t.reporter, diag.DuplicateDeclaration, d.Name, d.Pos, msg)
		if prevPos.Known() {
			b = b.WithNote(prevPos, prev+" declared here")
		}
		b.Emit()
		trace.Failure(t.tracer, trace.ScopeEntry, "decl:"+d.Name, msg, t.span)
		return
	}
	t.decls = append(t.decls, d)
}

func (t *translator) fail(code diag.Code, subject string, pos source.Pos, err error) {
	diag.ReportError(t.reporter, code, subject, pos, err.Error()).Emit()
	trace.Failure(t.tracer, trace.ScopeEntry, "entry:"+subject, code.ID(), t.span)
}

// enumConstants exposes the enumerators of every named enum to macro
// expressions.
func enumConstants(unit *cdecl.Unit) macro.ConstLookup {
	var values map[string]literal.Value
	return func(name string) (literal.Value, bool) {
		if values == nil {
			values = collectEnumerators(unit)
		}
		v, ok := values[name]
		return v, ok
	}
}

func collectEnumerators(unit *cdecl.Unit) map[string]literal.Value {
	values := make(map[string]literal.Value)
	for _, name := range unit.TypeNames() {
		ty, _ := unit.Type(name)
		e, ok := cdecl.Resolve(ty).(*cdecl.Enum)
		if !ok {
			continue
		}
		next := int64(0)
		for _, m := range e.Members {
			v := next
			if m.Value != nil {
				v = *m.Value
			}
			if _, seen := values[m.Name]; !seen {
				values[m.Name] = enumValue(v, false)
			}
			next = v + 1
		}
	}
	return values
}
