package translate_test

import (
	"context"
	"testing"

	"modgen/internal/cdecl"
	"modgen/internal/diag"
	"modgen/internal/literal"
	"modgen/internal/testkit"
	"modgen/internal/trace"
	"modgen/internal/translate"
	"modgen/internal/types"
)

func translateFixture(t *testing.T, rules translate.NameRules) *translate.Result {
	t.Helper()
	res := translate.Translate(context.Background(), testkit.MustFixture(), translate.Options{Rules: rules})
	if res.Err != nil {
		t.Fatalf("translate: %v", res.Err)
	}
	if err := testkit.CheckResultInvariants(res, rules); err != nil {
		t.Fatalf("invariants: %v", err)
	}
	return res
}

func mustDecl(t *testing.T, res *translate.Result, name string) translate.Decl {
	t.Helper()
	d, ok := res.Lookup(name)
	if !ok {
		t.Fatalf("declaration %s not emitted", name)
	}
	return d
}

func TestFixtureMacros(t *testing.T) {
	res := translateFixture(t, translate.NameRules{})
	b := res.Types.Builtins()

	if res.Bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", res.Bag.Items())
	}
	if got := res.Bag.Count(diag.LitEmptyMacro); got != 1 {
		t.Fatalf("expected one empty-macro warning, got %d", got)
	}
	if _, ok := res.Lookup("TEST_H"); ok {
		t.Fatalf("include guard must not become a constant")
	}

	cases := []struct {
		name string
		typ  types.TypeID
		kind literal.Kind
		i64  int64
	}{
		{"BIN", b.Int32, literal.KindInt, 5},
		{"DEC", b.Int32, literal.KindInt, 42},
		{"OCT", b.Int32, literal.KindInt, 15},
		{"HEX", b.Int32, literal.KindInt, 255},
		{"one_l", b.Int64, literal.KindLong, 1},
		{"one_L", b.Int64, literal.KindLong, 1},
		{"one_u", b.Uint32, literal.KindUInt, 1},
		{"one_U", b.Uint32, literal.KindUInt, 1},
		{"SIGNED", b.Int32, literal.KindSignedInt, -42},
		{"ONE", b.Int32, literal.KindInt, 1},
		{"TWO", b.Int32, literal.KindInt, 2},
		{"THREE", b.Int32, literal.KindInt, 3},
	}
	for _, tc := range cases {
		d := mustDecl(t, res, tc.name)
		if d.Kind != translate.KindConst || d.Type != tc.typ {
			t.Errorf("%s: kind %s type %s", tc.name, d.Kind, types.Label(res.Types, d.Type))
			continue
		}
		if d.Value.Kind != tc.kind || d.Value.AsInt64() != tc.i64 {
			t.Errorf("%s = %s (%s), want %d (%s)", tc.name, d.Value, d.Value.Kind, tc.i64, tc.kind)
		}
	}

	if d := mustDecl(t, res, "PI"); d.Type != b.Float64 || d.Value.AsFloat64() != 3.14159 {
		t.Errorf("PI = %s typed %s", d.Value, types.Label(res.Types, d.Type))
	}
	if d := mustDecl(t, res, "SFLOAT"); d.Value.AsFloat64() != -1.5 {
		t.Errorf("SFLOAT = %s", d.Value)
	}
	if d := mustDecl(t, res, "CH"); d.Type != b.Char || d.Value.Rune != 'a' {
		t.Errorf("CH = %s typed %s", d.Value, types.Label(res.Types, d.Type))
	}
	if d := mustDecl(t, res, "STRING"); d.Type != b.String || d.Value.Str != "AaBb" {
		t.Errorf("STRING = %s typed %s", d.Value, types.Label(res.Types, d.Type))
	}
}

func TestFixtureDeclarations(t *testing.T) {
	res := translateFixture(t, translate.NameRules{})
	in := res.Types
	b := in.Builtins()

	// macros first, then declarations with enumerators after their enum
	order := []string{"c", "i", "e", "A", "B", "f"}
	start := -1
	for i, d := range res.Decls {
		if d.Name == "c" {
			start = i
			break
		}
	}
	if start < 0 || start+len(order) > len(res.Decls) {
		t.Fatalf("declaration c not found")
	}
	for i, name := range order {
		if got := res.Decls[start+i].Name; got != name {
			t.Fatalf("decl #%d = %s, want %s", start+i, got, name)
		}
	}

	if a, bb := mustDecl(t, res, "A"), mustDecl(t, res, "B"); a.Value.AsInt64() != 0 || bb.Value.AsInt64() != 10 {
		t.Fatalf("enum values A=%s B=%s", a.Value, bb.Value)
	}

	c := mustDecl(t, res, "c")
	if c.Kind != translate.KindVar || c.Linkage != translate.LinkageExternal || c.Type != b.Char {
		t.Fatalf("c: %+v", c)
	}
	if d := mustDecl(t, res, "c_arr"); types.Label(in, d.Type) != "[char; 5]" || d.Layout.Size != 5 {
		t.Fatalf("c_arr typed %s size %d", types.Label(in, d.Type), d.Layout.Size)
	}
	if d := mustDecl(t, res, "i_ptr"); types.Label(in, d.Type) != "*int32" {
		t.Fatalf("i_ptr typed %s", types.Label(in, d.Type))
	}

	s := mustDecl(t, res, "S")
	if s.Kind != translate.KindAlias || s.Layout.Size != 8 || s.Layout.Align != 4 {
		t.Fatalf("S: %+v layout %+v", s, s.Layout)
	}
	fields := in.StructFields(in.Resolve(s.Type))
	if len(fields) != 2 || in.Strings.MustLookup(fields[0].Name) != "i" || fields[0].Type != b.Int32 ||
		in.Strings.MustLookup(fields[1].Name) != "c" || fields[1].Type != b.Char {
		t.Fatalf("S fields: %+v", fields)
	}
	if u := mustDecl(t, res, "U"); u.Layout.Size != 4 || u.Layout.FieldOffsets[1] != 0 {
		t.Fatalf("U layout %+v", u.Layout)
	}
	if v := mustDecl(t, res, "s"); v.Type != s.Type {
		t.Fatalf("s must share the S alias")
	}

	ptr := mustDecl(t, res, "f_char_ptr")
	arr := mustDecl(t, res, "f_char_arr")
	if ptr.Params[0].Type != arr.Params[0].Type {
		t.Fatalf("char[5] parameter must decay to char*: %s vs %s",
			types.Label(in, arr.Params[0].Type), types.Label(in, ptr.Params[0].Type))
	}
	if ptr.Type != arr.Type {
		t.Fatalf("f_char_ptr and f_char_arr must share one fn type")
	}
	if fv := mustDecl(t, res, "f_void"); fv.Result != b.Void || len(fv.Params) != 0 {
		t.Fatalf("f_void: %+v", fv)
	}
	if fs := mustDecl(t, res, "f_struct"); fs.Params[0].Type != s.Type || fs.Result != s.Type || fs.Params[0].Name != "arg0" {
		t.Fatalf("f_struct: %+v", fs)
	}

	fn := mustDecl(t, res, "func")
	fnPtr := mustDecl(t, res, "func_ptr")
	if in.Resolve(fn.Type) != in.Resolve(fnPtr.Type) || !in.IsCallable(fnPtr.Type) {
		t.Fatalf("func and func_ptr must both be int32() callables")
	}
	if ff := mustDecl(t, res, "f_func_ptr"); ff.Params[0].Type != fnPtr.Type {
		t.Fatalf("f_func_ptr must take func_ptr")
	}
}

func TestCaseInsensitiveTargetReportsCollisions(t *testing.T) {
	rules := translate.NameRules{CaseInsensitive: true}
	res := translateFixture(t, rules)
	want := []string{"one_L", "one_U", "b", "s", "u"}
	if got := res.Bag.Count(diag.DuplicateDeclaration); got != len(want) {
		t.Fatalf("got %d duplicates, want %d: %+v", got, len(want), res.Bag.Items())
	}
	for _, name := range want {
		if len(res.Bag.BySubject(name)) != 1 {
			t.Errorf("expected a duplicate diagnostic for %s", name)
		}
	}
	if d := res.Bag.BySubject("s")[0]; len(d.Notes) != 1 {
		t.Errorf("duplicate of S must point at the first declaration")
	}

	sensitive := translateFixture(t, translate.NameRules{})
	if sensitive.Bag.Count(diag.DuplicateDeclaration) != 0 {
		t.Fatalf("case-sensitive target must accept case-only differences")
	}
}

func TestMacroFailuresAreReportedOncePerEntry(t *testing.T) {
	u := cdecl.NewUnit("cycles")
	for _, m := range []cdecl.MacroDef{
		{Name: "X", Body: "Y"},
		{Name: "Y", Body: "X + 1"},
		{Name: "Z", Body: "X * 2"},
		{Name: "W", Body: "MISSING"},
		{Name: "BAD", Body: "1 +"},
		{Name: "OK", Body: "0x10"},
	} {
		if err := u.AddMacro(m); err != nil {
			t.Fatal(err)
		}
	}
	res := translate.Translate(context.Background(), u, translate.Options{})
	checks := map[string]diag.Code{
		"X":   diag.CyclicMacroReference,
		"Y":   diag.CyclicMacroReference,
		"Z":   diag.UnresolvedMacroReference,
		"W":   diag.UnresolvedMacroReference,
		"BAD": diag.UnclassifiableLiteral,
	}
	for name, code := range checks {
		ds := res.Bag.BySubject(name)
		if len(ds) != 1 || ds[0].Code != code {
			t.Errorf("%s: got %+v, want one %s", name, ds, code.ID())
		}
	}
	if len(res.Decls) != 1 || res.Decls[0].Name != "OK" {
		t.Fatalf("only OK should translate: %+v", res.Decls)
	}
}

func TestMacrosSeeEnumConstants(t *testing.T) {
	u := cdecl.NewUnit("colors")
	if err := u.DefineType("enum color", &cdecl.Enum{Name: "color", Members: []cdecl.EnumMember{{Name: "RED"}, {Name: "GREEN"}}}); err != nil {
		t.Fatal(err)
	}
	if err := u.AddMacro(cdecl.MacroDef{Name: "AFTER_GREEN", Body: "GREEN + 1"}); err != nil {
		t.Fatal(err)
	}
	res := translate.Translate(context.Background(), u, translate.Options{})
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}
	if d := mustDecl(t, res, "AFTER_GREEN"); d.Value.AsInt64() != 2 {
		t.Fatalf("AFTER_GREEN = %s", d.Value)
	}
	// tag-only enums still export their constants
	if d := mustDecl(t, res, "GREEN"); d.Kind != translate.KindEnumConst || d.Value.AsInt64() != 1 {
		t.Fatalf("GREEN: %+v", d)
	}
}

func TestUnsupportedDeclarationsContinue(t *testing.T) {
	u := cdecl.NewUnit("bad")
	decls := []cdecl.Declaration{
		{Kind: cdecl.DeclVariable, Name: "v", Type: cdecl.CVoid},
		{Kind: cdecl.DeclVariable, Name: "ld", Type: cdecl.CLDouble},
		{Kind: cdecl.DeclFunction, Name: "printf", Type: &cdecl.Func{Returns: cdecl.CInt, Params: []cdecl.TypeRef{&cdecl.Pointer{To: cdecl.CChar}}, Variadic: true}},
		{Kind: cdecl.DeclVariable, Name: "local", Type: cdecl.CInt},
		{Kind: cdecl.DeclVariable, Name: "cb", Type: &cdecl.Func{Returns: cdecl.CVoid}, External: true},
	}
	for _, d := range decls {
		if err := u.AddDecl(d); err != nil {
			t.Fatal(err)
		}
	}
	res := translate.Translate(context.Background(), u, translate.Options{})
	if got := res.Bag.Count(diag.UnsupportedType); got != 3 {
		t.Fatalf("got %d UnsupportedType, want 3: %+v", got, res.Bag.Items())
	}
	if d := mustDecl(t, res, "local"); d.Linkage != translate.LinkageInternal {
		t.Fatalf("non-extern variable must have internal linkage")
	}
	if d := mustDecl(t, res, "cb"); d.Kind != translate.KindFunc {
		t.Fatalf("function-typed variable must translate as a function, got %s", d.Kind)
	}
}

func TestTranslateTracesFailures(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	u := cdecl.NewUnit("traced")
	if err := u.AddMacro(cdecl.MacroDef{Name: "LOOP", Body: "LOOP"}); err != nil {
		t.Fatal(err)
	}
	translate.Translate(ctx, u, translate.Options{})

	var sawFailure, sawEnd bool
	for _, ev := range ring.Snapshot() {
		switch {
		case ev.Kind == trace.KindFailure && ev.Name == "entry:LOOP":
			sawFailure = true
		case ev.Kind == trace.KindSpanEnd && ev.Name == "unit:traced":
			sawEnd = ev.Extra["diagnostics"] == "1"
		}
	}
	if !sawFailure || !sawEnd {
		t.Fatalf("missing trace events: failure=%v end=%v", sawFailure, sawEnd)
	}
}

func TestCancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := translate.Translate(ctx, testkit.MustFixture(), translate.Options{})
	if res.Err == nil || len(res.Decls) != 0 {
		t.Fatalf("cancelled run: err=%v decls=%d", res.Err, len(res.Decls))
	}
}

func TestNameTableKey(t *testing.T) {
	ci := translate.NewNameTable(translate.NameRules{CaseInsensitive: true})
	cs := translate.NewNameTable(translate.NameRules{})
	// "é" composed and decomposed are one identifier on every target
	if cs.Key("caf\u00e9") != cs.Key("cafe\u0301") {
		t.Fatalf("NFC normalisation missing")
	}
	if ci.Key("Straße") != ci.Key("STRASSE") {
		t.Fatalf("case folding missing")
	}
	if cs.Key("Name") == cs.Key("name") {
		t.Fatalf("case-sensitive keys must differ")
	}
}

func TestBadEnumReportedOnce(t *testing.T) {
	u := cdecl.NewUnit("enums")
	one := int64(1)
	e := &cdecl.Enum{Name: "E", Members: []cdecl.EnumMember{{Name: "X", Value: &one}, {Name: "Y", Value: &one}}}
	if err := u.DefineType("enum E", e); err != nil {
		t.Fatal(err)
	}
	if err := u.AddDecl(cdecl.Declaration{Kind: cdecl.DeclVariable, Name: "v", Type: e, External: true}); err != nil {
		t.Fatal(err)
	}
	res := translate.Translate(context.Background(), u, translate.Options{})
	if got := res.Bag.Len(); got != 1 {
		t.Fatalf("got %d diagnostics, want 1: %+v", got, res.Bag.Items())
	}
	if got := res.Bag.Count(diag.UnsupportedType); got != 1 {
		t.Fatalf("got %d UnsupportedType, want 1", got)
	}
}

func TestCategoriesSwitchedOff(t *testing.T) {
	full := translateFixture(t, translate.NameRules{})
	cases := []struct {
		off  translate.Category
		gone translate.Kind
	}{
		{translate.CategoryMacros, translate.KindConst},
		{translate.CategoryEnums, translate.KindEnumConst},
		{translate.CategoryVariables, translate.KindVar},
		{translate.CategoryFunctions, translate.KindFunc},
	}
	for _, tc := range cases {
		t.Run(tc.off.String(), func(t *testing.T) {
			res := translate.Translate(context.Background(), testkit.MustFixture(), translate.Options{Off: tc.off})
			if got := res.Count(tc.gone); got != 0 {
				t.Fatalf("%d %s declarations emitted with %s off", got, tc.gone, tc.off)
			}
			if full.Count(tc.gone) == 0 {
				t.Fatalf("fixture has no %s declarations", tc.gone)
			}
			if res.Count(translate.KindAlias) != full.Count(translate.KindAlias) {
				t.Fatalf("aliases must not depend on %s", tc.off)
			}
		})
	}
}

func TestParseCategories(t *testing.T) {
	c, err := translate.ParseCategories([]string{"Macros", " enums"})
	if err != nil {
		t.Fatal(err)
	}
	if !c.Has(translate.CategoryMacros) || !c.Has(translate.CategoryEnums) || c.Has(translate.CategoryFunctions) {
		t.Fatalf("categories = %s", c)
	}
	if c.String() != "enums,macros" {
		t.Fatalf("String() = %q", c.String())
	}
	if _, err := translate.ParseCategories([]string{"structs"}); err == nil {
		t.Fatalf("unknown category accepted")
	}
}

func TestDefinesAreVisibleNotEmitted(t *testing.T) {
	u := cdecl.NewUnit("defs")
	for _, m := range []cdecl.MacroDef{{Name: "SIZE", Body: "PAGE * 2"}, {Name: "PAGE", Body: "4096"}} {
		if err := u.AddMacro(m); err != nil {
			t.Fatal(err)
		}
	}
	res := translate.Translate(context.Background(), u, translate.Options{
		Defines: []cdecl.MacroDef{{Name: "PAGE", Body: "512"}, {Name: "EXTRA", Body: "1"}},
	})
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}
	if d := mustDecl(t, res, "SIZE"); d.Value.AsInt64() != 8192 {
		t.Fatalf("SIZE = %v, want the unit's PAGE to win", d.Value)
	}
	if _, ok := res.Lookup("EXTRA"); ok {
		t.Fatalf("injected define must not be translated")
	}
}

func TestConstVariableIsReadOnly(t *testing.T) {
	u := cdecl.NewUnit("ro")
	for _, d := range []cdecl.Declaration{
		{Kind: cdecl.DeclVariable, Name: "limit", Type: cdecl.CInt, External: true, Const: true},
		{Kind: cdecl.DeclVariable, Name: "count", Type: cdecl.CInt, External: true},
	} {
		if err := u.AddDecl(d); err != nil {
			t.Fatal(err)
		}
	}
	res := translate.Translate(context.Background(), u, translate.Options{})
	if d := mustDecl(t, res, "limit"); d.Kind != translate.KindVar || !d.ReadOnly {
		t.Fatalf("limit = %+v, want read-only var", d)
	}
	if d := mustDecl(t, res, "count"); d.ReadOnly {
		t.Fatalf("count must stay writable")
	}
}
