package layout_test

import (
	"errors"
	"testing"

	"modgen/internal/layout"
	"modgen/internal/source"
	"modgen/internal/types"
)

func newStruct(in *types.Interner, name string, fields ...types.StructField) types.TypeID {
	id := in.RegisterStruct(in.Strings.Intern(name), source.Pos{})
	in.SetStructFields(id, fields)
	return id
}

func field(in *types.Interner, name string, t types.TypeID) types.StructField {
	return types.StructField{Name: in.Strings.Intern(name), Type: t}
}

func TestStructLayoutPadsToAlignment(t *testing.T) {
	in := types.NewInterner(nil)
	b := in.Builtins()
	s := newStruct(in, "S", field(in, "i", b.Int32), field(in, "c", b.Char))

	eng := layout.New(layout.X86_64LinuxGNU(), in)
	l, err := eng.LayoutOf(s)
	if err != nil {
		t.Fatalf("LayoutOf: %v", err)
	}
	if l.Size != 8 || l.Align != 4 {
		t.Fatalf("struct S: size=%d align=%d, want 8/4", l.Size, l.Align)
	}
	if off, _ := eng.FieldOffset(s, 1); off != 4 {
		t.Fatalf("offset of c = %d, want 4", off)
	}
}

func TestUnionLayoutIsMaxMember(t *testing.T) {
	in := types.NewInterner(nil)
	b := in.Builtins()
	u := in.RegisterUnion(in.Strings.Intern("U"), source.Pos{})
	in.SetUnionMembers(u, []types.UnionMember{
		{Name: in.Strings.Intern("i"), Type: b.Int32},
		{Name: in.Strings.Intern("c"), Type: b.Char},
	})
	eng := layout.New(layout.X86_64LinuxGNU(), in)
	l, err := eng.LayoutOf(u)
	if err != nil {
		t.Fatalf("LayoutOf: %v", err)
	}
	if l.Size != 4 || l.Align != 4 {
		t.Fatalf("union U: size=%d align=%d, want 4/4", l.Size, l.Align)
	}
	for i, off := range l.FieldOffsets {
		if off != 0 {
			t.Fatalf("member %d at offset %d, want 0", i, off)
		}
	}
}

func TestTargetDifferences(t *testing.T) {
	in := types.NewInterner(nil)
	b := in.Builtins()
	ptr := in.Intern(types.MakePointer(b.Char))
	s := newStruct(in, "D", field(in, "c", b.Char), field(in, "d", b.Float64))

	cases := []struct {
		target  layout.Target
		ptr     int
		structS int
	}{
		{layout.X86_64LinuxGNU(), 8, 16},
		{layout.I386LinuxGNU(), 4, 12},
	}
	for _, tc := range cases {
		eng := layout.New(tc.target, in)
		if got, _ := eng.SizeOf(ptr); got != tc.ptr {
			t.Errorf("%s: pointer size %d, want %d", tc.target.Triple, got, tc.ptr)
		}
		if got, _ := eng.SizeOf(s); got != tc.structS {
			t.Errorf("%s: struct size %d, want %d", tc.target.Triple, got, tc.structS)
		}
	}
}

func TestArrayAndAliasLayout(t *testing.T) {
	in := types.NewInterner(nil)
	b := in.Builtins()
	arr := in.Intern(types.MakeArray(b.Char, 5))
	alias := in.RegisterAlias(in.Strings.Intern("buf"), source.Pos{})
	in.SetAliasTarget(alias, arr)

	eng := layout.New(layout.X86_64LinuxGNU(), in)
	l, err := eng.LayoutOf(alias)
	if err != nil || l.Size != 5 || l.Align != 1 {
		t.Fatalf("char[5] via alias: %+v %v", l, err)
	}
}

func TestRecursiveStructReportsError(t *testing.T) {
	in := types.NewInterner(nil)
	node := in.RegisterStruct(in.Strings.Intern("node"), source.Pos{})
	in.SetStructFields(node, []types.StructField{field(in, "self", node)})

	eng := layout.New(layout.X86_64LinuxGNU(), in)
	_, err := eng.LayoutOf(node)
	var lerr *layout.LayoutError
	if !errors.As(err, &lerr) || lerr.Kind != layout.LayoutErrRecursiveUnsized {
		t.Fatalf("expected recursive layout error, got %v", err)
	}

	// a pointer to itself is fine
	list := in.RegisterStruct(in.Strings.Intern("list"), source.Pos{})
	in.SetStructFields(list, []types.StructField{field(in, "next", in.Intern(types.MakePointer(list)))})
	if size, err := eng.SizeOf(list); err != nil || size != 8 {
		t.Fatalf("self-pointer struct: size=%d err=%v", size, err)
	}
}

func TestVoidMemberIsUnsized(t *testing.T) {
	in := types.NewInterner(nil)
	s := newStruct(in, "V", field(in, "v", in.Builtins().Void))
	eng := layout.New(layout.X86_64LinuxGNU(), in)
	_, err := eng.LayoutOf(s)
	var lerr *layout.LayoutError
	if !errors.As(err, &lerr) || lerr.Kind != layout.LayoutErrUnsized {
		t.Fatalf("expected unsized error, got %v", err)
	}
}

func TestTargetByTriple(t *testing.T) {
	for _, triple := range layout.KnownTriples() {
		tg, ok := layout.TargetByTriple(triple)
		if !ok || tg.Triple != triple {
			t.Fatalf("TargetByTriple(%q) = %+v, %v", triple, tg, ok)
		}
	}
	if _, ok := layout.TargetByTriple("pdp11"); ok {
		t.Fatalf("unknown triple must not resolve")
	}
}
