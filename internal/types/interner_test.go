package types

import (
	"testing"

	"modgen/internal/source"
)

func TestInternerDeduplicatesStructuralTypes(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	p1 := in.Intern(MakePointer(b.Char))
	p2 := in.Intern(MakePointer(b.Char))
	if p1 != p2 {
		t.Fatalf("pointer types must be interned: %d vs %d", p1, p2)
	}
	if in.Intern(MakeArray(b.Char, 5)) == in.Intern(MakeArray(b.Char, 6)) {
		t.Fatalf("array length is part of the identity")
	}
	if b.Char == b.Uint8 || b.Char == b.Int8 {
		t.Fatalf("plain char must stay distinct from signed/unsigned 8-bit ints")
	}
	if b.Bool == b.Uint8 {
		t.Fatalf("bool must stay distinct from uint8")
	}
}

func TestNominalTypesAreDistinct(t *testing.T) {
	in := NewInterner(nil)
	name := in.Strings.Intern("S")
	a := in.RegisterStruct(name, source.Pos{})
	b := in.RegisterStruct(name, source.Pos{})
	if a == b {
		t.Fatalf("each registration must yield a fresh TypeID")
	}
}

func TestStructFieldsAndLabel(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	s := in.RegisterStruct(source.NoStringID, source.Pos{})
	self := in.Intern(MakePointer(s))
	in.SetStructFields(s, []StructField{
		{Name: in.Strings.Intern("i"), Type: b.Int32},
		{Name: in.Strings.Intern("c"), Type: b.Char},
	})
	fields := in.StructFields(s)
	if len(fields) != 2 || fields[0].Type != b.Int32 || fields[1].Type != b.Char {
		t.Fatalf("unexpected fields: %+v", fields)
	}
	if got := Label(in, s); got != "struct { i: int32, c: char }" {
		t.Fatalf("label = %q", got)
	}
	if tt := in.MustLookup(self); tt.Elem != s {
		t.Fatalf("self pointer must reference the struct slot")
	}
}

func TestFnStructuralSharing(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	f1 := in.RegisterFn([]TypeID{b.Int32, b.Char}, b.Void)
	f2 := in.RegisterFn([]TypeID{b.Int32, b.Char}, b.Void)
	f3 := in.RegisterFn([]TypeID{b.Int32}, b.Void)
	if f1 != f2 || f1 == f3 {
		t.Fatalf("fn identity: %d %d %d", f1, f2, f3)
	}
	if got := Label(in, f1); got != "fn(int32, char) -> void" {
		t.Fatalf("label = %q", got)
	}
}

func TestAliasResolve(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	fn := in.RegisterFn(nil, b.Int32)
	inner := in.RegisterAlias(in.Strings.Intern("func"), source.Pos{})
	in.SetAliasTarget(inner, fn)
	outer := in.RegisterAlias(in.Strings.Intern("func2"), source.Pos{})
	in.SetAliasTarget(outer, inner)
	if in.Resolve(outer) != fn {
		t.Fatalf("Resolve must follow alias chains")
	}
	if !in.IsCallable(outer) {
		t.Fatalf("alias of fn must be callable")
	}
	if Label(in, outer) != "func2" {
		t.Fatalf("alias label = %q", Label(in, outer))
	}
}

func TestEnumInfo(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	e := in.RegisterEnum(in.Strings.Intern("e"), source.Pos{})
	in.SetEnumBaseType(e, b.Int32)
	in.SetEnumVariants(e, []EnumVariantInfo{
		{Name: in.Strings.Intern("A"), Value: 0, Implicit: true},
		{Name: in.Strings.Intern("B"), Value: 10},
	})
	info, ok := in.EnumInfo(e)
	if !ok || info.BaseType != b.Int32 || len(info.Variants) != 2 || info.Variants[1].Value != 10 {
		t.Fatalf("enum info: %+v", info)
	}
	if _, ok := in.EnumInfo(b.Int32); ok {
		t.Fatalf("EnumInfo on a non-enum must fail")
	}
}
