package testkit

import (
	"fmt"

	"modgen/internal/cdecl"
	"modgen/internal/source"
)

// FixtureMacros are the object-like macros of the reference header, in
// definition order. TEST_H is the include guard.
var FixtureMacros = []cdecl.MacroDef{
	{Name: "TEST_H", Body: ""},
	{Name: "BIN", Body: "0b101"},
	{Name: "DEC", Body: "42"},
	{Name: "OCT", Body: "017"},
	{Name: "HEX", Body: "0xFF"},
	{Name: "one_l", Body: "1l"},
	{Name: "one_L", Body: "1L"},
	{Name: "one_u", Body: "1u"},
	{Name: "one_U", Body: "1U"},
	{Name: "SIGNED", Body: "-42"},
	{Name: "FLOAT", Body: "1.5"},
	{Name: "SFLOAT", Body: "-1.5"},
	{Name: "PI", Body: "314159E-5"},
	{Name: "CH", Body: "'a'"},
	{Name: "STRING", Body: `"AaBb"`},
	{Name: "ONE", Body: "1"},
	{Name: "TWO", Body: "ONE + 1"},
	{Name: "THREE", Body: "(ONE) | (TWO)"},
}

// Fixture builds the reference header as a unit: every literal form, the
// scalar types, an enum, a struct, a union, function typedefs and one
// function per parameter kind.
func Fixture(file source.FileID) (*cdecl.Unit, error) {
	u := cdecl.NewUnit("test")
	u.File = file
	line := uint32(1)
	pos := func() source.Pos {
		line++
		return source.Pos{File: file, Line: line, Col: 1}
	}

	for _, m := range FixtureMacros {
		m.Pos = pos()
		if err := u.AddMacro(m); err != nil {
			return nil, err
		}
	}

	variable := func(name string, t cdecl.TypeRef) error {
		return u.AddDecl(cdecl.Declaration{Kind: cdecl.DeclVariable, Name: name, Type: t, External: true, Pos: pos()})
	}
	function := func(name string, ret cdecl.TypeRef, params ...cdecl.TypeRef) error {
		return u.AddDecl(cdecl.Declaration{
			Kind: cdecl.DeclFunction,
			Name: name,
			Type: &cdecl.Func{Returns: ret, Params: params},
			Pos:  pos(),
		})
	}

	var (
		steps []func() error
		e     *cdecl.Typedef
		s     *cdecl.Typedef
		un    *cdecl.Typedef
		fn    *cdecl.Typedef
		fnPtr *cdecl.Typedef
	)
	ten := int64(10)
	charArr := &cdecl.Array{Of: cdecl.CChar, Len: 5}
	intArr := &cdecl.Array{Of: cdecl.CInt, Len: 5}

	steps = append(steps,
		func() error { return variable("c", cdecl.CChar) },
		func() error { return variable("i", cdecl.CInt) },
		func() (err error) {
			e, err = u.AddTypedef("e", &cdecl.Enum{Members: []cdecl.EnumMember{{Name: "A"}, {Name: "B", Value: &ten}}}, pos())
			return err
		},
		func() error { return variable("f", cdecl.CFloat) },
		func() error { return variable("d", cdecl.CDouble) },
		func() error { return variable("b", cdecl.CBool) },
		func() error { return variable("c_ptr", &cdecl.Pointer{To: cdecl.CChar}) },
		func() error { return variable("c_arr", charArr) },
		func() error { return variable("i_ptr", &cdecl.Pointer{To: cdecl.CInt}) },
		func() error { return variable("i_arr", intArr) },
		func() (err error) {
			s, err = u.AddTypedef("S", &cdecl.Struct{Fields: []cdecl.Field{{Name: "i", Type: cdecl.CInt}, {Name: "c", Type: cdecl.CChar}}}, pos())
			return err
		},
		func() (err error) {
			un, err = u.AddTypedef("U", &cdecl.Union{Members: []cdecl.Field{{Name: "i", Type: cdecl.CInt}, {Name: "c", Type: cdecl.CChar}}}, pos())
			return err
		},
		func() error { return variable("s", s) },
		func() error { return variable("u", un) },
		func() (err error) {
			fn, err = u.AddTypedef("func", &cdecl.Func{Returns: cdecl.CInt}, pos())
			return err
		},
		func() (err error) {
			fnPtr, err = u.AddTypedef("func_ptr", &cdecl.Pointer{To: &cdecl.Func{Returns: cdecl.CInt}}, pos())
			return err
		},
		func() error { return function("f_void", cdecl.CVoid) },
		func() error { return function("f_int", cdecl.CInt, cdecl.CInt) },
		func() error { return function("f_char", cdecl.CChar, cdecl.CChar) },
		func() error { return function("f_enum", e, e) },
		func() error { return function("f_float", cdecl.CFloat, cdecl.CFloat) },
		func() error { return function("f_double", cdecl.CDouble, cdecl.CDouble) },
		func() error { return function("f_bool", cdecl.CBool, cdecl.CBool) },
		func() error { return function("f_struct", s, s) },
		func() error { return function("f_union", un, un) },
		func() error {
			return function("f_char_ptr", &cdecl.Pointer{To: cdecl.CChar}, &cdecl.Pointer{To: cdecl.CChar})
		},
		func() error { return function("f_char_arr", &cdecl.Pointer{To: cdecl.CChar}, charArr) },
		func() error { return function("f_int_ptr", &cdecl.Pointer{To: cdecl.CInt}, &cdecl.Pointer{To: cdecl.CInt}) },
		func() error { return function("f_int_arr", &cdecl.Pointer{To: cdecl.CInt}, intArr) },
		func() error { return function("f_func", cdecl.CInt, fn) },
		func() error { return function("f_func_ptr", cdecl.CInt, fnPtr) },
	)
	for i, step := range steps {
		if err := step(); err != nil {
			return nil, fmt.Errorf("fixture step %d: %w", i, err)
		}
	}
	return u, nil
}

// MustFixture is Fixture for tests.
func MustFixture() *cdecl.Unit {
	u, err := Fixture(source.NoFileID)
	if err != nil {
		panic(err)
	}
	return u
}
