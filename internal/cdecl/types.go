package cdecl

import (
	"fmt"
	"strings"
)

// TypeRef is a C type. The set of variants is closed.
type TypeRef interface {
	implType()
	String() string
}

// Void is the C void type.
type Void struct{}

// Scalar is an arithmetic type: char/int family, floating point or _Bool.
type Scalar struct {
	Name    string
	Width   uint8 // bits
	Signed  bool
	IsFloat bool
	IsBool  bool
	// IsChar marks plain "char", whose signedness is a target property.
	IsChar bool
}

// Pointer is T*.
type Pointer struct {
	To TypeRef
}

// Array is T[Len]. Len == 0 spells an incomplete array, which is only valid
// as a function parameter.
type Array struct {
	Of  TypeRef
	Len uint64
}

// EnumMember is one enumerator; Value is nil when the source gave none.
type EnumMember struct {
	Name  string
	Value *int64
}

type Enum struct {
	Name    string
	Members []EnumMember
}

// Field is a struct field or union member.
type Field struct {
	Name string
	Type TypeRef
}

type Struct struct {
	Name   string
	Fields []Field
}

type Union struct {
	Name    string
	Members []Field
}

// Func is a function type. An empty Params list means (void).
type Func struct {
	Returns  TypeRef
	Params   []TypeRef
	Variadic bool
}

// Typedef is a named alias; it is not a distinct type.
type Typedef struct {
	Alias      string
	Underlying TypeRef
}

func (*Void) implType()    {}
func (*Scalar) implType()  {}
func (*Pointer) implType() {}
func (*Array) implType()   {}
func (*Enum) implType()    {}
func (*Struct) implType()  {}
func (*Union) implType()   {}
func (*Func) implType()    {}
func (*Typedef) implType() {}

func (*Void) String() string { return "void" }

func (s *Scalar) String() string { return s.Name }

func (p *Pointer) String() string {
	if p.To == nil {
		return "?*"
	}
	return p.To.String() + "*"
}

func (a *Array) String() string {
	if a.Of == nil {
		return "?[]"
	}
	if a.Len == 0 {
		return a.Of.String() + "[]"
	}
	return fmt.Sprintf("%s[%d]", a.Of, a.Len)
}

func (e *Enum) String() string { return tagged("enum", e.Name) }

func (s *Struct) String() string { return tagged("struct", s.Name) }

func (u *Union) String() string { return tagged("union", u.Name) }

func (f *Func) String() string {
	parts := make([]string, 0, len(f.Params)+1)
	for _, p := range f.Params {
		if p == nil {
			parts = append(parts, "?")
			continue
		}
		parts = append(parts, p.String())
	}
	if f.Variadic {
		parts = append(parts, "...")
	}
	if len(parts) == 0 {
		parts = append(parts, "void")
	}
	ret := "?"
	if f.Returns != nil {
		ret = f.Returns.String()
	}
	return ret + " (" + strings.Join(parts, ", ") + ")"
}

func (t *Typedef) String() string { return t.Alias }

func tagged(kw, name string) string {
	if name == "" {
		return kw + " <anonymous>"
	}
	return kw + " " + name
}

// Resolve strips typedefs and returns the underlying type.
func Resolve(t TypeRef) TypeRef {
	for i := 0; i < 64; i++ {
		td, ok := t.(*Typedef)
		if !ok {
			return t
		}
		t = td.Underlying
	}
	return t
}

// IsFunc reports whether t is (a typedef of) a function type.
func IsFunc(t TypeRef) bool {
	_, ok := Resolve(t).(*Func)
	return ok
}

// IsVoid reports whether t is (a typedef of) void.
func IsVoid(t TypeRef) bool {
	_, ok := Resolve(t).(*Void)
	return ok
}

// LP64 scalar types, as a front end for x86_64 Linux reports them.
var (
	CVoid = &Void{}
	CBool = &Scalar{Name: "_Bool", Width: 8, IsBool: true}

	CChar   = &Scalar{Name: "char", Width: 8, Signed: true, IsChar: true}
	CSChar  = &Scalar{Name: "signed char", Width: 8, Signed: true}
	CUChar  = &Scalar{Name: "unsigned char", Width: 8}
	CShort  = &Scalar{Name: "short", Width: 16, Signed: true}
	CUShort = &Scalar{Name: "unsigned short", Width: 16}
	CInt    = &Scalar{Name: "int", Width: 32, Signed: true}
	CUInt   = &Scalar{Name: "unsigned int", Width: 32}
	CLong   = &Scalar{Name: "long", Width: 64, Signed: true}
	CULong  = &Scalar{Name: "unsigned long", Width: 64}
	CLLong  = &Scalar{Name: "long long", Width: 64, Signed: true}
	CULLong = &Scalar{Name: "unsigned long long", Width: 64}

	CFloat   = &Scalar{Name: "float", Width: 32, Signed: true, IsFloat: true}
	CDouble  = &Scalar{Name: "double", Width: 64, Signed: true, IsFloat: true}
	CLDouble = &Scalar{Name: "long double", Width: 128, Signed: true, IsFloat: true}
)

var builtinScalars = map[string]TypeRef{
	"void":               CVoid,
	"_Bool":              CBool,
	"bool":               CBool,
	"char":               CChar,
	"signed char":        CSChar,
	"unsigned char":      CUChar,
	"short":              CShort,
	"short int":          CShort,
	"signed short":       CShort,
	"unsigned short":     CUShort,
	"unsigned short int": CUShort,
	"int":                CInt,
	"signed":             CInt,
	"signed int":         CInt,
	"unsigned":           CUInt,
	"unsigned int":       CUInt,
	"long":               CLong,
	"long int":           CLong,
	"signed long":        CLong,
	"unsigned long":      CULong,
	"unsigned long int":  CULong,
	"long long":          CLLong,
	"long long int":      CLLong,
	"unsigned long long": CULLong,
	"float":              CFloat,
	"double":             CDouble,
	"long double":        CLDouble,
	"int8_t":             &Scalar{Name: "int8_t", Width: 8, Signed: true},
	"int16_t":            &Scalar{Name: "int16_t", Width: 16, Signed: true},
	"int32_t":            &Scalar{Name: "int32_t", Width: 32, Signed: true},
	"int64_t":            &Scalar{Name: "int64_t", Width: 64, Signed: true},
	"uint8_t":            &Scalar{Name: "uint8_t", Width: 8},
	"uint16_t":           &Scalar{Name: "uint16_t", Width: 16},
	"uint32_t":           &Scalar{Name: "uint32_t", Width: 32},
	"uint64_t":           &Scalar{Name: "uint64_t", Width: 64},
	"size_t":             &Scalar{Name: "size_t", Width: 64},
	"ssize_t":            &Scalar{Name: "ssize_t", Width: 64, Signed: true},
	"intptr_t":           &Scalar{Name: "intptr_t", Width: 64, Signed: true},
	"uintptr_t":          &Scalar{Name: "uintptr_t", Width: 64},
}

// Builtin looks up a builtin type by its spelling ("unsigned int", "_Bool").
// Internal whitespace is normalised.
func Builtin(spelling string) (TypeRef, bool) {
	t, ok := builtinScalars[strings.Join(strings.Fields(spelling), " ")]
	return t, ok
}
