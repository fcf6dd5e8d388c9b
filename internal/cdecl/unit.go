package cdecl

import (
	"errors"
	"fmt"
	"slices"

	"modgen/internal/source"
)

// MacroDef is an object-like macro: a name and its raw replacement text.
type MacroDef struct {
	Name string
	Body string
	Pos  source.Pos
}

// DeclKind enumerates the declaration forms the translator understands.
type DeclKind uint8

const (
	DeclVariable DeclKind = iota + 1
	DeclFunction
	DeclTypedef
)

func (k DeclKind) String() string {
	switch k {
	case DeclVariable:
		return "variable"
	case DeclFunction:
		return "function"
	case DeclTypedef:
		return "typedef"
	default:
		return fmt.Sprintf("DeclKind(%d)", k)
	}
}

// Declaration is a file-scope declaration. For DeclTypedef, Type is the
// *Typedef registered under Name.
type Declaration struct {
	Kind     DeclKind
	Name     string
	Type     TypeRef
	External bool
	// Const marks a const-qualified variable object.
	Const bool
	Pos   source.Pos
	// ParamNames are optional and parallel to the function's Params.
	ParamNames []string
}

var (
	ErrDuplicateMacro = errors.New("macro already defined")
	ErrDuplicateType  = errors.New("type name already defined")
	ErrNilType        = errors.New("declaration has no type")
)

// Unit is one header's worth of macros, declarations and named types.
type Unit struct {
	Name string
	File source.FileID

	macros     []MacroDef
	macroIndex map[string]int
	decls      []Declaration
	types      map[string]TypeRef
	typeOrder  []string
}

// NewUnit creates an empty unit.
func NewUnit(name string) *Unit {
	return &Unit{
		Name:       name,
		macroIndex: make(map[string]int),
		types:      make(map[string]TypeRef),
	}
}

// AddMacro registers an object-like macro. Names are case-sensitive.
func (u *Unit) AddMacro(m MacroDef) error {
	if _, ok := u.macroIndex[m.Name]; ok {
		return fmt.Errorf("%s: %w", m.Name, ErrDuplicateMacro)
	}
	u.macroIndex[m.Name] = len(u.macros)
	u.macros = append(u.macros, m)
	return nil
}

// DefineType registers a named type (typedef name, or a tag such as
// "struct node").
func (u *Unit) DefineType(name string, t TypeRef) error {
	if t == nil {
		return fmt.Errorf("%s: %w", name, ErrNilType)
	}
	if _, ok := u.types[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrDuplicateType)
	}
	u.types[name] = t
	u.typeOrder = append(u.typeOrder, name)
	return nil
}

// AddTypedef defines alias -> underlying and appends the matching
// DeclTypedef declaration. It returns the shared *Typedef.
func (u *Unit) AddTypedef(alias string, underlying TypeRef, pos source.Pos) (*Typedef, error) {
	td := &Typedef{Alias: alias, Underlying: underlying}
	if err := u.DefineType(alias, td); err != nil {
		return nil, err
	}
	u.decls = append(u.decls, Declaration{Kind: DeclTypedef, Name: alias, Type: td, Pos: pos})
	return td, nil
}

// AddDecl appends a variable or function declaration.
func (u *Unit) AddDecl(d Declaration) error {
	if d.Type == nil {
		return fmt.Errorf("%s: %w", d.Name, ErrNilType)
	}
	u.decls = append(u.decls, d)
	return nil
}

// Macros returns macros in definition order.
func (u *Unit) Macros() []MacroDef {
	return slices.Clone(u.macros)
}

// Macro looks a macro up by name.
func (u *Unit) Macro(name string) (MacroDef, bool) {
	idx, ok := u.macroIndex[name]
	if !ok {
		return MacroDef{}, false
	}
	return u.macros[idx], true
}

// Decls returns declarations in source order.
func (u *Unit) Decls() []Declaration {
	return slices.Clone(u.decls)
}

// Type returns a named type.
func (u *Unit) Type(name string) (TypeRef, bool) {
	t, ok := u.types[name]
	return t, ok
}

// TypeNames lists named types in definition order.
func (u *Unit) TypeNames() []string {
	return slices.Clone(u.typeOrder)
}
