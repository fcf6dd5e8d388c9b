package translate

import (
	"fmt"

	"modgen/internal/layout"
	"modgen/internal/literal"
	"modgen/internal/source"
	"modgen/internal/types"
)

// Kind is the form of a translated declaration.
type Kind uint8

const (
	KindConst     Kind = iota + 1 // macro constant
	KindEnumConst                 // enumerator
	KindVar                       // variable binding
	KindFunc                      // callable binding
	KindAlias                     // named type alias
)

func (k Kind) String() string {
	switch k {
	case KindConst:
		return "const"
	case KindEnumConst:
		return "enum-const"
	case KindVar:
		return "var"
	case KindFunc:
		return "func"
	case KindAlias:
		return "alias"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Linkage of variable and function bindings.
type Linkage uint8

const (
	LinkageNone Linkage = iota
	LinkageExternal
	LinkageInternal
)

func (l Linkage) String() string {
	switch l {
	case LinkageExternal:
		return "extern"
	case LinkageInternal:
		return "internal"
	default:
		return ""
	}
}

// Param is one function parameter after decay.
type Param struct {
	Name string
	Type types.TypeID
}

// Decl is one target declaration.
type Decl struct {
	Kind Kind
	Name string
	// Type is the declared type: the constant's type, the variable's type,
	// the function's Fn type or the alias itself.
	Type types.TypeID
	// Value is set for KindConst and KindEnumConst.
	Value   *literal.Value
	Linkage Linkage
	// ReadOnly is set for variables of const-qualified objects; they are
	// bound without a setter.
	ReadOnly bool
	// Params and Result are set for KindFunc.
	Params []Param
	Result types.TypeID
	// Layout is set for KindVar and KindAlias.
	Layout *layout.TypeLayout
	Pos    source.Pos
}
