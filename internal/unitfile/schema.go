package unitfile

type unitDoc struct {
	Name   string     `toml:"name" yaml:"name" json:"name"`
	Macros []macroDoc `toml:"macros" yaml:"macros" json:"macros"`
	Types  []typeDoc  `toml:"types" yaml:"types" json:"types"`
	Decls  []declDoc  `toml:"decls" yaml:"decls" json:"decls"`
}

type macroDoc struct {
	Name string `toml:"name" yaml:"name" json:"name"`
	Body string `toml:"body" yaml:"body" json:"body"`
	Line uint32 `toml:"line" yaml:"line" json:"line"`
	Col  uint32 `toml:"col" yaml:"col" json:"col"`
}

// typeDoc is a struct, union or enum; named by Tag at file scope, anonymous
// when inlined in a typedef without one.
type typeDoc struct {
	Kind    string      `toml:"kind" yaml:"kind" json:"kind"`
	Tag     string      `toml:"tag" yaml:"tag" json:"tag"`
	Fields  []fieldDoc  `toml:"fields" yaml:"fields" json:"fields"`
	Members []memberDoc `toml:"members" yaml:"members" json:"members"`
}

type fieldDoc struct {
	Name string `toml:"name" yaml:"name" json:"name"`
	Type string `toml:"type" yaml:"type" json:"type"`
}

type memberDoc struct {
	Name  string `toml:"name" yaml:"name" json:"name"`
	Value *int64 `toml:"value" yaml:"value" json:"value"`
}

type declDoc struct {
	Kind string `toml:"kind" yaml:"kind" json:"kind"`
	Name string `toml:"name" yaml:"name" json:"name"`
	// Type is the variable type or the typedef target spelling.
	Type   string `toml:"type" yaml:"type" json:"type"`
	Extern *bool  `toml:"extern" yaml:"extern" json:"extern"`
	// Const marks a const-qualified variable.
	Const bool `toml:"const" yaml:"const" json:"const"`

	// Function signature, for kind "func" and function typedefs.
	Returns    string   `toml:"returns" yaml:"returns" json:"returns"`
	Params     []string `toml:"params" yaml:"params" json:"params"`
	ParamNames []string `toml:"param_names" yaml:"param_names" json:"param_names"`
	Variadic   bool     `toml:"variadic" yaml:"variadic" json:"variadic"`
	// Pointer makes a function typedef a function-pointer typedef.
	Pointer bool `toml:"pointer" yaml:"pointer" json:"pointer"`

	// Aggregate is an inline struct/union/enum for typedefs.
	Aggregate *typeDoc `toml:"aggregate" yaml:"aggregate" json:"aggregate"`

	Line uint32 `toml:"line" yaml:"line" json:"line"`
	Col  uint32 `toml:"col" yaml:"col" json:"col"`
}

func (d declDoc) isSignature() bool {
	return d.Returns != "" || d.Params != nil
}
