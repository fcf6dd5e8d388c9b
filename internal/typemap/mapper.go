// Package typemap maps C types onto the target type system.
//
// Scalars keep width and signedness, pointers become raw pointers, fixed
// arrays keep their length, and function types (and pointers to them) become
// callable references. Named aggregates, enums and typedefs are mapped once
// per Mapper and shared by every use.
package typemap

import (
	"math"
	"strconv"

	"fortio.org/safecast"

	"modgen/internal/cdecl"
	"modgen/internal/source"
	"modgen/internal/types"
)

// Mapper translates cdecl.TypeRef values into types.TypeID. Not safe for
// concurrent use.
type Mapper struct {
	types *types.Interner

	named   map[cdecl.TypeRef]types.TypeID
	failed  map[cdecl.TypeRef]error
	pending map[cdecl.TypeRef]*shell
	enums   []types.TypeID
}

// shell is a named type whose body is still being mapped. Its slot is
// registered on first claim: by a recursive reference, or once the body maps.
type shell struct {
	register func() types.TypeID
	id       types.TypeID
}

func (sh *shell) claim() types.TypeID {
	if sh.id == types.NoTypeID {
		sh.id = sh.register()
	}
	return sh.id
}

// New creates a mapper writing into typesIn.
func New(typesIn *types.Interner) *Mapper {
	return &Mapper{
		types:  typesIn,
		named:   make(map[cdecl.TypeRef]types.TypeID),
		failed:  make(map[cdecl.TypeRef]error),
		pending: make(map[cdecl.TypeRef]*shell),
	}
}

// Types returns the interner the mapper writes to.
func (m *Mapper) Types() *types.Interner { return m.types }

// Enums lists enum TypeIDs in the order they were first mapped.
func (m *Mapper) Enums() []types.TypeID { return m.enums }

// Seen reports whether t has already been mapped, successfully or not.
func (m *Mapper) Seen(t cdecl.TypeRef) bool {
	if _, ok := m.named[t]; ok {
		return true
	}
	_, ok := m.failed[t]
	return ok
}

// Map translates t.
func (m *Mapper) Map(t cdecl.TypeRef) (types.TypeID, error) {
	return m.mapType(t, "")
}

// MapParam translates a parameter type: arrays decay to pointer-to-element
// and function types to callable references.
func (m *Mapper) MapParam(t cdecl.TypeRef) (types.TypeID, error) {
	switch u := cdecl.Resolve(t).(type) {
	case *cdecl.Array:
		elem, err := m.mapElem(u.Of)
		if err != nil {
			return types.NoTypeID, nested(t, "decayed array parameter", err)
		}
		return m.types.Intern(types.MakePointer(elem)), nil
	case *cdecl.Void:
		return types.NoTypeID, unsupported(t, "void parameter")
	}
	return m.Map(t)
}

// MapReturn translates a function result; void is allowed, arrays and
// functions are not.
func (m *Mapper) MapReturn(t cdecl.TypeRef) (types.TypeID, error) {
	switch cdecl.Resolve(t).(type) {
	case *cdecl.Array:
		return types.NoTypeID, unsupported(t, "function returning an array")
	case *cdecl.Func:
		return types.NoTypeID, unsupported(t, "function returning a function")
	}
	return m.Map(t)
}

func (m *Mapper) mapType(t cdecl.TypeRef, hint string) (types.TypeID, error) {
	if t == nil {
		return types.NoTypeID, unsupported(nil, "missing type")
	}
	if id, ok := m.named[t]; ok {
		return id, nil
	}
	if err, ok := m.failed[t]; ok {
		return types.NoTypeID, err
	}
	if sh, ok := m.pending[t]; ok {
		return sh.claim(), nil
	}
	b := m.types.Builtins()

	switch tt := t.(type) {
	case *cdecl.Void:
		return b.Void, nil
	case *cdecl.Scalar:
		return m.mapScalar(tt)
	case *cdecl.Pointer:
		if cdecl.IsFunc(tt.To) {
			// pointer to function is the callable reference itself
			return m.mapType(tt.To, "")
		}
		elem, err := m.mapType(tt.To, "")
		if err != nil {
			return types.NoTypeID, nested(t, "pointee", err)
		}
		return m.types.Intern(types.MakePointer(elem)), nil
	case *cdecl.Array:
		if tt.Len == 0 {
			return types.NoTypeID, unsupported(t, "incomplete array outside a parameter list")
		}
		count, err := safecast.Conv[uint32](tt.Len)
		if err != nil {
			return types.NoTypeID, unsupported(t, "array length %d too large", tt.Len)
		}
		elem, err := m.mapElem(tt.Of)
		if err != nil {
			return types.NoTypeID, nested(t, "element", err)
		}
		return m.types.Intern(types.MakeArray(elem, count)), nil
	case *cdecl.Func:
		return m.mapFunc(tt)
	case *cdecl.Struct:
		return m.remember(t, func() (types.TypeID, error) { return m.mapStruct(tt, hint) })
	case *cdecl.Union:
		return m.remember(t, func() (types.TypeID, error) { return m.mapUnion(tt, hint) })
	case *cdecl.Enum:
		return m.remember(t, func() (types.TypeID, error) { return m.mapEnum(tt, hint) })
	case *cdecl.Typedef:
		return m.remember(t, func() (types.TypeID, error) { return m.mapTypedef(tt) })
	}
	return types.NoTypeID, unsupported(t, "unknown type form")
}

// remember caches named types, failures included, so every use shares one
// TypeID or reports the same error. A failed type leaves no slot behind
// unless a recursive reference already claimed it.
func (m *Mapper) remember(t cdecl.TypeRef, fn func() (types.TypeID, error)) (types.TypeID, error) {
	id, err := fn()
	delete(m.pending, t)
	if err != nil {
		m.failed[t] = err
		return types.NoTypeID, err
	}
	m.named[t] = id
	return id, nil
}

func (m *Mapper) reserve(t cdecl.TypeRef, register func() types.TypeID) *shell {
	sh := &shell{register: register}
	m.pending[t] = sh
	return sh
}

func (m *Mapper) mapScalar(s *cdecl.Scalar) (types.TypeID, error) {
	b := m.types.Builtins()
	switch {
	case s.IsBool:
		return b.Bool, nil
	case s.IsChar:
		if s.Width != 8 {
			return types.NoTypeID, unsupported(s, "%d-bit char", s.Width)
		}
		return b.Char, nil
	case s.IsFloat:
		switch s.Width {
		case 32:
			return b.Float32, nil
		case 64:
			return b.Float64, nil
		}
		return types.NoTypeID, unsupported(s, "%d-bit floating point", s.Width)
	}
	var w types.Width
	switch s.Width {
	case 8, 16, 32, 64:
		w = types.Width(s.Width)
	default:
		return types.NoTypeID, unsupported(s, "%d-bit integer", s.Width)
	}
	if s.Signed {
		return m.types.Intern(types.MakeInt(w)), nil
	}
	return m.types.Intern(types.MakeUint(w)), nil
}

// mapElem maps a type used by value inside an array.
func (m *Mapper) mapElem(t cdecl.TypeRef) (types.TypeID, error) {
	switch cdecl.Resolve(t).(type) {
	case *cdecl.Void:
		return types.NoTypeID, unsupported(t, "array of void")
	case *cdecl.Func:
		return types.NoTypeID, unsupported(t, "array of functions")
	}
	return m.mapType(t, "")
}

// mapMember maps a struct field or union member type.
func (m *Mapper) mapMember(t cdecl.TypeRef) (types.TypeID, error) {
	switch u := cdecl.Resolve(t).(type) {
	case *cdecl.Void:
		return types.NoTypeID, unsupported(t, "void member")
	case *cdecl.Func:
		return types.NoTypeID, unsupported(t, "function-typed member (use a function pointer)")
	case *cdecl.Array:
		if u.Len == 0 {
			return types.NoTypeID, unsupported(t, "flexible array member")
		}
	}
	return m.mapType(t, "")
}

func (m *Mapper) mapFunc(f *cdecl.Func) (types.TypeID, error) {
	if f.Variadic {
		return types.NoTypeID, unsupported(f, "variadic function")
	}
	params := make([]types.TypeID, 0, len(f.Params))
	for i, p := range f.Params {
		id, err := m.MapParam(p)
		if err != nil {
			return types.NoTypeID, nested(f, "parameter "+strconv.Itoa(i), err)
		}
		params = append(params, id)
	}
	result, err := m.MapReturn(f.Returns)
	if err != nil {
		return types.NoTypeID, nested(f, "result", err)
	}
	return m.types.RegisterFn(params, result), nil
}

func (m *Mapper) mapStruct(s *cdecl.Struct, hint string) (types.TypeID, error) {
	name := m.name(s.Name, hint)
	sh := m.reserve(s, func() types.TypeID { return m.types.RegisterStruct(name, source.Pos{}) })
	seen := make(map[string]struct{}, len(s.Fields))
	fields := make([]types.StructField, 0, len(s.Fields))
	for _, f := range s.Fields {
		if _, dup := seen[f.Name]; dup {
			return types.NoTypeID, unsupported(s, "duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}
		ft, err := m.mapMember(f.Type)
		if err != nil {
			return types.NoTypeID, nested(s, "field "+f.Name, err)
		}
		fields = append(fields, types.StructField{Name: m.types.Strings.Intern(f.Name), Type: ft})
	}
	id := sh.claim()
	m.types.SetStructFields(id, fields)
	return id, nil
}

func (m *Mapper) mapUnion(u *cdecl.Union, hint string) (types.TypeID, error) {
	name := m.name(u.Name, hint)
	sh := m.reserve(u, func() types.TypeID { return m.types.RegisterUnion(name, source.Pos{}) })
	seen := make(map[string]struct{}, len(u.Members))
	members := make([]types.UnionMember, 0, len(u.Members))
	for _, f := range u.Members {
		if _, dup := seen[f.Name]; dup {
			return types.NoTypeID, unsupported(u, "duplicate member %q", f.Name)
		}
		seen[f.Name] = struct{}{}
		ft, err := m.mapMember(f.Type)
		if err != nil {
			return types.NoTypeID, nested(u, "member "+f.Name, err)
		}
		members = append(members, types.UnionMember{Name: m.types.Strings.Intern(f.Name), Type: ft})
	}
	id := sh.claim()
	m.types.SetUnionMembers(id, members)
	return id, nil
}

func (m *Mapper) mapEnum(e *cdecl.Enum, hint string) (types.TypeID, error) {
	variants := make([]types.EnumVariantInfo, 0, len(e.Members))
	seenNames := make(map[string]struct{}, len(e.Members))
	seenValues := make(map[int64]string, len(e.Members))
	next := int64(0)
	lo, hi := int64(0), int64(0)
	for i, mem := range e.Members {
		if _, dup := seenNames[mem.Name]; dup {
			return types.NoTypeID, unsupported(e, "duplicate enumerator %q", mem.Name)
		}
		seenNames[mem.Name] = struct{}{}
		val, implicit := next, true
		if mem.Value != nil {
			val, implicit = *mem.Value, false
		} else if i > 0 && variants[i-1].Value == math.MaxInt64 {
			return types.NoTypeID, unsupported(e, "enumerator %q overflows", mem.Name)
		}
		if prev, dup := seenValues[val]; dup {
			return types.NoTypeID, unsupported(e, "enumerators %q and %q share value %d", prev, mem.Name, val)
		}
		seenValues[val] = mem.Name
		variants = append(variants, types.EnumVariantInfo{
			Name:     m.types.Strings.Intern(mem.Name),
			Value:    val,
			Implicit: implicit,
		})
		lo, hi = min(lo, val), max(hi, val)
		next = val + 1
	}

	id := m.types.RegisterEnum(m.name(e.Name, hint), source.Pos{})
	m.types.SetEnumBaseType(id, m.enumBase(lo, hi))
	m.types.SetEnumVariants(id, variants)
	m.enums = append(m.enums, id)
	return id, nil
}

// enumBase picks int32 when every value fits, as C compilers do.
func (m *Mapper) enumBase(lo, hi int64) types.TypeID {
	b := m.types.Builtins()
	switch {
	case lo >= math.MinInt32 && hi <= math.MaxInt32:
		return b.Int32
	case lo >= 0 && hi <= math.MaxUint32:
		return b.Uint32
	default:
		return b.Int64
	}
}

func (m *Mapper) mapTypedef(td *cdecl.Typedef) (types.TypeID, error) {
	name := m.types.Strings.Intern(td.Alias)
	sh := m.reserve(td, func() types.TypeID { return m.types.RegisterAlias(name, source.Pos{}) })
	target, err := m.mapType(td.Underlying, td.Alias)
	if err != nil {
		return types.NoTypeID, nested(td, "typedef target", err)
	}
	id := sh.claim()
	m.types.SetAliasTarget(id, target)
	return id, nil
}

// name picks the tag, falling back to the typedef that introduced an
// anonymous aggregate.
func (m *Mapper) name(tag, hint string) source.StringID {
	if tag == "" {
		tag = hint
	}
	if tag == "" {
		return source.NoStringID
	}
	return m.types.Strings.Intern(tag)
}
