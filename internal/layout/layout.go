package layout

import (
	"slices"

	"modgen/internal/types"
)

// TypeLayout is the C layout of a type for a specific Target.
type TypeLayout struct {
	Size  int
	Align int

	// Struct and union members, in declaration order. Union members are
	// all at offset 0.
	FieldOffsets []int
	FieldAligns  []int
}

// LayoutEngine computes memory layout for types.
type LayoutEngine struct {
	Target Target
	Types  *types.Interner

	cache *cache
}

// New creates a new LayoutEngine for the specified target.
func New(target Target, typesIn *types.Interner) *LayoutEngine {
	return &LayoutEngine{
		Target: target,
		Types:  typesIn,
		cache:  newCache(),
	}
}

type layoutState struct {
	stack []types.TypeID
	index map[types.TypeID]int
}

// LayoutOf computes and caches the layout of a type.
func (e *LayoutEngine) LayoutOf(t types.TypeID) (TypeLayout, error) {
	if e == nil {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	if e.cache == nil {
		e.cache = newCache()
	}
	state := &layoutState{index: make(map[types.TypeID]int, 16)}
	l, err := e.layoutOf(t, state)
	if err != nil {
		return l, err
	}
	return l, nil
}

func (e *LayoutEngine) layoutOf(t types.TypeID, state *layoutState) (TypeLayout, *LayoutError) {
	canon := e.Types.Resolve(t)
	if cached, ok := e.cache.get(canon); ok {
		return cached.Layout, cached.Err
	}

	if idx, ok := state.index[canon]; ok {
		cycle := append(slices.Clone(state.stack[idx:]), canon)
		err := e.errorf(LayoutErrRecursiveUnsized, canon)
		err.Cycle = cycle
		e.cache.put(canon, &cacheEntry{Layout: TypeLayout{Size: 0, Align: 1}, Err: err})
		return TypeLayout{Size: 0, Align: 1}, err
	}

	state.index[canon] = len(state.stack)
	state.stack = append(state.stack, canon)
	l, err := e.computeLayout(canon, state)
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, canon)

	e.cache.put(canon, &cacheEntry{Layout: l, Err: err})
	return l, err
}

func (e *LayoutEngine) errorf(kind LayoutErrorKind, id types.TypeID) *LayoutError {
	return &LayoutError{
		Kind: kind,
		Type: id,
		label: func(id types.TypeID) string {
			return types.Label(e.Types, id)
		},
	}
}

// SizeOf returns the size of a type in bytes.
func (e *LayoutEngine) SizeOf(t types.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// AlignOf returns the alignment requirement of a type in bytes.
func (e *LayoutEngine) AlignOf(t types.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// FieldOffset returns the byte offset of a struct field or union member.
func (e *LayoutEngine) FieldOffset(aggregate types.TypeID, fieldIdx int) (int, error) {
	l, err := e.LayoutOf(aggregate)
	if err != nil {
		return 0, err
	}
	if fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0, nil
	}
	return l.FieldOffsets[fieldIdx], nil
}
