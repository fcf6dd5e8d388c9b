package layout

import (
	"fortio.org/safecast"

	"modgen/internal/types"
)

func (e *LayoutEngine) computeLayout(id types.TypeID, state *layoutState) (TypeLayout, *LayoutError) {
	tt, ok := e.Types.Lookup(id)
	if !ok {
		return TypeLayout{Size: 0, Align: 1}, nil
	}

	switch tt.Kind {
	case types.KindVoid:
		return TypeLayout{Size: 0, Align: 1}, nil

	case types.KindBool, types.KindChar:
		return TypeLayout{Size: 1, Align: 1}, nil

	case types.KindInt, types.KindUint:
		return e.scalarLayout(int(tt.Width)/8, e.Target.Int64Align), nil

	case types.KindFloat:
		return e.scalarLayout(int(tt.Width)/8, e.Target.Float64Align), nil

	case types.KindString, types.KindPointer, types.KindFn:
		// string constants are addressed as char*; fn values are code pointers
		return e.ptrLayout(), nil

	case types.KindEnum:
		if info, ok := e.Types.EnumInfo(id); ok && info.BaseType != types.NoTypeID {
			return e.layoutOf(info.BaseType, state)
		}
		return scalarLayoutBytes(4), nil

	case types.KindArray:
		return e.arrayFixedLayout(id, tt.Elem, tt.Count, state)

	case types.KindStruct:
		return e.structLayout(id, state)

	case types.KindUnion:
		return e.unionLayout(id, state)

	default:
		return TypeLayout{Size: 0, Align: 1}, nil
	}
}

func (e *LayoutEngine) ptrLayout() TypeLayout {
	ptrSize := e.Target.PtrSize
	ptrAlign := e.Target.PtrAlign
	if ptrSize <= 0 {
		ptrSize = 8
	}
	if ptrAlign <= 0 {
		ptrAlign = ptrSize
	}
	return TypeLayout{Size: ptrSize, Align: ptrAlign}
}

func (e *LayoutEngine) scalarLayout(size, eightByteAlign int) TypeLayout {
	l := scalarLayoutBytes(size)
	if size == 8 && eightByteAlign > 0 {
		l.Align = eightByteAlign
	}
	return l
}

func scalarLayoutBytes(size int) TypeLayout {
	if size <= 0 {
		return TypeLayout{Size: 0, Align: 1}
	}
	return TypeLayout{Size: size, Align: size}
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

// memberLayout is the layout of a type stored by value inside an aggregate.
func (e *LayoutEngine) memberLayout(id types.TypeID, state *layoutState) (TypeLayout, *LayoutError) {
	tt, ok := e.Types.Lookup(e.Types.Resolve(id))
	if ok && (tt.Kind == types.KindVoid || tt.Kind == types.KindString) {
		return TypeLayout{Size: 0, Align: 1}, e.errorf(LayoutErrUnsized, id)
	}
	return e.layoutOf(id, state)
}

func (e *LayoutEngine) arrayFixedLayout(id, elem types.TypeID, length uint32, state *layoutState) (TypeLayout, *LayoutError) {
	elemLayout, err := e.memberLayout(elem, state)
	if err != nil {
		return TypeLayout{Size: 0, Align: 1}, err
	}
	elemAlign := max(elemLayout.Align, 1)
	stride := roundUp(elemLayout.Size, elemAlign)
	n, convErr := safecast.Conv[int](length)
	if convErr != nil {
		lerr := e.errorf(LayoutErrLengthConversion, id)
		lerr.Err = convErr
		return TypeLayout{Size: 0, Align: 1}, lerr
	}
	return TypeLayout{Size: stride * n, Align: elemAlign}, nil
}

func (e *LayoutEngine) structLayout(id types.TypeID, state *layoutState) (TypeLayout, *LayoutError) {
	info, ok := e.Types.StructInfo(id)
	if !ok || len(info.Fields) == 0 {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	offsets := make([]int, len(info.Fields))
	aligns := make([]int, len(info.Fields))
	size, align := 0, 1
	for i, f := range info.Fields {
		fl, err := e.memberLayout(f.Type, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		fa := max(fl.Align, 1)
		size = roundUp(size, fa)
		offsets[i] = size
		aligns[i] = fa
		size += fl.Size
		align = max(align, fa)
	}
	return TypeLayout{
		Size:         roundUp(size, align),
		Align:        align,
		FieldOffsets: offsets,
		FieldAligns:  aligns,
	}, nil
}

// unionLayout overlays every member at offset 0.
func (e *LayoutEngine) unionLayout(id types.TypeID, state *layoutState) (TypeLayout, *LayoutError) {
	info, ok := e.Types.UnionInfo(id)
	if !ok || len(info.Members) == 0 {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	offsets := make([]int, len(info.Members))
	aligns := make([]int, len(info.Members))
	size, align := 0, 1
	for i, m := range info.Members {
		ml, err := e.memberLayout(m.Type, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		aligns[i] = max(ml.Align, 1)
		size = max(size, ml.Size)
		align = max(align, aligns[i])
	}
	return TypeLayout{
		Size:         roundUp(size, align),
		Align:        align,
		FieldOffsets: offsets,
		FieldAligns:  aligns,
	}, nil
}
