package types

import (
	"fmt"
	"strings"

	"modgen/internal/source"
)

// Label returns a user-friendly label for a TypeID.
func Label(typesIn *Interner, id TypeID) string {
	return labelDepth(typesIn, id, 0)
}

func labelDepth(typesIn *Interner, id TypeID, depth int) string {
	if id == NoTypeID || typesIn == nil {
		return "?"
	}
	if depth > 6 {
		return "..."
	}
	tt, ok := typesIn.Lookup(id)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	case KindInt:
		return fmt.Sprintf("int%d", tt.Width)
	case KindUint:
		return fmt.Sprintf("uint%d", tt.Width)
	case KindFloat:
		return fmt.Sprintf("float%d", tt.Width)
	case KindPointer:
		return "*" + labelDepth(typesIn, tt.Elem, depth+1)
	case KindArray:
		return fmt.Sprintf("[%s; %d]", labelDepth(typesIn, tt.Elem, depth+1), tt.Count)
	case KindStruct:
		info, ok := typesIn.StructInfo(id)
		if !ok {
			return "struct ?"
		}
		if name := nameOf(typesIn.Strings, info.Name); name != "" {
			return name
		}
		parts := make([]string, len(info.Fields))
		for i, f := range info.Fields {
			parts[i] = nameOf(typesIn.Strings, f.Name) + ": " + labelDepth(typesIn, f.Type, depth+1)
		}
		return "struct { " + strings.Join(parts, ", ") + " }"
	case KindUnion:
		info, ok := typesIn.UnionInfo(id)
		if !ok {
			return "union ?"
		}
		if name := nameOf(typesIn.Strings, info.Name); name != "" {
			return name
		}
		parts := make([]string, len(info.Members))
		for i, m := range info.Members {
			parts[i] = nameOf(typesIn.Strings, m.Name) + ": " + labelDepth(typesIn, m.Type, depth+1)
		}
		return "union { " + strings.Join(parts, " | ") + " }"
	case KindEnum:
		info, ok := typesIn.EnumInfo(id)
		if !ok {
			return "enum ?"
		}
		if name := nameOf(typesIn.Strings, info.Name); name != "" {
			return name
		}
		return "enum(" + labelDepth(typesIn, info.BaseType, depth+1) + ")"
	case KindAlias:
		info, ok := typesIn.AliasInfo(id)
		if !ok {
			return "?"
		}
		return nameOf(typesIn.Strings, info.Name)
	case KindFn:
		info, ok := typesIn.FnInfo(id)
		if !ok {
			return "fn(?)"
		}
		params := make([]string, len(info.Params))
		for i, param := range info.Params {
			params[i] = labelDepth(typesIn, param, depth+1)
		}
		return "fn(" + strings.Join(params, ", ") + ") -> " + labelDepth(typesIn, info.Result, depth+1)
	default:
		return "?"
	}
}

func nameOf(strs *source.Interner, id source.StringID) string {
	if strs == nil || id == source.NoStringID {
		return ""
	}
	s, _ := strs.Lookup(id)
	return s
}
