package types

import (
	"slices"

	"modgen/internal/source"
)

// EnumVariantInfo stores a single named constant of an enum.
type EnumVariantInfo struct {
	Name  source.StringID
	Value int64
	// Implicit is set when the value came from previous+1 numbering.
	Implicit bool
}

// EnumInfo stores metadata for an enum type.
type EnumInfo struct {
	Name     source.StringID
	Decl     source.Pos
	BaseType TypeID
	Variants []EnumVariantInfo
}

// RegisterEnum allocates a nominal enum type slot and returns its TypeID.
func (in *Interner) RegisterEnum(name source.StringID, decl source.Pos) TypeID {
	in.enums = append(in.enums, EnumInfo{Name: name, Decl: decl})
	slot := in.payloadSlot(len(in.enums), "enum")
	return in.internRaw(Type{Kind: KindEnum, Payload: slot})
}

// SetEnumBaseType stores the integer type the enum is represented as.
func (in *Interner) SetEnumBaseType(typeID, baseType TypeID) {
	info := in.enumInfo(typeID)
	if info == nil {
		return
	}
	info.BaseType = baseType
}

// SetEnumVariants stores the resolved variants for the enum type.
func (in *Interner) SetEnumVariants(typeID TypeID, variants []EnumVariantInfo) {
	info := in.enumInfo(typeID)
	if info == nil {
		return
	}
	info.Variants = slices.Clone(variants)
}

// EnumInfo returns metadata for the provided enum TypeID.
func (in *Interner) EnumInfo(typeID TypeID) (*EnumInfo, bool) {
	info := in.enumInfo(typeID)
	return info, info != nil
}

func (in *Interner) enumInfo(typeID TypeID) *EnumInfo {
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindEnum {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.enums) {
		return nil
	}
	return &in.enums[tt.Payload]
}
