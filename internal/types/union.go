package types

import (
	"slices"

	"modgen/internal/source"
)

// UnionMember is one overlay member. Every member starts at offset 0 and
// reading one reinterprets the bytes the others share.
type UnionMember struct {
	Name source.StringID
	Type TypeID
}

// UnionInfo stores metadata for a union type.
type UnionInfo struct {
	Name    source.StringID
	Decl    source.Pos
	Members []UnionMember
}

// RegisterUnion allocates a union slot; members are attached with
// SetUnionMembers.
func (in *Interner) RegisterUnion(name source.StringID, decl source.Pos) TypeID {
	in.unions = append(in.unions, UnionInfo{Name: name, Decl: decl})
	slot := in.payloadSlot(len(in.unions), "union")
	return in.internRaw(Type{Kind: KindUnion, Payload: slot})
}

// SetUnionMembers stores the resolved members for the union type.
func (in *Interner) SetUnionMembers(typeID TypeID, members []UnionMember) {
	info := in.unionInfo(typeID)
	if info == nil {
		return
	}
	info.Members = slices.Clone(members)
}

// UnionInfo returns metadata for the provided union TypeID.
func (in *Interner) UnionInfo(typeID TypeID) (*UnionInfo, bool) {
	info := in.unionInfo(typeID)
	return info, info != nil
}

func (in *Interner) unionInfo(typeID TypeID) *UnionInfo {
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindUnion {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.unions) {
		return nil
	}
	return &in.unions[tt.Payload]
}
