package testkit

import (
	"fmt"

	"modgen/internal/translate"
	"modgen/internal/types"
)

// CheckResultInvariants runs structural checks on a translation result:
// 1) every declaration has a valid type
// 2) constants carry a value whose type matches its kind
// 3) functions have an Fn type whose arity matches Params
// 4) variables and aliases carry a layout with a positive alignment
// 5) names are unique under the result's name rules
func CheckResultInvariants(res *translate.Result, rules translate.NameRules) error {
	if res == nil || res.Types == nil {
		return fmt.Errorf("nil result or interner")
	}
	names := translate.NewNameTable(rules)
	for i, d := range res.Decls {
		if d.Name == "" {
			return fmt.Errorf("decl #%d has no name", i)
		}
		if _, ok := res.Types.Lookup(d.Type); !ok || d.Type == types.NoTypeID {
			return fmt.Errorf("%s: invalid type id %d", d.Name, d.Type)
		}
		switch d.Kind {
		case translate.KindConst, translate.KindEnumConst:
			if d.Value == nil {
				return fmt.Errorf("%s: constant without value", d.Name)
			}
			if d.Kind == translate.KindEnumConst && res.Types.MustLookup(d.Type).Kind != types.KindEnum {
				return fmt.Errorf("%s: enumerator typed %s", d.Name, types.Label(res.Types, d.Type))
			}
		case translate.KindFunc:
			info, ok := res.Types.FnInfo(res.Types.Resolve(d.Type))
			if !ok {
				return fmt.Errorf("%s: function typed %s", d.Name, types.Label(res.Types, d.Type))
			}
			if len(info.Params) != len(d.Params) {
				return fmt.Errorf("%s: %d params, fn type has %d", d.Name, len(d.Params), len(info.Params))
			}
			for j, p := range d.Params {
				if p.Type != info.Params[j] {
					return fmt.Errorf("%s: param %s does not match fn type", d.Name, p.Name)
				}
			}
		case translate.KindVar, translate.KindAlias:
			if d.Layout == nil || d.Layout.Align <= 0 {
				return fmt.Errorf("%s: missing layout", d.Name)
			}
		default:
			return fmt.Errorf("%s: unknown kind %s", d.Name, d.Kind)
		}
		if prev, _, ok := names.Declare(d.Name, d.Pos); !ok {
			return fmt.Errorf("%s collides with %s", d.Name, prev)
		}
	}
	return nil
}
