package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Литералы макросов
	LitInfo               Code = 1000
	UnclassifiableLiteral Code = 1001
	LitEmptyMacro         Code = 1002

	// Разрешение макросов
	MacroInfo                Code = 2000
	CyclicMacroReference     Code = 2001
	UnresolvedMacroReference Code = 2002

	// Отображение типов
	TypeInfo        Code = 3000
	UnsupportedType Code = 3001

	// Трансляция объявлений
	DeclInfo             Code = 4000
	DuplicateDeclaration Code = 4001

	// Ввод/вывод и конфигурация драйвера
	IOLoadFailed    Code = 5001
	IODecodeFailed  Code = 5002
	IOCacheFailed   Code = 5003
	CfgInvalidValue Code = 5101

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:              "Unknown error",
	LitInfo:                  "Literal information",
	UnclassifiableLiteral:    "Unclassifiable literal",
	LitEmptyMacro:            "Macro has no value",
	MacroInfo:                "Macro information",
	CyclicMacroReference:     "Cyclic macro reference",
	UnresolvedMacroReference: "Unresolved macro reference",
	TypeInfo:                 "Type information",
	UnsupportedType:          "Unsupported type",
	DeclInfo:                 "Declaration information",
	DuplicateDeclaration:     "Duplicate declaration",
	IOLoadFailed:             "Failed to load unit",
	IODecodeFailed:           "Failed to decode unit",
	IOCacheFailed:            "Cache access failed",
	CfgInvalidValue:          "Invalid configuration value",
	ObsInfo:                  "Observability information",
	ObsTimings:               "Timings",
}

// ID returns the stable short identifier, e.g. "LIT1001".
func (c Code) ID() string {
	ic := int(c)
	switch {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LIT%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("MAC%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("DCL%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseCode is the inverse of Code.ID for known codes.
func ParseCode(id string) (Code, bool) {
	for c := range codeDescription {
		if c.ID() == id {
			return c, true
		}
	}
	return UnknownCode, false
}
