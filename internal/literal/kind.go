package literal

import "fmt"

// Kind is the C type a literal (or a folded macro expression) carries.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindSignedInt
	KindUInt
	KindLong
	KindULong
	KindFloat
	KindDouble
	KindChar
	KindString
)

var kindNames = [...]string{
	KindInvalid:   "invalid",
	KindInt:       "int",
	KindSignedInt: "signed int",
	KindUInt:      "unsigned int",
	KindLong:      "long",
	KindULong:     "unsigned long",
	KindFloat:     "float",
	KindDouble:    "double",
	KindChar:      "char",
	KindString:    "string",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsInteger reports integer kinds (char excluded).
func (k Kind) IsInteger() bool {
	switch k {
	case KindInt, KindSignedInt, KindUInt, KindLong, KindULong:
		return true
	}
	return false
}

// IsUnsigned reports unsigned integer kinds.
func (k Kind) IsUnsigned() bool {
	return k == KindUInt || k == KindULong
}

// IsFloat reports float and double.
func (k Kind) IsFloat() bool {
	return k == KindFloat || k == KindDouble
}

// IsArithmetic reports kinds usable as operands of C arithmetic; char
// constants participate as int.
func (k Kind) IsArithmetic() bool {
	return k.IsInteger() || k.IsFloat() || k == KindChar
}

// Bits is the storage width of the kind on an LP64 target.
func (k Kind) Bits() uint8 {
	switch k {
	case KindChar:
		return 8
	case KindInt, KindSignedInt, KindUInt, KindFloat:
		return 32
	case KindLong, KindULong, KindDouble:
		return 64
	}
	return 0
}
