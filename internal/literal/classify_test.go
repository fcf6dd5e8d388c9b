package literal

import (
	"errors"
	"math"
	"testing"
)

func TestClassifyIntegers(t *testing.T) {
	cases := []struct {
		body string
		kind Kind
		base uint8
		i    int64
		u    uint64
	}{
		{"0b101", KindInt, 2, 5, 0},
		{"0B11", KindInt, 2, 3, 0},
		{"42", KindInt, 10, 42, 0},
		{"017", KindInt, 8, 15, 0},
		{"0xff", KindInt, 16, 255, 0},
		{"0XFF", KindInt, 16, 255, 0},
		{"0", KindInt, 10, 0, 0},
		{"1l", KindLong, 10, 1, 0},
		{"1LL", KindLong, 10, 1, 0},
		{"1u", KindUInt, 10, 0, 1},
		{"1U", KindUInt, 10, 0, 1},
		{"1ul", KindULong, 10, 0, 1},
		{"1Ul", KindULong, 10, 0, 1},
		{"1UL", KindULong, 10, 0, 1},
		{"1lu", KindULong, 10, 0, 1},
		{"1ull", KindULong, 10, 0, 1},
		{"- 42", KindSignedInt, 10, -42, 0},
		{"-42", KindSignedInt, 10, -42, 0},
		{"2147483648", KindLong, 10, 2147483648, 0},
		{"0x80000000", KindUInt, 16, 0, 0x80000000},
		{"0xffffffffffffffff", KindULong, 16, 0, math.MaxUint64},
		{"-1u", KindUInt, 10, 0, math.MaxUint32},
		{"-1ul", KindULong, 10, 0, math.MaxUint64},
	}
	for _, tc := range cases {
		v, err := Classify(tc.body)
		if err != nil {
			t.Fatalf("Classify(%q): %v", tc.body, err)
		}
		if v.Kind != tc.kind || v.Base != tc.base || !v.Resolved {
			t.Fatalf("Classify(%q) = kind %s base %d resolved %v, want %s base %d",
				tc.body, v.Kind, v.Base, v.Resolved, tc.kind, tc.base)
		}
		if tc.kind.IsUnsigned() {
			if v.Uint64 != tc.u {
				t.Errorf("Classify(%q).Uint64 = %d, want %d", tc.body, v.Uint64, tc.u)
			}
		} else if v.Int64 != tc.i {
			t.Errorf("Classify(%q).Int64 = %d, want %d", tc.body, v.Int64, tc.i)
		}
		if v.Text != tc.body {
			t.Errorf("Classify(%q).Text = %q", tc.body, v.Text)
		}
	}
}

func TestClassifyFloats(t *testing.T) {
	cases := []struct {
		body string
		kind Kind
		want float64
	}{
		{"1.5", KindDouble, 1.5},
		{"-1.5", KindDouble, -1.5},
		{"- 1.5", KindDouble, -1.5},
		{"3.14159", KindDouble, 3.14159},
		{"314159E-5", KindDouble, 3.14159},
		{"1e3", KindDouble, 1000},
		{".5", KindDouble, 0.5},
		{"1.5f", KindFloat, 1.5},
		{"2.5F", KindFloat, 2.5},
		{"2.5L", KindDouble, 2.5},
	}
	for _, tc := range cases {
		v, err := Classify(tc.body)
		if err != nil {
			t.Fatalf("Classify(%q): %v", tc.body, err)
		}
		if v.Kind != tc.kind || v.Float64 != tc.want || v.Base != 0 {
			t.Fatalf("Classify(%q) = %s %v base %d, want %s %v", tc.body, v.Kind, v.Float64, v.Base, tc.kind, tc.want)
		}
	}
}

func TestClassifyCharAndString(t *testing.T) {
	cases := []struct {
		body string
		kind Kind
		r    rune
		str  string
	}{
		{"'a'", KindChar, 'a', ""},
		{`'\n'`, KindChar, '\n', ""},
		{`'\0'`, KindChar, 0, ""},
		{`'\x41'`, KindChar, 'A', ""},
		{`'\''`, KindChar, '\'', ""},
		{`"AaBb"`, KindString, 0, "AaBb"},
		{`"a\tb"`, KindString, 0, "a\tb"},
		{`"Aa" "Bb"`, KindString, 0, "AaBb"},
		{`""`, KindString, 0, ""},
		{`"q\"q"`, KindString, 0, `q"q`},
	}
	for _, tc := range cases {
		v, err := Classify(tc.body)
		if err != nil {
			t.Fatalf("Classify(%q): %v", tc.body, err)
		}
		if v.Kind != tc.kind || v.Rune != tc.r || v.Str != tc.str {
			t.Fatalf("Classify(%q) = %s %q %q", tc.body, v.Kind, v.Rune, v.Str)
		}
	}
}

func TestClassifyDeferred(t *testing.T) {
	for _, body := range []string{"ONE", "ONE + 1", "TWO + ONE", "-ONE", "(1 << 4)", "1 + 1", "A_B"} {
		v, err := Classify(body)
		if !errors.Is(err, ErrDeferred) {
			t.Fatalf("Classify(%q) err = %v, want ErrDeferred", body, err)
		}
		if v.Resolved || v.Text != body {
			t.Fatalf("Classify(%q) = %+v", body, v)
		}
	}
}

func TestClassifyErrors(t *testing.T) {
	for _, body := range []string{"", "   ", "08", "0b102", "0x", "1lL", "1uu", "12abc", "'ab'", "'a", `"abc`, "@", "-", `'\q'`, "1.2.3"} {
		_, err := Classify(body)
		if !errors.Is(err, ErrUnclassifiable) {
			t.Fatalf("Classify(%q) err = %v, want ErrUnclassifiable", body, err)
		}
	}
	if _, err := Classify(""); !errors.Is(err, ErrEmpty) {
		t.Fatalf("empty body must report ErrEmpty, got %v", err)
	}
}

func TestValueString(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{"0xff", "255"},
		{"- 42", "-42"},
		{"1ul", "1"},
		{"1e3", "1000.0"},
		{"1.5f", "1.5"},
		{"'a'", "'a'"},
		{`"AaBb"`, `"AaBb"`},
	}
	for _, tc := range cases {
		v, err := Classify(tc.body)
		if err != nil {
			t.Fatalf("Classify(%q): %v", tc.body, err)
		}
		if got := v.String(); got != tc.want {
			t.Errorf("Classify(%q).String() = %q, want %q", tc.body, got, tc.want)
		}
	}
}

func TestCacheReturnsSameResults(t *testing.T) {
	c, err := NewCache(8)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		v, err := c.Classify("0x10")
		if err != nil || v.Int64 != 16 {
			t.Fatalf("cached classify: %+v %v", v, err)
		}
		if _, err := c.Classify("ONE"); !errors.Is(err, ErrDeferred) {
			t.Fatalf("cached deferred: %v", err)
		}
	}
	if c.Len() != 2 {
		t.Fatalf("cache len = %d, want 2", c.Len())
	}
	if _, err := NewCache(0); err == nil {
		t.Fatalf("zero-sized cache must fail")
	}
}
