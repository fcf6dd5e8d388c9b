package literal

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

var simpleEscapes = map[byte]rune{
	'n': '\n', 't': '\t', 'r': '\r', 'a': '\a', 'b': '\b', 'f': '\f', 'v': '\v',
	'\\': '\\', '\'': '\'', '"': '"', '?': '?',
}

// unescape decodes one (possibly escaped) character from s and returns the
// remainder. An unescaped quote character is an error.
func unescape(s string, quote byte) (rune, string, error) {
	if s == "" {
		return 0, "", errors.New("empty character")
	}
	if s[0] != '\\' {
		if s[0] == quote {
			return 0, "", fmt.Errorf("unescaped %q", quote)
		}
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size <= 1 {
			return 0, "", errors.New("invalid UTF-8")
		}
		return r, s[size:], nil
	}
	if len(s) < 2 {
		return 0, "", errors.New("dangling backslash")
	}
	c := s[1]
	if r, ok := simpleEscapes[c]; ok {
		return r, s[2:], nil
	}
	switch {
	case c >= '0' && c <= '7':
		end := 1
		for end < 4 && end < len(s) && s[end] >= '0' && s[end] <= '7' {
			end++
		}
		n, _ := strconv.ParseUint(s[1:end], 8, 32)
		return rune(n), s[end:], nil //nolint:gosec // at most 0777
	case c == 'x':
		end := 2
		for end < len(s) && isHexDigit(s[end]) {
			end++
		}
		if end == 2 {
			return 0, "", errors.New(`\x without hex digits`)
		}
		n, err := strconv.ParseUint(s[2:end], 16, 32)
		if err != nil || n > utf8.MaxRune {
			return 0, "", errors.New(`\x escape out of range`)
		}
		return rune(n), s[end:], nil //nolint:gosec // checked against MaxRune
	case c == 'u' || c == 'U':
		width := 4
		if c == 'U' {
			width = 8
		}
		if len(s) < 2+width {
			return 0, "", fmt.Errorf(`\%c needs %d hex digits`, c, width)
		}
		n, err := strconv.ParseUint(s[2:2+width], 16, 32)
		if err != nil || n > utf8.MaxRune {
			return 0, "", fmt.Errorf(`bad \%c escape`, c)
		}
		return rune(n), s[2+width:], nil //nolint:gosec // checked against MaxRune
	}
	return 0, "", fmt.Errorf(`unknown escape \%c`, c)
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
