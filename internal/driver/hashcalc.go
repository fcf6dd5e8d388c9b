package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"modgen/internal/cdecl"
	"modgen/internal/layout"
	"modgen/internal/translate"
)

// Digest is a SHA-256 cache key.
type Digest [sha256.Size]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports an unset digest.
func (d Digest) IsZero() bool { return d == Digest{} }

// Selection is the part of translate.Options that decides which entries a
// unit yields.
type Selection struct {
	Off     translate.Category
	Defines []cdecl.MacroDef
}

// CacheKey is H(content || schema || target || name rules || selection).
// Anything that changes the rendered document must be part of it.
func CacheKey(content [32]byte, target layout.Target, rules translate.NameRules, sel Selection) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	parts := []string{
		strconv.Itoa(int(diskCacheSchemaVersion)),
		target.Triple,
		strconv.Itoa(target.PtrSize),
		strconv.Itoa(target.PtrAlign),
		strconv.Itoa(target.Int64Align),
		strconv.Itoa(target.Float64Align),
		strconv.FormatBool(target.CharSigned),
		strconv.FormatBool(rules.CaseInsensitive),
		strconv.Itoa(int(sel.Off)),
	}
	for _, d := range sel.Defines {
		parts = append(parts, d.Name+"="+d.Body)
	}
	for _, part := range parts {
		_, _ = h.Write([]byte(part))
		_, _ = h.Write([]byte{0})
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
