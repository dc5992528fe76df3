package util

import (
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKD unicode normalization. Canonicalization depends on
// this so that visually-identical inputs hash identically.
func Normalize(s string) string {
	return norm.NFKD.String(s)
}

// CollapseSpace trims s and collapses internal whitespace runs to a single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func HexEncode(b []byte) string {
	return hex.EncodeToString(b)
}

func HexDecode(s string) ([]byte, error) {
	return hex.DecodeString(s)
}
