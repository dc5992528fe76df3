package certificate

import (
	"crypto/sha256"
	"strings"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/internal/util"
)

// HashPrefix matches the external ledger's native hex encoding.
const HashPrefix = "0x"

// Hash derives the content identifier from canonical bytes: a SHA-256
// digest, hex-encoded with the ledger's fixed prefix.
func Hash(canonical []byte) string {
	digest := sha256.Sum256(canonical)
	return HashPrefix + util.HexEncode(digest[:])
}

// HashRecord canonicalizes r and returns its content hash. It fails only
// when identity fields are incomplete.
func HashRecord(r *Record) (string, error) {
	canonical, err := Canonicalize(r)
	if err != nil {
		return "", err
	}
	return Hash(canonical), nil
}

// ValidContentHash reports whether s is a prefixed 32-byte hex digest.
func ValidContentHash(s string) bool {
	if !strings.HasPrefix(s, HashPrefix) {
		return false
	}
	hexPart := s[len(HashPrefix):]
	if len(hexPart) != sha256.Size*2 {
		return false
	}
	_, err := util.HexDecode(hexPart)
	return err == nil
}
