package certificate

import (
	"strings"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/internal/util"
)

// VerificationCodeBytes is the entropy behind a verification code; the code
// itself is the uppercase hex form, twice this length in characters.
const VerificationCodeBytes = 16

// NewVerificationCode generates a random verification code: 32 uppercase
// hexadecimal characters. Uniqueness is enforced by the caller against its
// store; on collision the caller simply generates another.
func NewVerificationCode() (string, error) {
	b, err := util.RandomBytes(VerificationCodeBytes)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(util.HexEncode(b)), nil
}

// NormalizeCode uppercases and trims a user-supplied verification code so
// lookups are case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
