package certificate

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Validation constants.
const (
	MaxIDLength      = 256
	MaxTitleLength   = 512
	MaxCommentLength = 2048
)

var walletAddressRx = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

func validateID(id, label string) error {
	if id == "" {
		return validationErrorf("%s must not be empty", label)
	}
	if len(id) > MaxIDLength {
		return validationErrorf("%s exceeds maximum length of %d", label, MaxIDLength)
	}
	if !utf8.ValidString(id) {
		return validationErrorf("%s contains invalid UTF-8", label)
	}
	for _, r := range id {
		if r == ':' || r == '/' {
			return validationErrorf("%s contains forbidden character %q", label, r)
		}
		if unicode.IsControl(r) {
			return validationErrorf("%s contains control character", label)
		}
	}
	return nil
}

// ValidateWalletAddress checks the fixed 0x-prefixed 40-hex-digit form.
func ValidateWalletAddress(addr string) error {
	if !walletAddressRx.MatchString(addr) {
		return validationErrorf("wallet address %q does not match expected format", addr)
	}
	return nil
}

// Validate checks a record for structural soundness before it enters the
// system. Identity fields required by the canonicalizer must be present.
func (r *Record) Validate() error {
	if err := validateID(r.CertificateID, "certificate ID"); err != nil {
		return err
	}
	if err := validateID(r.Recipient.StudentID, "student ID"); err != nil {
		return err
	}
	if r.Recipient.Name == "" {
		return validationErrorf("recipient name must not be empty")
	}
	if r.Institution.Name == "" {
		return validationErrorf("institution name must not be empty")
	}
	if r.Course.Subject == "" {
		return validationErrorf("course subject must not be empty")
	}
	if !ValidType(r.Type) {
		return validationErrorf("invalid certificate type %q", r.Type)
	}
	if len(r.Title) > MaxTitleLength {
		return validationErrorf("title exceeds maximum length of %d", MaxTitleLength)
	}
	if r.Recipient.WalletAddress != "" {
		if err := ValidateWalletAddress(r.Recipient.WalletAddress); err != nil {
			return err
		}
	}
	if r.Course.Credits < 0 {
		return validationErrorf("credits must not be negative")
	}
	return nil
}
