package crypto

import (
	"strings"
	"unicode"
)

// StrengthVerdict classifies a password assessment.
type StrengthVerdict string

const (
	VerdictWeak   StrengthVerdict = "weak"
	VerdictFair   StrengthVerdict = "fair"
	VerdictStrong StrengthVerdict = "strong"
)

// Strength is a scored assessment of a human-supplied password. Generated
// per-record passwords skip this path entirely.
type Strength struct {
	Score      int             `json:"score"` // 0..100
	Length     int             `json:"length"`
	HasUpper   bool            `json:"has_upper"`
	HasLower   bool            `json:"has_lower"`
	HasDigit   bool            `json:"has_digit"`
	HasSymbol  bool            `json:"has_symbol"`
	Verdict    StrengthVerdict `json:"verdict"`
	Acceptable bool            `json:"acceptable"`
}

var commonPasswords = []string{
	"password", "123456", "qwerty", "letmein", "admin", "welcome", "certificate",
}

// ValidateKeyStrength scores a password on length and character-class
// coverage, with a penalty for well-known weak choices.
func ValidateKeyStrength(password string) Strength {
	s := Strength{Length: len(password)}

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			s.HasUpper = true
		case unicode.IsLower(r):
			s.HasLower = true
		case unicode.IsDigit(r):
			s.HasDigit = true
		default:
			s.HasSymbol = true
		}
	}

	switch {
	case s.Length >= 20:
		s.Score += 40
	case s.Length >= 12:
		s.Score += 30
	case s.Length >= 8:
		s.Score += 15
	}
	for _, has := range []bool{s.HasUpper, s.HasLower, s.HasDigit, s.HasSymbol} {
		if has {
			s.Score += 15
		}
	}

	lower := strings.ToLower(password)
	for _, common := range commonPasswords {
		if strings.Contains(lower, common) {
			s.Score -= 30
			break
		}
	}
	if s.Score < 0 {
		s.Score = 0
	}
	if s.Score > 100 {
		s.Score = 100
	}

	switch {
	case s.Score >= 75:
		s.Verdict = VerdictStrong
	case s.Score >= 50:
		s.Verdict = VerdictFair
	default:
		s.Verdict = VerdictWeak
	}
	s.Acceptable = s.Verdict != VerdictWeak && s.Length >= 12
	return s
}
