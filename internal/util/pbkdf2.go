package util

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// PBKDF2KeyLen is the derived key length in bytes.
	PBKDF2KeyLen = 32
	// MinPBKDF2Iterations is the floor below which derivation is refused.
	MinPBKDF2Iterations = 100_000
	// MinSaltSize is the minimum salt length in bytes (256 bits).
	MinSaltSize = 32
)

// PBKDF2Params configures PBKDF2-HMAC-SHA256 key derivation.
type PBKDF2Params struct {
	Iterations int `json:"iterations"`
	KeyLen     int `json:"key_len"`
}

// DefaultPBKDF2Params returns the default derivation parameters.
func DefaultPBKDF2Params() PBKDF2Params {
	return PBKDF2Params{
		Iterations: MinPBKDF2Iterations,
		KeyLen:     PBKDF2KeyLen,
	}
}

// DerivePBKDF2Key derives a key from passphrase and salt. The same
// (passphrase, salt, params) always yields the same key.
func DerivePBKDF2Key(passphrase string, salt []byte, params PBKDF2Params) ([]byte, error) {
	if params.KeyLen != PBKDF2KeyLen {
		return nil, fmt.Errorf("pbkdf2 key length must be %d bytes", PBKDF2KeyLen)
	}
	if params.Iterations < MinPBKDF2Iterations {
		return nil, fmt.Errorf("pbkdf2 iterations %d below minimum %d", params.Iterations, MinPBKDF2Iterations)
	}
	if len(salt) < MinSaltSize {
		return nil, fmt.Errorf("salt length %d below minimum %d bytes", len(salt), MinSaltSize)
	}
	return pbkdf2.Key([]byte(passphrase), salt, params.Iterations, params.KeyLen, sha256.New), nil
}

// ComparePBKDF2Key derives a key and compares it to expectedKey in constant time.
func ComparePBKDF2Key(passphrase string, salt []byte, params PBKDF2Params, expectedKey []byte) (bool, error) {
	key, err := DerivePBKDF2Key(passphrase, salt, params)
	if err != nil {
		return false, err
	}
	defer WipeBytes(key)
	return subtle.ConstantTimeCompare(key, expectedKey) == 1, nil
}
