// Package crypto implements the certificate encryption engine: password-based
// key derivation, authenticated encryption of certificate payloads, secure
// password generation, and non-repudiation signatures.
package crypto

import (
	"errors"
	"fmt"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/internal/util"
)

// ErrIntegrity indicates an authentication tag failed to verify: either the
// key is wrong or the ciphertext was tampered with. This is a hard failure;
// no plaintext is ever returned alongside it.
var ErrIntegrity = errors.New("integrity check failed")

// AlgorithmAES256GCM identifies the only supported AEAD scheme.
const AlgorithmAES256GCM = "aes256gcm"

// Ciphertext is the result of one Encrypt call. The nonce is always
// generated inside Encrypt; there is deliberately no way for a caller to
// supply one, which structurally rules out nonce reuse under a key.
type Ciphertext struct {
	Algorithm string `json:"algorithm"`
	Nonce     []byte `json:"nonce"`
	Data      []byte `json:"data"`
	Tag       []byte `json:"tag"`
}

// Engine performs password-derived authenticated encryption. Construct one
// at process start and pass it to the components that need it.
type Engine struct {
	params util.PBKDF2Params
}

// Option configures an Engine.
type Option func(*Engine)

// WithIterations raises the PBKDF2 iteration count. Values below the
// minimum are rejected at derivation time.
func WithIterations(n int) Option {
	return func(e *Engine) {
		e.params.Iterations = n
	}
}

// NewEngine creates an Engine with default derivation parameters.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{params: util.DefaultPBKDF2Params()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Iterations returns the engine's configured PBKDF2 iteration count.
func (e *Engine) Iterations() int {
	return e.params.Iterations
}

// DeriveKey derives a 32-byte key from password and salt. Passing
// iterations 0 uses the engine default. The same (password, salt,
// iterations) always yields the same key.
func (e *Engine) DeriveKey(password string, salt []byte, iterations int) ([]byte, error) {
	params := e.params
	if iterations != 0 {
		params.Iterations = iterations
	}
	key, err := util.DerivePBKDF2Key(password, salt, params)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	return key, nil
}

// Encrypt seals plaintext under key with AES-256-GCM. aad, when non-nil,
// is bound into the authentication tag without being encrypted, so moving a
// ciphertext to a different context is detectable at decryption time.
func (e *Engine) Encrypt(plaintext, key, aad []byte) (*Ciphertext, error) {
	nonce, sealed, err := util.SealAESGCM(plaintext, key, aad)
	if err != nil {
		return nil, fmt.Errorf("encrypting payload: %w", err)
	}
	cut := len(sealed) - util.GCMTagSize
	return &Ciphertext{
		Algorithm: AlgorithmAES256GCM,
		Nonce:     nonce,
		Data:      sealed[:cut],
		Tag:       sealed[cut:],
	}, nil
}

// Decrypt opens ct under key, verifying aad. A failed tag check returns
// ErrIntegrity and no plaintext.
func (e *Engine) Decrypt(ct *Ciphertext, key, aad []byte) ([]byte, error) {
	if ct.Algorithm != AlgorithmAES256GCM {
		return nil, fmt.Errorf("unsupported algorithm %q", ct.Algorithm)
	}
	sealed := make([]byte, 0, len(ct.Data)+len(ct.Tag))
	sealed = append(sealed, ct.Data...)
	sealed = append(sealed, ct.Tag...)

	plain, err := util.OpenAESGCM(ct.Nonce, sealed, key, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	return plain, nil
}

// GeneratePassword returns a cryptographically random password of the given
// length, used as the per-record encryption secret when no human-chosen
// passphrase is supplied.
func GeneratePassword(length int) (string, error) {
	if length < 16 {
		return "", fmt.Errorf("password length %d below minimum of 16", length)
	}
	return util.RandomPassword(length)
}
