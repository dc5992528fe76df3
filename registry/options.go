package registry

import (
	"log/slog"
	"time"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/crypto"
)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithSigner enables non-repudiation signatures over content hashes.
func WithSigner(signer *crypto.Signer) Option {
	return func(r *Registry) {
		r.signer = signer
	}
}

// WithCodeGenerator overrides verification code generation, mainly for
// collision tests.
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(r *Registry) {
		r.newCode = gen
	}
}

// WithPasswordLength sets the generated per-record password length.
func WithPasswordLength(n int) Option {
	return func(r *Registry) {
		r.passwordLen = n
	}
}
