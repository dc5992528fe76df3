// Package storage provides the persistence abstraction for certificate records.
package storage

import (
	"errors"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/certificate"
)

var (
	// ErrNotFound is returned when the referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrCASFailed is returned when a compare-and-swap version check fails.
	// Lifecycle transitions rely on this to reject the loser of a race
	// instead of silently overwriting history.
	ErrCASFailed = errors.New("CAS version mismatch")
)

// Repository defines certificate record storage.
//
// Implementations must persist the record's EncryptionKey even though the
// record's own JSON serialization excludes it; the stored form is internal
// to the backend and never the external representation.
type Repository interface {
	// Put stores a new record. The stored version starts at 1.
	Put(rec *certificate.Record) error

	// Get returns the record with the given certificate ID.
	Get(certificateID string) (*certificate.Record, error)

	// PutCAS replaces the record only if the stored version equals
	// expectedVersion, and bumps the version by one. A missing record
	// matches expectedVersion 0.
	PutCAS(expectedVersion uint64, rec *certificate.Record) error

	// Delete removes the record. Guarding on lifecycle state is the
	// caller's responsibility.
	Delete(certificateID string) error

	// List returns all stored certificate IDs.
	List() ([]string, error)

	// GetByCode returns the record holding the given verification code.
	// The code must already be normalized (uppercase).
	GetByCode(code string) (*certificate.Record, error)

	// GetByContentHash returns the record with the given content hash,
	// used as a natural key for duplicate detection.
	GetByContentHash(contentHash string) (*certificate.Record, error)
}
