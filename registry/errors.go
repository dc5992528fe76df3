package registry

import "errors"

var (
	// ErrExternal indicates a blob store or ledger call failed. The record's
	// persisted state is never mutated when this is returned.
	ErrExternal = errors.New("external collaborator error")

	// ErrDuplicate indicates a record with the same content hash already
	// exists; content hashes are a natural key.
	ErrDuplicate = errors.New("certificate with identical content already exists")
)
