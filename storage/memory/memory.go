// Package memory provides a thread-safe in-memory implementation of
// storage.Repository. Suitable for testing, demos, and single-process use.
package memory

import (
	"sync"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/certificate"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/storage"
)

// Repository is a thread-safe in-memory implementation of storage.Repository.
type Repository struct {
	mu      sync.RWMutex
	records map[string]*certificate.Record
}

var _ storage.Repository = (*Repository)(nil)

// NewRepository creates a new empty in-memory Repository.
func NewRepository() *Repository {
	return &Repository{records: make(map[string]*certificate.Record)}
}

// clone copies a record including the encryption key, which Record.Clone
// carries because it is a struct field copy, not a serialization.
func clone(rec *certificate.Record) *certificate.Record {
	if rec == nil {
		return nil
	}
	return rec.Clone()
}

func (r *Repository) Put(rec *certificate.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := clone(rec)
	if cp.Version == 0 {
		cp.Version = 1
	}
	r.records[cp.CertificateID] = cp
	rec.Version = cp.Version
	return nil
}

func (r *Repository) Get(certificateID string) (*certificate.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[certificateID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return clone(rec), nil
}

func (r *Repository) PutCAS(expectedVersion uint64, rec *certificate.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.records[rec.CertificateID]
	if !ok {
		if expectedVersion != 0 {
			return storage.ErrCASFailed
		}
	} else if existing.Version != expectedVersion {
		return storage.ErrCASFailed
	}

	cp := clone(rec)
	cp.Version = expectedVersion + 1
	r.records[cp.CertificateID] = cp
	rec.Version = cp.Version
	return nil
}

func (r *Repository) Delete(certificateID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[certificateID]; !ok {
		return storage.ErrNotFound
	}
	delete(r.records, certificateID)
	return nil
}

func (r *Repository) List() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *Repository) GetByCode(code string) (*certificate.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if rec.VerificationCode != "" && rec.VerificationCode == code {
			return clone(rec), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (r *Repository) GetByContentHash(contentHash string) (*certificate.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if rec.ContentHash != "" && rec.ContentHash == contentHash {
			return clone(rec), nil
		}
	}
	return nil, storage.ErrNotFound
}
