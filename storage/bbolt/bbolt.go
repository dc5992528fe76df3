// Package bbolt provides a BBolt-backed implementation of storage.Repository.
package bbolt

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/certificate"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/storage"
)

var (
	bucketRecords   = []byte("records")
	bucketCodeIndex = []byte("code_index")
	bucketHashIndex = []byte("hash_index")
)

// Store implements storage.Repository backed by a BBolt database.
// Record writes and their index updates share one transaction, so a
// transition and its history entry land atomically.
type Store struct {
	db *bbolt.DB
}

var _ storage.Repository = (*Store)(nil)

// storedRecord is the persisted shape: the record plus the payload secret
// that the record's public JSON form deliberately omits.
type storedRecord struct {
	Record        *certificate.Record `json:"record"`
	EncryptionKey string              `json:"encryption_key,omitempty"`
}

// NewStore returns a Store backed by the given BBolt database.
func NewStore(db *bbolt.DB) *Store {
	return &Store{db: db}
}

// Open opens a BBolt database at the given path and returns a new Store.
func Open(path string, options *bbolt.Options) (*Store, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	return NewStore(db), nil
}

// Close closes the underlying BBolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

func buckets(tx *bbolt.Tx) (records, codes, hashes *bbolt.Bucket, err error) {
	if records, err = tx.CreateBucketIfNotExists(bucketRecords); err != nil {
		return nil, nil, nil, err
	}
	if codes, err = tx.CreateBucketIfNotExists(bucketCodeIndex); err != nil {
		return nil, nil, nil, err
	}
	if hashes, err = tx.CreateBucketIfNotExists(bucketHashIndex); err != nil {
		return nil, nil, nil, err
	}
	return records, codes, hashes, nil
}

func decode(data []byte) (*certificate.Record, error) {
	if data == nil {
		return nil, storage.ErrNotFound
	}
	var sr storedRecord
	if err := json.Unmarshal(data, &sr); err != nil {
		return nil, fmt.Errorf("decoding stored record: %w", err)
	}
	sr.Record.EncryptionKey = sr.EncryptionKey
	return sr.Record, nil
}

func (s *Store) write(tx *bbolt.Tx, rec *certificate.Record) error {
	records, codes, hashes, err := buckets(tx)
	if err != nil {
		return err
	}
	if existing := records.Get([]byte(rec.CertificateID)); existing != nil {
		prev, err := decode(existing)
		if err != nil {
			return err
		}
		if prev.VerificationCode != "" && prev.VerificationCode != rec.VerificationCode {
			if err := codes.Delete([]byte(prev.VerificationCode)); err != nil {
				return err
			}
		}
		if prev.ContentHash != "" && prev.ContentHash != rec.ContentHash {
			if err := hashes.Delete([]byte(prev.ContentHash)); err != nil {
				return err
			}
		}
	}
	data, err := json.Marshal(storedRecord{Record: rec, EncryptionKey: rec.EncryptionKey})
	if err != nil {
		return fmt.Errorf("encoding stored record: %w", err)
	}
	if err := records.Put([]byte(rec.CertificateID), data); err != nil {
		return err
	}
	if rec.VerificationCode != "" {
		if err := codes.Put([]byte(rec.VerificationCode), []byte(rec.CertificateID)); err != nil {
			return err
		}
	}
	if rec.ContentHash != "" {
		if err := hashes.Put([]byte(rec.ContentHash), []byte(rec.CertificateID)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Put(rec *certificate.Record) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		cp := rec.Clone()
		if cp.Version == 0 {
			cp.Version = 1
		}
		if err := s.write(tx, cp); err != nil {
			return err
		}
		rec.Version = cp.Version
		return nil
	})
}

func (s *Store) Get(certificateID string) (*certificate.Record, error) {
	var rec *certificate.Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		if b == nil {
			return storage.ErrNotFound
		}
		var err error
		rec, err = decode(b.Get([]byte(certificateID)))
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) PutCAS(expectedVersion uint64, rec *certificate.Record) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		records, _, _, err := buckets(tx)
		if err != nil {
			return err
		}
		existing := records.Get([]byte(rec.CertificateID))
		if existing == nil {
			if expectedVersion != 0 {
				return storage.ErrCASFailed
			}
		} else {
			cur, err := decode(existing)
			if err != nil {
				return err
			}
			if cur.Version != expectedVersion {
				return storage.ErrCASFailed
			}
		}

		cp := rec.Clone()
		cp.Version = expectedVersion + 1
		if err := s.write(tx, cp); err != nil {
			return err
		}
		rec.Version = cp.Version
		return nil
	})
}

func (s *Store) Delete(certificateID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		records, codes, hashes, err := buckets(tx)
		if err != nil {
			return err
		}
		rec, err := decode(records.Get([]byte(certificateID)))
		if err != nil {
			return err
		}
		if rec.VerificationCode != "" {
			if err := codes.Delete([]byte(rec.VerificationCode)); err != nil {
				return err
			}
		}
		if rec.ContentHash != "" {
			if err := hashes.Delete([]byte(rec.ContentHash)); err != nil {
				return err
			}
		}
		return records.Delete([]byte(certificateID))
	})
}

func (s *Store) List() ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) getByIndex(indexBucket []byte, key string) (*certificate.Record, error) {
	var rec *certificate.Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		idx := tx.Bucket(indexBucket)
		records := tx.Bucket(bucketRecords)
		if idx == nil || records == nil {
			return storage.ErrNotFound
		}
		id := idx.Get([]byte(key))
		if id == nil {
			return storage.ErrNotFound
		}
		var err error
		rec, err = decode(records.Get(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) GetByCode(code string) (*certificate.Record, error) {
	return s.getByIndex(bucketCodeIndex, code)
}

func (s *Store) GetByContentHash(contentHash string) (*certificate.Record, error) {
	return s.getByIndex(bucketHashIndex, contentHash)
}
