package bbolt

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/certificate"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/storage"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "certs.db")
	s, err := Open(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newRecord(t *testing.T, id string) *certificate.Record {
	t.Helper()
	completed := time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)
	rec := &certificate.Record{
		CertificateID: id,
		Type:          certificate.TypeTraining,
		Recipient:     certificate.Recipient{StudentID: "S1", Name: "Jane Doe"},
		Institution:   certificate.Institution{Name: "Tech U"},
		Course:        certificate.Course{Subject: "Databases", CompletionDate: &completed},
		Status:        certificate.StatusPending,
		EncryptionKey: "per-record-secret",
	}
	hash, err := certificate.HashRecord(rec)
	require.NoError(t, err)
	rec.ContentHash = hash
	return rec
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newStore(t)
	rec := newRecord(t, "CERT-1")

	require.NoError(t, s.Put(rec))

	got, err := s.Get("CERT-1")
	require.NoError(t, err)
	assert.Equal(t, rec.CertificateID, got.CertificateID)
	assert.Equal(t, rec.ContentHash, got.ContentHash)
	assert.Equal(t, "per-record-secret", got.EncryptionKey,
		"encryption key must survive persistence despite being excluded from record JSON")
	assert.Equal(t, uint64(1), got.Version)
}

func TestGet_NotFound(t *testing.T) {
	s := newStore(t)
	_, err := s.Get("missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPutCAS_VersionChain(t *testing.T) {
	s := newStore(t)
	rec := newRecord(t, "CERT-1")
	require.NoError(t, s.Put(rec))

	rec.Status = certificate.StatusApproved
	require.NoError(t, s.PutCAS(1, rec))
	assert.Equal(t, uint64(2), rec.Version)

	stale := rec.Clone()
	stale.Status = certificate.StatusRejected
	require.ErrorIs(t, s.PutCAS(1, stale), storage.ErrCASFailed)

	got, err := s.Get("CERT-1")
	require.NoError(t, err)
	assert.Equal(t, certificate.StatusApproved, got.Status)
	assert.Equal(t, uint64(2), got.Version)
}

func TestDelete_RemovesIndexes(t *testing.T) {
	s := newStore(t)
	rec := newRecord(t, "CERT-1")
	rec.VerificationCode = "ABCDEF0123456789ABCDEF0123456789"
	require.NoError(t, s.Put(rec))

	require.NoError(t, s.Delete("CERT-1"))

	_, err := s.Get("CERT-1")
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetByCode(rec.VerificationCode)
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetByContentHash(rec.ContentHash)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIndexLookups(t *testing.T) {
	s := newStore(t)
	rec := newRecord(t, "CERT-1")
	rec.VerificationCode = "ABCDEF0123456789ABCDEF0123456789"
	require.NoError(t, s.Put(rec))
	require.NoError(t, s.Put(newRecord(t, "CERT-2")))

	byCode, err := s.GetByCode(rec.VerificationCode)
	require.NoError(t, err)
	assert.Equal(t, "CERT-1", byCode.CertificateID)

	byHash, err := s.GetByContentHash(rec.ContentHash)
	require.NoError(t, err)
	assert.Equal(t, "CERT-1", byHash.CertificateID)

	ids, err := s.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"CERT-1", "CERT-2"}, ids)
}

func TestReopen_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "certs.db")
	s, err := Open(path, nil)
	require.NoError(t, err)

	rec := newRecord(t, "CERT-1")
	require.NoError(t, s.Put(rec))
	require.NoError(t, s.Close())

	s2, err := Open(path, nil)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Get("CERT-1")
	require.NoError(t, err)
	assert.Equal(t, rec.ContentHash, got.ContentHash)
	assert.Equal(t, "per-record-secret", got.EncryptionKey)
}
