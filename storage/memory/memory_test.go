package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/certificate"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/storage"
)

func newRecord(t *testing.T, id string) *certificate.Record {
	t.Helper()
	completed := time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)
	rec := &certificate.Record{
		CertificateID: id,
		Type:          certificate.TypeAcademic,
		Recipient:     certificate.Recipient{StudentID: "S1", Name: "Jane Doe"},
		Institution:   certificate.Institution{Name: "Tech U"},
		Course:        certificate.Course{Subject: "Databases", Grade: "A", CompletionDate: &completed},
		Status:        certificate.StatusPending,
		EncryptionKey: "per-record-secret",
	}
	hash, err := certificate.HashRecord(rec)
	require.NoError(t, err)
	rec.ContentHash = hash
	return rec
}

func TestPutAndGet(t *testing.T) {
	repo := NewRepository()
	rec := newRecord(t, "CERT-1")

	require.NoError(t, repo.Put(rec))
	assert.Equal(t, uint64(1), rec.Version)

	got, err := repo.Get("CERT-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Recipient.Name)
	assert.Equal(t, "per-record-secret", got.EncryptionKey,
		"repository must persist the encryption key")
}

func TestGet_NotFound(t *testing.T) {
	repo := NewRepository()
	_, err := repo.Get("missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGet_ReturnsCopy(t *testing.T) {
	repo := NewRepository()
	require.NoError(t, repo.Put(newRecord(t, "CERT-1")))

	got, err := repo.Get("CERT-1")
	require.NoError(t, err)
	got.Status = certificate.StatusIssued

	again, err := repo.Get("CERT-1")
	require.NoError(t, err)
	assert.Equal(t, certificate.StatusPending, again.Status)
}

func TestPutCAS(t *testing.T) {
	repo := NewRepository()
	rec := newRecord(t, "CERT-1")
	require.NoError(t, repo.Put(rec))

	rec.Status = certificate.StatusApproved
	require.NoError(t, repo.PutCAS(1, rec))
	assert.Equal(t, uint64(2), rec.Version)

	stale := rec.Clone()
	stale.Status = certificate.StatusRejected
	require.ErrorIs(t, repo.PutCAS(1, stale), storage.ErrCASFailed)

	got, err := repo.Get("CERT-1")
	require.NoError(t, err)
	assert.Equal(t, certificate.StatusApproved, got.Status)
}

func TestPutCAS_MissingRecord(t *testing.T) {
	repo := NewRepository()
	rec := newRecord(t, "CERT-1")

	require.ErrorIs(t, repo.PutCAS(3, rec), storage.ErrCASFailed)
	require.NoError(t, repo.PutCAS(0, rec))
	assert.Equal(t, uint64(1), rec.Version)
}

func TestPutCAS_ConcurrentOneWinner(t *testing.T) {
	repo := NewRepository()
	require.NoError(t, repo.Put(newRecord(t, "CERT-1")))

	const racers = 8
	var wg sync.WaitGroup
	wins := make(chan struct{}, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := repo.Get("CERT-1")
			if err != nil {
				return
			}
			rec.Status = certificate.StatusApproved
			if repo.PutCAS(1, rec) == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	assert.Equal(t, 1, count, "exactly one concurrent CAS from the same version may win")
}

func TestDelete(t *testing.T) {
	repo := NewRepository()
	require.NoError(t, repo.Put(newRecord(t, "CERT-1")))

	require.NoError(t, repo.Delete("CERT-1"))
	_, err := repo.Get("CERT-1")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.ErrorIs(t, repo.Delete("CERT-1"), storage.ErrNotFound)
}

func TestList(t *testing.T) {
	repo := NewRepository()
	require.NoError(t, repo.Put(newRecord(t, "CERT-1")))
	require.NoError(t, repo.Put(newRecord(t, "CERT-2")))

	ids, err := repo.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"CERT-1", "CERT-2"}, ids)
}

func TestGetByCode(t *testing.T) {
	repo := NewRepository()
	rec := newRecord(t, "CERT-1")
	rec.VerificationCode = "ABCDEF0123456789ABCDEF0123456789"
	require.NoError(t, repo.Put(rec))

	got, err := repo.GetByCode("ABCDEF0123456789ABCDEF0123456789")
	require.NoError(t, err)
	assert.Equal(t, "CERT-1", got.CertificateID)

	_, err = repo.GetByCode("00000000000000000000000000000000")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetByContentHash(t *testing.T) {
	repo := NewRepository()
	rec := newRecord(t, "CERT-1")
	require.NoError(t, repo.Put(rec))

	got, err := repo.GetByContentHash(rec.ContentHash)
	require.NoError(t, err)
	assert.Equal(t, "CERT-1", got.CertificateID)

	_, err = repo.GetByContentHash("0xdeadbeef")
	require.ErrorIs(t, err, storage.ErrNotFound)
}
