package registry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/blobstore"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/certificate"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/crypto"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/ledger"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/storage"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/storage/memory"
)

var (
	creator  = certificate.Actor{ID: "creator-1", Permissions: []certificate.Permission{certificate.PermissionCreate}}
	verifier = certificate.Actor{ID: "verifier-1", Permissions: []certificate.Permission{certificate.PermissionVerify}}
	issuer   = certificate.Actor{ID: "issuer-1", Permissions: []certificate.Permission{certificate.PermissionIssue}}
)

type fixture struct {
	registry *Registry
	repo     *memory.Repository
	blobs    *blobstore.Memory
	ledger   *ledger.Memory
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		repo:   memory.NewRepository(),
		blobs:  blobstore.NewMemory(),
		ledger: ledger.NewMemory(),
	}
	f.registry = New(f.repo, f.blobs, f.ledger, crypto.NewEngine(), opts...)
	return f
}

func sampleInput(id string) CreateInput {
	completed := time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)
	return CreateInput{
		CertificateID: id,
		Title:         "Diploma in Databases",
		Type:          certificate.TypeAcademic,
		Recipient:     certificate.Recipient{StudentID: "S1", Name: "Jane Doe"},
		Institution:   certificate.Institution{Name: "Tech U"},
		Course:        certificate.Course{Subject: "Databases", Grade: "A", CompletionDate: &completed},
	}
}

func createSample(t *testing.T, f *fixture, id string) *certificate.Record {
	t.Helper()
	rec, err := f.registry.Create(context.Background(), sampleInput(id), creator)
	require.NoError(t, err)
	return rec
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	rec := createSample(t, f, "CERT-A1")

	assert.Equal(t, certificate.StatusPending, rec.Status)
	assert.True(t, certificate.ValidContentHash(rec.ContentHash))
	assert.True(t, rec.IsEncrypted)
	assert.NotEmpty(t, rec.ExternalContentID)
	assert.Empty(t, rec.EncryptionKey, "returned record must not expose the encryption key")

	require.Len(t, rec.History, 1)
	assert.Equal(t, certificate.ActionCreated, rec.History[0].Action)
	assert.Equal(t, "creator-1", rec.History[0].PerformedBy)

	// The payload really is in the blob store.
	payload, err := f.blobs.Get(context.Background(), blobstore.ContentID(rec.ExternalContentID))
	require.NoError(t, err)
	assert.NotEmpty(t, payload)
}

func TestCreate_GeneratesID(t *testing.T) {
	f := newFixture(t)
	rec, err := f.registry.Create(context.Background(), sampleInput(""), creator)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rec.CertificateID, "CERT-"))
}

func TestCreate_DeterministicHash(t *testing.T) {
	f := newFixture(t)
	rec := createSample(t, f, "CERT-A1")

	// Recomputing from identical inputs always reproduces the stored hash.
	check := &certificate.Record{
		CertificateID: "CERT-A1",
		Recipient:     certificate.Recipient{StudentID: "S1", Name: "Jane Doe"},
		Institution:   certificate.Institution{Name: "Tech U"},
		Course:        sampleInput("CERT-A1").Course,
	}
	hash, err := certificate.HashRecord(check)
	require.NoError(t, err)
	assert.Equal(t, rec.ContentHash, hash)
}

func TestCreate_RequiresPermission(t *testing.T) {
	f := newFixture(t)
	_, err := f.registry.Create(context.Background(), sampleInput("CERT-A1"), verifier)
	require.ErrorIs(t, err, certificate.ErrUnauthorized)
}

func TestCreate_ValidationFailure(t *testing.T) {
	f := newFixture(t)
	in := sampleInput("CERT-A1")
	in.Course.Subject = ""

	_, err := f.registry.Create(context.Background(), in, creator)
	require.Error(t, err)
	assert.True(t, certificate.IsValidation(err))

	ids, err := f.registry.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCreate_DuplicateContent(t *testing.T) {
	f := newFixture(t)
	createSample(t, f, "CERT-A1")

	_, err := f.registry.Create(context.Background(), sampleInput("CERT-A1"), creator)
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestCreate_OccupiedIDNeverReplaced(t *testing.T) {
	f := newFixture(t)
	createSample(t, f, "CERT-A1")
	ctx := context.Background()

	_, err := f.registry.Verify(ctx, "CERT-A1", true, "", verifier)
	require.NoError(t, err)
	issued, err := f.registry.Issue(ctx, "CERT-A1", "", issuer)
	require.NoError(t, err)

	// Same ID, different recipient: a fresh content hash, so only the ID
	// check can stop it.
	in := sampleInput("CERT-A1")
	in.Recipient = certificate.Recipient{StudentID: "S2", Name: "John Roe"}
	_, err = f.registry.Create(ctx, in, creator)
	require.ErrorIs(t, err, ErrDuplicate)

	rec, err := f.registry.Get(ctx, "CERT-A1")
	require.NoError(t, err)
	assert.Equal(t, certificate.StatusIssued, rec.Status)
	assert.Equal(t, "Jane Doe", rec.Recipient.Name)
	assert.Equal(t, issued.VerificationCode, rec.VerificationCode)
	assert.Len(t, rec.History, len(issued.History), "issued record must keep its full history")
}

type failingBlobs struct{}

func (failingBlobs) Put(context.Context, []byte, blobstore.Metadata) (blobstore.ContentID, error) {
	return "", errors.New("gateway unreachable")
}

func (failingBlobs) Get(context.Context, blobstore.ContentID) ([]byte, error) {
	return nil, errors.New("gateway unreachable")
}

func (failingBlobs) Unpin(context.Context, blobstore.ContentID) error {
	return errors.New("gateway unreachable")
}

func TestCreate_BlobFailureLeavesNoRecord(t *testing.T) {
	repo := memory.NewRepository()
	r := New(repo, failingBlobs{}, ledger.NewMemory(), crypto.NewEngine())

	_, err := r.Create(context.Background(), sampleInput("CERT-A1"), creator)
	require.ErrorIs(t, err, ErrExternal)

	_, err = repo.Get("CERT-A1")
	require.ErrorIs(t, err, storage.ErrNotFound, "no half-created record may remain")
}

func TestGetDecrypted_RoundTrip(t *testing.T) {
	f := newFixture(t)
	createSample(t, f, "CERT-A1")

	got, err := f.registry.GetDecrypted(context.Background(), "CERT-A1")
	require.NoError(t, err)
	assert.Equal(t, "CERT-A1", got.CertificateID)
	assert.Equal(t, "Jane Doe", got.Recipient.Name)
	assert.Equal(t, "Databases", got.Course.Subject)
}

func TestGetDecrypted_TamperedPayload(t *testing.T) {
	f := newFixture(t)
	rec := createSample(t, f, "CERT-A1")

	payload, err := f.blobs.Get(context.Background(), blobstore.ContentID(rec.ExternalContentID))
	require.NoError(t, err)

	env, err := crypto.UnmarshalEnvelope(payload)
	require.NoError(t, err)
	env.Data[0] ^= 0x01
	tampered, err := crypto.MarshalEnvelope(env)
	require.NoError(t, err)

	// Re-store under the original record's pointer.
	stored, err := f.repo.Get("CERT-A1")
	require.NoError(t, err)
	cid, err := f.blobs.Put(context.Background(), tampered, nil)
	require.NoError(t, err)
	stored.ExternalContentID = string(cid)
	require.NoError(t, f.repo.PutCAS(stored.Version, stored))

	_, err = f.registry.GetDecrypted(context.Background(), "CERT-A1")
	require.ErrorIs(t, err, crypto.ErrIntegrity)
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)
	createSample(t, f, "CERT-A1")
	ctx := context.Background()

	rec, err := f.registry.Verify(ctx, "CERT-A1", true, "transcript checked", verifier)
	require.NoError(t, err)
	assert.Equal(t, certificate.StatusApproved, rec.Status)

	rec, err = f.registry.Issue(ctx, "CERT-A1", "", issuer)
	require.NoError(t, err)
	assert.Equal(t, certificate.StatusIssued, rec.Status)
	assert.Len(t, rec.VerificationCode, 32)
	assert.Equal(t, strings.ToUpper(rec.VerificationCode), rec.VerificationCode)
	assert.True(t, rec.IsVerified)
	code := rec.VerificationCode

	rec, err = f.registry.Revoke(ctx, "CERT-A1", "credential fraud", issuer)
	require.NoError(t, err)
	assert.Equal(t, certificate.StatusRevoked, rec.Status)
	assert.False(t, rec.IsVerified)
	assert.Equal(t, code, rec.VerificationCode, "revocation keeps the code")

	last := rec.History[len(rec.History)-1]
	assert.Equal(t, certificate.ActionRevoked, last.Action)
	assert.Equal(t, certificate.StatusIssued, last.PreviousStatus)

	for i := 0; i < len(rec.History)-1; i++ {
		assert.Equal(t, rec.History[i].NewStatus, rec.History[i+1].PreviousStatus)
	}
}

func TestIssue_RequiresApproved(t *testing.T) {
	f := newFixture(t)
	createSample(t, f, "CERT-A1")

	_, err := f.registry.Issue(context.Background(), "CERT-A1", "", issuer)
	require.ErrorIs(t, err, certificate.ErrInvalidTransition)

	rec, err := f.registry.Get(context.Background(), "CERT-A1")
	require.NoError(t, err)
	assert.Equal(t, certificate.StatusPending, rec.Status)
	assert.Len(t, rec.History, 1, "failed transition must leave history unchanged")
}

func TestIssue_CodeCollisionRegenerated(t *testing.T) {
	taken, err := certificate.NewVerificationCode()
	require.NoError(t, err)
	fresh, err := certificate.NewVerificationCode()
	require.NoError(t, err)

	codes := []string{taken, fresh}
	gen := func() (string, error) {
		code := codes[0]
		if len(codes) > 1 {
			codes = codes[1:]
		}
		return code, nil
	}

	f := newFixture(t, WithCodeGenerator(gen))
	ctx := context.Background()

	// Occupy the first code.
	occupied := createSample(t, f, "CERT-B1")
	stored, err := f.repo.Get(occupied.CertificateID)
	require.NoError(t, err)
	stored.VerificationCode = taken
	require.NoError(t, f.repo.PutCAS(stored.Version, stored))

	createSample(t, f, "CERT-A1")
	_, err = f.registry.Verify(ctx, "CERT-A1", true, "", verifier)
	require.NoError(t, err)

	rec, err := f.registry.Issue(ctx, "CERT-A1", "", issuer)
	require.NoError(t, err)
	assert.Equal(t, fresh, rec.VerificationCode, "collision must regenerate, not fail")
}

func TestVerify_RaceLoserRejected(t *testing.T) {
	f := newFixture(t)
	createSample(t, f, "CERT-A1")
	ctx := context.Background()

	_, err := f.registry.Verify(ctx, "CERT-A1", true, "", verifier)
	require.NoError(t, err)

	_, err = f.registry.Verify(ctx, "CERT-A1", false, "", verifier)
	require.ErrorIs(t, err, certificate.ErrInvalidTransition)

	rec, err := f.registry.Get(ctx, "CERT-A1")
	require.NoError(t, err)
	assert.Equal(t, certificate.StatusApproved, rec.Status)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	createSample(t, f, "CERT-A1")

	title := "Advanced Databases Diploma"
	rec, err := f.registry.Update(context.Background(), "CERT-A1", certificate.UpdateFields{Title: &title}, creator)
	require.NoError(t, err)
	assert.Equal(t, title, rec.Title)

	_, err = f.registry.Verify(context.Background(), "CERT-A1", true, "", verifier)
	require.NoError(t, err)

	_, err = f.registry.Update(context.Background(), "CERT-A1", certificate.UpdateFields{Title: &title}, creator)
	require.ErrorIs(t, err, certificate.ErrInvalidTransition)
}

func TestUpdate_IdentityEditRecomputesHash(t *testing.T) {
	f := newFixture(t)
	created := createSample(t, f, "CERT-A1")
	ctx := context.Background()

	grade := "B+"
	rec, err := f.registry.Update(ctx, "CERT-A1", certificate.UpdateFields{Grade: &grade}, creator)
	require.NoError(t, err)
	assert.NotEqual(t, created.ContentHash, rec.ContentHash)
	assert.NotEqual(t, created.ExternalContentID, rec.ExternalContentID)

	report, err := f.registry.VerifyAuthenticity(ctx, "CERT-A1")
	require.NoError(t, err)
	assert.True(t, report.HashMatches, "stored hash must track the edited fields")

	// The re-encrypted payload carries the edit; the superseded blob is gone.
	got, err := f.registry.GetDecrypted(ctx, "CERT-A1")
	require.NoError(t, err)
	assert.Equal(t, grade, got.Course.Grade)
	_, err = f.blobs.Get(ctx, blobstore.ContentID(created.ExternalContentID))
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

// flakyCASRepo rejects every PutCAS while armed, simulating a transition
// that loses its compare-and-swap.
type flakyCASRepo struct {
	*memory.Repository
	failCAS bool
}

func (r *flakyCASRepo) PutCAS(expectedVersion uint64, rec *certificate.Record) error {
	if r.failCAS {
		return storage.ErrCASFailed
	}
	return r.Repository.PutCAS(expectedVersion, rec)
}

// recordingBlobs tracks every Put and Unpin that reaches the store.
type recordingBlobs struct {
	*blobstore.Memory
	puts   []blobstore.ContentID
	unpins []blobstore.ContentID
}

func (b *recordingBlobs) Put(ctx context.Context, data []byte, meta blobstore.Metadata) (blobstore.ContentID, error) {
	cid, err := b.Memory.Put(ctx, data, meta)
	if err == nil {
		b.puts = append(b.puts, cid)
	}
	return cid, err
}

func (b *recordingBlobs) Unpin(ctx context.Context, cid blobstore.ContentID) error {
	b.unpins = append(b.unpins, cid)
	return b.Memory.Unpin(ctx, cid)
}

func TestUpdate_CASLossReleasesFreshBlob(t *testing.T) {
	repo := &flakyCASRepo{Repository: memory.NewRepository()}
	blobs := &recordingBlobs{Memory: blobstore.NewMemory()}
	r := New(repo, blobs, ledger.NewMemory(), crypto.NewEngine())
	ctx := context.Background()

	rec, err := r.Create(ctx, sampleInput("CERT-A1"), creator)
	require.NoError(t, err)

	repo.failCAS = true
	grade := "B+"
	_, err = r.Update(ctx, "CERT-A1", certificate.UpdateFields{Grade: &grade}, creator)
	require.ErrorIs(t, err, certificate.ErrInvalidTransition)

	// The payload written for the lost update must not linger.
	require.Len(t, blobs.puts, 2)
	fresh := blobs.puts[1]
	assert.Contains(t, blobs.unpins, fresh)
	_, err = blobs.Get(ctx, fresh)
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	// The record and its original payload are untouched.
	_, err = blobs.Get(ctx, blobstore.ContentID(rec.ExternalContentID))
	require.NoError(t, err)
	repo.failCAS = false
	got, err := r.Get(ctx, "CERT-A1")
	require.NoError(t, err)
	assert.Equal(t, rec.ExternalContentID, got.ExternalContentID)
	assert.Equal(t, "A", got.Course.Grade)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	rec := createSample(t, f, "CERT-A1")
	ctx := context.Background()

	require.NoError(t, f.registry.Delete(ctx, "CERT-A1", creator))

	_, err := f.registry.Get(ctx, "CERT-A1")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = f.blobs.Get(ctx, blobstore.ContentID(rec.ExternalContentID))
	require.ErrorIs(t, err, blobstore.ErrNotFound, "delete must release the blob reference")
}

func TestDelete_OnlyPending(t *testing.T) {
	f := newFixture(t)
	createSample(t, f, "CERT-A1")
	_, err := f.registry.Verify(context.Background(), "CERT-A1", true, "", verifier)
	require.NoError(t, err)

	err = f.registry.Delete(context.Background(), "CERT-A1", creator)
	require.ErrorIs(t, err, certificate.ErrInvalidTransition)
}

func TestAnchor(t *testing.T) {
	f := newFixture(t)
	createSample(t, f, "CERT-A1")

	rec, err := f.registry.Anchor(context.Background(), "CERT-A1", issuer)
	require.NoError(t, err)
	require.NotNil(t, rec.Anchor)
	assert.NotEmpty(t, rec.Anchor.TxID)
	assert.Equal(t, certificate.ActionAnchored, rec.History[len(rec.History)-1].Action)

	anchored, err := f.ledger.VerifyAnchored(context.Background(), rec.ContentHash)
	require.NoError(t, err)
	assert.True(t, anchored)
}

func TestAnchor_LedgerFailureLeavesRecordUntouched(t *testing.T) {
	f := newFixture(t)
	createSample(t, f, "CERT-A1")
	f.ledger.FailNext = true

	_, err := f.registry.Anchor(context.Background(), "CERT-A1", issuer)
	require.ErrorIs(t, err, ErrExternal)

	rec, err := f.registry.Get(context.Background(), "CERT-A1")
	require.NoError(t, err)
	assert.Nil(t, rec.Anchor)
	assert.Len(t, rec.History, 1)
}

func TestVerifyAuthenticity(t *testing.T) {
	f := newFixture(t)
	createSample(t, f, "CERT-A1")
	ctx := context.Background()

	report, err := f.registry.VerifyAuthenticity(ctx, "CERT-A1")
	require.NoError(t, err)
	assert.True(t, report.HashMatches)
	assert.False(t, report.Anchored)
	assert.False(t, report.Authentic)

	_, err = f.registry.Anchor(ctx, "CERT-A1", issuer)
	require.NoError(t, err)

	report, err = f.registry.VerifyAuthenticity(ctx, "CERT-A1")
	require.NoError(t, err)
	assert.True(t, report.Authentic)

	// Tamper with a stored identity field behind the registry's back.
	stored, err := f.repo.Get("CERT-A1")
	require.NoError(t, err)
	stored.Course.Grade = "F"
	require.NoError(t, f.repo.PutCAS(stored.Version, stored))

	report, err = f.registry.VerifyAuthenticity(ctx, "CERT-A1")
	require.NoError(t, err)
	assert.False(t, report.HashMatches)
	assert.False(t, report.Authentic)
}

func TestLookupByCode(t *testing.T) {
	f := newFixture(t)
	createSample(t, f, "CERT-A1")
	ctx := context.Background()

	_, err := f.registry.Verify(ctx, "CERT-A1", true, "", verifier)
	require.NoError(t, err)
	issued, err := f.registry.Issue(ctx, "CERT-A1", "", issuer)
	require.NoError(t, err)

	got, err := f.registry.LookupByCode(ctx, strings.ToLower(issued.VerificationCode))
	require.NoError(t, err)
	assert.Equal(t, "CERT-A1", got.CertificateID)
	assert.Empty(t, got.EncryptionKey)

	_, err = f.registry.LookupByCode(ctx, "00000000000000000000000000000000")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSignContentHash(t *testing.T) {
	signer, err := crypto.NewSigner()
	require.NoError(t, err)

	f := newFixture(t, WithSigner(signer))
	rec := createSample(t, f, "CERT-A1")

	sig, err := f.registry.SignContentHash(context.Background(), "CERT-A1")
	require.NoError(t, err)
	assert.True(t, crypto.VerifySignature(signer.Public(), []byte(rec.ContentHash), sig))
}
