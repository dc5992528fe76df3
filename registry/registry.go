// Package registry orchestrates the certificate lifecycle: creation with
// content hashing and encrypted payload storage, guarded status transitions
// with optimistic concurrency control, ledger anchoring, and verification
// lookups.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/blobstore"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/certificate"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/crypto"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/ledger"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/storage"
)

const defaultPasswordLength = 32

// Registry coordinates certificate records across the repository, the blob
// store and the ledger. Construct one at process start and share it; all
// collaborators are explicit, there is no ambient state.
type Registry struct {
	repo        storage.Repository
	blobs       blobstore.Store
	ledger      ledger.Ledger
	engine      *crypto.Engine
	signer      *crypto.Signer
	logger      *slog.Logger
	now         func() time.Time
	newCode     func() (string, error)
	passwordLen int
}

// New creates a Registry over the given collaborators.
func New(repo storage.Repository, blobs blobstore.Store, l ledger.Ledger, engine *crypto.Engine, opts ...Option) *Registry {
	r := &Registry{
		repo:        repo,
		blobs:       blobs,
		ledger:      l,
		engine:      engine,
		logger:      slog.Default(),
		now:         func() time.Time { return time.Now().UTC() },
		newCode:     certificate.NewVerificationCode,
		passwordLen: defaultPasswordLength,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateInput carries the fields of a new certificate. CertificateID is
// optional; a CERT-prefixed identifier is generated when absent.
type CreateInput struct {
	CertificateID string
	Title         string
	Type          certificate.Type
	Recipient     certificate.Recipient
	Institution   certificate.Institution
	Course        certificate.Course
}

// Create validates input, computes the content hash, encrypts the full
// record under a freshly generated per-record password, stores the
// ciphertext in the blob store, and only then persists the PENDING record.
// A failed blob write leaves no record behind. An already-occupied
// certificate ID is rejected with ErrDuplicate; an existing record is never
// replaced through this path.
func (r *Registry) Create(ctx context.Context, in CreateInput, actor certificate.Actor) (*certificate.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !actor.Has(certificate.PermissionCreate) {
		return nil, fmt.Errorf("create: %w", certificate.ErrUnauthorized)
	}

	now := r.now()
	rec := &certificate.Record{
		CertificateID: in.CertificateID,
		Title:         in.Title,
		Type:          in.Type,
		Recipient:     in.Recipient,
		Institution:   in.Institution,
		Course:        in.Course,
		Status:        certificate.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if rec.CertificateID == "" {
		rec.CertificateID = newCertificateID()
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	if _, err := r.repo.Get(rec.CertificateID); err == nil {
		return nil, fmt.Errorf("certificate %s: %w", rec.CertificateID, ErrDuplicate)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("checking certificate ID: %w", err)
	}

	hash, err := certificate.HashRecord(rec)
	if err != nil {
		return nil, err
	}
	if _, err := r.repo.GetByContentHash(hash); err == nil {
		return nil, fmt.Errorf("content hash %s: %w", hash, ErrDuplicate)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("checking content hash: %w", err)
	}
	rec.ContentHash = hash

	password, err := crypto.GeneratePassword(r.passwordLen)
	if err != nil {
		return nil, fmt.Errorf("generating record password: %w", err)
	}

	env, err := r.engine.EncryptCertificate(rec, password)
	if err != nil {
		return nil, err
	}
	payload, err := crypto.MarshalEnvelope(env)
	if err != nil {
		return nil, err
	}

	cid, err := r.blobs.Put(ctx, payload, blobstore.Metadata{
		"certificate_id": rec.CertificateID,
		"content_hash":   rec.ContentHash,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: blob store put: %v", ErrExternal, err)
	}

	rec.ExternalContentID = string(cid)
	rec.EncryptionKey = password
	rec.IsEncrypted = true
	rec.AppendCreation(actor.ID, now)

	// PutCAS with expected version 0 only succeeds against a missing record,
	// so a racing Create with the same ID loses here instead of replacing an
	// established certificate.
	if err := r.repo.PutCAS(0, rec); err != nil {
		r.releaseBlob(ctx, rec.CertificateID, rec.ExternalContentID)
		if errors.Is(err, storage.ErrCASFailed) {
			return nil, fmt.Errorf("certificate %s: %w", rec.CertificateID, ErrDuplicate)
		}
		return nil, fmt.Errorf("persisting record: %w", err)
	}

	r.logger.Info("certificate created",
		"certificate_id", rec.CertificateID,
		"content_hash", rec.ContentHash,
		"external_content_id", rec.ExternalContentID)
	return export(rec), nil
}

// Get returns the record by certificate ID, with the encryption key redacted.
func (r *Registry) Get(ctx context.Context, certificateID string) (*certificate.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := r.repo.Get(certificateID)
	if err != nil {
		return nil, err
	}
	return export(rec), nil
}

// List returns all stored certificate IDs.
func (r *Registry) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.repo.List()
}

// LookupByCode finds an issued (or formerly issued) certificate by its
// public verification code. Comparison is case-insensitive.
func (r *Registry) LookupByCode(ctx context.Context, code string) (*certificate.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := r.repo.GetByCode(certificate.NormalizeCode(code))
	if err != nil {
		return nil, err
	}
	return export(rec), nil
}

// releaseBlob best-effort unpins a payload reference. Failures are logged,
// never surfaced: the record-side outcome is already decided by the caller.
func (r *Registry) releaseBlob(ctx context.Context, certificateID, contentID string) {
	if contentID == "" {
		return
	}
	if err := r.blobs.Unpin(ctx, blobstore.ContentID(contentID)); err != nil {
		r.logger.Warn("failed to unpin certificate payload",
			"certificate_id", certificateID,
			"external_content_id", contentID,
			"error", err)
	}
}

// export strips the payload secret from the externally-visible record.
func export(rec *certificate.Record) *certificate.Record {
	cp := rec.Clone()
	cp.EncryptionKey = ""
	return cp
}

func newCertificateID() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "CERT-" + id[:12]
}

// mutate loads a record, applies fn, and writes it back with a
// compare-and-swap on the version observed at load. A CAS loss means a
// concurrent actor got there first; the caller's transition is reported as
// invalid rather than silently overwriting history.
func (r *Registry) mutate(ctx context.Context, certificateID string, fn func(*certificate.Record) error) (*certificate.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := r.repo.Get(certificateID)
	if err != nil {
		return nil, err
	}
	observed := rec.Version

	if err := fn(rec); err != nil {
		return nil, err
	}

	if err := r.repo.PutCAS(observed, rec); err != nil {
		if errors.Is(err, storage.ErrCASFailed) {
			return nil, fmt.Errorf("concurrent modification of %s: %w",
				certificateID, certificate.ErrInvalidTransition)
		}
		return nil, fmt.Errorf("persisting record: %w", err)
	}
	return export(rec), nil
}
