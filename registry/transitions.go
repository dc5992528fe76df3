package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/blobstore"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/certificate"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/crypto"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/storage"
)

// Verify approves or rejects a PENDING certificate.
func (r *Registry) Verify(ctx context.Context, certificateID string, approved bool, comments string, actor certificate.Actor) (*certificate.Record, error) {
	rec, err := r.mutate(ctx, certificateID, func(rec *certificate.Record) error {
		return rec.Verify(actor, approved, comments, r.now())
	})
	if err != nil {
		return nil, err
	}
	r.logger.Info("certificate reviewed",
		"certificate_id", certificateID, "approved", approved, "actor", actor.ID)
	return rec, nil
}

// Issue moves an APPROVED certificate to ISSUED, allocating a unique
// verification code. A generated code that collides with an existing one is
// regenerated, never reported as a failure.
func (r *Registry) Issue(ctx context.Context, certificateID string, comments string, actor certificate.Actor) (*certificate.Record, error) {
	code, err := r.uniqueCode()
	if err != nil {
		return nil, err
	}
	rec, err := r.mutate(ctx, certificateID, func(rec *certificate.Record) error {
		return rec.Issue(actor, code, comments, r.now())
	})
	if err != nil {
		return nil, err
	}
	r.logger.Info("certificate issued",
		"certificate_id", certificateID, "verification_code", rec.VerificationCode, "actor", actor.ID)
	return rec, nil
}

const maxCodeAttempts = 10

func (r *Registry) uniqueCode() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := r.newCode()
		if err != nil {
			return "", fmt.Errorf("generating verification code: %w", err)
		}
		code = certificate.NormalizeCode(code)
		_, err = r.repo.GetByCode(code)
		if errors.Is(err, storage.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking verification code: %w", err)
		}
		// Collision: try again with a fresh code.
	}
	return "", fmt.Errorf("could not allocate a unique verification code after %d attempts", maxCodeAttempts)
}

// Revoke moves an ISSUED certificate to REVOKED. The reason is mandatory
// and lands in the history entry.
func (r *Registry) Revoke(ctx context.Context, certificateID string, reason string, actor certificate.Actor) (*certificate.Record, error) {
	rec, err := r.mutate(ctx, certificateID, func(rec *certificate.Record) error {
		return rec.Revoke(actor, reason, r.now())
	})
	if err != nil {
		return nil, err
	}
	r.logger.Info("certificate revoked",
		"certificate_id", certificateID, "actor", actor.ID)
	return rec, nil
}

// Update edits the restricted field set of a PENDING certificate. Edits that
// touch identity fields change the content hash, so the hash is recomputed
// and the encrypted payload re-stored before the record is persisted; the
// superseded blob is released best-effort afterwards.
func (r *Registry) Update(ctx context.Context, certificateID string, changes certificate.UpdateFields, actor certificate.Actor) (*certificate.Record, error) {
	if !actor.Has(certificate.PermissionCreate) {
		return nil, fmt.Errorf("update: %w", certificate.ErrUnauthorized)
	}

	var staleContentID, freshContentID string
	rec, err := r.mutate(ctx, certificateID, func(rec *certificate.Record) error {
		if err := rec.ApplyUpdate(actor, changes, r.now()); err != nil {
			return err
		}
		hash, err := certificate.HashRecord(rec)
		if err != nil {
			return err
		}
		if hash == rec.ContentHash {
			return nil
		}
		if other, err := r.repo.GetByContentHash(hash); err == nil && other.CertificateID != rec.CertificateID {
			return fmt.Errorf("content hash %s: %w", hash, ErrDuplicate)
		} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("checking content hash: %w", err)
		}
		rec.ContentHash = hash
		if !rec.IsEncrypted || rec.EncryptionKey == "" {
			return nil
		}

		env, err := r.engine.EncryptCertificate(rec, rec.EncryptionKey)
		if err != nil {
			return err
		}
		payload, err := crypto.MarshalEnvelope(env)
		if err != nil {
			return err
		}
		cid, err := r.blobs.Put(ctx, payload, blobstore.Metadata{
			"certificate_id": rec.CertificateID,
			"content_hash":   rec.ContentHash,
		})
		if err != nil {
			return fmt.Errorf("%w: blob store put: %v", ErrExternal, err)
		}
		if string(cid) != rec.ExternalContentID {
			staleContentID = rec.ExternalContentID
			freshContentID = string(cid)
			rec.ExternalContentID = freshContentID
		}
		return nil
	})
	if err != nil {
		// The record kept its old payload reference; release the one
		// written for the update that never landed.
		r.releaseBlob(ctx, certificateID, freshContentID)
		return nil, err
	}

	r.releaseBlob(ctx, certificateID, staleContentID)
	return rec, nil
}

// Delete removes a PENDING certificate and best-effort releases its blob
// store reference. An unpin failure is logged, never surfaced: the record
// deletion already succeeded.
func (r *Registry) Delete(ctx context.Context, certificateID string, actor certificate.Actor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !actor.Has(certificate.PermissionCreate) {
		return fmt.Errorf("delete: %w", certificate.ErrUnauthorized)
	}

	rec, err := r.repo.Get(certificateID)
	if err != nil {
		return err
	}
	if !rec.Deletable() {
		return fmt.Errorf("delete from %s: %w", rec.Status, certificate.ErrInvalidTransition)
	}

	if err := r.repo.Delete(certificateID); err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}

	r.releaseBlob(ctx, certificateID, rec.ExternalContentID)
	r.logger.Info("certificate deleted", "certificate_id", certificateID, "actor", actor.ID)
	return nil
}
