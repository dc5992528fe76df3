package registry

import (
	"context"
	"fmt"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/blobstore"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/certificate"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/crypto"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/ledger"
)

func blobContentID(rec *certificate.Record) blobstore.ContentID {
	return blobstore.ContentID(rec.ExternalContentID)
}

// Anchor records the certificate's content hash on the external ledger and
// stores the receipt. The ledger call completes before any record mutation;
// a ledger failure leaves the record untouched.
func (r *Registry) Anchor(ctx context.Context, certificateID string, actor certificate.Actor) (*certificate.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := r.repo.Get(certificateID)
	if err != nil {
		return nil, err
	}
	if rec.ContentHash == "" {
		return nil, fmt.Errorf("record %s has no content hash", certificateID)
	}

	receipt, err := r.ledger.Anchor(ctx, rec.ContentHash, ledger.Metadata{
		"certificate_id": rec.CertificateID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: ledger anchor: %v", ErrExternal, err)
	}

	updated, err := r.mutate(ctx, certificateID, func(rec *certificate.Record) error {
		rec.RecordAnchor(actor, certificate.AnchorReceipt{
			TxID:        receipt.TxID,
			BlockHeight: receipt.BlockHeight,
			AnchoredAt:  receipt.Timestamp,
		}, r.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.logger.Info("certificate anchored",
		"certificate_id", certificateID, "tx_id", receipt.TxID, "block_height", receipt.BlockHeight)
	return updated, nil
}

// AuthenticityReport is the result of verifying a certificate against its
// stored hash and the external ledger.
type AuthenticityReport struct {
	CertificateID string `json:"certificate_id"`
	ContentHash   string `json:"content_hash"`
	HashMatches   bool   `json:"hash_matches"`
	Anchored      bool   `json:"anchored"`
	Authentic     bool   `json:"authentic"`
}

// VerifyAuthenticity recomputes the record's content hash from its identity
// fields, compares it to the stored value, and checks the ledger anchor.
func (r *Registry) VerifyAuthenticity(ctx context.Context, certificateID string) (*AuthenticityReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := r.repo.Get(certificateID)
	if err != nil {
		return nil, err
	}

	recomputed, err := certificate.HashRecord(rec)
	if err != nil {
		return nil, err
	}

	anchored, err := r.ledger.VerifyAnchored(ctx, rec.ContentHash)
	if err != nil {
		return nil, fmt.Errorf("%w: ledger verify: %v", ErrExternal, err)
	}

	report := &AuthenticityReport{
		CertificateID: rec.CertificateID,
		ContentHash:   rec.ContentHash,
		HashMatches:   recomputed == rec.ContentHash,
		Anchored:      anchored,
	}
	report.Authentic = report.HashMatches && anchored
	return report, nil
}

// GetDecrypted fetches the encrypted payload from the blob store and opens
// it with the record's stored per-record secret. Tampered payloads surface
// as crypto.ErrIntegrity.
func (r *Registry) GetDecrypted(ctx context.Context, certificateID string) (*certificate.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := r.repo.Get(certificateID)
	if err != nil {
		return nil, err
	}
	if !rec.IsEncrypted || rec.ExternalContentID == "" {
		return nil, fmt.Errorf("record %s has no encrypted payload", certificateID)
	}

	payload, err := r.blobs.Get(ctx, blobContentID(rec))
	if err != nil {
		return nil, fmt.Errorf("%w: blob store get: %v", ErrExternal, err)
	}

	env, err := crypto.UnmarshalEnvelope(payload)
	if err != nil {
		return nil, err
	}
	return r.engine.DecryptCertificate(env, rec.EncryptionKey)
}

// SignContentHash produces a non-repudiation signature over the record's
// content hash. Requires a signer configured via WithSigner.
func (r *Registry) SignContentHash(ctx context.Context, certificateID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.signer == nil {
		return nil, fmt.Errorf("no signer configured")
	}
	rec, err := r.repo.Get(certificateID)
	if err != nil {
		return nil, err
	}
	return r.signer.Sign([]byte(rec.ContentHash))
}
