package crypto

import (
	"encoding/json"
	"fmt"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/certificate"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/internal/util"
)

// KDFPBKDF2SHA256 identifies the envelope's key derivation function.
const KDFPBKDF2SHA256 = "pbkdf2-sha256"

const envelopeVersion = 1

// Envelope is the self-describing encrypted form of a certificate record:
// it carries the derivation parameters (salt, iterations, KDF id) alongside
// the AEAD output, so decryption needs only the envelope and the password.
type Envelope struct {
	Ver        int        `json:"ver"`
	Scheme     string     `json:"scheme"`
	KDF        string     `json:"kdf"`
	Salt       []byte     `json:"salt"`
	Iterations int        `json:"iterations"`
	Nonce      []byte     `json:"nonce"`
	Data       []byte     `json:"data"`
	Tag        []byte     `json:"tag"`
	Context    AADContext `json:"context"`
}

// EncryptCertificate seals the full record under a key derived from
// password and a fresh random salt. The record's identity context is bound
// as AAD. The record's own EncryptionKey field is excluded from the
// plaintext by its serialization, so a payload never contains its own secret.
func (e *Engine) EncryptCertificate(rec *certificate.Record, password string) (*Envelope, error) {
	salt, err := util.RandomBytes(util.MinSaltSize)
	if err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	key, err := e.DeriveKey(password, salt, 0)
	if err != nil {
		return nil, err
	}
	defer util.WipeBytes(key)

	plaintext, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}

	ctx := AADContext{
		CertificateID: rec.CertificateID,
		StudentID:     rec.Recipient.StudentID,
		Institution:   rec.Institution.Name,
	}
	ct, err := e.Encrypt(plaintext, key, ctx.Bytes())
	if err != nil {
		return nil, err
	}

	return &Envelope{
		Ver:        envelopeVersion,
		Scheme:     ct.Algorithm,
		KDF:        KDFPBKDF2SHA256,
		Salt:       salt,
		Iterations: e.params.Iterations,
		Nonce:      ct.Nonce,
		Data:       ct.Data,
		Tag:        ct.Tag,
		Context:    ctx,
	}, nil
}

// DecryptCertificate opens an envelope with the password it was sealed
// under. Wrong passwords and tampered payloads both surface as ErrIntegrity.
func (e *Engine) DecryptCertificate(env *Envelope, password string) (*certificate.Record, error) {
	if env.Ver != envelopeVersion {
		return nil, fmt.Errorf("unsupported envelope version %d", env.Ver)
	}
	if env.KDF != KDFPBKDF2SHA256 {
		return nil, fmt.Errorf("unsupported KDF %q", env.KDF)
	}

	key, err := e.DeriveKey(password, env.Salt, env.Iterations)
	if err != nil {
		return nil, err
	}
	defer util.WipeBytes(key)

	ct := &Ciphertext{
		Algorithm: env.Scheme,
		Nonce:     env.Nonce,
		Data:      env.Data,
		Tag:       env.Tag,
	}
	plain, err := e.Decrypt(ct, key, env.Context.Bytes())
	if err != nil {
		return nil, err
	}

	var rec certificate.Record
	if err := json.Unmarshal(plain, &rec); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	return &rec, nil
}

// MarshalEnvelope renders an envelope for blob-store storage.
func MarshalEnvelope(env *Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encoding envelope: %w", err)
	}
	return data, nil
}

// UnmarshalEnvelope parses an envelope fetched from the blob store.
func UnmarshalEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}
	return &env, nil
}
