package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"github.com/awnumar/memguard"
)

// Signer produces ECDSA P-256 signatures for optional non-repudiation of
// content hashes. The private key lives in a memguard enclave and is only
// materialized for the duration of each signing call.
type Signer struct {
	enclave *memguard.Enclave
	pub     *ecdsa.PublicKey
}

// NewSigner generates a fresh P-256 keypair.
func NewSigner() (*Signer, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating signing key: %w", err)
	}
	return NewSignerFromKey(priv)
}

// NewSignerFromKey wraps an existing private key. The caller should discard
// its own reference afterwards; the signer's copy is enclave-protected.
func NewSignerFromKey(priv *ecdsa.PrivateKey) (*Signer, error) {
	der, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("encoding signing key: %w", err)
	}
	// NewEnclave wipes the source buffer.
	return &Signer{
		enclave: memguard.NewEnclave(der),
		pub:     &priv.PublicKey,
	}, nil
}

// Public returns the verification key.
func (s *Signer) Public() *ecdsa.PublicKey {
	return s.pub
}

// Sign returns an ASN.1 DER signature over SHA-256(data).
func (s *Signer) Sign(data []byte) ([]byte, error) {
	buf, err := s.enclave.Open()
	if err != nil {
		return nil, fmt.Errorf("opening signing key enclave: %w", err)
	}
	defer buf.Destroy()

	priv, err := x509.ParseECPrivateKey(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("decoding signing key: %w", err)
	}

	digest := sha256.Sum256(data)
	sig, err := ecdsa.SignASN1(rand.Reader, priv, digest[:])
	if err != nil {
		return nil, fmt.Errorf("signing: %w", err)
	}
	return sig, nil
}

// VerifySignature reports whether sig is a valid signature over data by the
// holder of pub.
func VerifySignature(pub *ecdsa.PublicKey, data, sig []byte) bool {
	digest := sha256.Sum256(data)
	return ecdsa.VerifyASN1(pub, digest[:], sig)
}
