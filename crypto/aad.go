package crypto

import (
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/internal/util"
)

// AADContext is the cleartext metadata bound into a certificate payload's
// authentication tag. It travels with the envelope so decryption can
// reconstruct the exact bytes; swapping ciphertexts between records makes
// the tags fail.
type AADContext struct {
	CertificateID string `json:"certificate_id"`
	StudentID     string `json:"student_id"`
	Institution   string `json:"institution"`
}

// Bytes renders the context as length-prefixed fields under a fixed label,
// so distinct contexts can never collide.
func (c AADContext) Bytes() []byte {
	b := util.AppendLenPrefix(nil, []byte("CERTPAYLOAD"))
	b = util.AppendLenPrefix(b, []byte(c.CertificateID))
	b = util.AppendLenPrefix(b, []byte(c.StudentID))
	b = util.AppendLenPrefix(b, []byte(c.Institution))
	return b
}
