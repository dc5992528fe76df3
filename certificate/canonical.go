package certificate

import (
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/internal/util"
)

// canonicalDateFormat is the single fixed serialization for completion dates.
const canonicalDateFormat = "2006-01-02"

// Canonicalize maps the identity-bearing fields of a record onto a single
// deterministic byte sequence. Equal logical content always yields
// byte-identical output: the field order is fixed here explicitly, every
// field is length-prefixed, strings are NFKD-normalized with collapsed
// whitespace, and the completion date uses one fixed date-only format.
//
// The identity field set is {certificateID, studentID, recipient name,
// institution name, course subject, grade, completion date}. Changing any of
// these changes the canonical bytes; no other field participates.
func Canonicalize(r *Record) ([]byte, error) {
	if r.CertificateID == "" || r.Recipient.StudentID == "" || r.Recipient.Name == "" ||
		r.Institution.Name == "" || r.Course.Subject == "" {
		return nil, validationErrorf("canonicalize: identity fields incomplete")
	}

	date := ""
	if r.Course.CompletionDate != nil {
		date = r.Course.CompletionDate.UTC().Format(canonicalDateFormat)
	}

	fields := []string{
		r.CertificateID,
		r.Recipient.StudentID,
		r.Recipient.Name,
		r.Institution.Name,
		r.Course.Subject,
		r.Course.Grade,
		date,
	}

	var buf []byte
	for _, f := range fields {
		buf = util.AppendLenPrefix(buf, []byte(canonicalString(f)))
	}
	return buf, nil
}

func canonicalString(s string) string {
	return util.Normalize(util.CollapseSpace(s))
}
