package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is one header-labeled row of a tabular upload, already decoded from
// its container format (CSV, XLSX) by an adapter outside the core.
type Row map[string]string

// Canonical field names rows are normalized onto.
const (
	fieldStudentID       = "studentId"
	fieldName            = "name"
	fieldEmail           = "email"
	fieldInstitution     = "institution"
	fieldDepartment      = "department"
	fieldSubject         = "subject"
	fieldGrade           = "grade"
	fieldCredits         = "credits"
	fieldCompletionDate  = "completionDate"
	fieldCertificateType = "certificateType"
	fieldDuration        = "duration"
	fieldWalletAddress   = "walletAddress"
)

// headerSynonyms maps squashed header names (lowercase, separators removed)
// onto the canonical field set.
var headerSynonyms = map[string]string{
	"studentid":      fieldStudentID,
	"student":        fieldStudentID,
	"rollno":         fieldStudentID,
	"rollnumber":     fieldStudentID,
	"id":             fieldStudentID,
	"regno":          fieldStudentID,
	"registrationno": fieldStudentID,

	"name":        fieldName,
	"studentname": fieldName,
	"fullname":    fieldName,
	"recipient":   fieldName,

	"email":        fieldEmail,
	"emailaddress": fieldEmail,
	"mail":         fieldEmail,

	"institution":     fieldInstitution,
	"institutionname": fieldInstitution,
	"university":      fieldInstitution,
	"college":         fieldInstitution,
	"school":          fieldInstitution,

	"department": fieldDepartment,
	"dept":       fieldDepartment,
	"faculty":    fieldDepartment,

	"subject":    fieldSubject,
	"course":     fieldSubject,
	"coursename": fieldSubject,
	"program":    fieldSubject,

	"grade":  fieldGrade,
	"result": fieldGrade,
	"score":  fieldGrade,

	"credits":     fieldCredits,
	"credit":      fieldCredits,
	"credithours": fieldCredits,

	"completiondate":   fieldCompletionDate,
	"dateofcompletion": fieldCompletionDate,
	"completed":        fieldCompletionDate,
	"date":             fieldCompletionDate,
	"graduationdate":   fieldCompletionDate,

	"certificatetype": fieldCertificateType,
	"certtype":        fieldCertificateType,
	"type":            fieldCertificateType,

	"duration":       fieldDuration,
	"courseduration": fieldDuration,

	"walletaddress": fieldWalletAddress,
	"wallet":        fieldWalletAddress,
	"address":       fieldWalletAddress,
	"ethaddress":    fieldWalletAddress,
}

// acceptedDateFormats is the small fixed set of completion date formats.
// Formats are tried in order; the first match wins.
var acceptedDateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// squashHeader lowercases a header and strips spaces, underscores, dashes
// and dots so synonym lookup tolerates labeling styles.
func squashHeader(h string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		switch r {
		case ' ', '_', '-', '.', '#':
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// normalizeRow maps a raw row's headers onto canonical field names and
// cleans cell whitespace. Unknown headers are dropped; the first synonym
// occupying a canonical slot wins.
func normalizeRow(raw Row) Row {
	out := make(Row, len(raw))
	for header, value := range raw {
		canonical, ok := headerSynonyms[squashHeader(header)]
		if !ok {
			continue
		}
		value = strings.Join(strings.Fields(value), " ")
		if value == "" {
			continue
		}
		if _, taken := out[canonical]; !taken {
			out[canonical] = value
		}
	}
	return out
}

// blank reports whether every cell in the raw row is empty or whitespace.
func blank(raw Row) bool {
	for _, v := range raw {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range acceptedDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseCredits(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("credits %q is not a number", s)
	}
	return f, nil
}
