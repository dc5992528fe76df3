package registry

import (
	"context"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/certificate"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/ingest"
)

// ItemOutcome is the per-item result of a batch operation.
type ItemOutcome struct {
	Index         int    `json:"index"`
	CertificateID string `json:"certificate_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// BatchResult reports a batch operation. Partial success is normal and
// reportable, not an error.
type BatchResult struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Items     []ItemOutcome `json:"items"`
}

func (b *BatchResult) record(outcome ItemOutcome) {
	b.Total++
	if outcome.Error == "" {
		b.Succeeded++
	} else {
		b.Failed++
	}
	b.Items = append(b.Items, outcome)
}

// CreateBatch creates one record per validated ingestion candidate. Items
// are processed independently; one failure never aborts the rest.
func (r *Registry) CreateBatch(ctx context.Context, candidates []ingest.Candidate, actor certificate.Actor) *BatchResult {
	result := &BatchResult{}
	for i, c := range candidates {
		outcome := ItemOutcome{Index: i}

		rec, err := r.Create(ctx, candidateInput(c), actor)
		if err != nil {
			outcome.Error = err.Error()
		} else {
			outcome.CertificateID = rec.CertificateID
		}
		result.record(outcome)
	}
	return result
}

// candidateInput maps a validated ingestion candidate onto CreateInput.
// Candidates without an explicit type default to academic.
func candidateInput(c ingest.Candidate) CreateInput {
	certType := c.CertificateType
	if certType == "" {
		certType = certificate.TypeAcademic
	}
	return CreateInput{
		Type: certType,
		Recipient: certificate.Recipient{
			StudentID:     c.StudentID,
			Name:          c.Name,
			Email:         c.Email,
			WalletAddress: c.WalletAddress,
		},
		Institution: certificate.Institution{
			Name:       c.Institution,
			Department: c.Department,
		},
		Course: certificate.Course{
			Subject:        c.Subject,
			Grade:          c.Grade,
			Credits:        c.Credits,
			Duration:       c.Duration,
			CompletionDate: c.CompletionDate,
		},
	}
}

// AnchorBatch anchors each listed certificate independently, collecting
// per-item outcomes.
func (r *Registry) AnchorBatch(ctx context.Context, certificateIDs []string, actor certificate.Actor) *BatchResult {
	result := &BatchResult{}
	for i, id := range certificateIDs {
		outcome := ItemOutcome{Index: i, CertificateID: id}
		if _, err := r.Anchor(ctx, id, actor); err != nil {
			outcome.Error = err.Error()
		}
		result.record(outcome)
	}
	return result
}
