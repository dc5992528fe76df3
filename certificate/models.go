// Package certificate defines the certificate record model, its canonical
// content hashing, and the lifecycle state machine with append-only history.
package certificate

import (
	"time"
)

// Status is the lifecycle state of a certificate record.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	StatusIssued   Status = "ISSUED"
	StatusRevoked  Status = "REVOKED"
)

// Terminal reports whether no further transitions are possible from s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusRevoked
}

// Type classifies the certificate.
type Type string

const (
	TypeAcademic     Type = "academic"
	TypeProfessional Type = "professional"
	TypeTraining     Type = "training"
	TypeAchievement  Type = "achievement"
)

// ValidType reports whether t is a member of the fixed type enumeration.
func ValidType(t Type) bool {
	switch t {
	case TypeAcademic, TypeProfessional, TypeTraining, TypeAchievement:
		return true
	default:
		return false
	}
}

// Recipient identifies who the certificate is issued to.
type Recipient struct {
	StudentID     string `json:"student_id"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
}

// Institution identifies the issuing body.
type Institution struct {
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
}

// Course describes the course or program the certificate attests.
type Course struct {
	Subject        string     `json:"subject"`
	Grade          string     `json:"grade,omitempty"`
	Credits        float64    `json:"credits,omitempty"`
	Duration       string     `json:"duration,omitempty"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
}

// Endorsement records a verifier or issuer action on the record.
type Endorsement struct {
	ActorID   string    `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
	Comments  string    `json:"comments,omitempty"`
}

// AnchorReceipt records the external ledger anchoring of the content hash.
type AnchorReceipt struct {
	TxID        string    `json:"tx_id"`
	BlockHeight uint64    `json:"block_height"`
	AnchoredAt  time.Time `json:"anchored_at"`
}

// Action labels a history entry.
type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionVerified Action = "verified"
	ActionRejected Action = "rejected"
	ActionIssued   Action = "issued"
	ActionRevoked  Action = "revoked"
	ActionAnchored Action = "anchored"
)

// HistoryEntry is one element of a record's append-only audit trail.
// Entries are only ever appended, never mutated or removed.
type HistoryEntry struct {
	Action         Action    `json:"action"`
	PerformedBy    string    `json:"performed_by"`
	Timestamp      time.Time `json:"timestamp"`
	Details        string    `json:"details,omitempty"`
	PreviousStatus Status    `json:"previous_status"`
	NewStatus      Status    `json:"new_status"`
}

// Record is the central certificate entity.
//
// EncryptionKey is deliberately excluded from JSON serialization: the default
// external representation of a record must never carry the payload secret.
// The storage layer persists it explicitly alongside the record.
type Record struct {
	CertificateID string      `json:"certificate_id"`
	Title         string      `json:"title,omitempty"`
	Type          Type        `json:"type"`
	Recipient     Recipient   `json:"recipient"`
	Institution   Institution `json:"institution"`
	Course        Course      `json:"course"`

	Status   Status       `json:"status"`
	Verifier *Endorsement `json:"verifier,omitempty"`
	Issuer   *Endorsement `json:"issuer,omitempty"`

	ContentHash       string `json:"content_hash,omitempty"`
	ExternalContentID string `json:"external_content_id,omitempty"`
	EncryptionKey     string `json:"-"`
	IsEncrypted       bool   `json:"is_encrypted"`

	VerificationCode string         `json:"verification_code,omitempty"`
	IsVerified       bool           `json:"is_verified"`
	Anchor           *AnchorReceipt `json:"anchor,omitempty"`

	History []HistoryEntry `json:"history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Version is the optimistic-concurrency token managed by storage.
	Version uint64 `json:"version"`
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	cp := *r
	if r.Verifier != nil {
		v := *r.Verifier
		cp.Verifier = &v
	}
	if r.Issuer != nil {
		i := *r.Issuer
		cp.Issuer = &i
	}
	if r.Anchor != nil {
		a := *r.Anchor
		cp.Anchor = &a
	}
	if r.Course.CompletionDate != nil {
		d := *r.Course.CompletionDate
		cp.Course.CompletionDate = &d
	}
	cp.History = append([]HistoryEntry(nil), r.History...)
	return &cp
}

// appendHistory adds one audit entry. Callers must pass the status that held
// before the change and the status that holds after it.
func (r *Record) appendHistory(action Action, performedBy, details string, prev, next Status, at time.Time) {
	r.History = append(r.History, HistoryEntry{
		Action:         action,
		PerformedBy:    performedBy,
		Timestamp:      at,
		Details:        details,
		PreviousStatus: prev,
		NewStatus:      next,
	})
}
