package certificate

import (
	"fmt"
	"strings"
	"time"
)

// Permission gates lifecycle actions. Role storage and authentication live
// outside the core; actors arrive with their permission set already resolved.
type Permission string

const (
	PermissionCreate Permission = "certificate:create"
	PermissionVerify Permission = "certificate:verify"
	PermissionIssue  Permission = "certificate:issue"
)

// Actor is the principal performing a lifecycle action.
type Actor struct {
	ID          string
	Permissions []Permission
}

// Has reports whether the actor holds p.
func (a Actor) Has(p Permission) bool {
	for _, held := range a.Permissions {
		if held == p {
			return true
		}
	}
	return false
}

// AppendCreation records the initial history entry of a newly created
// record. Every record carries exactly one of these at index zero.
func (r *Record) AppendCreation(actorID string, at time.Time) {
	r.appendHistory(ActionCreated, actorID, "certificate created", StatusPending, StatusPending, at)
}

func validateComment(comment string) error {
	if len(comment) > MaxCommentLength {
		return validationErrorf("comment exceeds maximum length of %d", MaxCommentLength)
	}
	return nil
}

// Verify moves a PENDING record to APPROVED or REJECTED and records the
// verifier endorsement. The actor must hold the verify permission.
func (r *Record) Verify(actor Actor, approved bool, comments string, at time.Time) error {
	if !actor.Has(PermissionVerify) {
		return fmt.Errorf("verify: %w", ErrUnauthorized)
	}
	if err := validateComment(comments); err != nil {
		return err
	}
	if r.Status != StatusPending {
		return fmt.Errorf("verify from %s: %w", r.Status, ErrInvalidTransition)
	}

	prev := r.Status
	action := ActionVerified
	next := StatusApproved
	if !approved {
		action = ActionRejected
		next = StatusRejected
	}

	r.Status = next
	r.Verifier = &Endorsement{ActorID: actor.ID, Timestamp: at, Comments: comments}
	r.UpdatedAt = at
	r.appendHistory(action, actor.ID, comments, prev, next, at)
	return nil
}

// Issue moves an APPROVED record to ISSUED, assigns the verification code if
// absent, and marks the record verified. The actor must hold the issue
// permission. Code allocation (and collision handling) belongs to the
// caller; code must already be unique when passed in.
func (r *Record) Issue(actor Actor, code, comments string, at time.Time) error {
	if !actor.Has(PermissionIssue) {
		return fmt.Errorf("issue: %w", ErrUnauthorized)
	}
	if err := validateComment(comments); err != nil {
		return err
	}
	if r.Status != StatusApproved {
		return fmt.Errorf("issue from %s: %w", r.Status, ErrInvalidTransition)
	}
	if r.VerificationCode == "" {
		if code == "" {
			return validationErrorf("issue: verification code must not be empty")
		}
		r.VerificationCode = NormalizeCode(code)
	}

	prev := r.Status
	r.Status = StatusIssued
	r.IsVerified = true
	r.Issuer = &Endorsement{ActorID: actor.ID, Timestamp: at, Comments: comments}
	r.UpdatedAt = at
	r.appendHistory(ActionIssued, actor.ID, comments, prev, StatusIssued, at)
	return nil
}

// Revoke moves an ISSUED record to REVOKED. The reason is mandatory.
// IsVerified is cleared; the verification code is retained so revoked
// certificates remain discoverable by code.
func (r *Record) Revoke(actor Actor, reason string, at time.Time) error {
	if !actor.Has(PermissionIssue) {
		return fmt.Errorf("revoke: %w", ErrUnauthorized)
	}
	if strings.TrimSpace(reason) == "" {
		return validationErrorf("revoke: reason must not be empty")
	}
	if err := validateComment(reason); err != nil {
		return err
	}
	if r.Status != StatusIssued {
		return fmt.Errorf("revoke from %s: %w", r.Status, ErrInvalidTransition)
	}

	prev := r.Status
	r.Status = StatusRevoked
	r.IsVerified = false
	r.UpdatedAt = at
	r.appendHistory(ActionRevoked, actor.ID, reason, prev, StatusRevoked, at)
	return nil
}

// UpdateFields is the restricted field set editable while a record is PENDING.
type UpdateFields struct {
	Title          *string
	Type           *Type
	Email          *string
	Department     *string
	Grade          *string
	Credits        *float64
	Duration       *string
	CompletionDate *time.Time
}

// ApplyUpdate edits the restricted field set. Only PENDING records may be
// updated; identity-critical fields that would invalidate the content hash
// of an already-reviewed record are intentionally editable only here, before
// any verifier has acted.
func (r *Record) ApplyUpdate(actor Actor, changes UpdateFields, at time.Time) error {
	if r.Status != StatusPending {
		return fmt.Errorf("update from %s: %w", r.Status, ErrInvalidTransition)
	}
	if changes.Type != nil && !ValidType(*changes.Type) {
		return validationErrorf("invalid certificate type %q", *changes.Type)
	}

	if changes.Title != nil {
		r.Title = *changes.Title
	}
	if changes.Type != nil {
		r.Type = *changes.Type
	}
	if changes.Email != nil {
		r.Recipient.Email = *changes.Email
	}
	if changes.Department != nil {
		r.Institution.Department = *changes.Department
	}
	if changes.Grade != nil {
		r.Course.Grade = *changes.Grade
	}
	if changes.Credits != nil {
		r.Course.Credits = *changes.Credits
	}
	if changes.Duration != nil {
		r.Course.Duration = *changes.Duration
	}
	if changes.CompletionDate != nil {
		d := *changes.CompletionDate
		r.Course.CompletionDate = &d
	}

	r.UpdatedAt = at
	r.appendHistory(ActionUpdated, actor.ID, "record updated", r.Status, r.Status, at)
	return nil
}

// Deletable reports whether the record may be hard-deleted. Only PENDING
// records qualify; anything past review must survive for the audit trail.
func (r *Record) Deletable() bool {
	return r.Status == StatusPending
}

// RecordAnchor attaches a ledger receipt and appends an audit entry without
// changing status.
func (r *Record) RecordAnchor(actor Actor, receipt AnchorReceipt, at time.Time) {
	r.Anchor = &receipt
	r.UpdatedAt = at
	r.appendHistory(ActionAnchored, actor.ID,
		fmt.Sprintf("anchored in tx %s at height %d", receipt.TxID, receipt.BlockHeight),
		r.Status, r.Status, at)
}
