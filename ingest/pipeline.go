// Package ingest converts header-labeled tabular uploads into validated
// certificate candidates, isolating per-row failures so one bad row never
// affects another's outcome.
package ingest

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/certificate"
)

// Candidate is a normalized, schema-validated row ready for record creation.
type Candidate struct {
	StudentID       string           `json:"studentId" validate:"required"`
	Name            string           `json:"name" validate:"required"`
	Email           string           `json:"email,omitempty" validate:"omitempty,email"`
	Institution     string           `json:"institution" validate:"required"`
	Department      string           `json:"department,omitempty"`
	Subject         string           `json:"subject" validate:"required"`
	Grade           string           `json:"grade,omitempty"`
	Credits         float64          `json:"credits,omitempty" validate:"omitempty,gte=0,lte=1000"`
	CompletionDate  *time.Time       `json:"completionDate,omitempty"`
	CertificateType certificate.Type `json:"certificateType,omitempty" validate:"omitempty,oneof=academic professional training achievement"`
	Duration        string           `json:"duration,omitempty"`
	WalletAddress   string           `json:"walletAddress,omitempty" validate:"omitempty,eth_addr"`
}

// RowResult is a successfully parsed row with its original 1-based index.
type RowResult struct {
	Row       int       `json:"row"`
	Candidate Candidate `json:"candidate"`
}

// RowError aggregates every field failure of one row into a single message.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Report summarizes one ingestion call. It is transient and produced fresh
// per call; nothing here is persisted.
type Report struct {
	TotalRows   int         `json:"total_rows"`
	ValidRows   int         `json:"valid_rows"`
	InvalidRows int         `json:"invalid_rows"`
	Results     []RowResult `json:"results"`
	Errors      []RowError  `json:"errors"`
}

// CanProceed reports whether downstream batch creation is worthwhile.
func (r *Report) CanProceed() bool {
	return r.ValidRows > 0
}

// Pipeline validates normalized rows against the candidate schema.
type Pipeline struct {
	validate *validator.Validate
}

// NewPipeline constructs a Pipeline with the candidate schema registered.
func NewPipeline() *Pipeline {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Pipeline{validate: v}
}

// Parse processes rows independently: all-blank rows are skipped entirely
// (counted nowhere), invalid rows produce one aggregated RowError, valid
// rows produce a RowResult. Row indices are 1-based over the input order.
func (p *Pipeline) Parse(rows []Row) *Report {
	report := &Report{}

	for i, raw := range rows {
		rowNum := i + 1
		if blank(raw) {
			continue
		}
		report.TotalRows++

		candidate, rowErrs := p.parseRow(raw)
		if len(rowErrs) > 0 {
			report.InvalidRows++
			report.Errors = append(report.Errors, RowError{
				Row:     rowNum,
				Message: strings.Join(rowErrs, "; "),
			})
			continue
		}
		report.ValidRows++
		report.Results = append(report.Results, RowResult{Row: rowNum, Candidate: candidate})
	}
	return report
}

// parseRow normalizes and validates one row, collecting every failure
// rather than stopping at the first.
func (p *Pipeline) parseRow(raw Row) (Candidate, []string) {
	row := normalizeRow(raw)
	var errs []string

	c := Candidate{
		StudentID:       row[fieldStudentID],
		Name:            row[fieldName],
		Email:           row[fieldEmail],
		Institution:     row[fieldInstitution],
		Department:      row[fieldDepartment],
		Subject:         row[fieldSubject],
		Grade:           row[fieldGrade],
		CertificateType: certificate.Type(strings.ToLower(row[fieldCertificateType])),
		Duration:        row[fieldDuration],
		WalletAddress:   row[fieldWalletAddress],
	}

	if s := row[fieldCredits]; s != "" {
		credits, err := parseCredits(s)
		if err != nil {
			errs = append(errs, err.Error())
		} else {
			c.Credits = credits
		}
	}
	if s := row[fieldCompletionDate]; s != "" {
		date, err := parseDate(s)
		if err != nil {
			errs = append(errs, err.Error())
		} else {
			c.CompletionDate = &date
		}
	}

	if err := p.validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, describeFieldError(fe))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}
	return c, errs
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "eth_addr":
		return fmt.Sprintf("%s must be a valid wallet address", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
