package handler

import (
	"strings"

	"odyssey/internal/autonomy"
	"odyssey/internal/risk"
	dErrors "odyssey/pkg/domain-errors"
)

// ReportIssueRequest is the HTTP request body for POST /autonomy/issues.
type ReportIssueRequest struct {
	Type    string       `json:"type"`
	Details risk.Details `json:"details"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *ReportIssueRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Type = strings.TrimSpace(r.Type)
	if r.Type == "" {
		return dErrors.New(dErrors.CodeValidation, "type is required")
	}
	if len(r.Type) > 64 {
		return dErrors.New(dErrors.CodeValidation, "type must be at most 64 characters")
	}
	if r.Details.AffectedRows < 0 {
		return dErrors.New(dErrors.CodeValidation, "details.affectedRows must not be negative")
	}
	// Unknown issue types pass validation on purpose: the risk classifier
	// scores them conservatively and routes them to review.
	return nil
}

// Report converts the validated request into a gate input.
func (r *ReportIssueRequest) Report() autonomy.IssueReport {
	return autonomy.IssueReport{
		Type:    risk.IssueType(r.Type),
		Details: r.Details,
	}
}

// SetLatitudeRequest is the HTTP request body for PUT /autonomy/latitude.
type SetLatitudeRequest struct {
	Latitude *int `json:"latitude"`
}

// Validate validates the request.
func (r *SetLatitudeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Latitude == nil {
		return dErrors.New(dErrors.CodeValidation, "latitude is required")
	}
	if *r.Latitude < 0 || *r.Latitude > risk.MaxScore {
		return dErrors.New(dErrors.CodeValidation, "latitude must be between 0 and 100")
	}
	return nil
}
