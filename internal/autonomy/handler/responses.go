package handler

import (
	"odyssey/internal/autonomy"
	"odyssey/internal/remediation"
)

// VerdictResponse is the HTTP response for POST /autonomy/issues.
type VerdictResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	RiskLevel   int    `json:"risk_level"`
	FixApplied  string `json:"fix_applied,omitempty"`
	ActionTaken string `json:"action_taken,omitempty"`
}

// FromVerdict converts a gate verdict to an HTTP response.
func FromVerdict(v autonomy.Verdict) VerdictResponse {
	return VerdictResponse{
		Status:      string(v.Status),
		Message:     v.Message,
		RiskLevel:   v.RiskLevel,
		FixApplied:  v.FixApplied,
		ActionTaken: v.ActionTaken,
	}
}

// LatitudeResponse is the HTTP response for the latitude endpoints.
type LatitudeResponse struct {
	Latitude int `json:"latitude"`
}

// CapabilitiesResponse is the HTTP response for GET /autonomy/capabilities.
type CapabilitiesResponse struct {
	Capabilities []remediation.Listing `json:"capabilities"`
}
