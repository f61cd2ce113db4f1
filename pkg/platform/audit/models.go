// Package audit defines the append-only decision trail for the autonomy
// engine. Every gate verdict and every latitude change produces exactly one
// event; events are never updated or deleted by this pipeline.
package audit

import "time"

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryGovernance covers changes to the autonomy engine's own rules,
	// such as latitude adjustments. Long retention, tamper-evident storage.
	CategoryGovernance EventCategory = "governance"

	// CategorySecurity covers events relevant to security monitoring, such as
	// high-risk issues awaiting human review.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine remediation outcomes useful for
	// debugging and operational visibility.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture one decision and its outcome.
// Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Category  EventCategory
	Timestamp time.Time
	// Actor is who decided: the autonomy engine for gate verdicts, the
	// authorized principal for latitude changes.
	Actor  string
	Action string
	Reason string
	// IssueType and RiskLevel record the classified input; Latitude records
	// the threshold in force when the decision was made.
	IssueType string
	RiskLevel int
	Latitude  int
	Outcome   string
	// FixApplied describes the remediation that ran, when one did.
	FixApplied string
	// RequiresManualIntervention marks high-risk events awaiting review.
	RequiresManualIntervention bool
	// RequestID is the correlation ID from the reporting request, if any.
	RequestID string
}

// AuditAction names the recorded action types.
type AuditAction string

const (
	ActionAutoFixExecuted  AuditAction = "autofix_executed"
	ActionAutoFixFailed    AuditAction = "autofix_failed"
	ActionHighRiskDetected AuditAction = "high_risk_detected"
	ActionFixUnavailable   AuditAction = "fix_unavailable"
	ActionLatitudeChanged  AuditAction = "latitude_changed"
)

// eventCategories is the source of truth for action classification.
var eventCategories = map[AuditAction]EventCategory{
	ActionAutoFixExecuted:  CategoryOperations,
	ActionAutoFixFailed:    CategoryOperations,
	ActionFixUnavailable:   CategoryOperations,
	ActionHighRiskDetected: CategorySecurity,
	ActionLatitudeChanged:  CategoryGovernance,
}

// Category returns the event category for an action.
// Unknown actions default to operations.
func (a AuditAction) Category() EventCategory {
	if c, ok := eventCategories[a]; ok {
		return c
	}
	return CategoryOperations
}

// Outcome values recorded on events.
const (
	OutcomeSuccess       = "SUCCESS"
	OutcomeFailed        = "FAILED"
	OutcomePendingReview = "PENDING_REVIEW"
)
