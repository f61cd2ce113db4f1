package autonomy

import "odyssey/internal/risk"

// Status is the outcome class of one gate evaluation.
type Status string

const (
	// StatusHealed means the mapped remediation ran and reported success.
	StatusHealed Status = "HEALED"
	// StatusNotified means the risk exceeded the latitude; a high-risk record
	// was persisted for human review and nothing was remediated.
	StatusNotified Status = "NOTIFIED"
	// StatusFailed means no enabled fix capability exists for the issue.
	StatusFailed Status = "FAILED"
	// StatusAborted means autonomy is suspended by constitutional state.
	StatusAborted Status = "ABORTED"
	// StatusEscalated means the remediation was attempted and failed; the
	// failure is audited and handed to a human. No automatic retry.
	StatusEscalated Status = "ESCALATED"
)

// IssueReport is the input to the gate, constructed by a detector for each
// occurrence. Reports themselves are not persisted; only the resulting
// verdict's audit record is.
type IssueReport struct {
	Type    risk.IssueType
	Details risk.Details
}

// Verdict is the gate's decision. Created fresh per evaluation, serialized
// into the audit trail, never mutated after creation.
type Verdict struct {
	Status      Status
	Message     string
	RiskLevel   int
	FixApplied  string
	ActionTaken string
}
