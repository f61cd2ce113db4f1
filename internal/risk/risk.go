// Package risk maps detected operational issues to a numeric danger score.
// The score decides whether the autonomy engine may remediate unattended or
// must hand the issue to a human.
package risk

// IssueType is a symbolic tag identifying a category of detected operational
// problem. Tags are typed so dispatch tables key on declared constants rather
// than free-form strings; a misspelled tag fails to match any constant and is
// scored as unknown.
type IssueType string

const (
	IssueStaleCache    IssueType = "STALE_CACHE"
	IssueFunctionDown  IssueType = "FUNCTION_DOWN"
	IssueOrphanedData  IssueType = "ORPHANED_DATA"
	IssueRLSDrift      IssueType = "RLS_DRIFT"
	IssueErrorSpike    IssueType = "ERROR_SPIKE"
	IssueAPIKeyExpired IssueType = "API_KEY_EXPIRED"
	IssueSecretStale   IssueType = "SECRET_STALE"
	IssueSchemaChange  IssueType = "SCHEMA_CHANGE"
)

// Details is the open contextual payload attached to an issue report.
// Fields are action-specific and optional.
type Details struct {
	AffectedRows int      `json:"affected_rows,omitempty"`
	Production   bool     `json:"production,omitempty"`
	TableName    string   `json:"table_name,omitempty"`
	FunctionName string   `json:"function_name,omitempty"`
	OrphanedIDs  []string `json:"orphaned_ids,omitempty"`
	ErrorRate    float64  `json:"error_rate,omitempty"`
}

// Score bounds and adjustments. Base scores are cumulative with the
// detail-driven penalties, clamped at MaxScore.
const (
	MaxScore = 100

	// UnknownScore routes unrecognized issue types to human review by default.
	UnknownScore = 80

	bulkChangePenalty = 10
	productionPenalty = 5
	bulkChangeRows    = 1000
)

// baseScores is the static risk table. Entries mirror the capability tiers:
// reversible hygiene fixes sit low, credential and schema work sits high.
var baseScores = map[IssueType]int{
	IssueStaleCache:    10,
	IssueFunctionDown:  15,
	IssueOrphanedData:  20,
	IssueRLSDrift:      25,
	IssueErrorSpike:    45,
	IssueAPIKeyExpired: 60,
	IssueSecretStale:   90,
	IssueSchemaChange:  98,
}

// Assess deterministically maps an issue type plus contextual details to a
// risk score in [0, MaxScore]. It is a pure function: no side effects, no
// failure modes. Unknown issue types score UnknownScore so unrecognized
// problems escalate rather than silently auto-heal.
func Assess(issue IssueType, details Details) int {
	score, ok := baseScores[issue]
	if !ok {
		score = UnknownScore
	}

	if details.AffectedRows > bulkChangeRows {
		score += bulkChangePenalty
	}
	if details.Production {
		score += productionPenalty
	}

	if score > MaxScore {
		score = MaxScore
	}
	return score
}

// Known reports whether the issue type has an entry in the risk table.
func Known(issue IssueType) bool {
	_, ok := baseScores[issue]
	return ok
}

// KnownTypes returns every issue type present in the risk table.
func KnownTypes() []IssueType {
	types := make([]IssueType, 0, len(baseScores))
	for issue := range baseScores {
		types = append(types, issue)
	}
	return types
}
