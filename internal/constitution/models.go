// Package constitution persists the flag that gates whether autonomous action
// is permitted at all, regardless of risk score.
package constitution

import "time"

// Status values for the sovereignty flag.
const (
	StatusSovereignActive = "Sovereign_Active"
	StatusSuspended       = "Suspended"
)

// Default lookup key for the sovereignty flag.
const (
	CategoryGovernance     = "governance"
	SubcategorySovereignty = "sovereignty"
)

// State is the persisted constitutional flag, keyed by category/subcategory.
type State struct {
	Category    string
	Subcategory string
	Status      string
	UpdatedAt   time.Time
}

// Active reports whether autonomous action is currently permitted.
func (s State) Active() bool {
	return s.Status == StatusSovereignActive
}
