// Package remediation holds the named capabilities the autonomy engine may
// invoke, and the handlers behind them. Each capability is independently
// togglable; a disabled capability never executes even when the gate's risk
// check has already passed.
package remediation

import "sync"

// FixType identifies a remediation capability.
type FixType string

const (
	FixClearCache          FixType = "clear_cache"
	FixRestartFunction     FixType = "restart_edge_function"
	FixApplyAccessPolicies FixType = "fix_rls_policies"
	FixCleanOrphanedData   FixType = "clean_orphaned_data"
	FixRollbackDeployment  FixType = "rollback_deployment"
	FixRotateAPIKey        FixType = "reset_api_key"
	FixUpdateSecrets       FixType = "update_secrets"
	FixAlterSchema         FixType = "modify_database_schema"
)

// Tier is the declared danger class of a capability.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Capability describes one togglable remediation.
type Capability struct {
	Name             string
	Enabled          bool
	Tier             Tier
	RequiresApproval bool
}

// Registry guards the capability table. Toggles are rare (operator action or
// test setup) but reads happen on every gate evaluation, so it is safe for
// concurrent use.
type Registry struct {
	mu   sync.RWMutex
	caps map[FixType]Capability
}

// DefaultRegistry returns the capability table with its shipped defaults.
// Low-risk reversible hygiene fixes are enabled; credential and schema work
// is disabled pending explicit sign-off.
func DefaultRegistry() *Registry {
	return &Registry{caps: map[FixType]Capability{
		FixClearCache: {
			Name:    "Clear stale cache entries",
			Enabled: true,
			Tier:    TierLow,
		},
		FixRestartFunction: {
			Name:    "Restart failed platform function",
			Enabled: true,
			Tier:    TierLow,
		},
		FixApplyAccessPolicies: {
			Name:    "Apply default access policies",
			Enabled: true,
			Tier:    TierLow,
		},
		FixCleanOrphanedData: {
			Name:    "Remove orphaned database records",
			Enabled: true,
			Tier:    TierLow,
		},
		FixRollbackDeployment: {
			Name:    "Rollback to last stable deployment",
			Enabled: true,
			Tier:    TierMedium,
		},
		FixRotateAPIKey: {
			Name:             "Rotate expired API keys",
			Enabled:          false,
			Tier:             TierMedium,
			RequiresApproval: true,
		},
		FixUpdateSecrets: {
			Name:             "Update platform secrets",
			Enabled:          false,
			Tier:             TierHigh,
			RequiresApproval: true,
		},
		FixAlterSchema: {
			Name:             "Alter database tables",
			Enabled:          false,
			Tier:             TierHigh,
			RequiresApproval: true,
		},
	}}
}

// Lookup returns the capability for a fix type.
func (r *Registry) Lookup(fix FixType) (Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caps[fix]
	return c, ok
}

// Enabled reports whether a capability exists and is switched on.
func (r *Registry) Enabled(fix FixType) bool {
	c, ok := r.Lookup(fix)
	return ok && c.Enabled
}

// SetEnabled toggles a capability. Returns false for unknown fix types.
func (r *Registry) SetEnabled(fix FixType, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.caps[fix]
	if !ok {
		return false
	}
	c.Enabled = enabled
	r.caps[fix] = c
	return true
}

// Listing is one row of the capability surface exposed to operators.
type Listing struct {
	Fix              FixType `json:"fix"`
	Name             string  `json:"name"`
	Enabled          bool    `json:"enabled"`
	Tier             Tier    `json:"tier"`
	RequiresApproval bool    `json:"requires_approval"`
}

// List returns every capability in a stable order.
func (r *Registry) List() []Listing {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order := []FixType{
		FixClearCache, FixRestartFunction, FixApplyAccessPolicies,
		FixCleanOrphanedData, FixRollbackDeployment, FixRotateAPIKey,
		FixUpdateSecrets, FixAlterSchema,
	}
	out := make([]Listing, 0, len(order))
	for _, fix := range order {
		c, ok := r.caps[fix]
		if !ok {
			continue
		}
		out = append(out, Listing{
			Fix:              fix,
			Name:             c.Name,
			Enabled:          c.Enabled,
			Tier:             c.Tier,
			RequiresApproval: c.RequiresApproval,
		})
	}
	return out
}
