package remediation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	t.Run("hygiene fixes ship enabled", func(t *testing.T) {
		for _, fix := range []FixType{
			FixClearCache, FixRestartFunction, FixApplyAccessPolicies,
			FixCleanOrphanedData, FixRollbackDeployment,
		} {
			assert.True(t, r.Enabled(fix), "fix %s", fix)
		}
	})

	t.Run("credential and schema fixes ship disabled", func(t *testing.T) {
		for _, fix := range []FixType{FixRotateAPIKey, FixUpdateSecrets, FixAlterSchema} {
			assert.False(t, r.Enabled(fix), "fix %s", fix)
			c, ok := r.Lookup(fix)
			assert.True(t, ok)
			assert.True(t, c.RequiresApproval, "fix %s", fix)
		}
	})

	t.Run("unknown fixes are not enabled", func(t *testing.T) {
		assert.False(t, r.Enabled("no_such_fix"))
	})
}

func TestRegistrySetEnabled(t *testing.T) {
	r := DefaultRegistry()

	assert.True(t, r.SetEnabled(FixClearCache, false))
	assert.False(t, r.Enabled(FixClearCache))

	assert.True(t, r.SetEnabled(FixClearCache, true))
	assert.True(t, r.Enabled(FixClearCache))

	assert.False(t, r.SetEnabled("no_such_fix", true))
}

func TestRegistryList(t *testing.T) {
	r := DefaultRegistry()
	listing := r.List()

	assert.Len(t, listing, 8)
	assert.Equal(t, FixClearCache, listing[0].Fix)
	assert.Equal(t, FixAlterSchema, listing[len(listing)-1].Fix)
}
