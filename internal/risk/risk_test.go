package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssess(t *testing.T) {
	t.Run("table entries return their base value", func(t *testing.T) {
		expected := map[IssueType]int{
			IssueStaleCache:    10,
			IssueFunctionDown:  15,
			IssueOrphanedData:  20,
			IssueRLSDrift:      25,
			IssueErrorSpike:    45,
			IssueAPIKeyExpired: 60,
			IssueSecretStale:   90,
			IssueSchemaChange:  98,
		}
		for issue, want := range expected {
			assert.Equal(t, want, Assess(issue, Details{}), "issue %s", issue)
		}
	})

	t.Run("unknown issue types score the conservative default", func(t *testing.T) {
		assert.Equal(t, UnknownScore, Assess("QUANTUM_FLUX", Details{}))
		assert.Equal(t, UnknownScore, Assess("", Details{}))
		// A typo'd tag fails to match any constant and routes to review.
		assert.Equal(t, UnknownScore, Assess("STALE_CAHCE", Details{}))
	})

	t.Run("bulk changes add a fixed penalty", func(t *testing.T) {
		for _, issue := range KnownTypes() {
			base := Assess(issue, Details{})
			got := Assess(issue, Details{AffectedRows: 1001})
			want := base + 10
			if want > MaxScore {
				want = MaxScore
			}
			assert.Equal(t, want, got, "issue %s", issue)
		}
	})

	t.Run("exactly the row threshold is not penalized", func(t *testing.T) {
		assert.Equal(t, 10, Assess(IssueStaleCache, Details{AffectedRows: 1000}))
	})

	t.Run("production adds a smaller fixed penalty", func(t *testing.T) {
		for _, issue := range KnownTypes() {
			base := Assess(issue, Details{})
			got := Assess(issue, Details{Production: true})
			want := base + 5
			if want > MaxScore {
				want = MaxScore
			}
			assert.Equal(t, want, got, "issue %s", issue)
		}
	})

	t.Run("adjustments stack and clamp at the maximum", func(t *testing.T) {
		assert.Equal(t, 25, Assess(IssueStaleCache, Details{AffectedRows: 5000, Production: true}))
		assert.Equal(t, MaxScore, Assess(IssueSchemaChange, Details{AffectedRows: 5000, Production: true}))
		assert.Equal(t, MaxScore, Assess(IssueSecretStale, Details{AffectedRows: 2000, Production: true}))
	})
}

func TestKnown(t *testing.T) {
	assert.True(t, Known(IssueStaleCache))
	assert.False(t, Known("NOT_A_THING"))
}
