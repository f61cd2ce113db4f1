package remediation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"odyssey/internal/risk"
)

// =============================================================================
// Remediation Actions Test Suite
// =============================================================================

type fakeCache struct {
	deleted int64
	pattern string
	err     error
}

func (f *fakeCache) DeleteByPattern(_ context.Context, pattern string) (int64, error) {
	f.pattern = pattern
	return f.deleted, f.err
}

type fakePlatform struct {
	restarted  []string
	rollbacks  int
	restartErr error
	rollbackEr error
}

func (f *fakePlatform) RestartFunction(_ context.Context, name string) error {
	if f.restartErr != nil {
		return f.restartErr
	}
	f.restarted = append(f.restarted, name)
	return nil
}

func (f *fakePlatform) RollbackDeployment(_ context.Context) error {
	if f.rollbackEr != nil {
		return f.rollbackEr
	}
	f.rollbacks++
	return nil
}

type ActionsSuite struct {
	suite.Suite
	cache    *fakeCache
	platform *fakePlatform
	actions  *Actions
}

func TestActionsSuite(t *testing.T) {
	suite.Run(t, new(ActionsSuite))
}

func (s *ActionsSuite) SetupTest() {
	s.cache = &fakeCache{deleted: 3}
	s.platform = &fakePlatform{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.actions = NewActions(s.cache, nil, s.platform, logger)
}

// =============================================================================
// Clear Cache
// =============================================================================

func (s *ActionsSuite) TestClearCache() {
	ctx := context.Background()

	s.Run("evicts the default pattern without preconditions", func() {
		res := s.actions.Apply(ctx, FixClearCache, risk.Details{})
		s.True(res.Success)
		s.Equal("cache:*", s.cache.pattern)
		s.Equal("Removed stale cache entries", res.FixApplied)
	})

	s.Run("scopes eviction to the named table", func() {
		res := s.actions.Apply(ctx, FixClearCache, risk.Details{TableName: "company_profiles"})
		s.True(res.Success)
		s.Equal("cache:company_profiles:*", s.cache.pattern)
	})

	s.Run("zero deleted keys is still success", func() {
		s.cache.deleted = 0
		res := s.actions.Apply(ctx, FixClearCache, risk.Details{})
		s.True(res.Success)
	})

	s.Run("backend error reports failure", func() {
		s.cache.err = errors.New("connection refused")
		res := s.actions.Apply(ctx, FixClearCache, risk.Details{})
		s.False(res.Success)
		s.Contains(res.Message, "cache clear failed")
	})
}

// =============================================================================
// Restart Function
// =============================================================================

func (s *ActionsSuite) TestRestartFunction() {
	ctx := context.Background()

	s.Run("requires a function name", func() {
		res := s.actions.Apply(ctx, FixRestartFunction, risk.Details{})
		s.False(res.Success)
		s.Contains(res.Message, "function name")
		s.Empty(s.platform.restarted)
	})

	s.Run("restarts the named function", func() {
		res := s.actions.Apply(ctx, FixRestartFunction, risk.Details{FunctionName: "payroll-export"})
		s.True(res.Success)
		s.Equal([]string{"payroll-export"}, s.platform.restarted)
	})

	s.Run("platform error reports failure", func() {
		s.platform.restartErr = errors.New("502 bad gateway")
		res := s.actions.Apply(ctx, FixRestartFunction, risk.Details{FunctionName: "payroll-export"})
		s.False(res.Success)
		s.Contains(res.Message, "restart failed")
	})
}

// =============================================================================
// Apply Access Policies
// =============================================================================

func (s *ActionsSuite) TestApplyAccessPolicies() {
	ctx := context.Background()

	s.Run("requires a table name", func() {
		res := s.actions.Apply(ctx, FixApplyAccessPolicies, risk.Details{})
		s.False(res.Success)
	})

	s.Run("reports exactly the staged statements", func() {
		res := s.actions.Apply(ctx, FixApplyAccessPolicies, risk.Details{TableName: "company_profiles"})
		s.True(res.Success)
		s.Contains(res.Message, "ALTER TABLE company_profiles ENABLE ROW LEVEL SECURITY")
		s.Contains(res.Message, "company_profiles_select_own")
		s.Contains(res.Message, "company_profiles_insert_own")
		s.Contains(res.Message, "company_profiles_update_own")
		s.Contains(res.FixApplied, "4 standard policy statements")
	})
}

// =============================================================================
// Clean Orphaned Data
// =============================================================================

func (s *ActionsSuite) TestCleanOrphanedData() {
	ctx := context.Background()

	s.Run("requires a table and explicit record IDs", func() {
		res := s.actions.Apply(ctx, FixCleanOrphanedData, risk.Details{TableName: "timesheets"})
		s.False(res.Success)

		res = s.actions.Apply(ctx, FixCleanOrphanedData, risk.Details{OrphanedIDs: []string{"a"}})
		s.False(res.Success)
	})

	s.Run("rejects unsafe table identifiers", func() {
		res := s.actions.Apply(ctx, FixCleanOrphanedData, risk.Details{
			TableName:   "timesheets; DROP TABLE users",
			OrphanedIDs: []string{"a"},
		})
		s.False(res.Success)
		s.Contains(res.Message, "invalid table name")
	})
}

// =============================================================================
// Rollback Deployment
// =============================================================================

func (s *ActionsSuite) TestRollbackDeployment() {
	ctx := context.Background()

	s.Run("triggers a full rollback", func() {
		res := s.actions.Apply(ctx, FixRollbackDeployment, risk.Details{ErrorRate: 0.12})
		s.True(res.Success)
		s.Equal(1, s.platform.rollbacks)
		s.Contains(res.Message, "12.00%")
	})

	s.Run("platform error reports failure", func() {
		s.platform.rollbackEr = errors.New("deploy service down")
		res := s.actions.Apply(ctx, FixRollbackDeployment, risk.Details{})
		s.False(res.Success)
	})
}

// =============================================================================
// Dispatch
// =============================================================================

func (s *ActionsSuite) TestApplyUnhandledFix() {
	ctx := context.Background()

	for _, fix := range []FixType{FixRotateAPIKey, FixUpdateSecrets, FixAlterSchema, FixType("bogus")} {
		res := s.actions.Apply(ctx, fix, risk.Details{})
		s.False(res.Success, "fix %s", fix)
		s.Contains(res.Message, "not implemented")
	}
}

func TestValidIdentifier(t *testing.T) {
	valid := []string{"timesheets", "company_profiles", "t2"}
	invalid := []string{"", "2cols", "Users", "a-b", "a b", "x;y"}
	for _, name := range valid {
		if !validIdentifier(name) {
			t.Errorf("expected %q to be valid", name)
		}
	}
	for _, name := range invalid {
		if validIdentifier(name) {
			t.Errorf("expected %q to be invalid", name)
		}
	}
}
