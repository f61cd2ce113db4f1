//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"odyssey/pkg/platform/audit"
	auditpg "odyssey/pkg/platform/audit/store/postgres"
	"odyssey/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *auditpg.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = auditpg.New(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "audit_events", "outbox")
	s.Require().NoError(err)
}

func newTestEvent(action audit.AuditAction) audit.Event {
	return audit.Event{
		ID:        uuid.NewString(),
		Category:  action.Category(),
		Timestamp: time.Now().UTC().Truncate(time.Microsecond),
		Actor:     "autonomy engine",
		Action:    string(action),
		Reason:    "cache cleared",
		IssueType: "STALE_CACHE",
		RiskLevel: 10,
		Latitude:  40,
		Outcome:   audit.OutcomeSuccess,
	}
}

func (s *PostgresStoreSuite) TestAppendWritesEventAndOutboxEntry() {
	ctx := context.Background()
	event := newTestEvent(audit.ActionAutoFixExecuted)

	s.Require().NoError(s.store.Append(ctx, event))

	events, err := s.store.ListRecent(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(event.ID, events[0].ID)
	s.Equal(event.Action, events[0].Action)
	s.Equal(event.RiskLevel, events[0].RiskLevel)

	var pending int
	err = s.postgres.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM outbox WHERE aggregate_id = $1 AND published_at IS NULL`,
		event.ID,
	).Scan(&pending)
	s.Require().NoError(err)
	s.Equal(1, pending, "append must leave exactly one unpublished outbox row")
}

func (s *PostgresStoreSuite) TestListRecentOrdersNewestFirst() {
	ctx := context.Background()

	older := newTestEvent(audit.ActionAutoFixExecuted)
	older.Timestamp = time.Now().UTC().Add(-time.Hour)
	newer := newTestEvent(audit.ActionHighRiskDetected)

	s.Require().NoError(s.store.Append(ctx, older))
	s.Require().NoError(s.store.Append(ctx, newer))

	events, err := s.store.ListRecent(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(newer.ID, events[0].ID)
	s.Equal(older.ID, events[1].ID)
}

func (s *PostgresStoreSuite) TestListRecentHonorsLimit() {
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		s.Require().NoError(s.store.Append(ctx, newTestEvent(audit.ActionAutoFixExecuted)))
	}

	events, err := s.store.ListRecent(ctx, 3)
	s.Require().NoError(err)
	s.Len(events, 3)
}
