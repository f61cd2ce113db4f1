//go:build integration

package knowledge_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"odyssey/internal/knowledge"
	"odyssey/pkg/platform/sentinel"
	"odyssey/pkg/testutil/containers"
)

type KnowledgeStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *knowledge.PostgresStore
}

func TestKnowledgeStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KnowledgeStoreSuite))
}

func (s *KnowledgeStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = knowledge.NewPostgresStore(s.postgres.DB)
}

func (s *KnowledgeStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "system_knowledge")
	s.Require().NoError(err)
}

func (s *KnowledgeStoreSuite) TestGetMissingKeyReturnsNotFound() {
	_, err := s.store.Get(context.Background(), "autofix:NOPE")
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *KnowledgeStoreSuite) TestUpsertOverwritesByKey() {
	ctx := context.Background()

	first := knowledge.Record{Key: "autofix:STALE_CACHE", Value: json.RawMessage(`{"outcome":"FAILED"}`)}
	s.Require().NoError(s.store.Upsert(ctx, first))

	second := knowledge.Record{Key: "autofix:STALE_CACHE", Value: json.RawMessage(`{"outcome":"SUCCESS"}`)}
	s.Require().NoError(s.store.Upsert(ctx, second))

	got, err := s.store.Get(ctx, "autofix:STALE_CACHE")
	s.Require().NoError(err)
	s.JSONEq(`{"outcome":"SUCCESS"}`, string(got.Value))
}
