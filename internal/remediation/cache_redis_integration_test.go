//go:build integration

package remediation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"odyssey/internal/remediation"
	"odyssey/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *remediation.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.cache = remediation.NewRedisCache(s.redis.Client)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestDeleteByPatternRemovesMatchingKeys() {
	ctx := context.Background()
	for _, key := range []string{
		"cache:invoices:1", "cache:invoices:2", "cache:users:1", "session:abc",
	} {
		s.Require().NoError(s.redis.Client.Set(ctx, key, "x", 0).Err())
	}

	deleted, err := s.cache.DeleteByPattern(ctx, "cache:invoices:*")
	s.Require().NoError(err)
	s.Equal(int64(2), deleted)

	remaining, err := s.redis.Client.Keys(ctx, "*").Result()
	s.Require().NoError(err)
	s.ElementsMatch([]string{"cache:users:1", "session:abc"}, remaining)
}

func (s *RedisCacheSuite) TestDeleteByPatternNoMatches() {
	deleted, err := s.cache.DeleteByPattern(context.Background(), "cache:missing:*")
	s.Require().NoError(err)
	s.Zero(deleted)
}
