package constitution

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odyssey/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("starts sovereign active", func(t *testing.T) {
		s := NewInMemoryStore()
		state, err := s.Fetch(ctx)
		require.NoError(t, err)
		assert.True(t, state.Active())
		assert.Equal(t, CategoryGovernance, state.Category)
	})

	t.Run("set suspends autonomy", func(t *testing.T) {
		s := NewInMemoryStore()
		require.NoError(t, s.Set(ctx, State{Status: StatusSuspended}))
		state, err := s.Fetch(ctx)
		require.NoError(t, err)
		assert.False(t, state.Active())
	})

	t.Run("cleared store reports not found", func(t *testing.T) {
		s := NewInMemoryStore()
		s.Clear()
		_, err := s.Fetch(ctx)
		assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	})
}
