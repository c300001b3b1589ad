package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTripAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", DefaultFileName)

	s, err := Open(ctx, path)
	require.NoError(t, err)

	_, ok, err := s.Get(ctx, "actionq.pending")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "actionq.pending", "first"))
	require.NoError(t, s.Set(ctx, "actionq.pending", "second"))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, "actionq.pending")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", v)

	require.NoError(t, s.Remove(ctx, "actionq.pending"))
	require.NoError(t, s.Remove(ctx, "actionq.pending"))
	_, ok, err = s.Get(ctx, "actionq.pending")
	require.NoError(t, err)
	assert.False(t, ok)
}
