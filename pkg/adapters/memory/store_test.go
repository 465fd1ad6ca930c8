package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wiki/pkg/adapters/memory"
	"github.com/aretw0/wiki/pkg/core"
)

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.Initialize(ctx))

	_, err := s.Get(ctx, core.KeyTags)
	assert.ErrorIs(t, err, core.ErrNotFound)

	data := []byte(`[]`)
	require.NoError(t, s.Set(ctx, core.KeyTags, data))

	// Caller mutations must not leak into the store.
	data[0] = 'x'
	got, err := s.Get(ctx, core.KeyTags)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
	assert.Equal(t, 1, s.Writes())
}

func TestStore_ReadOnly(t *testing.T) {
	ctx := context.Background()
	s := memory.New(memory.WithReadOnly(true), memory.WithSlot(core.KeyNotes, []byte(`[]`)))

	err := s.Set(ctx, core.KeyNotes, []byte(`[{}]`))
	assert.ErrorIs(t, err, core.ErrReadOnly)

	got, err := s.Get(ctx, core.KeyNotes)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	state, ok := s.State().(memory.StoreState)
	require.True(t, ok)
	assert.Equal(t, []string{core.KeyNotes}, state.Slots)
	assert.True(t, state.ReadOnly)
}
