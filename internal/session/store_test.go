package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	s := &Session{ID: "s1", State: StateAuthenticated, Token: "t", Nom: "Kaboré"}

	require.NoError(t, store.Save(ctx, s, time.Minute))
	s.Nom = "mutated"

	loaded, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Kaboré", loaded.Nom)

	removed, err := store.Delete(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Delete(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMemoryStoreHonoursTTL(t *testing.T) {
	store := NewMemoryStore()
	base := time.Now()
	store.now = func() time.Time { return base }
	require.NoError(t, store.Save(context.Background(), &Session{ID: "s1"}, time.Second))

	store.now = func() time.Time { return base.Add(2 * time.Second) }
	_, err := store.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, appErrors.ErrSessionNotFound)
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithSession(context.Background(), &Session{ID: "s1"})
	s, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "s1", s.ID)
}
