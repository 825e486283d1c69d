package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCatArt/Real-time-Collaborative-Code-Editor/doc"
)

func TestMemoryStoreCreateGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	d := doc.New("doc-1", "notes")
	require.NoError(t, s.Create(ctx, d))
	assert.ErrorIs(t, s.Create(ctx, d), ErrExists)

	got, err := s.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "notes", got.Title)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, doc.New("doc-1", "notes")))

	got, _ := s.Get(ctx, "doc-1")
	got.Content[0] = "mutated"

	again, _ := s.Get(ctx, "doc-1")
	assert.Equal(t, []string{""}, again.Content)
}

func TestMemoryStoreSaveNeverDowngrades(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	d := doc.New("doc-1", "notes")
	d.Version = 5
	d.Content = []string{"v5"}
	require.NoError(t, s.Save(ctx, d))

	stale := doc.New("doc-1", "notes")
	stale.Version = 3
	stale.Content = []string{"v3"}
	require.NoError(t, s.Save(ctx, stale))

	got, err := s.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Version)
	assert.Equal(t, []string{"v5"}, got.Content)
}
