package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCatArt/Real-time-Collaborative-Code-Editor/doc"
)

func openTestBolt(t *testing.T) *BoltStore {
	t.Helper()
	s, err := OpenBolt(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBoltSnapshotRoundTrip(t *testing.T) {
	s := openTestBolt(t)

	d := doc.New("doc-1", "notes")
	d.Content = []string{"alpha", "beta"}
	d.Version = 4
	require.NoError(t, s.SaveSnapshot(d))

	got, err := s.LoadSnapshot("doc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, got.Content)
	assert.Equal(t, 4, got.Version)
	assert.Equal(t, "notes", got.Title)
}

func TestBoltSnapshotOverwrite(t *testing.T) {
	s := openTestBolt(t)

	d := doc.New("doc-1", "notes")
	require.NoError(t, s.SaveSnapshot(d))
	d.Content = []string{"newer"}
	d.Version = 9
	require.NoError(t, s.SaveSnapshot(d))

	got, err := s.LoadSnapshot("doc-1")
	require.NoError(t, err)
	assert.Equal(t, 9, got.Version)
	assert.Equal(t, []string{"newer"}, got.Content)
}

func TestBoltSnapshotMissing(t *testing.T) {
	s := openTestBolt(t)
	_, err := s.LoadSnapshot("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBoltSnapshotNormalizesEmptyContent(t *testing.T) {
	s := openTestBolt(t)
	d := doc.New("doc-1", "notes")
	d.Content = nil
	require.NoError(t, s.SaveSnapshot(d))

	got, err := s.LoadSnapshot("doc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{""}, got.Content)
}
