// Package store persists documents. The cloud server keeps them in Postgres;
// the LAN agent keeps a local bbolt snapshot for crash recovery; tests use
// the in-memory implementation.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/TheCatArt/Real-time-Collaborative-Code-Editor/doc"
)

var (
	// ErrNotFound is returned when a document id is unknown.
	ErrNotFound = errors.New("document not found")
	// ErrExists is returned when creating a document id that already exists.
	ErrExists = errors.New("document already exists")
)

// Store abstracts document persistence. Save never downgrades: a stored
// document with a newer version than the one being saved is left alone.
type Store interface {
	Create(ctx context.Context, d *doc.Document) error
	Get(ctx context.Context, id string) (*doc.Document, error)
	Save(ctx context.Context, d *doc.Document) error
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*doc.Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*doc.Document)}
}

func (s *MemoryStore) Create(_ context.Context, d *doc.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[d.ID]; ok {
		return ErrExists
	}
	s.docs[d.ID] = d.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*doc.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, d *doc.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.docs[d.ID]; ok && cur.Version > d.Version {
		return nil
	}
	s.docs[d.ID] = d.Clone()
	return nil
}
