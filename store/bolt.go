package store

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/TheCatArt/Real-time-Collaborative-Code-Editor/doc"
)

var snapshotBucket = []byte("snapshots")

// BoltStore keeps point-in-time document snapshots in a local bbolt file so
// an agent can recover its working copy after a restart.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the snapshot database at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(snapshotBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshot bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// SaveSnapshot persists the document keyed by its id, overwriting any older
// snapshot.
func (s *BoltStore) SaveSnapshot(d *doc.Document) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", d.ID, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(snapshotBucket).Put([]byte(d.ID), data)
	})
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", d.ID, err)
	}
	return nil
}

// LoadSnapshot returns the stored snapshot for id, or ErrNotFound.
func (s *BoltStore) LoadSnapshot(id string) (*doc.Document, error) {
	var d *doc.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(snapshotBucket).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		d = &doc.Document{}
		return json.Unmarshal(data, d)
	})
	if err != nil {
		return nil, err
	}
	if len(d.Content) == 0 {
		d.Content = []string{""}
	}
	return d, nil
}

// Close closes the underlying database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
