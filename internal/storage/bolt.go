package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "github.com/boltdb/bolt"
)

const boltBucket = "proxygen"

// BoltStore persists key-value blobs in a single-file BoltDB database. It
// is the client-side substrate for the card cache: no external database
// process, one file next to the user's config.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) a BoltDB database at the given path and
// ensures the bucket exists.
func OpenBolt(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Get returns the blob stored under key.
func (s *BoltStore) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		stored := tx.Bucket([]byte(boltBucket)).Get([]byte(key))
		if stored != nil {
			// Bolt-owned memory is only valid inside the transaction.
			value = make([]byte, len(stored))
			copy(value, stored)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	if value == nil {
		return nil, false, nil
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *BoltStore) Set(key string, value []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(boltBucket)).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
