package store

import (
	"context"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/rs/zerolog"
)

// boltStore implements TreeStore on top of an embedded BoltDB file. The
// top-level path segment maps to a bucket and the remainder to a key
// within it. Bolt serialises write transactions, which gives Update its
// atomicity for free.
type boltStore struct {
	db     *bolt.DB
	logger zerolog.Logger
}

// NewBolt opens (or creates) a BoltDB database at the given file path.
func NewBolt(path string, logger zerolog.Logger) (TreeStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
	}

	logger = logger.With().Str("store", "bolt").Logger()
	logger.Info().Str("path", path).Msg("bolt store opened")

	return &boltStore{db: db, logger: logger}, nil
}

// Get returns the raw JSON stored at path, or ErrNotFound.
func (s *boltStore) Get(ctx context.Context, path string) ([]byte, error) {
	namespace, key, ok := splitPath(path)
	if !ok {
		return nil, fmt.Errorf("invalid store path %q", path)
	}

	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(namespace))
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// The slice is only valid inside the transaction.
		value = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set unconditionally writes value at path.
func (s *boltStore) Set(ctx context.Context, path string, value []byte) error {
	namespace, key, ok := splitPath(path)
	if !ok {
		return fmt.Errorf("invalid store path %q", path)
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(namespace))
		if err != nil {
			return err
		}
		return b.Put([]byte(key), value)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to write record")
		return fmt.Errorf("failed to write record at %s: %w", path, err)
	}
	return nil
}

// Update atomically applies fn to the record at path. The whole
// read-modify-write runs inside a single Bolt write transaction.
func (s *boltStore) Update(ctx context.Context, path string, fn UpdateFunc) error {
	namespace, key, ok := splitPath(path)
	if !ok {
		return fmt.Errorf("invalid store path %q", path)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(namespace))
		if err != nil {
			return err
		}

		var old []byte
		if v := b.Get([]byte(key)); v != nil {
			old = append([]byte(nil), v...)
		}

		next, err := fn(old)
		if err == ErrUnchanged {
			return nil
		}
		if err != nil {
			return err
		}
		return b.Put([]byte(key), next)
	})
}

// Close releases the database file lock.
func (s *boltStore) Close() error {
	s.logger.Info().Msg("bolt store closed")
	return s.db.Close()
}
