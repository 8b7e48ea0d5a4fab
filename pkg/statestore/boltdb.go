package statestore

import (
	"fmt"
	"path/filepath"
	"strings"

	bolt "go.etcd.io/bbolt"
)

var bucketUnitData = []byte("unitdata")

const flagValue = "true"

// BoltStore implements Store using BoltDB. Opened once per process; every
// write is committed in its own transaction so flags survive a crash
// immediately after the guarded operation succeeds.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if necessary) the node-local state database
// under dataDir.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "hadoopctl.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketUnitData)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Get(key string) (string, bool, error) {
	var value string
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketUnitData).Get([]byte(key))
		if data != nil {
			value = string(data)
			found = true
		}
		return nil
	})
	return value, found, err
}

func (s *BoltStore) Set(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUnitData).Put([]byte(key), []byte(value))
	})
}

func (s *BoltStore) Unset(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUnitData).Delete([]byte(key))
	})
}

func (s *BoltStore) Flag(key string) (bool, error) {
	value, found, err := s.Get(key)
	if err != nil {
		return false, err
	}
	return found && value == flagValue, nil
}

func (s *BoltStore) SetFlag(key string) error {
	return s.Set(key, flagValue)
}

func (s *BoltStore) GetRange(prefix string) (map[string]string, error) {
	entries := make(map[string]string)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketUnitData).Cursor()
		p := []byte(prefix)
		for k, v := c.Seek(p); k != nil && strings.HasPrefix(string(k), prefix); k, v = c.Next() {
			entries[strings.TrimPrefix(string(k), prefix)] = string(v)
		}
		return nil
	})
	return entries, err
}

func (s *BoltStore) UnsetRange(prefix string, keys ...string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUnitData)
		for _, key := range keys {
			if err := b.Delete([]byte(prefix + key)); err != nil {
				return err
			}
		}
		return nil
	})
}
