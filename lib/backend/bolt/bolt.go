// Package bolt implements an offchain.Backend on top of go.etcd.io/bbolt.
//
// All entries live in the single bucket "offchain", keys are the flattened
// (prefix, key) pairs produced by offchain.JoinKey. Every Set and Remove is
// its own committed transaction.
package bolt

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ValentinKolb/okv/lib/offchain"
	"github.com/lni/dragonboat/v4/logger"
	bolt "go.etcd.io/bbolt"
)

var log = logger.GetLogger("backend")

var bucketName = []byte("offchain")

type boltBackend struct {
	db   *bolt.DB
	path string
}

// Open opens (or creates) the database file at path.
func Open(path string) (offchain.Backend, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create bolt directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket %q: %w", bucketName, err)
	}

	log.Infof("opened bolt backend at %s", path)
	return &boltBackend{db: db, path: path}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see offchain.Backend)
// --------------------------------------------------------------------------

func (b *boltBackend) Get(prefix, key []byte) ([]byte, bool, error) {
	joined := offchain.JoinKey(prefix, key)

	var (
		value []byte
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return fmt.Errorf("bucket %q not found", bucketName)
		}

		// Seek instead of Get, so empty values are told apart from missing keys
		k, v := bucket.Cursor().Seek(joined)
		if k == nil || !bytes.Equal(k, joined) {
			return nil
		}

		// v is only valid inside the transaction
		value = make([]byte, len(v))
		copy(value, v)
		found = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, found, nil
}

func (b *boltBackend) Set(prefix, key, value []byte) error {
	joined := offchain.JoinKey(prefix, key)
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		if value == nil {
			value = []byte{}
		}
		return bucket.Put(joined, value)
	})
}

func (b *boltBackend) Remove(prefix, key []byte) error {
	joined := offchain.JoinKey(prefix, key)
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return nil
		}
		return bucket.Delete(joined)
	})
}

func (b *boltBackend) Close() error {
	log.Infof("closing bolt backend at %s", b.path)
	return b.db.Close()
}
