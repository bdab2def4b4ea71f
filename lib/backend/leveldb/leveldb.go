// Package leveldb implements an offchain.Backend on top of github.com/syndtr/goleveldb.
//
// Keys are the flattened (prefix, key) pairs produced by offchain.JoinKey.
// Writes are synced to disk before returning.
package leveldb

import (
	"errors"
	"fmt"

	"github.com/ValentinKolb/okv/lib/offchain"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

var log = logger.GetLogger("backend")

type levelBackend struct {
	db   *leveldb.DB
	path string
}

// Open opens (or creates) the database directory at path.
func Open(path string) (offchain.Backend, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}

	log.Infof("opened leveldb backend at %s", path)
	return &levelBackend{db: db, path: path}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see offchain.Backend)
// --------------------------------------------------------------------------

func (l *levelBackend) Get(prefix, key []byte) ([]byte, bool, error) {
	value, err := l.db.Get(offchain.JoinKey(prefix, key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

func (l *levelBackend) Set(prefix, key, value []byte) error {
	return l.db.Put(offchain.JoinKey(prefix, key), value, &opt.WriteOptions{
		Sync: true,
	})
}

func (l *levelBackend) Remove(prefix, key []byte) error {
	return l.db.Delete(offchain.JoinKey(prefix, key), &opt.WriteOptions{
		Sync: true,
	})
}

func (l *levelBackend) Close() error {
	log.Infof("closing leveldb backend at %s", l.path)
	return l.db.Close()
}
