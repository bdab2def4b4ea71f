// Package sqlite implements an offchain.Backend on top of modernc.org/sqlite.
//
// Entries are rows of the table offchain_storage. The primary key is the
// flattened (prefix, key) pair produced by offchain.JoinKey.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ValentinKolb/okv/lib/offchain"
	"github.com/lni/dragonboat/v4/logger"
	_ "modernc.org/sqlite"
)

var log = logger.GetLogger("backend")

const queryTimeout = 10 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS offchain_storage (
	id    BLOB PRIMARY KEY,
	value BLOB
) WITHOUT ROWID;
`

type sqliteBackend struct {
	sqlDB *sql.DB
	path  string
}

// Open opens (or creates) the SQLite database at path and applies the schema.
func Open(path string) (offchain.Backend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}

	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(FULL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// all access is serialized by offchain.SharedStorage
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	log.Infof("opened sqlite backend at %s", cleanPath)
	return &sqliteBackend{sqlDB: sqlDB, path: cleanPath}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see offchain.Backend)
// --------------------------------------------------------------------------

func (s *sqliteBackend) Get(prefix, key []byte) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var value []byte
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT value FROM offchain_storage WHERE id = ?`,
		offchain.JoinKey(prefix, key),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select value: %w", err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

func (s *sqliteBackend) Set(prefix, key, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if value == nil {
		value = []byte{}
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO offchain_storage (id, value) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET value = excluded.value`,
		offchain.JoinKey(prefix, key), value,
	)
	if err != nil {
		return fmt.Errorf("upsert value: %w", err)
	}
	return nil
}

func (s *sqliteBackend) Remove(prefix, key []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM offchain_storage WHERE id = ?`,
		offchain.JoinKey(prefix, key),
	)
	if err != nil {
		return fmt.Errorf("delete value: %w", err)
	}
	return nil
}

func (s *sqliteBackend) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	log.Infof("closing sqlite backend at %s", s.path)
	return s.sqlDB.Close()
}
