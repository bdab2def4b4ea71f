package backend

import (
	"fmt"

	"github.com/ValentinKolb/okv/lib/backend/bolt"
	"github.com/ValentinKolb/okv/lib/backend/leveldb"
	"github.com/ValentinKolb/okv/lib/backend/memory"
	"github.com/ValentinKolb/okv/lib/backend/sqlite"
	"github.com/ValentinKolb/okv/lib/offchain"
)

// Type names a backend implementation.
type Type string

const (
	TypeMemory  Type = "memory"
	TypeBolt    Type = "bolt"
	TypeLevelDB Type = "leveldb"
	TypeSQLite  Type = "sqlite"
	TypeRaft    Type = "raft"
)

// ParseType converts a string to a backend Type.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeMemory, TypeBolt, TypeLevelDB, TypeSQLite, TypeRaft:
		return t, nil
	default:
		return "", fmt.Errorf("invalid backend: %s (expected one of: memory, bolt, leveldb, sqlite, raft)", s)
	}
}

// NeedsPath reports whether the backend stores its data at a path.
func (t Type) NeedsPath() bool {
	return t == TypeBolt || t == TypeLevelDB || t == TypeSQLite
}

// Open creates a local (non-replicated) backend.
// The raft backend needs a running node host and is created with raft.NewReplicatedBackend instead.
func Open(t Type, path string) (offchain.Backend, error) {
	if t.NeedsPath() && path == "" {
		return nil, fmt.Errorf("backend %s requires a path", t)
	}

	switch t {
	case TypeMemory:
		return memory.NewMemoryBackend(), nil
	case TypeBolt:
		return bolt.Open(path)
	case TypeLevelDB:
		return leveldb.Open(path)
	case TypeSQLite:
		return sqlite.Open(path)
	case TypeRaft:
		return nil, fmt.Errorf("backend %s can't be opened locally", t)
	default:
		return nil, fmt.Errorf("invalid backend: %s", t)
	}
}
