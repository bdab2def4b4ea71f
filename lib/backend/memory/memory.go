// Package memory implements an in-memory offchain.Backend.
// Nothing is persisted, the content is lost when the process exits.
//
// The backend is not thread-safe on its own, it relies on offchain.SharedStorage.
package memory

import (
	"github.com/ValentinKolb/okv/lib/offchain"
)

type memoryBackend struct {
	data map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() offchain.Backend {
	return &memoryBackend{
		data: make(map[string][]byte),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see offchain.Backend)
// --------------------------------------------------------------------------

func (m *memoryBackend) Get(prefix, key []byte) ([]byte, bool, error) {
	value, ok := m.data[string(offchain.JoinKey(prefix, key))]
	if !ok {
		return nil, false, nil
	}

	// Copy value so callers can't modify the stored entry
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	return valueCopy, true, nil
}

func (m *memoryBackend) Set(prefix, key, value []byte) error {
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	m.data[string(offchain.JoinKey(prefix, key))] = valueCopy
	return nil
}

func (m *memoryBackend) Remove(prefix, key []byte) error {
	delete(m.data, string(offchain.JoinKey(prefix, key)))
	return nil
}

func (m *memoryBackend) Close() error {
	m.data = make(map[string][]byte)
	return nil
}
