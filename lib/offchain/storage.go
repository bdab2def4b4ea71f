package offchain

import "sync"

// SharedStorage is the single storage handle shared by all concurrent calls.
// It guards one Backend with a reader-writer lock: any number of readers may
// run at the same time, a writer excludes all readers and other writers.
//
// The callback passed to Read and Write is the complete critical section.
// Callbacks must not block on anything but the backend itself.
type SharedStorage struct {
	mu      sync.RWMutex
	backend Backend
}

// NewSharedStorage wraps an already initialized backend.
func NewSharedStorage(backend Backend) *SharedStorage {
	return &SharedStorage{backend: backend}
}

// Read runs fn with shared access to the backend.
func (s *SharedStorage) Read(fn func(b Backend) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.backend)
}

// Write runs fn with exclusive access to the backend.
func (s *SharedStorage) Write(fn func(b Backend) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.backend)
}

// Close closes the backend. It waits for running operations to finish.
func (s *SharedStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Close()
}
