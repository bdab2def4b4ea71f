package offchain

import "context"

// --------------------------------------------------------------------------
// Interface Definitions
// --------------------------------------------------------------------------

// IOffchain is the interface of the offchain storage service.
// Every method first consults the safety gate with the given context and then
// validates the storage kind. Only StorageKindPersistent is supported.
type IOffchain interface {
	// SetLocalStorage stores the value under the key, overwriting any existing value.
	SetLocalStorage(ctx context.Context, kind StorageKind, key, value []byte) (err error)
	// ClearLocalStorage removes the value for the key. Removing a missing key is not an error.
	ClearLocalStorage(ctx context.Context, kind StorageKind, key []byte) (err error)
	// GetLocalStorage returns the value for the key. The boolean indicates whether a value was found.
	GetLocalStorage(ctx context.Context, kind StorageKind, key []byte) (value []byte, ok bool, err error)
}

// Backend is the capability set a storage engine has to provide.
// All keys are namespaced by a prefix. Implementations must keep
// different prefixes apart, i.e. (p1, k) and (p2, k) are different entries.
//
// Implementations don't have to be thread-safe, the service guards every
// call with SharedStorage.
type Backend interface {
	// Get returns the value stored under (prefix, key). The boolean indicates whether a value was found.
	// A present empty value is returned as ok=true.
	Get(prefix, key []byte) (value []byte, ok bool, err error)
	// Set stores the value under (prefix, key), overwriting any existing value.
	Set(prefix, key, value []byte) (err error)
	// Remove deletes the value stored under (prefix, key). Removing a missing key is a no-op.
	Remove(prefix, key []byte) (err error)
	// Close releases all resources held by the backend.
	Close() (err error)
}

// Gate is the safety check every operation has to pass before touching the storage.
// Check returns nil if the caller described by ctx may perform unsafe operations.
type Gate interface {
	Check(ctx context.Context) (err error)
}

// GateFunc adapts an ordinary function to the Gate interface.
type GateFunc func(ctx context.Context) error

// Check calls f(ctx).
func (f GateFunc) Check(ctx context.Context) error {
	return f(ctx)
}
