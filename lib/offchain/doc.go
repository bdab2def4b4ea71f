// Package offchain implements the offchain storage service: a small, gated
// surface that lets remote callers write, clear and read entries of the
// persistent offchain worker storage held by this process.
//
// The package focuses on:
//   - The service operations (SetLocalStorage, ClearLocalStorage, GetLocalStorage)
//   - The storage kind namespace (only StorageKindPersistent is served)
//   - The shared, reader-writer locked storage handle
//   - The RPC-serializable error taxonomy
//
// Key Components:
//
//   - IOffchain: The interface of the service. The local implementation is
//     created with NewOffchain, the RPC client in rpc/client implements the
//     same interface so callers can switch between both.
//
//   - Backend: The capability interface a storage engine has to provide
//     (Get, Set, Remove and Close under a prefix). Implementations live in
//     the lib/backend packages (memory, bolt, leveldb, sqlite, raft).
//
//   - SharedStorage: Wraps exactly one Backend behind a sync.RWMutex. Reads
//     run in shared mode, writes and removals in exclusive mode. The callback
//     passed to Read or Write is the complete critical section.
//
//   - Gate: The safety check consulted before anything else. The default
//     implementation lives in lib/safety and reads the per-call decision from
//     the context.Context.
//
//   - Error: Typed error with a numeric code, used for all failures that
//     leave the service. Errors survive the RPC round trip (see FromCode).
//
// Check Order:
//
//	Every operation runs the same linear sequence:
//
//	1. gate.Check(ctx) - a denied call fails with the gate's error
//	2. kind validation  - anything but StorageKindPersistent fails with ErrUnavailableStorageKind
//	3. lock + backend   - exclusive for set and clear, shared for get
//
//	Steps 1 and 2 never touch the storage, so a rejected call can neither
//	block on the lock nor mutate anything.
//
// Usage Example:
//
//	service := offchain.NewOffchain(memory.NewMemoryBackend(), safety.NewContextGate())
//
//	ctx := safety.WithDenyUnsafe(context.Background(), safety.DenyUnsafeNo)
//	err := service.SetLocalStorage(ctx, offchain.StorageKindPersistent, []byte("k"), []byte("v"))
//	value, ok, err := service.GetLocalStorage(ctx, offchain.StorageKindPersistent, []byte("k"))
//
// Thread Safety:
//
//	The service is safe for concurrent use. Backends do not need to be
//	thread-safe themselves since all access goes through SharedStorage.
package offchain
