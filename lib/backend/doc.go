// Package backend groups the storage engines implementing offchain.Backend.
//
// Implementations:
//
//   - memory:  in-memory map, nothing survives a restart (useful for tests and development)
//   - bolt:    single file database using go.etcd.io/bbolt
//   - leveldb: LSM tree using github.com/syndtr/goleveldb
//   - sqlite:  single table in a SQLite database using modernc.org/sqlite (no cgo)
//   - raft:    replicated state machine using github.com/lni/dragonboat/v4
//
// All implementations pass the conformance suite in the testing subpackage.
// Open chooses the implementation by Type.
package backend
