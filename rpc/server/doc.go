// Package server implements the RPC server of the offchain storage service.
// It provides the adapter translating RPC messages to offchain.IOffchain calls,
// along with the core server implementation that opens the storage backend and
// routes requests by service ID.
//
// The package focuses on:
//   - Server-side RPC request handling for the offchain storage methods
//   - Adapter pattern to decouple the service from the RPC mechanisms
//   - Creating the storage backend (memory, bolt, leveldb, sqlite or raft) from the config
//   - Deriving the safety decision of every call from the rpc methods policy and the
//     address of the caller (see safety.RPCMethods)
//   - Request metrics (VictoriaMetrics) served at /metrics if a metrics endpoint is configured
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for all server adapters,
//     with the Handle method that processes incoming requests against an offchain.IOffchain.
//
//   - NewOffchainServerAdapter: Factory function creating the adapter for the
//     offchain_localStorageSet / Clear / Get methods. Requests with an unknown storage
//     kind are answered with an invalid params error without calling the service.
//
//   - NewRPCServer: Factory function creating a configured server with the specified
//     transport and serializer mechanisms.
//
// Usage Example:
//
//	// Create server configuration
//	config := common.ServerConfig{
//	  ServiceID:     1,
//	  Backend:       "bolt",
//	  BackendPath:   "./data/offchain.db",
//	  RPCMethods:    "auto",
//	  TimeoutSecond: 5,
//	  LogLevel:      "info",
//	  Transport: common.ServerTransportConfig{
//	    Endpoint:       "0.0.0.0:8080",
//	    WorkersPerConn: 16,
//	  },
//	}
//
//	// Create and start the server
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPDefaultServerTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// With the raft backend the writes are replicated to all ClusterMembers. The RAFT
// configuration (RTTMillisecond, SnapshotEntries, CompactionOverhead, DataDir,
// ReplicaID and ClusterMembers) must then be set, the ServiceID is used as the shard ID.
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent requests
//	across multiple connections. Serve must be called only once, Close may be
//	called from any goroutine.
package server
