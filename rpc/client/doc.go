// Package client implements the RPC client of the offchain storage service.
// It provides an implementation of the offchain.IOffchain interface that
// forwards every call to a remote server via RPC.
//
// The package focuses on:
//   - Transparent RPC access to the offchain storage service
//   - Integration with the transport and serialization layers
//   - Conversion of error responses back into the typed offchain.Error, so that
//     errors.Is(err, offchain.ErrUnsafeRPCCalled) works across the wire
//
// Key Components:
//
//   - NewRPCOffchain: Factory function that creates a client implementing the
//     offchain.IOffchain interface. This client forwards all operations to remote
//     servers via the configured transport layer.
//
// Usage Example:
//
//	// Configure the client
//	config := common.ClientConfig{
//	  TimeoutSecond: 5,
//	  Transport: common.ClientTransportConfig{
//	    Endpoints:              []string{"localhost:8080"},
//	    RetryCount:             3,
//	    ConnectionsPerEndpoint: 1,
//	  },
//	}
//
//	// Create the client for service 1
//	storage, _ := client.NewRPCOffchain(1, config, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
//	defer storage.Close()
//
//	// Use the storage
//	_ = storage.SetLocalStorage(ctx, offchain.StorageKindPersistent, []byte("k"), []byte("v"))
//	value, found, _ := storage.GetLocalStorage(ctx, offchain.StorageKindPersistent, []byte("k"))
//
// Whether a call is allowed is decided by the server (rpc methods policy and the
// address of the connection), not by the client.
//
// Performance Considerations:
//
//   - For applications that frequently send large payloads, increasing ConnectionsPerEndpoint
//     can improve throughput by allowing parallel requests.
//
//   - The choice of serializer significantly affects performance. The binary serializer
//     provides the best performance and smallest payload size, the +zstd variants
//     trade cpu for bandwidth on large values.
//
// Thread Safety:
//
//	The client is thread-safe and can be used concurrently from multiple goroutines
//	without additional synchronization.
package client
