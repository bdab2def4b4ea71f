// Package transport defines the interfaces and abstractions for RPC communication
// of the offchain storage service. It provides a common contract that all transport
// implementations must fulfill, enabling protocol-agnostic communication.
//
// The package focuses on:
//   - Defining clear interfaces for client and server transport layers
//   - Supporting service-based request routing (the service ID of every request)
//   - Passing the address of the caller to the handler (WithPeer / PeerFromContext),
//     the server derives the safety decision from it
//   - Enabling multiple transport implementations (HTTP, TCP, Unix sockets, WebSocket)
//
// Key Components:
//
//   - IRPCClientTransport: Interface for client-side transport implementations that
//     handles connection management and request sending.
//
//   - IRPCServerTransport: Interface for server-side transport implementations that
//     receives requests and routes them to appropriate handlers.
//
//   - ServerHandleFunc: Function type for request handling callbacks.
package transport
