// Package rpc provides the remote procedure call layer of the offchain storage
// service. It carries the offchain storage operations between clients and the
// server across process and network boundaries.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the Message protocol, configuration structures, and logging.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (TCP, Unix sockets, HTTP, WebSocket).
//
//   - serializer: Message serialization with multiple format options (Binary, JSON, GOB,
//     optionally zstd compressed) for converting between Message objects and byte arrays.
//
//   - client: RPC client implementing offchain.IOffchain, allowing applications to
//     use a remote offchain storage transparently.
//
//   - server: RPC server that routes incoming requests to the offchain service,
//     decides the caller's safety per connection and exposes prometheus metrics.
package rpc
