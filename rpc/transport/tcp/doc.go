// Package tcp implements a TCP socket based transport for the RPC system of the
// offchain storage service. It provides concrete implementations of the base package's
// connector interfaces for TCP connections.
//
// This package builds on the base package's transport functionality, inheriting its
// connection pooling, buffer reuse and request routing. See the base package
// documentation for the frame format and the underlying transport mechanisms.
//
// Key Components:
//
//   - clientConnector: TCP-specific implementation of base.IClientConnector
//
//   - serverConnector: TCP-specific implementation of base.IServerConnector
//
// Both sides apply the SocketConf and TCPConf options of their configuration
// (no delay, keep-alive, linger, socket buffers) to every connection.
//
// The default server buffer size is set to 512 KB, which provides good performance
// for typical workloads, but can be customized for specific use cases.
package tcp
