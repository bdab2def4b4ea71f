// Package common provides the data structures shared by the RPC server,
// client and transports of the offchain storage service.
//
// Key Components:
//
//   - Message: the single structure used for all requests and responses. Errors
//     travel as an offchain.ErrorCode plus message, Message.AsError rebuilds the
//     typed error on the client, so errors.Is works across the wire.
//
//   - MessageType: the RPC methods (offchain_localStorageSet,
//     offchain_localStorageClear, offchain_localStorageGet) and control messages.
//
//   - Bytes: a []byte that is hex encoded (0x...) in JSON.
//
//   - ServerConfig / ClientConfig: configuration for server and client
//     components, including the helpers to configure Dragonboat for the raft backend.
//
//   - Logger: custom implementation of Dragonboat's logger.ILogger, used by all
//     packages through logger.GetLogger.
package common
