// Package ws implements a websocket transport for the RPC system of the offchain
// storage service, for callers that can only reach the service through http
// infrastructure (proxies, load balancers).
//
// The package does not define its own protocol. A websocket connection is adapted
// to a net.Conn (binary messages form one byte stream) and handed to the base
// transport, so requests use the same frames, request correlation, worker limits
// and retries as the tcp and unix transports.
//
// Key Components:
//
//   - serverConnector: serves `GET /ws` on an http server, upgrades the requests and
//     hands the connections to the base server through a net.Listener
//
//   - clientConnector: dials ws://host:port/ws (or a full ws:// / wss:// url)
//
// The server pings every connection every 30 seconds, gorilla/websocket answers
// the pings on the client side while the response reader is running.
package ws
