// Package cmd implements the command-line interface of okv, the offchain storage
// service. It provides a hierarchical command structure with operations for running
// the server and interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - serve: Commands for starting and configuring the okv server
//   - storage: Commands for offchain storage operations (set, get, clear, import, perf)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// All flags can also be set as environment variables OKV_<FLAG> (dashes become
// underscores), a .env and .env.local file in the working directory are loaded first.
//
// See okv -help for a list of all commands.
package cmd
