// Package raft implements a replicated offchain.Backend using the Dragonboat
// RAFT consensus library.
//
// Architecture:
//
//   - Backend: implements offchain.Backend. Writes are encoded as a Command and
//     proposed with SyncPropose, reads are sent as a Query with SyncRead. Calls
//     that fail with dragonboat.ErrSystemBusy are retried a few times.
//
//   - State Machine: a Dragonboat IConcurrentStateMachine holding the entries of
//     one shard in memory. Durability comes from the RAFT log and the snapshots
//     Dragonboat takes of the state machine.
//
//   - Protocol: the internal package defines Command and Query and the binary
//     encoding of commands stored in the RAFT log.
//
// Consistency:
//
//	All writes are linearizable. Reads use SyncRead, so a read on any replica
//	observes every write that was acknowledged before it started.
//
// Usage:
//
//	nh, _ := dragonboat.NewNodeHost(nhConfig)
//	_ = nh.StartConcurrentReplica(members, false, raft.CreateStateMachineFactory(), shardConfig)
//	backend := raft.NewReplicatedBackend(nh, shardID, 5*time.Second)
//	service := offchain.NewOffchain(backend, gate)
package raft
