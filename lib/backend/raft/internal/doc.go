// Package internal defines the messages exchanged between the raft backend and its state machine.
//
// Writes are Commands. They are stored in the RAFT log, so they are encoded
// with a compact binary format:
//
//	+------+------------+--------+---------+-----+-------+
//	| Type | Prefix Len | Prefix | Key Len | Key | Value |
//	| 1 B  | 4 B (BE)   | N B    | 4 B(BE) | N B | rest  |
//	+------+------------+--------+---------+-----+-------+
//
// Reads are Queries. They never leave the process, so they are passed to
// Dragonboat as plain Go values.
package internal
