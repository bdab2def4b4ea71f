package raft

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ValentinKolb/okv/lib/backend/raft/internal"
	"github.com/ValentinKolb/okv/lib/offchain"
	sm "github.com/lni/dragonboat/v4/statemachine"
)

// Result codes stored in sm.Result.Value
const (
	resultSuccess uint64 = iota
	resultInvalidCommand
)

// --------------------------------------------------------------------------
// State Machine Implementation
// --------------------------------------------------------------------------

// OffchainStateMachine is a state machine implementation for Dragonboat RAFT.
// It holds all entries of one shard, keyed by offchain.JoinKey(prefix, key).
type OffchainStateMachine struct {
	replicaID uint64
	shardID   uint64

	mu   sync.RWMutex // Update runs concurrently with Lookup and SaveSnapshot
	data map[string][]byte
}

// CreateStateMachineFactory returns a function that can be used by dragonboat to create a new state machine for a node host
func CreateStateMachineFactory() func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
	return func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
		return NewOffchainStateMachine(shardID, replicaID)
	}
}

// NewOffchainStateMachine creates an empty state machine.
func NewOffchainStateMachine(shardID uint64, replicaID uint64) *OffchainStateMachine {
	return &OffchainStateMachine{
		replicaID: replicaID,
		shardID:   shardID,
		data:      make(map[string][]byte),
	}
}

// Lookup handles read-only queries
func (fsm *OffchainStateMachine) Lookup(itf interface{}) (interface{}, error) {
	q, ok := itf.(internal.Query)
	if !ok {
		return nil, fmt.Errorf("invalid query type: %T", itf)
	}

	fsm.mu.RLock()
	defer fsm.mu.RUnlock()

	value, ok := fsm.data[string(offchain.JoinKey(q.Prefix, q.Key))]
	if !ok {
		return internal.QueryResult{}, nil
	}

	// stored values are never modified in place, but the caller may modify the result
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	return internal.QueryResult{Ok: true, Value: valueCopy}, nil
}

// Update applies write commands.
// All write operations are serialized into []byte and are accessible via the entries struct
func (fsm *OffchainStateMachine) Update(entries []sm.Entry) ([]sm.Entry, error) {
	if len(entries) == 0 {
		return entries, nil
	}

	start := time.Now()

	fsm.mu.Lock()
	defer fsm.mu.Unlock()

	for idx, e := range entries {
		cmd := internal.Command{}
		if err := cmd.Deserialize(e.Cmd); err != nil {
			entries[idx].Result = sm.Result{
				Value: resultInvalidCommand,
				Data:  []byte(fmt.Sprintf("failed to deserialize command: %v", err)),
			}
			continue
		}

		joined := string(offchain.JoinKey(cmd.Prefix, cmd.Key))
		switch cmd.Type {
		case internal.CommandTSet:
			// Deserialize already copied the value out of the log entry
			fsm.data[joined] = cmd.Value
			entries[idx].Result = sm.Result{Value: resultSuccess}
		case internal.CommandTRemove:
			delete(fsm.data, joined)
			entries[idx].Result = sm.Result{Value: resultSuccess}
		default:
			entries[idx].Result = sm.Result{
				Value: resultInvalidCommand,
				Data:  []byte(fmt.Sprintf("unknown command operation: %s", cmd.Type)),
			}
		}
	}

	if elapsed := time.Since(start); elapsed > time.Millisecond {
		log.Infof("state machine took long to update. Batch updated %d entries, took %.2fms", len(entries), float64(elapsed)/float64(time.Millisecond))
	}
	return entries, nil
}

// PrepareSnapshot captures the current entries. It is never called concurrently with Update.
func (fsm *OffchainStateMachine) PrepareSnapshot() (interface{}, error) {
	fsm.mu.RLock()
	defer fsm.mu.RUnlock()

	// values are replaced, never modified, so a shallow copy is a consistent view
	snapshot := make(map[string][]byte, len(fsm.data))
	for k, v := range fsm.data {
		snapshot[k] = v
	}
	return snapshot, nil
}

// SaveSnapshot writes the entries captured by PrepareSnapshot with the format:
// 8 bytes entry count, then per entry 4 bytes key length, key, 4 bytes value length, value (all big endian)
func (fsm *OffchainStateMachine) SaveSnapshot(ctx interface{}, writer io.Writer, _ sm.ISnapshotFileCollection, done <-chan struct{}) error {
	snapshot, ok := ctx.(map[string][]byte)
	if !ok {
		return fmt.Errorf("invalid snapshot context type: %T", ctx)
	}

	w := bufio.NewWriter(writer)
	var lenBuf [8]byte

	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(snapshot)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}

	for k, v := range snapshot {
		select {
		case <-done:
			return sm.ErrSnapshotStopped
		default:
		}

		for _, field := range [][]byte{[]byte(k), v} {
			binary.BigEndian.PutUint32(lenBuf[:4], uint32(len(field)))
			if _, err := w.Write(lenBuf[:4]); err != nil {
				return err
			}
			if _, err := w.Write(field); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}

// RecoverFromSnapshot replaces all entries with the content of a snapshot written by SaveSnapshot.
func (fsm *OffchainStateMachine) RecoverFromSnapshot(reader io.Reader, _ []sm.SnapshotFile, done <-chan struct{}) error {
	r := bufio.NewReader(reader)
	var lenBuf [8]byte

	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return fmt.Errorf("read entry count: %w", err)
	}
	count := binary.BigEndian.Uint64(lenBuf[:])

	readField := func() ([]byte, error) {
		if _, err := io.ReadFull(r, lenBuf[:4]); err != nil {
			return nil, err
		}
		field := make([]byte, binary.BigEndian.Uint32(lenBuf[:4]))
		if _, err := io.ReadFull(r, field); err != nil {
			return nil, err
		}
		return field, nil
	}

	data := make(map[string][]byte)
	for i := uint64(0); i < count; i++ {
		select {
		case <-done:
			return sm.ErrSnapshotStopped
		default:
		}

		key, err := readField()
		if err != nil {
			return fmt.Errorf("read key of entry %d: %w", i, err)
		}
		value, err := readField()
		if err != nil {
			return fmt.Errorf("read value of entry %d: %w", i, err)
		}
		data[string(key)] = value
	}

	fsm.mu.Lock()
	fsm.data = data
	fsm.mu.Unlock()
	return nil
}

// Close performs any necessary cleanup.
func (fsm *OffchainStateMachine) Close() error {
	fsm.mu.Lock()
	defer fsm.mu.Unlock()
	fsm.data = make(map[string][]byte)
	return nil
}
