package raft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ValentinKolb/okv/lib/backend/raft/internal"
	"github.com/ValentinKolb/okv/lib/offchain"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/client"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	retries = 5
	log     = logger.GetLogger("backend")
)

// replicatedBackend implements offchain.Backend on top of a Dragonboat NodeHost.
type replicatedBackend struct {
	nh      *dragonboat.NodeHost
	shardID uint64
	cs      *client.Session
	timeout time.Duration
}

// NewReplicatedBackend creates a backend that replicates every write to all
// members of the shard. The replica for shardID must already be started on nh.
// Closing the backend closes nh.
func NewReplicatedBackend(nh *dragonboat.NodeHost, shardID uint64, timeout time.Duration) offchain.Backend {
	return &replicatedBackend{
		nh:      nh,
		shardID: shardID,
		cs:      nh.GetNoOPSession(shardID),
		timeout: timeout,
	}
}

// --------------------------------------------------------------------------
// Internal write and read operations (used by interface methods)
// --------------------------------------------------------------------------

// write proposes a Command via SyncPropose, retrying while the system is busy.
func (r *replicatedBackend) write(cmd internal.Command) error {
	for i := 0; i < retries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		res, err := r.nh.SyncPropose(ctx, r.cs, cmd.Serialize())
		cancel()

		if errors.Is(err, dragonboat.ErrSystemBusy) {
			log.Infof("SyncPropose: system busy, retrying (%d/%d)...", i+1, retries)
			time.Sleep(r.timeout / 10)
			continue
		}
		if err != nil {
			return fmt.Errorf("propose %s: %w", cmd.Type, err)
		}
		if res.Value != resultSuccess {
			return fmt.Errorf("apply %s: %s", cmd.Type, res.Data)
		}
		return nil
	}
	return fmt.Errorf("propose %s: %w", cmd.Type, dragonboat.ErrSystemBusy)
}

// read queries the state machine via SyncRead, retrying while the system is busy.
func (r *replicatedBackend) read(q internal.Query) (internal.QueryResult, error) {
	for i := 0; i < retries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		res, err := r.nh.SyncRead(ctx, r.shardID, q)
		cancel()

		if errors.Is(err, dragonboat.ErrSystemBusy) {
			log.Infof("SyncRead: system busy, retrying (%d/%d)...", i+1, retries)
			time.Sleep(r.timeout / 10)
			continue
		}
		if err != nil {
			return internal.QueryResult{}, fmt.Errorf("read: %w", err)
		}

		result, ok := res.(internal.QueryResult)
		if !ok {
			return internal.QueryResult{}, fmt.Errorf("unexpected type: received %T, expected %T", res, result)
		}
		return result, nil
	}
	return internal.QueryResult{}, fmt.Errorf("read: %w", dragonboat.ErrSystemBusy)
}

// --------------------------------------------------------------------------
// Interface Methods (docu see offchain.Backend)
// --------------------------------------------------------------------------

func (r *replicatedBackend) Get(prefix, key []byte) ([]byte, bool, error) {
	res, err := r.read(internal.Query{Prefix: prefix, Key: key})
	if err != nil {
		return nil, false, err
	}
	if res.Ok && res.Value == nil {
		res.Value = []byte{}
	}
	return res.Value, res.Ok, nil
}

func (r *replicatedBackend) Set(prefix, key, value []byte) error {
	return r.write(internal.Command{
		Type:   internal.CommandTSet,
		Prefix: prefix,
		Key:    key,
		Value:  value,
	})
}

func (r *replicatedBackend) Remove(prefix, key []byte) error {
	return r.write(internal.Command{
		Type:   internal.CommandTRemove,
		Prefix: prefix,
		Key:    key,
	})
}

func (r *replicatedBackend) Close() error {
	log.Infof("closing node host of shard %d", r.shardID)
	r.nh.Close()
	return nil
}
