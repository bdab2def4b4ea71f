package raft

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	backendtesting "github.com/ValentinKolb/okv/lib/backend/testing"
	"github.com/ValentinKolb/okv/lib/offchain"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/config"
)

const testShardID = 1

// freeAddr returns a local address with an unused port
func freeAddr(t testing.TB) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to find free port: %v", err)
	}
	defer l.Close()
	return l.Addr().String()
}

// startSingleNode starts a single replica shard and waits until it has elected itself as leader
func startSingleNode(t testing.TB) offchain.Backend {
	addr := freeAddr(t)
	dir := t.TempDir()

	nh, err := dragonboat.NewNodeHost(config.NodeHostConfig{
		WALDir:         dir,
		NodeHostDir:    dir,
		RTTMillisecond: 10,
		RaftAddress:    addr,
	})
	if err != nil {
		t.Fatalf("Failed to create node host: %v", err)
	}

	err = nh.StartConcurrentReplica(
		map[uint64]string{1: addr},
		false,
		CreateStateMachineFactory(),
		config.Config{
			ReplicaID:    1,
			ShardID:      testShardID,
			ElectionRTT:  10,
			HeartbeatRTT: 1,
			CheckQuorum:  true,
		},
	)
	if err != nil {
		nh.Close()
		t.Fatalf("Failed to start replica: %v", err)
	}

	deadline := time.Now().Add(10 * time.Second)
	for {
		_, _, ok, err := nh.GetLeaderID(testShardID)
		if err == nil && ok {
			break
		}
		if time.Now().After(deadline) {
			nh.Close()
			t.Fatalf("No leader elected: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	return NewReplicatedBackend(nh, testShardID, 5*time.Second)
}

func TestReplicatedBackend(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping raft test in short mode")
	}

	// every sub test gets its own node host, so they don't share state
	backendtesting.RunBackendTests(t, "Raft", func(t testing.TB) offchain.Backend {
		return startSingleNode(t)
	})
}

func TestReplicatedBackendWithService(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping raft test in short mode")
	}

	allowAll := offchain.GateFunc(func(context.Context) error { return nil })
	service := offchain.NewOffchain(startSingleNode(t), allowAll)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		key := []byte(fmt.Sprintf("key-%d", i))
		if err := service.SetLocalStorage(ctx, offchain.StorageKindPersistent, key, []byte(fmt.Sprintf("value-%d", i))); err != nil {
			t.Fatalf("SetLocalStorage failed: %v", err)
		}
	}

	value, ok, err := service.GetLocalStorage(ctx, offchain.StorageKindPersistent, []byte("key-7"))
	if err != nil || !ok || string(value) != "value-7" {
		t.Errorf("Expected value-7, got %q ok=%v err=%v", value, ok, err)
	}

	if _, _, err := service.GetLocalStorage(ctx, offchain.StorageKindLocal, []byte("key-7")); !errors.Is(err, offchain.ErrUnavailableStorageKind) {
		t.Errorf("Expected ErrUnavailableStorageKind, got %v", err)
	}
}
