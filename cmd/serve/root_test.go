package serve

import (
	"testing"

	cmdUtil "github.com/ValentinKolb/okv/cmd/util"
)

func TestProcessConfig(t *testing.T) {
	parse := func(t *testing.T, args ...string) error {
		t.Helper()
		if err := ServeCmd.ParseFlags(args); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		return processConfig(ServeCmd, nil)
	}

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"Memory", []string{"--backend=memory", "--rpc-methods=auto", "--log-level=info"}, false},
		{"InvalidBackend", []string{"--backend=nope"}, true},
		{"InvalidPolicy", []string{"--backend=memory", "--rpc-methods=sometimes"}, true},
		{"InvalidLogLevel", []string{"--rpc-methods=auto", "--log-level=loud"}, true},
		{"ZeroServiceID", []string{"--log-level=info", "--service-id=0"}, true},
		{"RaftWithoutReplica", []string{"--service-id=1", "--backend=raft", "--replica-id="}, true},
		{"RaftWithoutMembers", []string{"--backend=raft", "--replica-id=node-1", "--cluster-members="}, true},
		{"RaftReplicaNotMember", []string{"--backend=raft", "--replica-id=node-3", "--cluster-members=node-1=localhost:63001"}, true},
		{"Raft", []string{"--backend=raft", "--replica-id=node-1", "--cluster-members=node-1=localhost:63001,node-2=localhost:63002"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parse(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("processConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	// the last case configured a raft replica
	if serveCmdConfig.ReplicaID != cmdUtil.ReplicaID("node-1") {
		t.Errorf("expected replica id of node-1, got %d", serveCmdConfig.ReplicaID)
	}
	if len(serveCmdConfig.ClusterMembers) != 2 {
		t.Errorf("expected 2 cluster members, got %d", len(serveCmdConfig.ClusterMembers))
	}
	if serveCmdConfig.Transport.BufferSize != 64*1024 {
		t.Errorf("expected buffer size of 64 KB, got %d", serveCmdConfig.Transport.BufferSize)
	}
}
