package serve

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cmdUtil "github.com/ValentinKolb/okv/cmd/util"
	"github.com/ValentinKolb/okv/lib/backend"
	"github.com/ValentinKolb/okv/lib/safety"
	"github.com/ValentinKolb/okv/rpc/common"
	"github.com/ValentinKolb/okv/rpc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the okv server",
		Long:    `Start the okv server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is OKV_<flag> (e.g. OKV_RPC_METHODS=auto)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	key := "service-id"
	ServeCmd.PersistentFlags().Uint64(key, 1, cmdUtil.WrapString("ID of the offchain service (used for routing and as the RAFT shard ID)"))

	key = "backend"
	ServeCmd.PersistentFlags().String(key, "bolt", cmdUtil.WrapString("Storage backend (memory, bolt, leveldb, sqlite, raft)"))

	key = "backend-path"
	ServeCmd.PersistentFlags().String(key, "data/offchain.db", cmdUtil.WrapString("Path of the storage for the bolt, leveldb and sqlite backends"))

	key = "rpc-methods"
	ServeCmd.PersistentFlags().String(key, "auto", cmdUtil.WrapString("Which callers may use the offchain storage methods: safe (nobody), unsafe (everybody), auto (only callers from a unix socket or a loopback address)"))

	key = "rtt-millisecond"
	ServeCmd.PersistentFlags().Uint64(key, 100, cmdUtil.WrapString("(raft backend) RTTMillisecond defines the average Round Trip Time (RTT) in milliseconds between two NodeHost instances. \nOther raft configuration parameters (ElectionRTT=value*10, HeartbeatRTT=value) are derived from this value"))

	key = "snapshot-entries"
	ServeCmd.PersistentFlags().Uint64(key, 1000, cmdUtil.WrapString("(raft backend) SnapshotEntries defines how often the state machine should be snapshotted automatically. It is defined in terms of the number of applied Raft log entries. SnapshotEntries can be set to 0 to disable such automatic snapshotting (not recommended)"))

	key = "compaction-overhead"
	ServeCmd.PersistentFlags().Uint64(key, 500, cmdUtil.WrapString("(raft backend) CompactionOverhead defines the number of log entries to keep after a snapshot. Recommended value is about 1/2 of SnapshotEntries"))

	key = "data-dir"
	ServeCmd.PersistentFlags().String(key, "data/raft", cmdUtil.WrapString("(raft backend) DataDir is the directory used for the raft log and the snapshots"))

	key = "replica-id"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("(raft backend) ReplicaID is the unique name of this NodeHost instance (e.g. 'node-1')"))

	key = "cluster-members"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("(raft backend) ClusterMembers is a comma-separated list of NodeHost addresses in the format 'node-1=localhost:63001,node-2=localhost:63002,...'"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Timeout in seconds for requests and raft operations"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen (e.g. localhost:8080, /tmp/okv.sock, ...)"))

	key = "workers-per-conn"
	ServeCmd.PersistentFlags().Int(key, 16, cmdUtil.WrapString("Maximum number of concurrently handled requests per connection (tcp, unix, ws)"))

	key = "buffer-size"
	ServeCmd.PersistentFlags().Int(key, 64, cmdUtil.WrapString("Size of the pooled read buffers in KB (tcp, unix, ws)"))

	key = "socket-write-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Socket write buffer in KB, 0 keeps the OS default (tcp, unix, ws)"))

	key = "socket-read-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Socket read buffer in KB, 0 keeps the OS default (tcp, unix, ws)"))

	key = "tcp-nodelay"
	ServeCmd.PersistentFlags().Bool(key, true, cmdUtil.WrapString("Whether to enable TCP_NODELAY (tcp and ws only)"))

	key = "tcp-keepalive"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The keepalive interval in seconds (tcp and ws only)"))

	key = "tcp-linger"
	ServeCmd.PersistentFlags().Int(key, -1, cmdUtil.WrapString("The linger time in seconds, negative keeps the OS default (tcp and ws only)"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Address of the prometheus /metrics endpoint (e.g. localhost:9100), empty disables it"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.ServiceID = viper.GetUint64("service-id")
	serveCmdConfig.Backend = viper.GetString("backend")
	serveCmdConfig.BackendPath = viper.GetString("backend-path")
	serveCmdConfig.RPCMethods = viper.GetString("rpc-methods")
	serveCmdConfig.RTTMillisecond = viper.GetUint64("rtt-millisecond")
	serveCmdConfig.SnapshotEntries = viper.GetUint64("snapshot-entries")
	serveCmdConfig.CompactionOverhead = viper.GetUint64("compaction-overhead")
	serveCmdConfig.DataDir = viper.GetString("data-dir")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.Transport = common.ServerTransportConfig{
		Endpoint:       viper.GetString("endpoint"),
		WorkersPerConn: viper.GetInt("workers-per-conn"),
		BufferSize:     viper.GetInt("buffer-size") * 1024,
		SocketConf: common.SocketConf{
			WriteBufferSize: viper.GetInt("socket-write-buffer") * 1024,
			ReadBufferSize:  viper.GetInt("socket-read-buffer") * 1024,
		},
		TCPConf: common.TCPConf{
			TCPNoDelay:      viper.GetBool("tcp-nodelay"),
			TCPKeepAliveSec: viper.GetInt("tcp-keepalive"),
			TCPLingerSec:    viper.GetInt("tcp-linger"),
		},
	}

	// validate early, before any storage is opened
	if _, err := backend.ParseType(serveCmdConfig.Backend); err != nil {
		return err
	}
	if _, err := safety.ParseRPCMethods(serveCmdConfig.RPCMethods); err != nil {
		return err
	}
	if _, err := common.ParseLogLevel(serveCmdConfig.LogLevel); err != nil {
		return err
	}
	if serveCmdConfig.ServiceID == 0 {
		return fmt.Errorf("service-id must not be 0")
	}

	if !serveCmdConfig.IsReplicated() {
		return nil
	}

	// parse replica id
	name := viper.GetString("replica-id")
	if name == "" {
		return fmt.Errorf("replica-id is required for the raft backend")
	}
	serveCmdConfig.ReplicaID = cmdUtil.ReplicaID(name)

	// parse cluster members
	members, err := cmdUtil.ParseClusterMembers(viper.GetString("cluster-members"))
	if err != nil {
		return err
	}
	if len(members) == 0 {
		return fmt.Errorf("cluster-members is required for the raft backend")
	}
	serveCmdConfig.ClusterMembers = members

	// test if the replica id is in the cluster members
	if _, ok := serveCmdConfig.ClusterMembers[serveCmdConfig.ReplicaID]; !ok {
		return fmt.Errorf("no address found for replica %s in cluster members", name)
	}

	return nil
}

// run starts the okv server and stops it on SIGINT / SIGTERM
func run(_ *cobra.Command, _ []string) error {
	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}

	t, err := cmdUtil.GetServerTransport(serveCmdConfig.Transport.BufferSize)
	if err != nil {
		return err
	}

	serv := server.NewRPCServer(*serveCmdConfig, t, s)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok {
			server.Logger.Infof("shutting down")
			_ = serv.Close()
		}
	}()

	return serv.Serve()
}
