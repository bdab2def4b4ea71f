package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/okv/cmd/serve"
	"github.com/ValentinKolb/okv/cmd/storage"
	"github.com/ValentinKolb/okv/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (
	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "okv",
		Short: "offchain storage service",
		Long: fmt.Sprintf(`okv (v%s)

The offchain worker storage of a node as a standalone RPC service.
Values are stored under the PERSISTENT storage kind, either on local disk
(bolt, leveldb, sqlite), in memory, or replicated with RAFT.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of okv",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("okv v%s\n", Version)
		},
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(storage.StorageCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "binary", util.WrapString("serializer to use (json, gob, binary), add +zstd to compress large messages (e.g. binary+zstd)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (http, tcp, unix, ws)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
