package storage

import (
	"github.com/ValentinKolb/okv/cmd/util"
	"github.com/ValentinKolb/okv/lib/offchain"
	"github.com/ValentinKolb/okv/rpc/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rpcOffchain *client.RPCOffchain

	// StorageCommands represents the offchain storage command group
	StorageCommands = &cobra.Command{
		Use:                "storage",
		Short:              "Perform offchain storage operations",
		PersistentPreRunE:  setupStorageClient,
		PersistentPostRunE: closeStorageClient,
	}
)

func init() {
	// Add common RPC flags to the storage command
	util.SetupRPCClientFlags(StorageCommands)

	key := "kind"
	StorageCommands.PersistentFlags().String(key, "persistent", util.WrapString("Storage kind of the operation (persistent, local)"))

	key = "hex"
	StorageCommands.PersistentFlags().Bool(key, false, util.WrapString("Interpret keys and values as hex and print values as hex"))

	// Add subcommands
	StorageCommands.AddCommand(setCmd)
	StorageCommands.AddCommand(getCmd)
	StorageCommands.AddCommand(clearCmd)
	StorageCommands.AddCommand(importCmd)
	StorageCommands.AddCommand(perfTestCmd)
}

// setupStorageClient initializes the RPC offchain client
func setupStorageClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()
	serviceID := util.GetServiceID()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the offchain client
	rpcOffchain, err = client.NewRPCOffchain(
		serviceID,
		*config,
		t,
		s,
	)

	return err
}

func closeStorageClient(_ *cobra.Command, _ []string) error {
	if rpcOffchain == nil {
		return nil
	}
	return rpcOffchain.Close()
}

// storageKind returns the kind selected with --kind
func storageKind() (offchain.StorageKind, error) {
	return offchain.ParseStorageKind(viper.GetString("kind"))
}

// asHex reports whether --hex is set
func asHex() bool {
	return viper.GetBool("hex")
}
