package storage

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ValentinKolb/okv/cmd/util"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()

	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := storageKind()
			if err != nil {
				return err
			}
			key, err := util.ParseBytes(args[0], asHex())
			if err != nil {
				return err
			}
			value, err := util.ParseBytes(args[1], asHex())
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			if err := rpcOffchain.SetLocalStorage(ctx, kind, key, value); err != nil {
				return err
			}
			fmt.Println(green("set successfully"))
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Gets the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := storageKind()
			if err != nil {
				return err
			}
			key, err := util.ParseBytes(args[0], asHex())
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			value, ok, err := rpcOffchain.GetLocalStorage(ctx, kind, key)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println(yellow("<not found>"))
				return nil
			}
			fmt.Println(formatValue(value, asHex()))
			return nil
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear [key]",
		Short: "Removes the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := storageKind()
			if err != nil {
				return err
			}
			key, err := util.ParseBytes(args[0], asHex())
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			if err := rpcOffchain.ClearLocalStorage(ctx, kind, key); err != nil {
				return err
			}
			fmt.Println(green("cleared successfully"))
			return nil
		},
	}
)

// commandContext returns the command context bounded by the client timeout
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := viper.GetInt("timeout")
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
}

// formatValue renders a value as hex (0x prefixed) or as text
func formatValue(value []byte, asHex bool) string {
	if asHex {
		return "0x" + hex.EncodeToString(value)
	}
	return string(value)
}
