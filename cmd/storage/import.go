package storage

import (
	"fmt"
	"io"
	"os"

	"github.com/ValentinKolb/okv/cmd/util"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	importCmd = &cobra.Command{
		Use:   "import [file]",
		Short: "Imports key-value pairs from a YAML file ('-' reads stdin)",
		Long: `Imports key-value pairs from a YAML file. The file contains a list of entries:

  - key: foo
    value: bar
  - key: baz
    value: qux

With --hex, keys and values are decoded as hex.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := storageKind()
			if err != nil {
				return err
			}

			entries, err := readImportFile(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			for i, e := range entries {
				key, err := util.ParseBytes(e.Key, asHex())
				if err != nil {
					return fmt.Errorf("entry %d: %w", i, err)
				}
				value, err := util.ParseBytes(e.Value, asHex())
				if err != nil {
					return fmt.Errorf("entry %d: %w", i, err)
				}
				if err := rpcOffchain.SetLocalStorage(ctx, kind, key, value); err != nil {
					return fmt.Errorf("entry %d (%s): %w", i, e.Key, err)
				}
			}

			fmt.Println(color.GreenString("imported %d entries", len(entries)))
			return nil
		},
	}
)

// importEntry is a single key-value pair of an import file
type importEntry struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// readImportFile reads the entries from path, '-' reads from stdin
func readImportFile(path string) ([]importEntry, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return parseImport(r)
}

// parseImport decodes a YAML list of entries, an empty document yields no entries
func parseImport(r io.Reader) ([]importEntry, error) {
	var entries []importEntry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil && err != io.EOF {
		return nil, fmt.Errorf("invalid import file: %w", err)
	}
	for i, e := range entries {
		if e.Key == "" {
			return nil, fmt.Errorf("invalid import file: entry %d has no key", i)
		}
	}
	return entries, nil
}
