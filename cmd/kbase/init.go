// Init command for the kbase CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the config file and open the store",
		Long: `Init writes config.yaml with default values to the config directory
if it does not exist, then connects to the configured backend so the data
directory and database file are created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := writeConfigIfMissing(a.configDir, defaultConfig())
			if err != nil {
				return sysError("init: %w", err)
			}
			if written {
				// Reload so the new file is the source of truth.
				if err := a.loadConfig(); err != nil {
					return err
				}
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			existing, err := store.ListObjectTypes(cmd.Context())
			if err != nil {
				return storeError("init", err)
			}

			cfg, err := a.storeConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.jsonMode {
				return printJSON(out, map[string]any{
					"config_dir":   a.configDir,
					"data_dir":     cfg.DataDir,
					"backend":      cfg.Backend,
					"object_types": len(existing),
				})
			}
			fmt.Fprintln(out, "kbase initialized")
			fmt.Fprintln(out, "  config: ", a.configDir)
			fmt.Fprintln(out, "  backend:", cfg.Backend)
			if cfg.DataDir != "" {
				fmt.Fprintln(out, "  data:   ", cfg.DataDir)
			}
			return nil
		},
	}
}
