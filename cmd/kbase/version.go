// Version command for the kbase CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kbase/pkg/kbase"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the kbase version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]string{"version": kbase.Version})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "kbase", kbase.Version)
			return nil
		},
	}
}
