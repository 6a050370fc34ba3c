// List and show commands read stored object types.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kbase/pkg/types"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored object types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			all, err := store.ListObjectTypes(cmd.Context())
			if err != nil {
				return storeError("list", err)
			}

			out := cmd.OutOrStdout()
			if a.jsonMode {
				if all == nil {
					all = []*types.ObjectType{}
				}
				return printJSON(out, all)
			}
			if len(all) == 0 {
				fmt.Fprintln(out, "no object types")
				return nil
			}
			for _, ot := range all {
				fmt.Fprintln(out, describe(ot))
			}
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show one object type and its attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ot, err := findObjectType(cmd.Context(), store, args[0])
			if err != nil {
				return storeError("show", err)
			}
			if ot == nil {
				return notFound(args[0])
			}
			return a.printObjectType(cmd.OutOrStdout(), ot)
		},
	}
}
