// Create, update, and delete commands write object types.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kbase/pkg/types"
)

func newCreateCmd(a *app) *cobra.Command {
	var attrs []string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an object type, replacing any with the same name",
		Long: `Create stores a new object type. Attributes are given as
--attr name:Type[:id] where Type is one of Bool, Int, Float, String and the
optional ":id" suffix makes the attribute part of the identifier.

An object type already stored under the same name is overwritten.

Example:
  kbase create book --attr isbn:String:id --attr title:String --attr pages:Int`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ot, err := buildObjectType(args[0], attrs)
			if err != nil {
				return userError("create: %w", err)
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			stored, err := store.CreateObjectType(cmd.Context(), ot)
			if err != nil {
				return storeError("create", err)
			}
			return a.printObjectType(cmd.OutOrStdout(), stored)
		},
	}
	cmd.Flags().StringArrayVar(&attrs, "attr", nil, "attribute as name:Type[:id] (repeatable)")
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var attrs []string
	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Replace the attributes of an existing object type",
		Long: `Update replaces the stored object type with one built from the given
--attr flags. It fails if no object type has that name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ot, err := buildObjectType(args[0], attrs)
			if err != nil {
				return userError("update: %w", err)
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			updated, err := store.UpdateObjectType(cmd.Context(), ot)
			if err != nil {
				return storeError("update", err)
			}
			if updated == nil {
				return notFound(args[0])
			}
			return a.printObjectType(cmd.OutOrStdout(), updated)
		},
	}
	cmd.Flags().StringArrayVar(&attrs, "attr", nil, "attribute as name:Type[:id] (repeatable)")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete an object type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.DeleteObjectType(cmd.Context(), types.NewObjectType(args[0]))
			if err != nil {
				return storeError("delete", err)
			}
			if removed == nil {
				return notFound(args[0])
			}
			return a.printObjectType(cmd.OutOrStdout(), removed)
		},
	}
}
