// Add-attribute command appends one attribute to a stored object type.
package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kbase/pkg/types"
)

func newAddAttributeCmd(a *app) *cobra.Command {
	var isIDPart bool
	cmd := &cobra.Command{
		Use:   "add-attribute <type> <attribute> <DataType>",
		Short: "Append an attribute to an object type",
		Long: `Add-attribute appends one attribute to a stored object type. The
attribute name must not already exist on the type.

Example:
  kbase add-attribute book published Int
  kbase add-attribute book edition Int --id`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			typeName, attrName := args[0], args[1]
			dt, err := types.ParseDataType(args[2])
			if err != nil {
				return userError("add-attribute: %w", err)
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ot, err := findObjectType(cmd.Context(), store, typeName)
			if err != nil {
				return storeError("add-attribute", err)
			}
			if ot == nil {
				return notFound(typeName)
			}
			if err := ot.AddAttribute(attrName, dt, isIDPart); err != nil {
				if errors.Is(err, types.ErrDuplicateAttribute) {
					return userError("add-attribute: %w", err)
				}
				return sysError("add-attribute: %w", err)
			}

			updated, err := store.UpdateObjectType(cmd.Context(), ot)
			if err != nil {
				return storeError("add-attribute", err)
			}
			if updated == nil {
				return notFound(typeName)
			}
			return a.printObjectType(cmd.OutOrStdout(), updated)
		},
	}
	cmd.Flags().BoolVar(&isIDPart, "id", false, "make the attribute part of the identifier")
	return cmd
}
