// Data-types, schema, and validate commands expose the type system.
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kbase/pkg/types"
)

func newDataTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "data-types",
		Short: "List the attribute data types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if a.jsonMode {
				return printJSON(out, types.DataTypeNames())
			}
			for _, name := range types.DataTypeNames() {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <name>",
		Short: "Print the JSON Schema for instances of an object type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ot, err := findObjectType(cmd.Context(), store, args[0])
			if err != nil {
				return storeError("schema", err)
			}
			if ot == nil {
				return notFound(args[0])
			}
			return printJSON(cmd.OutOrStdout(), ot.JSONSchema())
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <name> <json>",
		Short: "Check a JSON instance against an object type",
		Long: `Validate checks that a JSON object has the attributes of the named
object type with matching data types and every identifier attribute present.

Example:
  kbase validate book '{"isbn":"978-0","title":"Go","pages":300}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ot, err := findObjectType(cmd.Context(), store, args[0])
			if err != nil {
				return storeError("validate", err)
			}
			if ot == nil {
				return notFound(args[0])
			}

			verr := ot.ValidateInstance([]byte(args[1]))
			out := cmd.OutOrStdout()
			if a.jsonMode {
				result := map[string]any{"valid": verr == nil}
				if verr != nil {
					result["error"] = verr.Error()
				}
				if err := printJSON(out, result); err != nil {
					return err
				}
			} else if verr == nil {
				fmt.Fprintln(out, "valid")
			}
			if verr != nil {
				if errors.Is(verr, types.ErrInvalidInstance) {
					return userError("validate: %w", verr)
				}
				return sysError("validate: %w", verr)
			}
			return nil
		},
	}
}
