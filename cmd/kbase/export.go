// Export and import commands move object types through JSONL files.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kbase/internal/jsonl"
	"github.com/mesh-intelligence/kbase/pkg/types"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write every object type to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			all, err := store.ListObjectTypes(cmd.Context())
			if err != nil {
				return storeError("export", err)
			}
			records, err := jsonl.Marshal(all)
			if err != nil {
				return sysError("export: %w", err)
			}
			if err := jsonl.Write(args[0], records); err != nil {
				return sysError("export: %w", err)
			}

			out := cmd.OutOrStdout()
			if a.jsonMode {
				return printJSON(out, map[string]any{"file": args[0], "exported": len(records)})
			}
			fmt.Fprintf(out, "exported %d object types to %s\n", len(records), args[0])
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Create object types from a JSONL file",
		Long: `Import reads one object type per line and creates each one, replacing
any stored object type with the same name. Lines that are not valid JSON or
do not describe a valid object type are skipped and counted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, skipped, err := jsonl.Read(args[0])
			if err != nil {
				return userError("import: %w", err)
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			imported := 0
			for _, rec := range records {
				var ot types.ObjectType
				if err := json.Unmarshal(rec, &ot); err != nil {
					skipped++
					continue
				}
				if _, err := store.CreateObjectType(cmd.Context(), &ot); err != nil {
					return storeError("import", err)
				}
				imported++
			}

			out := cmd.OutOrStdout()
			if a.jsonMode {
				return printJSON(out, map[string]any{"file": args[0], "imported": imported, "skipped": skipped})
			}
			fmt.Fprintf(out, "imported %d object types from %s (%d skipped)\n", imported, args[0], skipped)
			return nil
		},
	}
}
