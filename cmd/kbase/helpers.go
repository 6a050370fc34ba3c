// Shared helpers for kbase CLI commands.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mesh-intelligence/kbase/pkg/types"
)

// idFlag marks an attribute spec as part of the identifier.
const idFlag = "id"

// parseAttrSpec parses "name:Type" or "name:Type:id".
func parseAttrSpec(spec string) (name string, dt types.DataType, isIDPart bool, err error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", 0, false, fmt.Errorf("invalid attribute %q (expected name:Type[:id])", spec)
	}
	name = strings.TrimSpace(parts[0])
	if name == "" {
		return "", 0, false, fmt.Errorf("invalid attribute %q: empty name", spec)
	}
	dt, err = types.ParseDataType(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", 0, false, fmt.Errorf("attribute %q: %w", name, err)
	}
	if len(parts) == 3 {
		if parts[2] != idFlag {
			return "", 0, false, fmt.Errorf("invalid attribute %q: unknown flag %q", spec, parts[2])
		}
		isIDPart = true
	}
	return name, dt, isIDPart, nil
}

// buildObjectType creates an object type from attribute specs. Duplicate
// attribute names are rejected.
func buildObjectType(name string, specs []string) (*types.ObjectType, error) {
	if name == "" {
		return nil, types.ErrInvalidName
	}
	ot := types.NewObjectType(name)
	for _, spec := range specs {
		attr, dt, isID, err := parseAttrSpec(spec)
		if err != nil {
			return nil, err
		}
		if err := ot.AddAttribute(attr, dt, isID); err != nil {
			return nil, err
		}
	}
	return ot, nil
}

// findObjectType returns the stored object type with the given name, or nil.
func findObjectType(ctx context.Context, store types.Store, name string) (*types.ObjectType, error) {
	all, err := store.ListObjectTypes(ctx)
	if err != nil {
		return nil, err
	}
	for _, ot := range all {
		if ot.Name() == name {
			return ot, nil
		}
	}
	return nil, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError("marshal output: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// printObjectType writes ot in the selected output mode.
func (a *app) printObjectType(w io.Writer, ot *types.ObjectType) error {
	if a.jsonMode {
		return printJSON(w, ot)
	}
	fmt.Fprintln(w, ot.Name())
	for _, attr := range ot.Attributes() {
		suffix := ""
		if attr.IsIDPart() {
			suffix = " [id]"
		}
		fmt.Fprintf(w, "  %s%s\n", attr.Label(), suffix)
	}
	if ids := ot.IDParts(); len(ids) > 0 {
		fmt.Fprintf(w, "  id: %s\n", strings.Join(ids, ", "))
	}
	return nil
}
