package types

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// JSONSchema describes instances of the object type: an object whose
// properties are the attributes, with every identity part required and no
// other properties allowed.
func (o *ObjectType) JSONSchema() *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Title:                o.name,
		Type:                 "object",
		Properties:           make(map[string]*jsonschema.Schema, len(o.attributes)),
		Required:             o.IDParts(),
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
	for _, a := range o.attributes {
		schema.Properties[a.name] = &jsonschema.Schema{Type: a.dataType.jsonSchemaType()}
	}
	return schema
}

// ValidateInstance checks an entity instance against JSONSchema. The
// instance may be raw JSON ([]byte or string) or any value that encodes to a
// JSON object.
// Returns an error wrapping ErrInvalidInstance when validation fails.
func (o *ObjectType) ValidateInstance(instance any) error {
	var raw []byte
	switch v := instance.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInstance, err)
		}
		raw = b
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInstance, err)
	}

	resolved, err := o.JSONSchema().Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return fmt.Errorf("resolve schema for %q: %w", o.name, err)
	}
	if err := resolved.Validate(data); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInstance, err)
	}
	return nil
}
