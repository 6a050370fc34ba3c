package types

import (
	"encoding/json"
	"fmt"
	"slices"
)

// ObjectType is a named schema describing a kind of entity. Attribute names
// are unique within a type and attributes keep their insertion order. The
// name is the storage key.
type ObjectType struct {
	name       string
	attributes []Attribute
	idParts    []string
}

// NewObjectType returns an object type with the given name and no
// attributes.
func NewObjectType(name string) *ObjectType {
	return &ObjectType{
		name:       name,
		attributes: []Attribute{},
		idParts:    []string{},
	}
}

// Name returns the object type name.
func (o *ObjectType) Name() string { return o.name }

// Attributes returns a copy of the attributes in insertion order.
func (o *ObjectType) Attributes() []Attribute {
	return slices.Clone(o.attributes)
}

// IDParts returns a copy of the names of the attributes flagged as identity
// parts, in insertion order.
func (o *ObjectType) IDParts() []string {
	return slices.Clone(o.idParts)
}

// GetAttribute returns the attribute with exactly the given name.
func (o *ObjectType) GetAttribute(name string) (Attribute, bool) {
	for _, a := range o.attributes {
		if a.name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// HasAttribute reports whether an attribute with exactly the given name
// exists.
func (o *ObjectType) HasAttribute(name string) bool {
	_, ok := o.GetAttribute(name)
	return ok
}

// AttributeIsAbsent reports whether no attribute with exactly the given name
// exists.
func (o *ObjectType) AttributeIsAbsent(name string) bool {
	return !o.HasAttribute(name)
}

// AddAttribute appends an attribute to the type. Names are compared
// case-sensitively. On failure the type is left unchanged.
// Returns an error wrapping ErrInvalidDataType if dataType is not one of
// the declared data types, or ErrDuplicateAttribute if the name is taken.
func (o *ObjectType) AddAttribute(name string, dataType DataType, isIDPart bool) error {
	if !dataType.IsValid() {
		return fmt.Errorf("%w: %s for %q on %q", ErrInvalidDataType, dataType, name, o.name)
	}
	if !o.AttributeIsAbsent(name) {
		return fmt.Errorf("%w: %q on %q", ErrDuplicateAttribute, name, o.name)
	}
	o.attributes = append(o.attributes, NewAttribute(name, dataType, isIDPart))
	if isIDPart {
		o.idParts = append(o.idParts, name)
	}
	return nil
}

// Equal reports whether both object types have the same name, the same
// attributes in the same order, and the same identity parts.
func (o *ObjectType) Equal(other *ObjectType) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.name == other.name &&
		slices.Equal(o.attributes, other.attributes) &&
		slices.Equal(o.idParts, other.idParts)
}

// Labels renders each attribute as "<name>: <data type>" in insertion order.
func (o *ObjectType) Labels() []string {
	labels := make([]string, 0, len(o.attributes))
	for _, a := range o.attributes {
		labels = append(labels, a.Label())
	}
	return labels
}

// Document returns the persisted form of the object type.
func (o *ObjectType) Document() Document {
	doc := Document{
		Name:       o.name,
		Attributes: make([]AttributeDocument, 0, len(o.attributes)),
		IDParts:    slices.Clone(o.idParts),
	}
	for _, a := range o.attributes {
		doc.Attributes = append(doc.Attributes, AttributeDocument{
			Name:     a.name,
			DataType: a.dataType.String(),
			IsIDPart: a.isIDPart,
		})
	}
	return doc
}

// MarshalJSON encodes the object type as its Document.
func (o *ObjectType) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Document())
}

// UnmarshalJSON decodes a Document into the object type.
func (o *ObjectType) UnmarshalJSON(data []byte) error {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	restored, err := ObjectTypeFromDocument(doc)
	if err != nil {
		return err
	}
	*o = *restored
	return nil
}
