package types

import (
	"fmt"
	"slices"
)

// Document is the stored shape of one object type. Fields map one to one to
// the ObjectType model.
type Document struct {
	Name       string              `json:"name" yaml:"name" bson:"name"`
	Attributes []AttributeDocument `json:"attributes" yaml:"attributes" bson:"attributes"`
	IDParts    []string            `json:"id_parts" yaml:"id_parts" bson:"id_parts"`
}

// AttributeDocument is the stored shape of one attribute. DataType holds the
// data type name.
type AttributeDocument struct {
	Name     string `json:"name" yaml:"name" bson:"name"`
	DataType string `json:"data_type" yaml:"data_type" bson:"data_type"`
	IsIDPart bool   `json:"is_id_part" yaml:"is_id_part" bson:"is_id_part"`
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	return Document{
		Name:       d.Name,
		Attributes: slices.Clone(d.Attributes),
		IDParts:    slices.Clone(d.IDParts),
	}
}

// ObjectTypeFromDocument rebuilds an object type from its stored form.
// Attributes are replayed through AddAttribute, so the model invariants hold
// for every restored value.
// Returns an error wrapping ErrInvalidDocument if the name is empty, an
// attribute name repeats, a data type is unknown, or the stored identity
// parts disagree with the attribute flags.
func ObjectTypeFromDocument(doc Document) (*ObjectType, error) {
	if doc.Name == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, ErrInvalidName)
	}
	ot := NewObjectType(doc.Name)
	for _, ad := range doc.Attributes {
		dt, err := ParseDataType(ad.DataType)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidDocument, doc.Name, err)
		}
		if err := ot.AddAttribute(ad.Name, dt, ad.IsIDPart); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
	}
	if !slices.Equal(ot.idParts, doc.IDParts) {
		return nil, fmt.Errorf("%w: %q: id_parts %v do not match attributes %v",
			ErrInvalidDocument, doc.Name, doc.IDParts, ot.idParts)
	}
	return ot, nil
}
