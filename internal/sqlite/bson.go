package sqlite

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mesh-intelligence/kbase/pkg/types"
)

func encodeDocument(doc types.Document) ([]byte, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding document %q: %w", doc.Name, err)
	}
	return raw, nil
}

// decodeDocument decodes a stored row. Missing arrays come back empty rather
// than nil so decoded documents compare equal to freshly built ones.
func decodeDocument(raw []byte) (types.Document, error) {
	var doc types.Document
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return types.Document{}, fmt.Errorf("decoding document: %w", err)
	}
	if doc.Attributes == nil {
		doc.Attributes = []types.AttributeDocument{}
	}
	if doc.IDParts == nil {
		doc.IDParts = []string{}
	}
	return doc, nil
}
