package types

// Attribute is a named, typed field of an object type. Attributes are
// immutable; an object type owns its attributes exclusively.
type Attribute struct {
	name     string
	dataType DataType
	isIDPart bool
}

// NewAttribute returns an attribute with the given name, type, and identity
// flag.
func NewAttribute(name string, dataType DataType, isIDPart bool) Attribute {
	return Attribute{name: name, dataType: dataType, isIDPart: isIDPart}
}

// Name returns the attribute name.
func (a Attribute) Name() string { return a.name }

// DataType returns the attribute's data type.
func (a Attribute) DataType() DataType { return a.dataType }

// IsIDPart reports whether the attribute contributes to the object type's
// identity.
func (a Attribute) IsIDPart() bool { return a.isIDPart }

// Label renders the attribute as "<name>: <data type>".
func (a Attribute) Label() string {
	return a.name + ": " + a.dataType.String()
}
