package types

import "fmt"

// DataType is the primitive kind of an attribute. The set is closed; the zero
// value is Bool.
type DataType int

// Data types in declaration order.
const (
	Bool DataType = iota
	Int
	Float
	String
)

var dataTypeNames = [...]string{
	Bool:   "Bool",
	Int:    "Int",
	Float:  "Float",
	String: "String",
}

// DataTypes returns every data type in declaration order.
func DataTypes() []DataType {
	return []DataType{Bool, Int, Float, String}
}

// DataTypeNames returns the names of every data type in declaration order.
func DataTypeNames() []string {
	names := make([]string, 0, len(dataTypeNames))
	for _, dt := range DataTypes() {
		names = append(names, dt.String())
	}
	return names
}

// ParseDataType returns the data type with the given name. Names are
// case-sensitive and match String.
// Returns ErrInvalidDataType if the name is not recognized.
func ParseDataType(name string) (DataType, error) {
	for i, n := range dataTypeNames {
		if n == name {
			return DataType(i), nil
		}
	}
	return Bool, fmt.Errorf("%w: %q", ErrInvalidDataType, name)
}

// IsValid reports whether dt is one of the declared data types.
func (dt DataType) IsValid() bool {
	return dt >= Bool && dt <= String
}

func (dt DataType) String() string {
	if !dt.IsValid() {
		return fmt.Sprintf("DataType(%d)", int(dt))
	}
	return dataTypeNames[dt]
}

// MarshalText encodes the data type by name.
func (dt DataType) MarshalText() ([]byte, error) {
	if !dt.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDataType, int(dt))
	}
	return []byte(dataTypeNames[dt]), nil
}

// UnmarshalText decodes a data type name.
func (dt *DataType) UnmarshalText(text []byte) error {
	parsed, err := ParseDataType(string(text))
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

// jsonSchemaType maps the data type to its JSON Schema instance type.
func (dt DataType) jsonSchemaType() string {
	switch dt {
	case Int:
		return "integer"
	case Float:
		return "number"
	case String:
		return "string"
	default:
		return "boolean"
	}
}
