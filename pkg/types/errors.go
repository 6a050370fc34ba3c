package types

import "errors"

// Schema model errors.
var (
	ErrDuplicateAttribute = errors.New("duplicate attribute")
	ErrInvalidDataType    = errors.New("invalid data type")
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidDocument    = errors.New("invalid object type document")
	ErrInvalidInstance    = errors.New("instance does not match object type")
)

// Storage errors.
var (
	ErrConnection    = errors.New("storage connection failed")
	ErrStorageClosed = errors.New("storage is closed")
)

// ConnectionError reports an embedded engine failure during a storage
// operation. It matches ErrConnection with errors.Is.
type ConnectionError struct {
	Op  string // Storage operation, e.g. "create".
	Err error  // Engine error.
}

func (e *ConnectionError) Error() string {
	return "storage " + e.Op + ": " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() []error {
	return []error{ErrConnection, e.Err}
}
