// Package types defines the schema model for kbase: data types, attributes,
// object types, their persisted document form, the Store interface, and the
// standard error values shared by every storage backend.
package types
