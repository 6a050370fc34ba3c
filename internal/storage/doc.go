// Package storage is the access layer between callers and an embedded
// document engine. A Storage owns exactly one engine connection, opens it on
// the first operation that needs it, and serializes every operation through
// a single mutex because the connection is not safe for concurrent use.
package storage
