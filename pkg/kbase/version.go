// Package kbase holds build metadata for the kbase module.
package kbase

// Version is the release version, overridden at link time with
// -ldflags "-X github.com/mesh-intelligence/kbase/pkg/kbase.Version=...".
var Version = "0.1.0-dev"

// ModulePath is the Go module path.
const ModulePath = "github.com/mesh-intelligence/kbase"
