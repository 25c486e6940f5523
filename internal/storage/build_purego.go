//go:build !cgo || purego
// +build !cgo purego

package storage

// This file is compiled when building without CGO or with the purego tag.
// It uses a pure Go SQLite implementation:
//
//   CGO_ENABLED=0 go build -tags purego ./...
//
// No C compiler required; suitable for cross-compilation and development.

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
