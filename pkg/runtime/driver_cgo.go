//go:build cgo_sqlite

// Requires CGO_ENABLED=1.
package runtime

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	driverName = "sqlite3"
	driverType = "cgo"
)
