//go:build !cgo_sqlite

// Pure Go SQLite driver using modernc.org/sqlite. This is the default when
// CGO is disabled or the cgo_sqlite build tag is not set.
package sqlitedriver

import (
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

const (
	driverName = "sqlite"
	driverType = "purego"
)
