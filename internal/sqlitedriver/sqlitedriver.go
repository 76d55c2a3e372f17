// Package sqlitedriver opens the database/sql connection vfs2dbd mounts,
// supporting both the pure Go modernc.org/sqlite driver (default) and the
// CGO mattn/go-sqlite3 driver (opt-in via the cgo_sqlite build tag).
//
// Build modes:
//   - Default: pure Go modernc.org/sqlite
//   - CGO (-tags cgo_sqlite): mattn/go-sqlite3
//
// Use Open instead of sql.Open directly so the correct driver name is
// always used regardless of build mode.
package sqlitedriver

import "database/sql"

// DriverName returns the database/sql driver name registered for this
// build mode.
func DriverName() string {
	return driverName
}

// DriverType identifies the underlying implementation: "cgo" or "purego".
func DriverType() string {
	return driverType
}

// IsCGO reports whether the CGO mattn/go-sqlite3 driver is in use.
func IsCGO() bool {
	return driverType == "cgo"
}

// Open opens the database file at path using the build's driver, with
// foreign key enforcement turned on so schema discovery and readlink
// resolution see accurate pragma_foreign_key_list results. PRAGMA is issued
// as a statement after open rather than via DSN query parameters, since the
// two drivers accept different DSN pragma syntaxes.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
