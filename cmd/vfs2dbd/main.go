// vfs2dbd mounts a SQLite database as a read/write FUSE filesystem: tables
// become directories, rows become rowid-named subdirectories, and columns
// become files (or symlinks, for foreign keys).
package main

import (
	"github.com/domelive/vfs2db/cmd/vfs2dbd/core"
)

func main() {
	core.Execute()
}
