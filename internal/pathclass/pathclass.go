// Package pathclass classifies a VFS path against the schema cache. It is a
// pure function package: no I/O, no database access — only string handling
// and schema lookups against an already-built schema.Cache.
package pathclass

import (
	"strings"

	"github.com/domelive/vfs2db/internal/schema"
	"github.com/domelive/vfs2db/internal/vfserr"
)

// attrSuffix is the fixed suffix identifying an attribute or symlink file.
const attrSuffix = ".vfs2db"

// Classification tags the kind of entity a path denotes.
type Classification int

const (
	// ClassRoot is "/", listing every table.
	ClassRoot Classification = iota
	// ClassTableDir is "/<table>", listing the table's rowids.
	ClassTableDir
	// ClassRowDir is "/<table>/<rowid>", listing the row's columns.
	ClassRowDir
	// ClassAttrFile is "/<table>/<rowid>/<col>.vfs2db" for a plain column.
	ClassAttrFile
	// ClassSymlinkFile is the same shape, for a foreign-key column.
	ClassSymlinkFile
)

// Tokens is the (table, rowid, column) triple extracted from a path. Any
// field may be empty; Root has all three empty.
type Tokens struct {
	Table  string
	RowID  string
	Column string
}

// Classify parses path against cache and returns its classification and
// extracted tokens, or a *vfserr.Error with Kind KindBadPath if the path
// cannot be classified, or names a nonexistent table or column.
func Classify(cache *schema.Cache, path string) (Classification, Tokens, error) {
	isFile := strings.HasSuffix(path, attrSuffix)
	stripped := path
	if isFile {
		stripped = strings.TrimSuffix(stripped, attrSuffix)
	}
	stripped = strings.TrimSuffix(stripped, "/")
	stripped = strings.TrimPrefix(stripped, "/")

	var components []string
	if stripped != "" {
		components = strings.Split(stripped, "/")
	}

	switch {
	case !isFile && len(components) == 0:
		return ClassRoot, Tokens{}, nil

	case !isFile && len(components) == 1:
		table := components[0]
		if _, ok := cache.Table(table); !ok {
			return 0, Tokens{}, vfserr.Newf(vfserr.KindBadPath, "no such table %q", table)
		}
		return ClassTableDir, Tokens{Table: table}, nil

	case !isFile && len(components) == 2:
		table, rowid := components[0], components[1]
		if _, ok := cache.Table(table); !ok {
			return 0, Tokens{}, vfserr.Newf(vfserr.KindBadPath, "no such table %q", table)
		}
		return ClassRowDir, Tokens{Table: table, RowID: rowid}, nil

	case isFile && len(components) == 3:
		table, rowid, col := components[0], components[1], components[2]
		t, ok := cache.Table(table)
		if !ok {
			return 0, Tokens{}, vfserr.Newf(vfserr.KindBadPath, "no such table %q", table)
		}
		if !t.HasColumn(col) {
			return 0, Tokens{}, vfserr.Newf(vfserr.KindBadPath, "no such column %q in table %q", col, table)
		}
		tokens := Tokens{Table: table, RowID: rowid, Column: col}
		if t.IsForeignKeyColumn(col) {
			return ClassSymlinkFile, tokens, nil
		}
		return ClassAttrFile, tokens, nil

	default:
		return 0, Tokens{}, vfserr.Newf(vfserr.KindBadPath, "path %q does not classify", path)
	}
}
