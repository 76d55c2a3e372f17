// Package schema builds and holds the in-memory description of the
// database: every table's name, primary-key columns, plain attribute
// columns, and foreign keys. It is built once when the daemon mounts and
// is read-only for the lifetime of the mount.
package schema

import (
	"context"
	"database/sql"

	"github.com/domelive/vfs2db/internal/queryregistry"
	"github.com/domelive/vfs2db/internal/vfserr"
)

// ForeignKey describes one foreign-key column: From is the column in the
// owning table; ReferencedTable/ReferencedColumn name the target.
type ForeignKey struct {
	From             string
	ReferencedTable  string
	ReferencedColumn string
}

// Table is one table's schema: its column names partitioned into primary
// key, plain attribute, and foreign key, each in schema-discovery order.
type Table struct {
	Name string
	PK   []string
	Attr []string
	FKs  []ForeignKey

	// fksByRefTable groups FKs by ReferencedTable, built once here so
	// readlink resolution for composite foreign keys doesn't rediscover
	// the grouping on every call.
	fksByRefTable map[string][]ForeignKey
}

// FKsReferencing returns every FK of this table whose ReferencedTable is
// refTable, in the order schema discovery returned them. Used to resolve
// composite foreign keys: all columns pointing at the same table must be
// gathered to identify the target row.
func (t *Table) FKsReferencing(refTable string) []ForeignKey {
	return t.fksByRefTable[refTable]
}

// IsForeignKeyColumn reports whether col is a `from` column of some FK on
// this table.
func (t *Table) IsForeignKeyColumn(col string) bool {
	for _, fk := range t.FKs {
		if fk.From == col {
			return true
		}
	}
	return false
}

// HasColumn reports whether col names a PK, attribute, or FK column.
func (t *Table) HasColumn(col string) bool {
	for _, c := range t.PK {
		if c == col {
			return true
		}
	}
	for _, c := range t.Attr {
		if c == col {
			return true
		}
	}
	return t.IsForeignKeyColumn(col)
}

// Columns returns pk, attr, and fk.From columns concatenated in schema
// order, the order readdir emits entries for a row directory.
func (t *Table) Columns() []string {
	cols := make([]string, 0, len(t.PK)+len(t.Attr)+len(t.FKs))
	cols = append(cols, t.PK...)
	cols = append(cols, t.Attr...)
	for _, fk := range t.FKs {
		cols = append(cols, fk.From)
	}
	return cols
}

// Cache is the process-wide, read-only-after-build schema description.
type Cache struct {
	Tables []Table
}

// Table looks up a table by name. Lookup is linear, matching the small
// table counts this system is expected to mount.
func (c *Cache) Table(name string) (*Table, bool) {
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			return &c.Tables[i], true
		}
	}
	return nil, false
}

// tableInfoRow is one row of the SelectTableInfo join: a column's name,
// its pragma_table_info pk ordinal (0 means "not a primary key column",
// matching SQLite's own convention for composite keys), and the FK target
// table/column if any.
type tableInfoRow struct {
	name    string
	pkOrder int64
	fkTable sql.NullString
	fkTo    sql.NullString
}

// Build discovers every user table and its columns, in the order
// SelectTablesName and SelectTableInfo return them, and groups each
// table's FKs by referenced table.
func Build(ctx context.Context, reg *queryregistry.Registry) (*Cache, error) {
	namesStmt, err := reg.Static(queryregistry.SelectTablesName)
	if err != nil {
		return nil, err
	}

	rows, err := namesStmt.QueryContext(ctx)
	if err != nil {
		return nil, vfserr.Wrap(err, vfserr.KindDbError, "listing tables")
	}

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, vfserr.Wrap(err, vfserr.KindDbError, "scanning table name")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, vfserr.Wrap(err, vfserr.KindDbError, "iterating table names")
	}
	rows.Close()

	cache := &Cache{Tables: make([]Table, 0, len(names))}
	for _, name := range names {
		table, err := buildTable(ctx, reg, name)
		if err != nil {
			return nil, err
		}
		cache.Tables = append(cache.Tables, table)
	}
	return cache, nil
}

func buildTable(ctx context.Context, reg *queryregistry.Registry, name string) (Table, error) {
	stmt, err := reg.BuildDynamic(ctx, queryregistry.SelectTableInfo, name, name)
	if err != nil {
		return Table{}, err
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return Table{}, vfserr.Wrap(err, vfserr.KindDbError, "describing table "+name)
	}
	defer rows.Close()

	table := Table{Name: name, fksByRefTable: make(map[string][]ForeignKey)}
	for rows.Next() {
		var info tableInfoRow
		if err := rows.Scan(&info.name, &info.pkOrder, &info.fkTable, &info.fkTo); err != nil {
			return Table{}, vfserr.Wrap(err, vfserr.KindDbError, "scanning column info for "+name)
		}

		switch {
		case info.pkOrder > 0:
			table.PK = append(table.PK, info.name)
		case info.fkTable.Valid:
			fk := ForeignKey{
				From:             info.name,
				ReferencedTable:  info.fkTable.String,
				ReferencedColumn: info.fkTo.String,
			}
			table.FKs = append(table.FKs, fk)
			table.fksByRefTable[fk.ReferencedTable] = append(table.fksByRefTable[fk.ReferencedTable], fk)
		default:
			table.Attr = append(table.Attr, info.name)
		}
	}
	if err := rows.Err(); err != nil {
		return Table{}, vfserr.Wrap(err, vfserr.KindDbError, "iterating column info for "+name)
	}

	return table, nil
}
