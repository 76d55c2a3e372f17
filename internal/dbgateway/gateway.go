// Package dbgateway is the only package that issues SQL against table data
// (schema discovery runs in internal/schema). It exposes typed operations
// over a queryregistry.Registry and never lets a raw database error escape
// past it: every failure is reported as a *vfserr.Error.
package dbgateway

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/domelive/vfs2db/internal/queryregistry"
	"github.com/domelive/vfs2db/internal/vfserr"
)

// TypeCode is the storage class of a column's current value.
type TypeCode string

// The storage classes SQLite itself recognizes, plus Undefined for a value
// the driver returned in a shape none of them cover.
const (
	TypeText      TypeCode = "TEXT"
	TypeInteger   TypeCode = "INTEGER"
	TypeFloat     TypeCode = "FLOAT"
	TypeBlob      TypeCode = "BLOB"
	TypeNull      TypeCode = "NULL"
	TypeUndefined TypeCode = "UNDEFINED"
)

// Gateway is the database access layer. It wraps a queryregistry.Registry
// for statement management and a *sql.DB for one-off FK-resolution queries
// whose identifier shape isn't known until a readlink call is in flight.
type Gateway struct {
	db  *sql.DB
	reg *queryregistry.Registry
}

// New builds a Gateway over db and reg. reg must already be initialized.
func New(db *sql.DB, reg *queryregistry.Registry) *Gateway {
	return &Gateway{db: db, reg: reg}
}

// fetchRaw runs SelectAttribute for (table, rowid, col) and returns the
// driver's native representation of the value, or KindRowNotFound if the
// row does not exist.
func (g *Gateway) fetchRaw(ctx context.Context, table, rowid, col string) (interface{}, error) {
	stmt, err := g.reg.BuildDynamic(ctx, queryregistry.SelectAttribute, table, col)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var value interface{}
	err = stmt.QueryRowContext(ctx, rowid).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, vfserr.Newf(vfserr.KindRowNotFound, "no row %s in table %s", rowid, table)
	}
	if err != nil {
		return nil, vfserr.Wrap(err, vfserr.KindDbError, fmt.Sprintf("reading %s.%s for rowid %s", table, col, rowid))
	}
	return value, nil
}

// toBytes renders a fetched value the way it would appear as file content:
// NULL becomes an empty buffer, numbers render as their decimal text, BLOB
// and TEXT pass through as-is.
func toBytes(value interface{}) []byte {
	switch v := value.(type) {
	case nil:
		return []byte{}
	case []byte:
		return v
	case string:
		return []byte(v)
	case int64:
		return []byte(strconv.FormatInt(v, 10))
	case float64:
		return []byte(strconv.FormatFloat(v, 'g', -1, 64))
	default:
		return []byte(fmt.Sprintf("%v", v))
	}
}

func typeCodeOf(value interface{}) TypeCode {
	switch value.(type) {
	case nil:
		return TypeNull
	case []byte:
		return TypeBlob
	case string:
		return TypeText
	case int64:
		return TypeInteger
	case float64:
		return TypeFloat
	default:
		return TypeUndefined
	}
}

// GetAttributeSize returns the byte length of table.col for rowid.
func (g *Gateway) GetAttributeSize(ctx context.Context, table, rowid, col string) (int, error) {
	value, err := g.fetchRaw(ctx, table, rowid, col)
	if err != nil {
		return 0, err
	}
	return len(toBytes(value)), nil
}

// GetAttributeBytes returns a fresh copy of table.col's value for rowid.
func (g *Gateway) GetAttributeBytes(ctx context.Context, table, rowid, col string) ([]byte, error) {
	value, err := g.fetchRaw(ctx, table, rowid, col)
	if err != nil {
		return nil, err
	}
	raw := toBytes(value)
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// GetAttributeType returns the storage type of table.col's current value.
func (g *Gateway) GetAttributeType(ctx context.Context, table, rowid, col string) (TypeCode, error) {
	value, err := g.fetchRaw(ctx, table, rowid, col)
	if err != nil {
		return "", err
	}
	return typeCodeOf(value), nil
}

// UpdateAttributeValue overwrites table.col for rowid with buf, or appends
// buf to the existing text value when append is true.
func (g *Gateway) UpdateAttributeValue(ctx context.Context, table, rowid, col string, buf []byte, doAppend bool) error {
	id := queryregistry.UpdateAttribute
	if doAppend {
		id = queryregistry.UpdateAttributeAppend
	}

	stmt, err := g.reg.BuildDynamic(ctx, id, table, col)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, buf, rowid)
	if err != nil {
		return vfserr.Wrap(err, vfserr.KindDbError, fmt.Sprintf("updating %s.%s for rowid %s", table, col, rowid))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return vfserr.Wrap(err, vfserr.KindDbError, "checking rows affected")
	}
	if n == 0 {
		return vfserr.Newf(vfserr.KindRowNotFound, "no row %s in table %s", rowid, table)
	}
	return nil
}

// GetTableRowIDs returns every rowid in table, in database order.
func (g *Gateway) GetTableRowIDs(ctx context.Context, table string) ([]string, error) {
	stmt, err := g.reg.BuildDynamic(ctx, queryregistry.SelectTableRowids, table)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, vfserr.Wrap(err, vfserr.KindDbError, "listing rowids for "+table)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, vfserr.Wrap(err, vfserr.KindDbError, "scanning rowid for "+table)
		}
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	if err := rows.Err(); err != nil {
		return nil, vfserr.Wrap(err, vfserr.KindDbError, "iterating rowids for "+table)
	}
	return ids, nil
}

// FKValue pairs a referenced column name with the value a candidate row
// must match in it.
type FKValue struct {
	Column string
	Value  []byte
}

// GetRowIDByFKValues returns the rowid in targetTable whose columns named
// by each FKValue.Column equal the corresponding FKValue.Value. Used by
// readlink to resolve composite foreign keys: every FK column sharing a
// referenced table is matched simultaneously against one candidate row.
func (g *Gateway) GetRowIDByFKValues(ctx context.Context, targetTable string, values []FKValue) (string, error) {
	if len(values) == 0 {
		return "", vfserr.Newf(vfserr.KindBadPath, "no foreign key columns given for table %s", targetTable)
	}

	conds := make([]string, len(values))
	args := make([]interface{}, len(values))
	for i, v := range values {
		conds[i] = fmt.Sprintf("`%s` = ?", v.Column)
		// Bind as text, not raw bytes: SQLite applies NUMERIC affinity
		// conversion when a TEXT value is compared against an
		// INTEGER/NUMERIC column, but never converts a BLOB. Since FK
		// values are rowid-derived, the stored side is usually
		// INTEGER, so binding text here is what makes the comparison
		// match rather than silently finding nothing.
		args[i] = string(v.Value)
	}
	query := fmt.Sprintf("SELECT rowid FROM `%s` WHERE %s", targetTable, strings.Join(conds, " AND "))

	var rowid int64
	err := g.db.QueryRowContext(ctx, query, args...).Scan(&rowid)
	if err == sql.ErrNoRows {
		return "", vfserr.Newf(vfserr.KindRowNotFound, "no row in %s matching foreign key values", targetTable)
	}
	if err != nil {
		return "", vfserr.Wrap(err, vfserr.KindDbError, "resolving foreign key target row in "+targetTable)
	}
	return strconv.FormatInt(rowid, 10), nil
}
