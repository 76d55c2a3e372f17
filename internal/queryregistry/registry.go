// Package queryregistry owns every SQL string the daemon issues and the
// long-lived prepared statements backing the static queries. Dynamic
// queries carry identifier slots (table/column names) that must be
// rendered and re-prepared per call; only the static queries are prepared
// once at startup and reused by rebinding fresh parameters.
package queryregistry

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/domelive/vfs2db/internal/vfserr"
)

// QueryID names one of the registry's recognized query templates.
type QueryID int

const (
	// SelectTablesName lists every user table in the database. Static.
	SelectTablesName QueryID = iota
	// SelectTableInfo joins pragma_table_info with pragma_foreign_key_list
	// for one table. Dynamic: takes the table name twice.
	SelectTableInfo
	// SelectAttribute reads one column's value for one rowid. Dynamic:
	// takes (table, column).
	SelectAttribute
	// UpdateAttribute overwrites one column's value for one rowid.
	// Dynamic: takes (table, column).
	UpdateAttribute
	// UpdateAttributeAppend appends to one column's existing text value.
	// Dynamic: takes (table, column).
	UpdateAttributeAppend
	// SelectTableRowids lists every rowid in a table, in database order.
	// Dynamic: takes (table).
	SelectTableRowids
)

const selectTablesNameSQL = `SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'`

const selectTableInfoTpl = "SELECT ti.name, ti.pk, fk.\"table\", fk.\"to\" " +
	"FROM pragma_table_info('%s') ti " +
	"LEFT JOIN pragma_foreign_key_list('%s') fk ON fk.\"from\" = ti.name"

// Argument order for every dynamic template below is always (table, column)
// — table first, matching SelectTableInfo's two table-name slots — using
// explicit argument indices so this holds even where a slot repeats.
const selectAttributeTpl = "SELECT `%[2]s` FROM `%[1]s` WHERE rowid = ?"
const updateAttributeTpl = "UPDATE `%[1]s` SET `%[2]s` = ? WHERE rowid = ?"
const updateAttributeAppendTpl = "UPDATE `%[1]s` SET `%[2]s` = `%[2]s` || ? WHERE rowid = ?"
const selectTableRowidsTpl = "SELECT rowid FROM `%s`"

// Registry owns the daemon's prepared statements over a single *sql.DB.
type Registry struct {
	db     *sql.DB
	static map[QueryID]*sql.Stmt
}

// New wraps db; call Init before use.
func New(db *sql.DB) *Registry {
	return &Registry{db: db, static: make(map[QueryID]*sql.Stmt)}
}

// Init prepares every static query. Dynamic queries require no action here.
func (r *Registry) Init(ctx context.Context) error {
	stmt, err := r.db.PrepareContext(ctx, selectTablesNameSQL)
	if err != nil {
		return vfserr.Wrap(err, vfserr.KindDbError, "preparing SELECT_TABLES_NAME")
	}
	r.static[SelectTablesName] = stmt
	return nil
}

// Static returns the prepared statement for a static QueryID. The
// statement is owned by the registry; callers must not close it.
// database/sql statements are safe to rebind fresh parameters against on
// every Query/Exec call, so there is no separate reset/clear-bindings step.
func (r *Registry) Static(id QueryID) (*sql.Stmt, error) {
	stmt, ok := r.static[id]
	if !ok {
		return nil, vfserr.Newf(vfserr.KindDbError, "query %d is not a static query or registry not initialized", id)
	}
	return stmt, nil
}

// BuildDynamic renders the template for id with args substituted into its
// identifier slots, then prepares and returns the statement. The caller is
// responsible for closing it — the registry does not track it.
func (r *Registry) BuildDynamic(ctx context.Context, id QueryID, args ...string) (*sql.Stmt, error) {
	tpl, wantArgs, err := templateFor(id)
	if err != nil {
		return nil, err
	}
	if len(args) != wantArgs {
		return nil, vfserr.Newf(vfserr.KindDbError, "query %d expects %d identifier arguments, got %d", id, wantArgs, len(args))
	}

	anyArgs := make([]interface{}, len(args))
	for i, a := range args {
		anyArgs[i] = a
	}
	query := fmt.Sprintf(tpl, anyArgs...)

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, vfserr.Wrap(err, vfserr.KindDbError, fmt.Sprintf("preparing dynamic query %d", id))
	}
	return stmt, nil
}

func templateFor(id QueryID) (string, int, error) {
	switch id {
	case SelectTableInfo:
		return selectTableInfoTpl, 2, nil
	case SelectAttribute:
		return selectAttributeTpl, 2, nil
	case UpdateAttribute:
		return updateAttributeTpl, 2, nil
	case UpdateAttributeAppend:
		return updateAttributeAppendTpl, 2, nil
	case SelectTableRowids:
		return selectTableRowidsTpl, 1, nil
	default:
		return "", 0, vfserr.Newf(vfserr.KindDbError, "query %d is not a dynamic query", id)
	}
}

// Close finalizes every statement the registry owns.
func (r *Registry) Close() error {
	var first error
	for id, stmt := range r.static {
		if err := stmt.Close(); err != nil && first == nil {
			first = vfserr.Wrap(err, vfserr.KindDbError, fmt.Sprintf("closing static query %d", id))
		}
	}
	return first
}
