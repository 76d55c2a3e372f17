// Package translator implements the pathfs.FileSystem that services every
// VFS upcall: it classifies the incoming path, dispatches to the database
// gateway, and maps results (and errors) back onto FUSE return values.
package translator

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/hanwen/go-fuse/v2/fuse/nodefs"
	"github.com/hanwen/go-fuse/v2/fuse/pathfs"

	"github.com/domelive/vfs2db/internal/dbgateway"
	"github.com/domelive/vfs2db/internal/pathclass"
	"github.com/domelive/vfs2db/internal/queryregistry"
	"github.com/domelive/vfs2db/internal/schema"
	"github.com/domelive/vfs2db/internal/sqlitedriver"
	"github.com/domelive/vfs2db/internal/vfserr"
	"github.com/domelive/vfs2db/internal/vfslog"
)

// Translator is the pathfs.FileSystem that backs one mounted database. A
// single mutex guards every entry point: the gateway holds dynamic
// prepared statements that are not safe for concurrent use, and the spec
// this daemon implements requires program-order execution per path.
type Translator struct {
	pathfs.FileSystem

	mu sync.Mutex

	dbPath    string
	sessionID uuid.UUID
	log       *vfslog.Logger

	db      *sql.DB
	reg     *queryregistry.Registry
	cache   *schema.Cache
	gateway *dbgateway.Gateway
}

// New builds a Translator for the database at dbPath. Call Init before
// mounting.
func New(dbPath string, log *vfslog.Logger) *Translator {
	return &Translator{
		FileSystem: pathfs.NewDefaultFileSystem(),
		dbPath:     dbPath,
		sessionID:  uuid.New(),
		log:        log,
	}
}

// SessionID returns the uuid tagging this mount's log lines.
func (t *Translator) SessionID() uuid.UUID {
	return t.sessionID
}

// String identifies this filesystem in go-fuse debug output.
func (t *Translator) String() string {
	return fmt.Sprintf("vfs2db(%s)", t.dbPath)
}

// Init opens the database, prepares the query registry, and builds the
// schema cache. On any failure the mount must not proceed.
func (t *Translator) Init(ctx context.Context) error {
	db, err := sqlitedriver.Open(t.dbPath)
	if err != nil {
		return vfserr.Wrap(err, vfserr.KindDbError, "opening database "+t.dbPath)
	}

	reg := queryregistry.New(db)
	if err := reg.Init(ctx); err != nil {
		db.Close()
		return err
	}

	cache, err := schema.Build(ctx, reg)
	if err != nil {
		reg.Close()
		db.Close()
		return err
	}

	t.db = db
	t.reg = reg
	t.cache = cache
	t.gateway = dbgateway.New(db, reg)

	t.log.Info("schema cache built", "session", t.sessionID, "tables", len(cache.Tables), "db", t.dbPath)
	return nil
}

// Close releases the query registry's statements and closes the database.
// Idempotent.
func (t *Translator) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.reg != nil {
		_ = t.reg.Close()
		t.reg = nil
	}
	if t.db != nil {
		err := t.db.Close()
		t.db = nil
		t.log.Info("database closed", "session", t.sessionID)
		return err
	}
	return nil
}

func toVFSPath(name string) string {
	if name == "" {
		return "/"
	}
	return "/" + name
}

// GetAttr services stat(2): directory classes get a fixed 0755 directory
// mode, file classes get their column's current byte length as size and
// classify as a regular file or a symlink depending on whether the column
// is a foreign key.
func (t *Translator) GetAttr(name string, ctx *fuse.Context) (*fuse.Attr, fuse.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	path := toVFSPath(name)
	class, tokens, err := pathclass.Classify(t.cache, path)
	if err != nil {
		t.log.Debug("getattr", "path", path, "err", err)
		return nil, vfserr.ToStatus(err)
	}

	now := uint64(time.Now().Unix())
	owner := fuse.Owner{Uid: ctx.Owner.Uid, Gid: ctx.Owner.Gid}

	switch class {
	case pathclass.ClassRoot, pathclass.ClassTableDir, pathclass.ClassRowDir:
		t.log.Debug("getattr", "path", path, "class", "dir")
		return &fuse.Attr{
			Mode:  fuse.S_IFDIR | 0755,
			Nlink: 2,
			Mtime: now, Ctime: now, Atime: now,
			Owner: owner,
		}, fuse.OK

	case pathclass.ClassAttrFile, pathclass.ClassSymlinkFile:
		size, err := t.gateway.GetAttributeSize(context.Background(), tokens.Table, tokens.RowID, tokens.Column)
		if err != nil {
			t.log.Debug("getattr", "path", path, "err", err)
			return nil, vfserr.ToStatus(err)
		}
		mode := uint32(fuse.S_IFREG | 0644)
		if class == pathclass.ClassSymlinkFile {
			mode = fuse.S_IFLNK | 0644
		}
		t.log.Debug("getattr", "path", path, "class", "file", "size", size)
		return &fuse.Attr{
			Mode:  mode,
			Size:  uint64(size),
			Nlink: 1,
			Mtime: now, Ctime: now, Atime: now,
			Owner: owner,
		}, fuse.OK

	default:
		return nil, fuse.ENOENT
	}
}

// GetXAttr services getxattr(2) for "user.type" on file classes only. The
// two-phase size-query protocol POSIX requires (probe with a zero-length
// buffer, then fetch) is handled by go-fuse's raw bridge from the full
// value this method returns; this layer does not see the caller's buffer
// size at all.
func (t *Translator) GetXAttr(name, attribute string, ctx *fuse.Context) ([]byte, fuse.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	path := toVFSPath(name)
	class, tokens, err := pathclass.Classify(t.cache, path)
	if err != nil {
		return nil, vfserr.ToStatus(err)
	}
	if class != pathclass.ClassAttrFile && class != pathclass.ClassSymlinkFile {
		return nil, vfserr.ToStatus(vfserr.New(vfserr.KindNoData, "xattrs are only defined on attribute files"))
	}
	if attribute != "user.type" {
		return nil, vfserr.ToStatus(vfserr.New(vfserr.KindNoData, "only user.type is defined"))
	}

	typ, err := t.gateway.GetAttributeType(context.Background(), tokens.Table, tokens.RowID, tokens.Column)
	if err != nil {
		return nil, vfserr.ToStatus(err)
	}
	t.log.Debug("getxattr", "path", path, "type", typ)
	return []byte(typ), fuse.OK
}

// OpenDir services readdir(2). The FUSE kernel layer synthesizes "." and
// ".." itself; this method returns only the real entries.
func (t *Translator) OpenDir(name string, ctx *fuse.Context) ([]fuse.DirEntry, fuse.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	path := toVFSPath(name)
	class, tokens, err := pathclass.Classify(t.cache, path)
	if err != nil {
		return nil, vfserr.ToStatus(err)
	}

	var entries []fuse.DirEntry
	switch class {
	case pathclass.ClassRoot:
		for _, tbl := range t.cache.Tables {
			entries = append(entries, fuse.DirEntry{Name: tbl.Name, Mode: fuse.S_IFDIR})
		}

	case pathclass.ClassTableDir:
		ids, err := t.gateway.GetTableRowIDs(context.Background(), tokens.Table)
		if err != nil {
			return nil, vfserr.ToStatus(err)
		}
		for _, id := range ids {
			entries = append(entries, fuse.DirEntry{Name: id, Mode: fuse.S_IFDIR})
		}

	case pathclass.ClassRowDir:
		table, ok := t.cache.Table(tokens.Table)
		if !ok {
			return nil, fuse.ENOENT
		}
		for _, col := range table.Columns() {
			entries = append(entries, fuse.DirEntry{Name: col + attrSuffix, Mode: fuse.S_IFREG})
		}

	default:
		return nil, fuse.ENOENT
	}

	t.log.Debug("readdir", "path", path, "entries", len(entries))
	return entries, fuse.OK
}

// Open services read(2)/write(2) by returning a small nodefs.File whose
// Read/Write delegate straight to the gateway — no content is cached
// between calls.
func (t *Translator) Open(name string, flags uint32, ctx *fuse.Context) (nodefs.File, fuse.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	path := toVFSPath(name)
	class, tokens, err := pathclass.Classify(t.cache, path)
	if err != nil {
		return nil, vfserr.ToStatus(err)
	}
	if class != pathclass.ClassAttrFile && class != pathclass.ClassSymlinkFile {
		return nil, vfserr.ToStatus(vfserr.New(vfserr.KindBadPath, "not a file"))
	}

	t.log.Debug("open", "path", path)
	return newAttrFile(t, tokens.Table, tokens.RowID, tokens.Column), fuse.OK
}

// Create is a silent no-op success: this system never inserts rows through
// the filesystem, a deliberate policy choice recorded in DESIGN.md rather
// than an unimplemented feature.
func (t *Translator) Create(name string, flags uint32, mode uint32, ctx *fuse.Context) (nodefs.File, fuse.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.log.Debug("create (no-op)", "path", toVFSPath(name))
	return nodefs.NewDefaultFile(), fuse.OK
}

// Readlink resolves a foreign-key column's symlink target. Every FK on the
// row's table that shares the chosen FK's referenced table is gathered
// (not just the one column), because the referenced table may have a
// composite primary key: a single column value is not always enough to
// identify the target row.
func (t *Translator) Readlink(name string, ctx *fuse.Context) (string, fuse.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	path := toVFSPath(name)
	class, tokens, err := pathclass.Classify(t.cache, path)
	if err != nil {
		return "", vfserr.ToStatus(err)
	}
	if class != pathclass.ClassSymlinkFile {
		return "", vfserr.ToStatus(vfserr.New(vfserr.KindBadPath, "not a symlink"))
	}

	table, ok := t.cache.Table(tokens.Table)
	if !ok {
		return "", fuse.ENOENT
	}

	var chosen *schema.ForeignKey
	for i := range table.FKs {
		if table.FKs[i].From == tokens.Column {
			chosen = &table.FKs[i]
			break
		}
	}
	if chosen == nil {
		return "", vfserr.ToStatus(vfserr.New(vfserr.KindBadPath, "column is not a foreign key"))
	}

	group := table.FKsReferencing(chosen.ReferencedTable)

	ctx2 := context.Background()
	values := make([]dbgateway.FKValue, len(group))
	for i, fk := range group {
		v, err := t.gateway.GetAttributeBytes(ctx2, tokens.Table, tokens.RowID, fk.From)
		if err != nil {
			return "", vfserr.ToStatus(err)
		}
		values[i] = dbgateway.FKValue{Column: fk.ReferencedColumn, Value: v}
	}

	targetRowID, err := t.gateway.GetRowIDByFKValues(ctx2, chosen.ReferencedTable, values)
	if err != nil {
		return "", vfserr.ToStatus(err)
	}

	target := fmt.Sprintf("../../%s/%s/%s.vfs2db", chosen.ReferencedTable, targetRowID, chosen.ReferencedColumn)
	t.log.Debug("readlink", "path", path, "target", target)
	return target, fuse.OK
}

const attrSuffix = ".vfs2db"
