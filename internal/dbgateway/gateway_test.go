package dbgateway

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/domelive/vfs2db/internal/queryregistry"
	"github.com/domelive/vfs2db/internal/vfserr"
)

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ddl := `
CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT);
CREATE TABLE orders (id INTEGER PRIMARY KEY, customer_id INTEGER REFERENCES customers(id), item TEXT);
INSERT INTO customers (id, name) VALUES (1, 'Ada');
INSERT INTO orders (id, customer_id, item) VALUES (10, 1, 'book');
`
	if _, err := db.Exec(ddl); err != nil {
		t.Fatalf("seeding schema: %v", err)
	}

	reg := queryregistry.New(db)
	if err := reg.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { reg.Close() })

	return New(db, reg)
}

func TestGetAttributeBytesAndSize(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	got, err := g.GetAttributeBytes(ctx, "orders", "10", "item")
	if err != nil {
		t.Fatalf("GetAttributeBytes: %v", err)
	}
	if string(got) != "book" {
		t.Errorf("got %q, want %q", got, "book")
	}

	size, err := g.GetAttributeSize(ctx, "orders", "10", "item")
	if err != nil {
		t.Fatalf("GetAttributeSize: %v", err)
	}
	if size != len("book") {
		t.Errorf("size = %d, want %d", size, len("book"))
	}
}

func TestGetAttributeBytesRowNotFound(t *testing.T) {
	g := newTestGateway(t)
	_, err := g.GetAttributeBytes(context.Background(), "orders", "999", "item")
	if !errors.Is(err, vfserr.ErrRowNotFound) {
		t.Errorf("err = %v, want KindRowNotFound", err)
	}
}

func TestGetAttributeTypeInteger(t *testing.T) {
	g := newTestGateway(t)
	typ, err := g.GetAttributeType(context.Background(), "orders", "10", "id")
	if err != nil {
		t.Fatalf("GetAttributeType: %v", err)
	}
	if typ != TypeInteger {
		t.Errorf("type = %v, want TypeInteger", typ)
	}
}

func TestGetAttributeTypeText(t *testing.T) {
	g := newTestGateway(t)
	typ, err := g.GetAttributeType(context.Background(), "orders", "10", "item")
	if err != nil {
		t.Fatalf("GetAttributeType: %v", err)
	}
	if typ != TypeText {
		t.Errorf("type = %v, want TypeText", typ)
	}
}

func TestUpdateAttributeValueOverwriteAndAppend(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	if err := g.UpdateAttributeValue(ctx, "orders", "10", "item", []byte("pen"), false); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := g.GetAttributeBytes(ctx, "orders", "10", "item")
	if err != nil {
		t.Fatalf("GetAttributeBytes: %v", err)
	}
	if string(got) != "pen" {
		t.Errorf("got %q, want %q", got, "pen")
	}

	if err := g.UpdateAttributeValue(ctx, "orders", "10", "item", []byte("cil"), true); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err = g.GetAttributeBytes(ctx, "orders", "10", "item")
	if err != nil {
		t.Fatalf("GetAttributeBytes: %v", err)
	}
	if string(got) != "pencil" {
		t.Errorf("got %q, want %q", got, "pencil")
	}
}

func TestUpdateAttributeValueRowNotFound(t *testing.T) {
	g := newTestGateway(t)
	err := g.UpdateAttributeValue(context.Background(), "orders", "999", "item", []byte("x"), false)
	if !errors.Is(err, vfserr.ErrRowNotFound) {
		t.Errorf("err = %v, want KindRowNotFound", err)
	}
}

func TestGetTableRowIDs(t *testing.T) {
	g := newTestGateway(t)
	ids, err := g.GetTableRowIDs(context.Background(), "orders")
	if err != nil {
		t.Fatalf("GetTableRowIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != "10" {
		t.Errorf("ids = %v, want [10]", ids)
	}
}

func TestGetRowIDByFKValues(t *testing.T) {
	g := newTestGateway(t)
	rowid, err := g.GetRowIDByFKValues(context.Background(), "customers", []FKValue{
		{Column: "id", Value: []byte("1")},
	})
	if err != nil {
		t.Fatalf("GetRowIDByFKValues: %v", err)
	}
	if rowid != "1" {
		t.Errorf("rowid = %q, want %q", rowid, "1")
	}
}

func TestGetRowIDByFKValuesNotFound(t *testing.T) {
	g := newTestGateway(t)
	_, err := g.GetRowIDByFKValues(context.Background(), "customers", []FKValue{
		{Column: "id", Value: []byte("999")},
	})
	if !errors.Is(err, vfserr.ErrRowNotFound) {
		t.Errorf("err = %v, want KindRowNotFound", err)
	}
}
