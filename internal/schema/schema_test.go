package schema

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/domelive/vfs2db/internal/queryregistry"
)

func newTestRegistry(t *testing.T, ddl string) (*sql.DB, *queryregistry.Registry) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(ddl); err != nil {
		t.Fatalf("seeding schema: %v", err)
	}

	reg := queryregistry.New(db)
	if err := reg.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { reg.Close() })

	return db, reg
}

func TestBuildClassifiesColumns(t *testing.T) {
	_, reg := newTestRegistry(t, `
CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT);
CREATE TABLE orders (id INTEGER PRIMARY KEY, customer_id INTEGER REFERENCES customers(id), item TEXT);
`)

	cache, err := Build(context.Background(), reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(cache.Tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(cache.Tables))
	}

	orders, ok := cache.Table("orders")
	if !ok {
		t.Fatalf("orders table not found")
	}
	if len(orders.PK) != 1 || orders.PK[0] != "id" {
		t.Errorf("orders.PK = %v, want [id]", orders.PK)
	}
	if len(orders.Attr) != 1 || orders.Attr[0] != "item" {
		t.Errorf("orders.Attr = %v, want [item]", orders.Attr)
	}
	if len(orders.FKs) != 1 || orders.FKs[0].From != "customer_id" || orders.FKs[0].ReferencedTable != "customers" || orders.FKs[0].ReferencedColumn != "id" {
		t.Errorf("orders.FKs = %+v, want one FK customer_id -> customers.id", orders.FKs)
	}
	if !orders.IsForeignKeyColumn("customer_id") {
		t.Errorf("expected customer_id to classify as a foreign key column")
	}
	if orders.IsForeignKeyColumn("item") {
		t.Errorf("expected item to not classify as a foreign key column")
	}
}

func TestFKsReferencingGroupsCompositeKeys(t *testing.T) {
	_, reg := newTestRegistry(t, `
CREATE TABLE regions (country TEXT, code TEXT, name TEXT, PRIMARY KEY (country, code));
CREATE TABLE stores (
	id INTEGER PRIMARY KEY,
	country TEXT,
	code TEXT,
	FOREIGN KEY (country, code) REFERENCES regions (country, code)
);
`)

	cache, err := Build(context.Background(), reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	stores, ok := cache.Table("stores")
	if !ok {
		t.Fatalf("stores table not found")
	}

	grouped := stores.FKsReferencing("regions")
	if len(grouped) != 2 {
		t.Fatalf("got %d FKs referencing regions, want 2: %+v", len(grouped), grouped)
	}

	regions, ok := cache.Table("regions")
	if !ok {
		t.Fatalf("regions table not found")
	}
	if len(regions.PK) != 2 {
		t.Errorf("regions.PK = %v, want 2 composite key columns", regions.PK)
	}
}

func TestTableLookupMiss(t *testing.T) {
	_, reg := newTestRegistry(t, `CREATE TABLE customers (id INTEGER PRIMARY KEY);`)
	cache, err := Build(context.Background(), reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := cache.Table("nonexistent"); ok {
		t.Errorf("expected lookup of a nonexistent table to fail")
	}
}
