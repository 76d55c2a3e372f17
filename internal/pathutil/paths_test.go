package pathutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("VFS2DB_TEST_DIR", "/srv/data")
	got := Expand("$VFS2DB_TEST_DIR/vfs2dbd.db")
	want := "/srv/data/vfs2dbd.db"
	if got != want {
		t.Errorf("Expand = %q, want %q", got, want)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory available: %v", err)
	}
	got := Expand("~/vfs2dbd.db")
	want := filepath.Join(home, "vfs2dbd.db")
	if got != want {
		t.Errorf("Expand = %q, want %q", got, want)
	}
}

func TestIsRegularFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "fixture.db")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("seeding fixture file: %v", err)
	}

	if !IsRegularFile(file) {
		t.Errorf("expected %s to be a regular file", file)
	}
	if IsRegularFile(dir) {
		t.Errorf("expected directory %s to not be a regular file", dir)
	}
	if IsRegularFile(filepath.Join(dir, "missing")) {
		t.Errorf("expected missing path to not be a regular file")
	}
}
