// Package testutil provides shared test helpers for setting up stores and catalogs.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/imgbackup/internal/catalog"
	"github.com/starford/imgbackup/internal/storage"
)

// TestCatalog creates a temporary SQLite catalog that is automatically closed.
func TestCatalog(t *testing.T) *catalog.DB {
	t.Helper()
	db, err := catalog.Open(filepath.Join(t.TempDir(), "imgbackup-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a temporary storage root with an FS transport.
func TestStore(t *testing.T) (string, *storage.FS) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root, storage.DefaultNamespace)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// SeedCatalog writes the given cards (relative path → content) into a fresh
// cards directory and indexes them into db.
func SeedCatalog(t *testing.T, db *catalog.DB, cards map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range cards {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := catalog.Sync(db, dir, Logger()); err != nil {
		t.Fatal(err)
	}
	return dir
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
