package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/harperreed/dealdesk/record"
	"github.com/harperreed/dealdesk/record/storetest"
)

func TestOpenDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='records'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query tables: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected records table, got %d matches", count)
	}

	var mode string
	err = db.QueryRow("PRAGMA journal_mode").Scan(&mode)
	if err != nil {
		t.Fatalf("Failed to query journal mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("Expected WAL mode, got %s", mode)
	}
}

func TestOpenDatabaseInvalidPath(t *testing.T) {
	// A regular file where a directory should be fails even for root.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	dbPath := filepath.Join(blocker, "nested", "test.db")

	_, err := OpenDatabase(dbPath)
	if err == nil {
		t.Errorf("Expected error for invalid path, but OpenDatabase succeeded")
	}
}

func TestOpenDatabaseTwice(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Initial Open failed: %v", err)
	}
	id, err := store.Insert(context.Background(), "company_c", map[string]any{"name_c": "Acme"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer store.Close()

	row, err := store.Load(context.Background(), "company_c", id)
	if err != nil {
		t.Fatalf("Load after reopen failed: %v", err)
	}
	if row.Fields["name_c"] != "Acme" {
		t.Errorf("Expected name_c Acme, got %v", row.Fields["name_c"])
	}
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) record.Store {
		store, err := Open(filepath.Join(t.TempDir(), "store.db"))
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		t.Cleanup(func() { store.Close() })
		return store
	})
}
