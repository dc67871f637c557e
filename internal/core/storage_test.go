package core

import (
	"context"
	"path/filepath"
	"testing"

	"matatucore/internal/blob"
	"matatucore/internal/infra/persistence/memory"
	"matatucore/internal/infra/persistence/sqlite"
)

func TestOpenPersistentStoreMemoryDriver(t *testing.T) {
	t.Setenv("MATATUCORE_STORAGE_DRIVER", "memory")
	store, err := OpenPersistentStore(NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
}

func TestOpenPersistentStoreSQLiteDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet.db")
	t.Setenv("MATATUCORE_STORAGE_DRIVER", "sqlite")
	t.Setenv("MATATUCORE_SQLITE_PATH", path)

	store, err := OpenPersistentStore(nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	sq, ok := store.(*sqlite.Store)
	if !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}
	defer sq.Close()
	if sq.Path() != path {
		t.Fatalf("sqlite path = %q, want %q", sq.Path(), path)
	}
}

func TestOpenPersistentStoreUnknownDriver(t *testing.T) {
	t.Setenv("MATATUCORE_STORAGE_DRIVER", "etcd")
	if _, err := OpenPersistentStore(nil); err == nil {
		t.Fatal("expected unknown driver error")
	}
}

func TestOpenReportArchiveDefaultsToFilesystem(t *testing.T) {
	t.Setenv("MATATUCORE_BLOB_DRIVER", "")
	t.Setenv("MATATUCORE_BLOB_FS_ROOT", t.TempDir())

	store, err := OpenReportArchive(context.Background())
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if store.Driver() != blob.DriverFilesystem {
		t.Fatalf("driver = %s, want fs", store.Driver())
	}
}

func TestOpenReportArchiveMemoryDriver(t *testing.T) {
	t.Setenv("MATATUCORE_BLOB_DRIVER", "memory")
	store, err := OpenReportArchive(context.Background())
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if store.Driver() != blob.DriverMemory {
		t.Fatalf("driver = %s, want memory", store.Driver())
	}
}

func TestOpenReportArchiveUnknownDriver(t *testing.T) {
	t.Setenv("MATATUCORE_BLOB_DRIVER", "tape")
	if _, err := OpenReportArchive(context.Background()); err == nil {
		t.Fatal("expected unknown driver error")
	}
}
