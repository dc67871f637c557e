package core

import (
	"context"
	"fmt"
	"os"

	"matatucore/internal/blob"
	blobfs "matatucore/internal/infra/blob/fs"
	blobmem "matatucore/internal/infra/blob/memory"
	blobs3 "matatucore/internal/infra/blob/s3"
	"matatucore/internal/infra/persistence/memory"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	// StorageMemory keeps state in process memory only (tests / ephemeral).
	StorageMemory StorageDriver = "memory"
	// StorageSQLite persists snapshots to an embedded sqlite file.
	StorageSQLite StorageDriver = "sqlite"
	// StoragePostgres persists snapshots to a PostgreSQL server.
	StoragePostgres StorageDriver = "postgres"
)

// OpenPersistentStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	MATATUCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	MATATUCORE_SQLITE_PATH: path to sqlite file (default ./matatucore.db)
//	MATATUCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenPersistentStore(engine *RulesEngine) (PersistentStore, error) {
	driver := os.Getenv("MATATUCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageSQLite:
		return NewSQLiteStore(os.Getenv("MATATUCORE_SQLITE_PATH"), engine)
	case StoragePostgres:
		return NewPostgresStore(os.Getenv("MATATUCORE_POSTGRES_DSN"), engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// OpenReportArchive selects a blob backend for report archival using
// environment variables. Defaults to the filesystem driver.
//
//	MATATUCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	MATATUCORE_BLOB_FS_ROOT: directory root when driver=fs (default ./reportdata)
//	(S3 variables documented in the s3 driver package)
func OpenReportArchive(ctx context.Context) (blob.Store, error) {
	driver := blob.Driver(os.Getenv("MATATUCORE_BLOB_DRIVER"))
	if driver == "" {
		driver = blob.DriverFilesystem
	}
	switch driver {
	case blob.DriverFilesystem:
		return blobfs.New(os.Getenv("MATATUCORE_BLOB_FS_ROOT"))
	case blob.DriverS3:
		return blobs3.OpenFromEnv(ctx)
	case blob.DriverMemory:
		return blobmem.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
