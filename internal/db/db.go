// Package db stores imported sessions in SQLite and serves them back as
// telemetry providers.
package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/telemetry.report/internal/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsFS returns the embedded schema migrations.
func MigrationsFS() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

type DB struct {
	*sql.DB
	log *zap.Logger
}

// Open opens the database at path, applies connection PRAGMAs and migrates
// the schema to the latest version.
func Open(path string, log *zap.Logger) (*DB, error) {
	db, err := OpenDB(path, log)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(MigrationsFS()); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenDB opens the database without touching the schema.
func OpenDB(path string, log *zap.Logger) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// PRAGMAs such as foreign_keys are per connection.
	sqlDB.SetMaxOpenConns(1)

	db := &DB{DB: sqlDB, log: logging.OrNop(log)}
	if err := db.applyPragmas(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) applyPragmas() error {
	_, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;
		PRAGMA foreign_keys = ON;
	`)
	if err != nil {
		return fmt.Errorf("apply pragmas: %w", err)
	}
	return nil
}
