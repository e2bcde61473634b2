// Package runstore persists extraction runs and their feature tables in
// SQLite. Schema changes ship as embedded migrations applied on open.
package runstore

import (
	"database/sql"
	"embed"
	"fmt"
	"log"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps the runs database.
type Store struct {
	*sql.DB
}

// Open opens the runs database at path, creating it if needed, and applies
// any pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open runs database: %w", err)
	}

	s := &Store{db}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("[RunStore] opened runs database at %s", path)
	return s, nil
}
