package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens (and creates if missing) a SQLite database file. Foreign keys
// are enabled; SQLite leaves them off by default.
func Open(dbPath string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_foreign_keys=on", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// The sqlite3 driver is not safe for concurrent writers on one file.
	db.SetMaxOpenConns(1)
	return db, nil
}
