package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) the SQLite database at the given path with WAL
// journaling and foreign keys enabled. Foreign keys carry the spot -> checks
// cascade, so they must be on for every connection.
func Open(path string) (*sql.DB, error) {
	// The data dir may not exist on first boot of the addon.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// Scheduled checks and HTTP requests share this handle; a single writer
	// keeps the WAL file from accumulating competing write locks.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
