package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

var createStmts = []string{
	`CREATE TABLE IF NOT EXISTS spots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		camera_entity TEXT NOT NULL DEFAULT '',
		definition TEXT NOT NULL DEFAULT '',
		spot_type TEXT NOT NULL DEFAULT 'custom',
		voice TEXT NOT NULL DEFAULT 'direct',
		custom_voice_prompt TEXT NOT NULL DEFAULT '',
		personality TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'unknown',
		current_streak INTEGER NOT NULL DEFAULT 0,
		longest_streak INTEGER NOT NULL DEFAULT 0,
		snoozed_until TEXT,
		schedule TEXT NOT NULL DEFAULT '[]',
		dream_state_url TEXT NOT NULL DEFAULT '',
		dream_state_generating INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS checks (
		id TEXT PRIMARY KEY,
		spot_id INTEGER NOT NULL REFERENCES spots(id) ON DELETE CASCADE,
		timestamp TEXT NOT NULL,
		status TEXT NOT NULL,
		to_sort TEXT NOT NULL DEFAULT '[]',
		looking_good TEXT NOT NULL DEFAULT '[]',
		notes TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		latency_ms INTEGER NOT NULL DEFAULT 0,
		analysis TEXT,
		xp_earned INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_checks_spot_ts ON checks(spot_id, timestamp)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS api_tokens (
		id TEXT PRIMARY KEY,
		token TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		last_used_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS cameras (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		camera_type TEXT NOT NULL DEFAULT '',
		username TEXT NOT NULL DEFAULT '',
		password TEXT NOT NULL DEFAULT '',
		enabled INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS gamification (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		total_xp INTEGER NOT NULL DEFAULT 0,
		unlocked TEXT NOT NULL DEFAULT '[]',
		challenge_date TEXT NOT NULL DEFAULT '',
		challenge_done INTEGER NOT NULL DEFAULT 0,
		resets_today INTEGER NOT NULL DEFAULT 0,
		resets_total INTEGER NOT NULL DEFAULT 0,
		last_reset_at TEXT
	)`,
}

// addColumnMigrations are additive schema changes applied after the base
// tables exist. Each entry is (table, column, definition). Columns already
// present are skipped, so the list is safe to re-run on every startup.
var addColumnMigrations = [][3]string{
	{"spots", "personality", "TEXT NOT NULL DEFAULT ''"},
	{"spots", "dream_state_url", "TEXT NOT NULL DEFAULT ''"},
	{"spots", "dream_state_generating", "INTEGER NOT NULL DEFAULT 0"},
	{"checks", "analysis", "TEXT"},
	{"checks", "xp_earned", "INTEGER NOT NULL DEFAULT 0"},
}

// Migrate creates the schema and applies additive column migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range createStmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	for _, m := range addColumnMigrations {
		table, column, def := m[0], m[1], m[2]
		has, err := hasColumn(ctx, db, table, column)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, def)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("add column %s.%s: %w", table, column, err)
		}
	}
	return nil
}

func hasColumn(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if strings.EqualFold(name, column) {
			return true, nil
		}
	}
	return false, rows.Err()
}
