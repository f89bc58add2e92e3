// Package sqlite implements the repository interfaces on an embedded SQLite
// database.
//
// modernc.org/sqlite is a pure-Go translation of SQLite — no CGo, no
// external server to run. That matters here beyond convenience: the service
// is specified to keep working when its store is unreachable, so the store
// itself should add no infrastructure that can be separately unreachable.
//
// The connection runs in WAL mode so concurrent request handlers can read
// while a write is in flight. Migrations are plain CREATE TABLE IF NOT
// EXISTS statements run at open time.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps the connection pool. The repository interfaces are implemented
// by the sub-repository views returned from Bananas, Accounts, and
// Sessions; all of them share this pool.
type DB struct {
	conn *sql.DB
}

// Bananas returns the catalog repository view.
func (db *DB) Bananas() *BananaDB { return &BananaDB{conn: db.conn} }

// Accounts returns the account repository view.
func (db *DB) Accounts() *AccountDB { return &AccountDB{conn: db.conn} }

// Sessions returns the session repository view.
func (db *DB) Sessions() *SessionDB { return &SessionDB{conn: db.conn} }

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Surface a bad path or permission problem now, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool, flushing the WAL.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping is the liveness probe the fallback layer consults before trusting
// the store.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id                       TEXT PRIMARY KEY,
			email                    TEXT NOT NULL UNIQUE,
			password_hash            TEXT NOT NULL DEFAULT '',
			display_name             TEXT NOT NULL,
			avatar_url               TEXT NOT NULL DEFAULT '',
			provider                 TEXT NOT NULL DEFAULT 'local',
			provider_id              TEXT NOT NULL DEFAULT '',
			role                     TEXT NOT NULL DEFAULT 'user',
			terms_accepted           INTEGER NOT NULL DEFAULT 0,
			terms_version            TEXT NOT NULL DEFAULT '',
			terms_accepted_at        DATETIME,
			oracle_queries_remaining INTEGER NOT NULL DEFAULT 10,
			oracle_queries_reset_at  DATETIME NOT NULL,
			created_at               DATETIME NOT NULL,
			last_login_at            DATETIME NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_provider
			ON accounts(provider, provider_id) WHERE provider != 'local';
	`)
	if err != nil {
		return fmt.Errorf("creating accounts table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS bananas (
			id                    TEXT PRIMARY KEY,
			name                  TEXT NOT NULL,
			scientific_name       TEXT NOT NULL DEFAULT '',
			origin                TEXT NOT NULL,
			year_discovered       INTEGER NOT NULL DEFAULT 0,
			invention_story       TEXT NOT NULL,
			fun_fact              TEXT NOT NULL DEFAULT '',
			color                 TEXT NOT NULL DEFAULT 'yellow',
			taste                 TEXT NOT NULL DEFAULT 'sweet',
			rarity                TEXT NOT NULL DEFAULT 'common',
			image_url             TEXT NOT NULL DEFAULT '',
			calories              INTEGER NOT NULL DEFAULT 0,
			potassium             TEXT NOT NULL DEFAULT '',
			fiber                 TEXT NOT NULL DEFAULT '',
			sugar                 TEXT NOT NULL DEFAULT '',
			cultural_significance TEXT NOT NULL DEFAULT '',
			created_at            DATETIME NOT NULL,
			updated_at            DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_bananas_created_at ON bananas(created_at);
		CREATE INDEX IF NOT EXISTS idx_bananas_rarity ON bananas(rarity);
		CREATE INDEX IF NOT EXISTS idx_bananas_taste ON bananas(taste);
	`)
	if err != nil {
		return fmt.Errorf("creating bananas table: %w", err)
	}

	// position preserves the order favorites were added in.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS favorites (
			account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			banana_id  TEXT NOT NULL,
			position   INTEGER NOT NULL,
			PRIMARY KEY (account_id, banana_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating favorites table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL,
			expires_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
	`)
	if err != nil {
		return fmt.Errorf("creating sessions table: %w", err)
	}

	return nil
}
