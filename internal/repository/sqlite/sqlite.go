// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// the SQLite sources — works everywhere Go works.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// It implements repository.UserRepository, GenreRepository, RapRepository
// and LikeRepository (see the compile-time checks in each file).
type DB struct {
	conn *sql.DB
}

// New opens a SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/rapmania.db" → file-based database (persistent)
//   - ":memory:"         → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// sql.Open doesn't actually connect — force it now so a bad path fails
	// here instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// SQLite allows one writer at a time, and the PRAGMAs below are
	// per-connection (a ":memory:" DB is even per-connection in its
	// entirety). A single pooled connection sidesteps all of that.
	conn.SetMaxOpenConns(1)

	// WAL allows concurrent reads while a write is in progress — important
	// for a web server where many requests hit the DB at once.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. We rely on them for the
	// cascades: user → raps → likes.
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

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates all tables. CREATE TABLE IF NOT EXISTS keeps this safe to
// run on every startup; for schema changes beyond that you'd reach for
// golang-migrate, which this project doesn't need yet.
func (db *DB) migrate() error {
	// google_id is nullable: SQLite's UNIQUE constraint ignores NULLs, so any
	// number of password-only accounts can coexist with it.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT,
			google_id     TEXT UNIQUE,
			avatar_url    TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS genres (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL UNIQUE,
			icon       TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating genres table: %w", err)
	}

	// Deleting a user removes their raps; genres are reference data and are
	// never deleted, so no cascade there.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS raps (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			genre_id     TEXT NOT NULL REFERENCES genres(id),
			topic        TEXT NOT NULL,
			stanza_count INTEGER NOT NULL,
			explicit     INTEGER NOT NULL DEFAULT 0,
			content      TEXT NOT NULL,
			is_public    INTEGER NOT NULL DEFAULT 1,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_raps_user_id ON raps(user_id);
		CREATE INDEX IF NOT EXISTS idx_raps_created_at ON raps(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating raps table: %w", err)
	}

	// UNIQUE(user_id, rap_id) is the authoritative resolver for like races:
	// a losing concurrent insert surfaces as a constraint violation, which
	// LikeRap translates into "already liked".
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS rap_likes (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			rap_id     TEXT NOT NULL REFERENCES raps(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, rap_id)
		);
		CREATE INDEX IF NOT EXISTS idx_rap_likes_rap_id ON rap_likes(rap_id);
	`)
	if err != nil {
		return fmt.Errorf("creating rap_likes table: %w", err)
	}

	return nil
}
