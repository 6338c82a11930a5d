package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// ErrSchemaTooNew means the database was written by a newer cliffordt.
var ErrSchemaTooNew = errors.New("store: database schema is newer than this build")

// migration upgrades a database to version.
type migration struct {
	version int
	stmt    string
}

// migrations run in order on databases whose user_version is below their
// version. The last version is the current schema version.
var migrations = []migration{
	// History lookups by target.
	{1, `CREATE INDEX IF NOT EXISTS idx_run_items_target ON run_items(target_id)`},
}

func schemaVersion() int {
	return migrations[len(migrations)-1].version
}

// pragma is a connection setting and the value SQLite reports once it
// took effect.
type pragma struct {
	name, set, want string
}

// Batch workers read cached results while the runner appends run items,
// so the database runs in WAL mode and waits out a held write lock rather
// than failing. Results and table artifacts can always be recomputed,
// which makes synchronous=NORMAL durable enough.
var pragmas = []pragma{
	{"journal_mode", "WAL", "wal"},
	{"synchronous", "NORMAL", "1"},
	{"busy_timeout", "5000", "5000"},
	{"foreign_keys", "ON", "1"},
}

// Store holds compiled results, batch run history and table artifacts.
type Store struct {
	db *sql.DB
}

// Open opens the database at path, creating it if needed, and upgrades
// its schema. Opening an up-to-date database changes nothing.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database %s: %w", path, err)
	}

	// Run items and results are written from several goroutines; one
	// connection serializes them instead of surfacing SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := configure(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func configure(db *sql.DB) error {
	for _, p := range pragmas {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.set)); err != nil {
			return fmt.Errorf("set %s: %w", p.name, err)
		}
		if err := checkPragma(db, p.name, p.want); err != nil {
			return err
		}
	}
	return nil
}

// migrate creates missing tables and applies the migrations the database
// has not seen yet, each in its own transaction together with the
// user_version bump.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > schemaVersion() {
		return fmt.Errorf("%w: version %d, want at most %d", ErrSchemaTooNew, version, schemaVersion())
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
	}
	return nil
}

func checkPragma(db *sql.DB, name, want string) error {
	var value string
	if err := db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if value != want {
		return fmt.Errorf("%s = %q, want %q", name, value, want)
	}
	return nil
}

// verifyPragma reports whether a pragma has the expected value.
func (s *Store) verifyPragma(name, expected string) error {
	return checkPragma(s.db, name, expected)
}
