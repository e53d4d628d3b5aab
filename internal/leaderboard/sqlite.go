// internal/leaderboard/sqlite.go
//
// SQLite backend.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout).
//   - Applying embedded migrations (idempotent, recorded in _migrations).
//   - Appending records and serving the ranked query.

package leaderboard

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numguess/apps/go-server/internal/game"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if missing) the database at path and
// brings its schema up to date.
func OpenSQLite(ctx context.Context, path string) (Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, storageErr("open", err)
	}
	if err := migrate(ctx, db, migrationsFS); err != nil {
		_ = db.Close()
		return nil, storageErr("migrate", err)
	}
	return &sqliteStore{db: db}, nil
}

// openDB ensures the parent directory exists and opens the file with
// a busy timeout and WAL journaling.
func openDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// migrate applies every *.sql file in fsys in lexical order, once.
func migrate(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := fs.ReadFile(fsys, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

func (s *sqliteStore) Append(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO leaderboard
            (name, attempts, elapsed_seconds, difficulty, lives_remaining, timestamp)
        VALUES (?, ?, ?, ?, ?, ?)`,
		r.Name, r.Attempts, r.ElapsedSeconds, string(r.Difficulty), r.LivesRemaining,
		r.Timestamp.UTC().Format(TimestampLayout),
	)
	return storageErr("append", err)
}

func (s *sqliteStore) Top(ctx context.Context, n int, d game.Difficulty) ([]Record, error) {
	n = limit(n)
	rows, err := s.db.QueryContext(ctx, `
        SELECT name, attempts, elapsed_seconds, difficulty, lives_remaining, timestamp
        FROM leaderboard
        WHERE ? = '' OR difficulty = ?
        ORDER BY attempts ASC, elapsed_seconds ASC, timestamp ASC, id ASC
        LIMIT ?`, string(d), string(d), n,
	)
	if isMissingTable(err) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, storageErr("top", err)
	}
	defer rows.Close()

	out := make([]Record, 0, n)
	for rows.Next() {
		var (
			r    Record
			diff string
			ts   string
		)
		if err := rows.Scan(&r.Name, &r.Attempts, &r.ElapsedSeconds, &diff, &r.LivesRemaining, &ts); err != nil {
			return nil, storageErr("top", err)
		}
		r.Difficulty = game.Difficulty(diff)
		if r.Timestamp, err = time.ParseInLocation(TimestampLayout, ts, time.UTC); err != nil {
			return nil, storageErr("top", fmt.Errorf("bad timestamp %q: %w", ts, err))
		}
		out = append(out, r)
	}
	return out, storageErr("top", rows.Err())
}

func (s *sqliteStore) Close() error { return s.db.Close() }

// isMissingTable matches "no such table" so that a database created
// without migrations reads as an empty leaderboard.
func isMissingTable(err error) bool {
	var se sqlite3.Error
	if err == nil || !errors.As(err, &se) {
		return false
	}
	return se.Code == sqlite3.ErrError && strings.Contains(se.Error(), "no such table")
}
