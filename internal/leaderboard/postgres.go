package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numguess/apps/go-server/internal/game"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS leaderboard (
    id              BIGSERIAL PRIMARY KEY,
    name            TEXT             NOT NULL,
    attempts        INTEGER          NOT NULL CHECK (attempts > 0),
    elapsed_seconds DOUBLE PRECISION NOT NULL CHECK (elapsed_seconds >= 0),
    difficulty      TEXT             NOT NULL,
    lives_remaining INTEGER          NOT NULL CHECK (lives_remaining >= 0),
    timestamp       TIMESTAMPTZ      NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_leaderboard_rank
    ON leaderboard (difficulty, attempts, elapsed_seconds);
`

// pgUndefinedTable is the SQLSTATE for a missing relation.
const pgUndefinedTable = "42P01"

type postgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool to dsn and creates the table if needed.
// The caller is responsible for calling Close.
func OpenPostgres(ctx context.Context, dsn string) (Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, storageErr("open", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, storageErr("open", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, storageErr("migrate", err)
	}
	cfg := pool.Config().ConnConfig
	log.Info().Str("host", cfg.Host).Str("database", cfg.Database).Msg("leaderboard connected to postgres")
	return &postgresStore{pool: pool}, nil
}

func (s *postgresStore) Append(ctx context.Context, r Record) error {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO leaderboard
            (name, attempts, elapsed_seconds, difficulty, lives_remaining, timestamp)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		r.Name, r.Attempts, r.ElapsedSeconds, string(r.Difficulty), r.LivesRemaining, r.Timestamp.UTC(),
	)
	return storageErr("append", err)
}

func (s *postgresStore) Top(ctx context.Context, n int, d game.Difficulty) ([]Record, error) {
	n = limit(n)
	rows, err := s.pool.Query(ctx, `
        SELECT name, attempts, elapsed_seconds, difficulty, lives_remaining, timestamp
        FROM leaderboard
        WHERE $1::text = '' OR difficulty = $1
        ORDER BY attempts ASC, elapsed_seconds ASC, timestamp ASC, id ASC
        LIMIT $2`, string(d), n,
	)
	if err != nil {
		if isUndefinedTable(err) {
			return []Record{}, nil
		}
		return nil, storageErr("top", err)
	}
	defer rows.Close()

	out := make([]Record, 0, n)
	for rows.Next() {
		var (
			r    Record
			diff string
			ts   time.Time
		)
		if err := rows.Scan(&r.Name, &r.Attempts, &r.ElapsedSeconds, &diff, &r.LivesRemaining, &ts); err != nil {
			return nil, storageErr("top", fmt.Errorf("scan: %w", err))
		}
		r.Difficulty = game.Difficulty(diff)
		r.Timestamp = ts.UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		if isUndefinedTable(err) {
			return []Record{}, nil
		}
		return nil, storageErr("top", err)
	}
	return out, nil
}

func (s *postgresStore) Close() error {
	s.pool.Close()
	return nil
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}
