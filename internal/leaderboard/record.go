// internal/leaderboard/record.go
//
// Leaderboard records and ranking.
//
// A Record is written exactly once, when a round is won, and is never
// changed afterwards. Every backend returns rows in Rank order:
// fewest attempts first, then fastest, then earliest.

package leaderboard

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/robalobadob/numguess/apps/go-server/internal/game"
)

// TimestampLayout is the persisted timestamp format (YYYY-MM-DD HH:MM:SS).
const TimestampLayout = "2006-01-02 15:04:05"

// DefaultTop is used when Top is asked for a non-positive number of rows.
const DefaultTop = 10

// ErrNotWon is returned by FromRound for rounds that were not won.
var ErrNotWon = errors.New("only won rounds go on the leaderboard")

// Record is one persisted winning round.
type Record struct {
	Name           string          `json:"name"`
	Attempts       int             `json:"attempts"`
	ElapsedSeconds float64         `json:"elapsedSeconds"`
	Difficulty     game.Difficulty `json:"difficulty"`
	LivesRemaining int             `json:"livesRemaining"`
	Timestamp      time.Time       `json:"timestamp"`
}

// Store is an append-only sink of records with a ranked query.
type Store interface {
	// Append durably persists r. It never touches earlier records.
	Append(ctx context.Context, r Record) error

	// Top returns at most n records in Rank order. An empty difficulty
	// means every difficulty.
	Top(ctx context.Context, n int, d game.Difficulty) ([]Record, error)

	Close() error
}

// FromRound builds the record for a won round. at is the write time.
func FromRound(r game.Round, at time.Time) (Record, error) {
	if r.Outcome != game.Won {
		return Record{}, fmt.Errorf("%w: round %s is %s", ErrNotWon, r.ID, r.Outcome)
	}
	return Record{
		Name:           r.Player,
		Attempts:       r.Attempts,
		ElapsedSeconds: roundSeconds(r.FinishedAt.Sub(r.StartedAt)),
		Difficulty:     r.Difficulty,
		LivesRemaining: r.LivesRemaining,
		Timestamp:      at.UTC().Truncate(time.Second),
	}, nil
}

// Points is the display score for the record.
func (r Record) Points() float64 {
	return game.Points(r.Attempts, r.ElapsedSeconds, r.Difficulty, r.LivesRemaining)
}

// roundSeconds converts d to seconds with two decimals.
func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}

// compare orders records by attempts, then elapsed time, then timestamp.
func compare(a, b Record) int {
	if c := cmp.Compare(a.Attempts, b.Attempts); c != 0 {
		return c
	}
	if c := cmp.Compare(a.ElapsedSeconds, b.ElapsedSeconds); c != 0 {
		return c
	}
	return a.Timestamp.Compare(b.Timestamp)
}

// Rank sorts records in place, best first. Equal records keep their order.
func Rank(records []Record) {
	slices.SortStableFunc(records, compare)
}

// top filters, ranks and truncates a full record set.
func top(all []Record, n int, d game.Difficulty) []Record {
	n = limit(n)
	out := make([]Record, 0, min(n, len(all)))
	for _, r := range all {
		if d == "" || r.Difficulty == d {
			out = append(out, r)
		}
	}
	Rank(out)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func limit(n int) int {
	if n <= 0 {
		return DefaultTop
	}
	return n
}

// StorageError wraps a backend failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "leaderboard " + e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorage reports whether err came from a leaderboard backend.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
