// internal/leaderboard/csv.go
//
// Flat-file backend: one CSV row per record, header on the first line.
//
// Notes:
//   - Appends open the file with O_APPEND and close it before returning.
//   - A missing file is an empty leaderboard.
//   - Malformed rows are reported as storage errors, never skipped.

package leaderboard

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/robalobadob/numguess/apps/go-server/internal/game"
)

var csvHeader = []string{"name", "attempts", "elapsed_seconds", "difficulty", "lives_remaining", "timestamp"}

type csvStore struct {
	mu   sync.Mutex // serialises appends from this process
	path string
}

// NewCSVStore returns a Store backed by the CSV file at path.
// The file and its directory are created on first append.
func NewCSVStore(path string) Store {
	return &csvStore{path: path}
}

func (s *csvStore) Append(ctx context.Context, r Record) error {
	if err := ctx.Err(); err != nil {
		return storageErr("append", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return storageErr("append", fmt.Errorf("mkdir %s: %w", dir, err))
		}
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return storageErr("append", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return storageErr("append", err)
	}
	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return storageErr("append", err)
		}
	}
	if err := w.Write(toRow(r)); err != nil {
		return storageErr("append", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return storageErr("append", err)
	}
	return storageErr("append", f.Sync())
}

func (s *csvStore) Top(ctx context.Context, n int, d game.Difficulty) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("top", err)
	}
	all, err := s.readAll()
	if err != nil {
		return nil, storageErr("top", err)
	}
	return top(all, n, d), nil
}

func (s *csvStore) Close() error { return nil }

func (s *csvStore) readAll() ([]Record, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rd := csv.NewReader(f)
	rd.FieldsPerRecord = len(csvHeader)
	var out []Record
	for line := 1; ; line++ {
		row, err := rd.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && row[0] == csvHeader[0] {
			continue
		}
		r, err := fromRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", s.path, line, err)
		}
		out = append(out, r)
	}
}

func toRow(r Record) []string {
	return []string{
		r.Name,
		strconv.Itoa(r.Attempts),
		strconv.FormatFloat(r.ElapsedSeconds, 'f', 2, 64),
		string(r.Difficulty),
		strconv.Itoa(r.LivesRemaining),
		r.Timestamp.UTC().Format(TimestampLayout),
	}
}

func fromRow(row []string) (Record, error) {
	attempts, err := strconv.Atoi(row[1])
	if err != nil {
		return Record{}, fmt.Errorf("attempts: %w", err)
	}
	elapsed, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return Record{}, fmt.Errorf("elapsed_seconds: %w", err)
	}
	d := game.Difficulty(row[3])
	if !d.Valid() {
		return Record{}, fmt.Errorf("difficulty: unknown %q", row[3])
	}
	lives, err := strconv.Atoi(row[4])
	if err != nil {
		return Record{}, fmt.Errorf("lives_remaining: %w", err)
	}
	ts, err := time.ParseInLocation(TimestampLayout, row[5], time.UTC)
	if err != nil {
		return Record{}, fmt.Errorf("timestamp: %w", err)
	}
	return Record{
		Name:           row[0],
		Attempts:       attempts,
		ElapsedSeconds: elapsed,
		Difficulty:     d,
		LivesRemaining: lives,
		Timestamp:      ts,
	}, nil
}
