package leaderboard

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/numguess/apps/go-server/internal/game"
)

// backends returns a fresh instance of every backend that can run here.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	sqlite, err := OpenSQLite(ctx, filepath.Join(dir, "lb.db"))
	require.NoError(t, err)

	out := map[string]Store{
		"memory": NewMemoryStore(),
		"csv":    NewCSVStore(filepath.Join(dir, "nested", "ranking.csv")),
		"sqlite": sqlite,
	}
	if dsn := os.Getenv("LEADERBOARD_TEST_POSTGRES_DSN"); dsn != "" {
		pg, err := OpenPostgres(ctx, dsn)
		require.NoError(t, err)
		_, err = pg.(*postgresStore).pool.Exec(ctx, `TRUNCATE leaderboard`)
		require.NoError(t, err)
		out["postgres"] = pg
	}
	for _, s := range out {
		s := s
		t.Cleanup(func() { _ = s.Close() })
	}
	return out
}

func fixtures() []Record {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []Record{
		{Name: "Ana", Attempts: 2, ElapsedSeconds: 12.35, Difficulty: game.Medium, LivesRemaining: 7, Timestamp: t0},
		{Name: "Bo", Attempts: 5, ElapsedSeconds: 3.1, Difficulty: game.Easy, LivesRemaining: 6, Timestamp: t0.Add(time.Minute)},
		{Name: "Cy", Attempts: 2, ElapsedSeconds: 8.01, Difficulty: game.Hard, LivesRemaining: 5, Timestamp: t0.Add(2 * time.Minute)},
		{Name: "Di", Attempts: 4, ElapsedSeconds: 30, Difficulty: game.Medium, LivesRemaining: 5, Timestamp: t0.Add(3 * time.Minute)},
		{Name: "Ed", Attempts: 2, ElapsedSeconds: 12.35, Difficulty: game.Medium, LivesRemaining: 7, Timestamp: t0.Add(4 * time.Minute)},
	}
}

func TestStore_EmptyBeforeFirstAppend(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := s.Top(context.Background(), 5, "")
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestStore_AppendTop(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, r := range fixtures() {
				require.NoError(t, s.Append(ctx, r))
			}

			all, err := s.Top(ctx, 10, "")
			require.NoError(t, err)
			require.Len(t, all, 5)
			assert.Equal(t, []string{"Cy", "Ana", "Ed", "Di", "Bo"}, names(all))
			assert.Equal(t, fixtures()[0], all[1], "fields survive a round trip")

			medium, err := s.Top(ctx, 10, game.Medium)
			require.NoError(t, err)
			assert.Equal(t, []string{"Ana", "Ed", "Di"}, names(medium))

			two, err := s.Top(ctx, 2, "")
			require.NoError(t, err)
			assert.Equal(t, []string{"Cy", "Ana"}, names(two))

			none, err := s.Top(ctx, 3, game.Easy)
			require.NoError(t, err)
			assert.Equal(t, []string{"Bo"}, names(none))
		})
	}
}

func TestStore_TopNeverExceedsN(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
			for i := 0; i < 15; i++ {
				require.NoError(t, s.Append(ctx, Record{
					Name:           "p",
					Attempts:       1 + (i*7)%5,
					ElapsedSeconds: float64((i * 13) % 11),
					Difficulty:     game.Easy,
					LivesRemaining: 3,
					Timestamp:      t0.Add(time.Duration(i) * time.Second),
				}))
			}
			for _, n := range []int{1, 3, 15, 40} {
				got, err := s.Top(ctx, n, "")
				require.NoError(t, err)
				assert.LessOrEqual(t, len(got), n)
				for i := 1; i < len(got); i++ {
					assert.LessOrEqual(t, compare(got[i-1], got[i]), 0, "rows must be sorted")
				}
			}

			def, err := s.Top(ctx, 0, "")
			require.NoError(t, err)
			assert.Len(t, def, DefaultTop)
		})
	}
}

func names(rs []Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func TestCSVStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranking.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"name,attempts,elapsed_seconds,difficulty,lives_remaining,timestamp\n"+
			"Ana,two,1.00,easy,3,2024-05-01 12:00:00\n"), 0o644))

	_, err := NewCSVStore(path).Top(context.Background(), 5, "")
	require.Error(t, err)
	assert.True(t, IsStorage(err))
}

func TestCSVStore_FileLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranking.csv")
	s := NewCSVStore(path)
	for _, r := range fixtures()[:2] {
		require.NoError(t, s.Append(context.Background(), r))
	}
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"name,attempts,elapsed_seconds,difficulty,lives_remaining,timestamp\n"+
			"Ana,2,12.35,medium,7,2024-05-01 12:00:00\n"+
			"Bo,5,3.10,easy,6,2024-05-01 12:01:00\n",
		string(b))
}

func TestSQLite_MissingTableReadsEmpty(t *testing.T) {
	db, err := openDB(filepath.Join(t.TempDir(), "bare.db"))
	require.NoError(t, err)
	s := &sqliteStore{db: db}
	defer s.Close()

	got, err := s.Top(context.Background(), 5, "")
	require.NoError(t, err)
	assert.Empty(t, got)

	err = s.Append(context.Background(), fixtures()[0])
	assert.True(t, IsStorage(err), "writes to a missing table are real failures")
}

func TestSQLite_ReopenKeepsRecordsAndMigrations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "lb.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, fixtures()[0]))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Top(ctx, 5, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana"}, names(got))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(ctx, Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &memory{}, s)

	s, err = Open(ctx, Options{Backend: BackendCSV, Path: filepath.Join(dir, "r.csv")})
	require.NoError(t, err)
	assert.IsType(t, &csvStore{}, s)

	s, err = Open(ctx, Options{Path: filepath.Join(dir, "r.db")})
	require.NoError(t, err)
	assert.IsType(t, &sqliteStore{}, s)
	require.NoError(t, s.Close())

	for _, bad := range []Options{
		{Backend: BackendCSV},
		{Backend: BackendSQLite},
		{Backend: BackendPostgres},
		{Backend: "mongo"},
	} {
		_, err := Open(ctx, bad)
		assert.Error(t, err, "%+v", bad)
	}
}
