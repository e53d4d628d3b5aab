// internal/httpserver/routes_leaderboard.go
//
// GET /leaderboard?difficulty=<easy|medium|hard>&limit=<n>
//
// Returns ranked winning rounds. difficulty is optional (all when absent);
// limit defaults to leaderboard.DefaultTop and is capped at maxLeaderboard.

package httpserver

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/numguess/apps/go-server/internal/game"
	"github.com/robalobadob/numguess/apps/go-server/internal/leaderboard"
)

const maxLeaderboard = 100

type leaderboardRow struct {
	Rank           int             `json:"rank"`
	Name           string          `json:"name"`
	Attempts       int             `json:"attempts"`
	ElapsedSeconds float64         `json:"elapsedSeconds"`
	Difficulty     game.Difficulty `json:"difficulty"`
	LivesRemaining int             `json:"livesRemaining"`
	Timestamp      string          `json:"timestamp"`
	Points         float64         `json:"points"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var d game.Difficulty
	if raw := q.Get("difficulty"); raw != "" {
		parsed, err := game.ParseDifficulty(raw)
		if err != nil {
			writeGameError(w, err)
			return
		}
		d = parsed
	}

	n := leaderboard.DefaultTop
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "invalid_input", "limit must be a positive integer")
			return
		}
		n = min(v, maxLeaderboard)
	}

	recs, err := s.board.Top(r.Context(), n, d)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("leaderboard query")
		writeError(w, http.StatusInternalServerError, "storage_error", "")
		return
	}

	out := make([]leaderboardRow, 0, len(recs))
	for i, rec := range recs {
		out = append(out, leaderboardRow{
			Rank:           i + 1,
			Name:           rec.Name,
			Attempts:       rec.Attempts,
			ElapsedSeconds: rec.ElapsedSeconds,
			Difficulty:     rec.Difficulty,
			LivesRemaining: rec.LivesRemaining,
			Timestamp:      rec.Timestamp.UTC().Format(leaderboard.TimestampLayout),
			Points:         rec.Points(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
