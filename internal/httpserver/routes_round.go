// internal/httpserver/routes_round.go
//
// HTTP routes for playing a round. Mounted under /round:
//   - POST /round/new     → start a round, issue its ticket
//   - POST /round/guess   → submit a guess for the ticket's round
//   - POST /round/abandon → give up and reveal the secret
//   - GET  /round         → current state and guess history
//
// Rounds live in the round store for the whole session; finished rounds stay
// there so late guesses are rejected instead of starting over. Wins are
// appended to the leaderboard, and every terminal round is published.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/numguess/apps/go-server/internal/events"
	"github.com/robalobadob/numguess/apps/go-server/internal/game"
	"github.com/robalobadob/numguess/apps/go-server/internal/leaderboard"
	"github.com/robalobadob/numguess/apps/go-server/internal/store"
)

// mountRound registers all /round routes.
func (s *Server) mountRound(r chi.Router) {
	r.Route("/round", func(r chi.Router) {
		r.Post("/new", s.handleNewRound)
		r.Group(func(r chi.Router) {
			r.Use(s.requireTicket)
			r.Get("/", s.handleGetRound)
			r.Post("/guess", s.handleGuess)
			r.Post("/abandon", s.handleAbandon)
		})
	})
}

// -----------------------------------------------------------------------------
// views

type clueView struct {
	Guess     int            `json:"guess"`
	Direction game.Direction `json:"direction,omitempty"`
}

// roundView is the client-facing round. The secret only appears once the
// round is over.
type roundView struct {
	RoundID        string          `json:"roundId"`
	Player         string          `json:"player"`
	Difficulty     game.Difficulty `json:"difficulty"`
	RangeMax       int             `json:"rangeMax"`
	LivesInitial   int             `json:"livesInitial"`
	LivesRemaining int             `json:"livesRemaining"`
	Attempts       int             `json:"attempts"`
	Outcome        game.Outcome    `json:"outcome"`
	Trail          []clueView      `json:"trail"`
	Tried          []int           `json:"tried"` // sorted
	ElapsedSeconds float64         `json:"elapsedSeconds"`
	Secret         *int            `json:"secret,omitempty"`
}

func (s *Server) view(r game.Round) roundView {
	v := roundView{
		RoundID:        r.ID,
		Player:         r.Player,
		Difficulty:     r.Difficulty,
		RangeMax:       r.RangeMax,
		LivesInitial:   r.LivesInitial,
		LivesRemaining: r.LivesRemaining,
		Attempts:       r.Attempts,
		Outcome:        r.Outcome,
		Trail:          []clueView{},
		Tried:          slices.Sorted(slices.Values(r.Guesses)),
		ElapsedSeconds: seconds(r.Elapsed(s.engine.Now()).Seconds()),
	}
	if v.Tried == nil {
		v.Tried = []int{}
	}
	for _, c := range r.Trail() {
		v.Trail = append(v.Trail, clueView{Guess: c.Guess, Direction: c.Direction})
	}
	if r.Terminated() {
		secret := r.Secret
		v.Secret = &secret
	}
	return v
}

func seconds(f float64) float64 { return math.Round(f*100) / 100 }

// -----------------------------------------------------------------------------
// /round/new

type newRoundReq struct {
	Name       string `json:"name"`
	Difficulty string `json:"difficulty"`
}

type newRoundRes struct {
	Ticket    string    `json:"ticket"`
	ExpiresAt int64     `json:"expiresAt"`
	Round     roundView `json:"round"`
}

// handleNewRound starts a round. A previous round held by the same ticket
// is dropped from the store.
func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	var req newRoundReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "")
		return
	}
	d, err := game.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeGameError(w, err)
		return
	}
	round, err := s.engine.Start(req.Name, d)
	if err != nil {
		writeGameError(w, err)
		return
	}

	if tok := bearerOrCookie(r); tok != "" {
		if old, err := s.parseTicket(tok); err == nil {
			_ = s.rounds.Delete(r.Context(), old.RoundID)
		}
	}
	if err := s.rounds.Save(r.Context(), round); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("save round")
		writeError(w, http.StatusInternalServerError, "save_failed", "")
		return
	}

	tok, exp, err := s.signTicket(round)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("sign ticket")
		writeError(w, http.StatusInternalServerError, "sign_failed", "")
		return
	}
	s.setTicketCookie(w, tok, exp)

	hlog.FromRequest(r).Info().
		Str("round", round.ID).
		Str("player", round.Player).
		Str("difficulty", string(round.Difficulty)).
		Msg("round started")
	writeJSON(w, http.StatusOK, newRoundRes{Ticket: tok, ExpiresAt: exp.Unix(), Round: s.view(round)})
}

// -----------------------------------------------------------------------------
// GET /round

func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	round, ok := s.loadRound(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(round))
}

// -----------------------------------------------------------------------------
// /round/guess

type guessReq struct {
	Guess *int `json:"guess"`
}

type guessRes struct {
	Verdict        game.Verdict    `json:"verdict"`
	Attempts       int             `json:"attempts"`
	LivesRemaining int             `json:"livesRemaining"`
	Direction      game.Direction  `json:"direction,omitempty"`
	Hint           *game.HintLevel `json:"hint,omitempty"`
	Distance       int             `json:"distance,omitempty"`
	ElapsedSeconds float64         `json:"elapsedSeconds,omitempty"`
	Secret         int             `json:"secret,omitempty"`
	Saved          *bool           `json:"saved,omitempty"` // set on wins
	Points         float64         `json:"points,omitempty"`
	Round          roundView       `json:"round"`
}

// handleGuess applies a guess to the ticket's round.
// - Bad payload or out-of-range guess → 400, round unchanged.
// - Round already over → 409.
// - Win → record appended; a failed append is reported as saved=false
//   and the round stays won.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Guess == nil {
		writeError(w, http.StatusBadRequest, "bad_json", "guess must be an integer")
		return
	}

	s.mu.Lock()
	round, ok := s.loadRound(w, r)
	if !ok {
		s.mu.Unlock()
		return
	}
	next, res, err := s.engine.SubmitGuess(round, *req.Guess)
	if err != nil {
		s.mu.Unlock()
		writeGameError(w, err)
		return
	}
	if err := s.rounds.Save(r.Context(), next); err != nil {
		s.mu.Unlock()
		hlog.FromRequest(r).Error().Err(err).Msg("save round")
		writeError(w, http.StatusInternalServerError, "save_failed", "")
		return
	}
	s.mu.Unlock()

	out := guessRes{
		Verdict:        res.Verdict,
		Attempts:       res.Attempts,
		LivesRemaining: res.LivesRemaining,
		Direction:      res.Direction,
		Distance:       res.Distance,
		Secret:         res.Secret,
	}
	switch res.Verdict {
	case game.Incorrect:
		hint := res.Hint
		out.Hint = &hint
	case game.Correct:
		out.ElapsedSeconds = seconds(res.Elapsed.Seconds())
		saved := s.recordWin(r, next)
		out.Saved = &saved
		out.Points = game.Points(res.Attempts, out.ElapsedSeconds, next.Difficulty, res.LivesRemaining)
	}
	if next.Terminated() {
		s.publish(r, next)
	}
	out.Round = s.view(next)
	writeJSON(w, http.StatusOK, out)
}

// recordWin appends the leaderboard record for a won round.
func (s *Server) recordWin(r *http.Request, round game.Round) bool {
	rec, err := leaderboard.FromRound(round, s.engine.Now())
	if err == nil {
		err = s.board.Append(r.Context(), rec)
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("round", round.ID).Msg("leaderboard append")
		return false
	}
	hlog.FromRequest(r).Info().
		Str("round", round.ID).
		Str("player", rec.Name).
		Int("attempts", rec.Attempts).
		Float64("elapsed_seconds", rec.ElapsedSeconds).
		Msg("round won")
	return true
}

// publish sends the terminal event for round, best effort.
func (s *Server) publish(r *http.Request, round game.Round) {
	e, ok := events.FromRound(round)
	if !ok {
		return
	}
	// The request context may be cancelled once the response is written.
	if err := s.events.Publish(context.WithoutCancel(r.Context()), e); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("event", string(e.Type)).Msg("publish round event")
	}
}

// -----------------------------------------------------------------------------
// /round/abandon

type abandonRes struct {
	Outcome game.Outcome `json:"outcome"`
	Secret  int          `json:"secret"`
	Round   roundView    `json:"round"`
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	round, ok := s.loadRound(w, r)
	if !ok {
		s.mu.Unlock()
		return
	}
	next, secret, err := s.engine.Abandon(round)
	if err != nil {
		s.mu.Unlock()
		writeGameError(w, err)
		return
	}
	if err := s.rounds.Save(r.Context(), next); err != nil {
		s.mu.Unlock()
		hlog.FromRequest(r).Error().Err(err).Msg("save round")
		writeError(w, http.StatusInternalServerError, "save_failed", "")
		return
	}
	s.mu.Unlock()

	s.publish(r, next)
	writeJSON(w, http.StatusOK, abandonRes{Outcome: next.Outcome, Secret: secret, Round: s.view(next)})
}

// -----------------------------------------------------------------------------
// helpers

// loadRound fetches the ticket's round, writing the error response if it
// cannot.
func (s *Server) loadRound(w http.ResponseWriter, r *http.Request) (game.Round, bool) {
	claims := ticketFrom(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_ticket", "")
		return game.Round{}, false
	}
	round, err := s.rounds.Get(r.Context(), claims.RoundID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "round_not_found", "")
		return game.Round{}, false
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("load round")
		writeError(w, http.StatusInternalServerError, "load_failed", "")
		return game.Round{}, false
	}
	return round, true
}

// writeGameError maps engine errors onto status codes.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, game.ErrInvalidState):
		writeError(w, http.StatusConflict, "invalid_state", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", "")
	}
}
