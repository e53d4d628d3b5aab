// internal/httpserver/server.go
//
// HTTP server wiring for the number-guessing backend.
// Responsibilities:
//   - Router + middleware (request IDs, access log, CORS, timeouts, panic recovery).
//   - Public endpoints: "/", "/health", "/difficulties", "/leaderboard".
//   - Round endpoints (ticket required except /round/new): mounted under /round.
//   - Handing finished rounds to the leaderboard and the event publisher.
//
// Notes:
//   - A round ticket is a signed JWT naming one round; it is how a browser
//     session owns exactly one round.
//   - CORS is origin-aware and credentials-enabled so the ticket cookie works.

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numguess/apps/go-server/internal/events"
	"github.com/robalobadob/numguess/apps/go-server/internal/game"
	"github.com/robalobadob/numguess/apps/go-server/internal/leaderboard"
	"github.com/robalobadob/numguess/apps/go-server/internal/store"
)

// Options configures the HTTP layer.
type Options struct {
	ClientOrigin string        // allowed CORS origin
	JWTSecret    string        // HS256 key for round tickets
	TicketTTL    time.Duration // ticket lifetime
	SecureCookie bool          // set Secure + SameSite=None on the ticket cookie
}

// Server bundles router, engine, round store, leaderboard and publisher.
type Server struct {
	r      *chi.Mux
	engine *game.Engine
	rounds store.Store
	board  leaderboard.Store
	events events.Publisher
	opts   Options

	mu sync.Mutex // serialises read-modify-write of rounds
}

// New constructs a Server, installs middleware, and registers routes.
func New(engine *game.Engine, rounds store.Store, board leaderboard.Store, pub events.Publisher, opts Options) *Server {
	if pub == nil {
		pub = events.Nop{}
	}
	if opts.TicketTTL <= 0 {
		opts.TicketTTL = 24 * time.Hour
	}
	s := &Server{r: chi.NewRouter(), engine: engine, rounds: rounds, board: board, events: pub, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(hlog.NewHandler(log.Logger))
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{opts.ClientOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"numguess-go","endpoints":["/health","/difficulties","/leaderboard","POST /round/new","POST /round/guess","POST /round/abandon","GET /round"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Get("/difficulties", s.handleDifficulties)
	s.mountRound(s.r)
	s.r.Get("/leaderboard", s.handleLeaderboard)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Router exposes the internal router (used by main and tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, d time.Duration) {
	lvl := zerolog.DebugLevel
	if status >= http.StatusInternalServerError {
		lvl = zerolog.WarnLevel
	}
	hlog.FromRequest(r).WithLevel(lvl).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", chimw.GetReqID(r.Context())).
		Int("status", status).
		Int("size", size).
		Dur("took", d).
		Msg("request")
}

// ------------------------------ difficulties --------------------------------

type difficultyRow struct {
	Name     game.Difficulty `json:"name"`
	RangeMax int             `json:"rangeMax"`
	Lives    int             `json:"lives"`
}

// handleDifficulties lists the active rules table, easiest first.
func (s *Server) handleDifficulties(w http.ResponseWriter, r *http.Request) {
	rules := s.engine.Rules()
	out := make([]difficultyRow, 0, len(game.Difficulties))
	for _, d := range game.Difficulties {
		if lvl, ok := rules[d]; ok {
			out = append(out, difficultyRow{Name: d, RangeMax: lvl.RangeMax, Lives: lvl.Lives})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	body := map[string]string{"error": code}
	if detail != "" {
		body["detail"] = detail
	}
	writeJSON(w, status, body)
}
