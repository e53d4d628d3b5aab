package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numguess/apps/go-server/internal/config"
	"github.com/robalobadob/numguess/apps/go-server/internal/events"
	"github.com/robalobadob/numguess/apps/go-server/internal/game"
	"github.com/robalobadob/numguess/apps/go-server/internal/httpserver"
	"github.com/robalobadob/numguess/apps/go-server/internal/leaderboard"
	"github.com/robalobadob/numguess/apps/go-server/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg)

	rules, err := game.RulesByName(cfg.Rules)
	if err != nil {
		log.Fatal().Err(err).Msg("bad rules")
	}
	var secrets game.SecretProvider = game.CryptoSecrets{}
	if cfg.SecretSeed != 0 {
		log.Warn().Uint64("seed", cfg.SecretSeed).Msg("secrets are seeded; rounds are reproducible")
		secrets = game.NewSeededSecrets(cfg.SecretSeed)
	}
	engine := game.NewEngine(rules, secrets, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	board, err := leaderboard.Open(ctx, leaderboard.Options{
		Backend: cfg.Leaderboard.Backend,
		Path:    cfg.Leaderboard.Path,
		DSN:     cfg.Leaderboard.DSN,
	})
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Leaderboard.Backend).Msg("failed to open leaderboard")
	}
	defer board.Close()

	var pub events.Publisher = events.Nop{}
	if cfg.NATS.URL != "" {
		np, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			// Events are optional; keep serving without them.
			log.Error().Err(err).Str("nats_url", cfg.NATS.URL).Msg("nats unavailable, events disabled")
		} else {
			pub = np
		}
	}
	defer pub.Close()

	srv := httpserver.New(engine, store.NewMemoryStore(), board, pub, httpserver.Options{
		ClientOrigin: cfg.ClientOrigin,
		JWTSecret:    cfg.JWTSecret,
		TicketTTL:    cfg.TicketTTL,
		SecureCookie: strings.HasPrefix(cfg.ClientOrigin, "https://"),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("rules", cfg.Rules).
			Str("leaderboard", cfg.Leaderboard.Backend).
			Msg("starting go-server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func setupLogging(cfg config.Config) {
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
