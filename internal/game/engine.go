// internal/game/engine.go
//
// Core game engine for number-guessing rounds.
// Responsibilities:
//   - Start rounds: validate the player, draw the secret, seed lives.
//   - Apply guesses: bookkeeping, hints, won/lost transitions.
//   - Abandon rounds on explicit player action.
//
// Notes:
//   - Rounds are values; every operation returns the updated copy.
//   - Time comes from an injected clockwork.Clock.
//   - Nothing here does I/O; persistence belongs to the caller.
package game

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var (
	// ErrInvalidInput rejects bad names, difficulties, or out-of-range guesses.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidState rejects operations on a finished round.
	ErrInvalidState = errors.New("invalid state")
)

const maxPlayerName = 40

// Engine applies the game rules. It holds no per-round state and is safe
// for concurrent use as long as its SecretProvider is.
type Engine struct {
	rules   Rules
	secrets SecretProvider
	clock   clockwork.Clock
}

// NewEngine builds an engine. Nil arguments fall back to ClassicRules,
// CryptoSecrets and the real clock.
func NewEngine(rules Rules, secrets SecretProvider, clock clockwork.Clock) *Engine {
	if rules == nil {
		rules = ClassicRules
	}
	if secrets == nil {
		secrets = CryptoSecrets{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{rules: rules, secrets: secrets, clock: clock}
}

// Rules exposes the active table.
func (e *Engine) Rules() Rules { return e.rules }

// Now reads the engine clock.
func (e *Engine) Now() time.Time { return e.clock.Now() }

// Start begins a new round for player at difficulty d.
func (e *Engine) Start(player string, d Difficulty) (Round, error) {
	player = strings.TrimSpace(player)
	if player == "" {
		return Round{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(player) > maxPlayerName {
		return Round{}, fmt.Errorf("%w: player name longer than %d characters", ErrInvalidInput, maxPlayerName)
	}
	lvl, err := e.rules.Level(d)
	if err != nil {
		return Round{}, err
	}
	secret, err := e.secrets.Generate(lvl.RangeMax)
	if err != nil {
		return Round{}, err
	}
	return Round{
		ID:             uuid.NewString(),
		Player:         player,
		Difficulty:     d,
		RangeMax:       lvl.RangeMax,
		Secret:         secret,
		LivesInitial:   lvl.Lives,
		LivesRemaining: lvl.Lives,
		Guesses:        []int{},
		StartedAt:      e.clock.Now(),
		Outcome:        InProgress,
	}, nil
}

// SubmitGuess applies one guess and returns the new round with its feedback.
//
// Validation:
//   - Round must be in progress (ErrInvalidState).
//   - Guess must be within [1, RangeMax] (ErrInvalidInput).
//
// On rejection the returned round equals the input.
//
// State transitions:
//   - Exact match → Won.
//   - Miss that spends the last life → Lost, secret revealed.
//   - Any other miss → direction plus hint band.
func (e *Engine) SubmitGuess(r Round, guess int) (Round, GuessResult, error) {
	if r.Terminated() {
		return r, GuessResult{}, fmt.Errorf("%w: round is %s", ErrInvalidState, r.Outcome)
	}
	if guess < 1 || guess > r.RangeMax {
		return r, GuessResult{}, fmt.Errorf("%w: guess %d outside 1..%d", ErrInvalidInput, guess, r.RangeMax)
	}

	next := r
	next.Guesses = append(slices.Clone(r.Guesses), guess)
	next.Attempts = r.Attempts + 1

	if guess == r.Secret {
		next.Outcome = Won
		next.FinishedAt = e.clock.Now()
		return next, GuessResult{
			Verdict:        Correct,
			Attempts:       next.Attempts,
			LivesRemaining: next.LivesRemaining,
			Elapsed:        next.FinishedAt.Sub(next.StartedAt),
		}, nil
	}

	next.LivesRemaining = max(r.LivesRemaining-1, 0)
	if next.LivesRemaining == 0 {
		next.Outcome = Lost
		next.FinishedAt = e.clock.Now()
		return next, GuessResult{
			Verdict:  VerdictLost,
			Attempts: next.Attempts,
			Secret:   r.Secret,
		}, nil
	}

	diff := guess - r.Secret
	res := GuessResult{
		Verdict:        Incorrect,
		Attempts:       next.Attempts,
		LivesRemaining: next.LivesRemaining,
		Direction:      directionOf(guess, r.Secret),
		Hint:           Band(diff, r.Difficulty),
	}
	if r.Difficulty == Easy {
		res.Distance = abs(diff)
	}
	return next, res, nil
}

// Abandon ends an in-progress round on the player's request and reveals
// the secret.
func (e *Engine) Abandon(r Round) (Round, int, error) {
	if r.Terminated() {
		return r, 0, fmt.Errorf("%w: round is %s", ErrInvalidState, r.Outcome)
	}
	next := r
	next.Guesses = slices.Clone(r.Guesses)
	next.Outcome = Abandoned
	next.FinishedAt = e.clock.Now()
	return next, r.Secret, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
