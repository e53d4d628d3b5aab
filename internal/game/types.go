// internal/game/types.go
//
// Core type definitions for the number-guessing engine.
// Defines:
//   - Difficulty: named rule set (easy/medium/hard).
//   - Outcome: lifecycle state of a round.
//   - Verdict, Direction, HintLevel: per-guess feedback.
//   - Round: state for a single in-progress or finished round.
//   - GuessResult: what one submitted guess produced.

package game

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty names a rule set. The string form is what gets persisted.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists every difficulty from easiest to hardest.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// ParseDifficulty maps user input ("Easy", " hard ") onto a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, s)
	}
	return d, nil
}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// Outcome is the coarse lifecycle state of a round.
type Outcome string

const (
	InProgress Outcome = "in_progress"
	Won        Outcome = "won"
	Lost       Outcome = "lost"
	Abandoned  Outcome = "abandoned"
)

// Verdict classifies a single accepted guess.
type Verdict string

const (
	Correct   Verdict = "correct"
	Incorrect Verdict = "incorrect"
	// VerdictLost is returned for the miss that used up the last life.
	VerdictLost Verdict = "lost"
)

// Direction says where the secret lies relative to the guess.
type Direction string

const (
	Higher Direction = "higher" // secret is bigger than the guess
	Lower  Direction = "lower"  // secret is smaller than the guess
)

// Round holds the state of a single game round.
//
// Round is a value: engine operations take a Round and return the updated
// copy, leaving the input untouched.
type Round struct {
	ID             string     // Unique round identifier (uuid).
	Player         string     // Player name, trimmed and non-empty.
	Difficulty     Difficulty // Fixed for the round.
	RangeMax       int        // Secret and guesses live in [1, RangeMax].
	Secret         int        // Never changes after Start.
	LivesInitial   int        // Snapshot of the starting lives.
	LivesRemaining int        // Never below 0.
	Attempts       int        // Always len(Guesses).
	Guesses        []int      // In submission order.
	StartedAt      time.Time
	FinishedAt     time.Time // Zero while in progress.
	Outcome        Outcome
}

// Terminated reports whether the round no longer accepts guesses.
func (r Round) Terminated() bool { return r.Outcome != InProgress }

// Elapsed is the time from start to finish, or to now for a live round.
func (r Round) Elapsed(now time.Time) time.Duration {
	if !r.FinishedAt.IsZero() {
		return r.FinishedAt.Sub(r.StartedAt)
	}
	return now.Sub(r.StartedAt)
}

// Clue is one past guess together with the direction it pointed.
type Clue struct {
	Guess     int
	Direction Direction // empty for the winning guess
}

// Trail returns the guess history with per-guess directions.
// It only repeats feedback the player already received.
func (r Round) Trail() []Clue {
	out := make([]Clue, 0, len(r.Guesses))
	for _, g := range r.Guesses {
		c := Clue{Guess: g}
		if g != r.Secret {
			c.Direction = directionOf(g, r.Secret)
		}
		out = append(out, c)
	}
	return out
}

// GuessResult is the feedback for one accepted guess.
type GuessResult struct {
	Verdict        Verdict
	Attempts       int
	LivesRemaining int
	Elapsed        time.Duration // set on Correct
	Direction      Direction     // set on Incorrect
	Hint           HintLevel     // set on Incorrect
	Distance       int           // set on Incorrect at Easy only
	Secret         int           // revealed on VerdictLost
}
