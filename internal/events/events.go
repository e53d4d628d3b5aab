// internal/events/events.go
//
// Round lifecycle events.
// A terminal round (won, lost, abandoned) produces one Event which the HTTP
// layer hands to a Publisher. Publishing is best effort: the round outcome
// is already final whether or not the event goes out.

package events

import (
	"context"
	"math"
	"time"

	"github.com/robalobadob/numguess/apps/go-server/internal/game"
)

// Type is the event kind; it is also the last subject token.
type Type string

const (
	RoundWon       Type = "round.won"
	RoundLost      Type = "round.lost"
	RoundAbandoned Type = "round.abandoned"
)

// Event describes a finished round.
type Event struct {
	Type           Type            `json:"type"`
	RoundID        string          `json:"roundId"`
	Player         string          `json:"player"`
	Difficulty     game.Difficulty `json:"difficulty"`
	Attempts       int             `json:"attempts"`
	LivesRemaining int             `json:"livesRemaining"`
	ElapsedSeconds float64         `json:"elapsedSeconds"`
	At             time.Time       `json:"at"`
}

// Publisher delivers events somewhere.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// FromRound builds the event for a terminated round. ok is false for
// rounds still in progress.
func FromRound(r game.Round) (e Event, ok bool) {
	var t Type
	switch r.Outcome {
	case game.Won:
		t = RoundWon
	case game.Lost:
		t = RoundLost
	case game.Abandoned:
		t = RoundAbandoned
	default:
		return Event{}, false
	}
	return Event{
		Type:           t,
		RoundID:        r.ID,
		Player:         r.Player,
		Difficulty:     r.Difficulty,
		Attempts:       r.Attempts,
		LivesRemaining: r.LivesRemaining,
		ElapsedSeconds: math.Round(r.Elapsed(r.FinishedAt).Seconds()*100) / 100,
		At:             r.FinishedAt.UTC(),
	}, true
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
