package game

import (
	"encoding/json"
	"fmt"
)

// HintLevel is a coarse proximity band, ordered from farthest to closest.
type HintLevel int

const (
	VeryFar HintLevel = iota
	Far
	Close
	VeryClose
)

var hintNames = [...]string{"very_far", "far", "close", "very_close"}

func (h HintLevel) String() string {
	if h < VeryFar || h > VeryClose {
		return fmt.Sprintf("HintLevel(%d)", int(h))
	}
	return hintNames[h]
}

// MarshalJSON renders the band by name.
func (h HintLevel) MarshalJSON() ([]byte, error) { return json.Marshal(h.String()) }

// band is one step of a threshold table: distances strictly above Over
// fall into Level.
type band struct {
	Over  int
	Level HintLevel
}

// hintTables lists steps from the widest gap down; the last step has Over -1.
// Harder difficulties get fewer, coarser steps.
var hintTables = map[Difficulty][]band{
	Easy:   {{20, VeryFar}, {10, Far}, {5, Close}, {-1, VeryClose}},
	Medium: {{20, VeryFar}, {10, Far}, {-1, Close}},
	Hard:   {{50, VeryFar}, {25, Far}, {-1, Close}},
}

// Band classifies the absolute distance between a guess and the secret.
// Unknown difficulties use the hard table.
func Band(diff int, d Difficulty) HintLevel {
	if diff < 0 {
		diff = -diff
	}
	table, ok := hintTables[d]
	if !ok {
		table = hintTables[Hard]
	}
	for _, b := range table {
		if diff > b.Over {
			return b.Level
		}
	}
	return table[len(table)-1].Level
}

func directionOf(guess, secret int) Direction {
	if guess < secret {
		return Higher
	}
	return Lower
}
