package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoints(t *testing.T) {
	cases := []struct {
		name     string
		attempts int
		elapsed  float64
		d        Difficulty
		lives    int
		want     float64
	}{
		{name: "easy", attempts: 3, elapsed: 10, d: Easy, lives: 8, want: 1350},
		{name: "medium doubles", attempts: 3, elapsed: 10, d: Medium, lives: 8, want: 2700},
		{name: "hard triples", attempts: 2, elapsed: 4.5, d: Hard, lives: 5, want: 3663},
		{name: "floored at zero", attempts: 10, elapsed: 1000, d: Hard, lives: 0, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Points(tc.attempts, tc.elapsed, tc.d, tc.lives), 1e-9)
		})
	}
}
