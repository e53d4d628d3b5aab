package game

import "math"

// Points scoring constants.
const (
	pointsBase         = 1000
	pointsPerAttempt   = 10
	pointsPerSecond    = 2
	pointsPerLifeSaved = 50
)

// difficultyFactor multiplies the raw score.
var difficultyFactor = map[Difficulty]float64{Easy: 1, Medium: 2, Hard: 3}

// Points computes the display score for a won round. It is never negative.
func Points(attempts int, elapsedSeconds float64, d Difficulty, lives int) float64 {
	f, ok := difficultyFactor[d]
	if !ok {
		f = 1
	}
	raw := float64(pointsBase-pointsPerAttempt*attempts+pointsPerLifeSaved*lives) - pointsPerSecond*elapsedSeconds
	return math.Max(0, raw*f)
}
