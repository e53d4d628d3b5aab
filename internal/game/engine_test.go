package game

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(rules Rules, secret int) (*Engine, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	return NewEngine(rules, Fixed(secret), clock), clock
}

func TestStart(t *testing.T) {
	e, clock := newTestEngine(ClassicRules, 42)

	r, err := e.Start("  Ana ", Medium)
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "Ana", r.Player)
	assert.Equal(t, Medium, r.Difficulty)
	assert.Equal(t, 100, r.RangeMax)
	assert.Equal(t, 42, r.Secret)
	assert.Equal(t, 8, r.LivesInitial)
	assert.Equal(t, 8, r.LivesRemaining)
	assert.Equal(t, 0, r.Attempts)
	assert.Empty(t, r.Guesses)
	assert.Equal(t, clock.Now(), r.StartedAt)
	assert.Equal(t, InProgress, r.Outcome)
	assert.False(t, r.Terminated())
}

func TestStart_Rejects(t *testing.T) {
	e, _ := newTestEngine(ClassicRules, 1)
	cases := []struct {
		name   string
		player string
		diff   Difficulty
	}{
		{name: "empty name", player: "", diff: Easy},
		{name: "blank name", player: "   ", diff: Easy},
		{name: "long name", player: "abcdefghijabcdefghijabcdefghijabcdefghijX", diff: Easy},
		{name: "unknown difficulty", player: "Bo", diff: Difficulty("insane")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Start(tc.player, tc.diff)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

type failingSecrets struct{}

func (failingSecrets) Generate(int) (int, error) { return 0, errors.New("entropy gone") }

func TestStart_SecretFailure(t *testing.T) {
	e := NewEngine(nil, failingSecrets{}, nil)
	_, err := e.Start("Ana", Easy)
	assert.EqualError(t, err, "entropy gone")
}

func TestSubmitGuess_AnaScenario(t *testing.T) {
	e, clock := newTestEngine(ClassicRules, 42)
	r, err := e.Start("Ana", Medium)
	require.NoError(t, err)

	r, res, err := e.SubmitGuess(r, 10)
	require.NoError(t, err)
	assert.Equal(t, Incorrect, res.Verdict)
	assert.Equal(t, Higher, res.Direction)
	assert.Equal(t, VeryFar, res.Hint)
	assert.Equal(t, 7, res.LivesRemaining)
	assert.Zero(t, res.Distance, "distance is only shown on easy")
	assert.Equal(t, 7, r.LivesRemaining)

	clock.Advance(12*time.Second + 340*time.Millisecond)

	r, res, err = e.SubmitGuess(r, 42)
	require.NoError(t, err)
	assert.Equal(t, Correct, res.Verdict)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, 7, res.LivesRemaining)
	assert.Equal(t, 12*time.Second+340*time.Millisecond, res.Elapsed)
	assert.Equal(t, Won, r.Outcome)
	assert.True(t, r.Terminated())
	assert.Equal(t, []int{10, 42}, r.Guesses)
}

func TestSubmitGuess_LivesAndAttempts(t *testing.T) {
	for _, d := range Difficulties {
		t.Run(string(d), func(t *testing.T) {
			e, _ := newTestEngine(ClassicRules, 1)
			r, err := e.Start("Kim", d)
			require.NoError(t, err)

			for k := 1; k < r.LivesInitial; k++ {
				r, _, err = e.SubmitGuess(r, 2)
				require.NoError(t, err)
				assert.Equal(t, r.LivesInitial-k, r.LivesRemaining)
				assert.Equal(t, k, r.Attempts)
				assert.Len(t, r.Guesses, k)
				assert.Equal(t, InProgress, r.Outcome)
			}
		})
	}
}

func TestSubmitGuess_WinAfterMisses(t *testing.T) {
	e, _ := newTestEngine(ClassicRules, 30)
	r, err := e.Start("Kim", Easy)
	require.NoError(t, err)

	for i := 0; i < r.LivesInitial-1; i++ {
		r, _, err = e.SubmitGuess(r, 31)
		require.NoError(t, err)
	}
	require.Equal(t, 1, r.LivesRemaining)

	r, res, err := e.SubmitGuess(r, 30)
	require.NoError(t, err)
	assert.Equal(t, Correct, res.Verdict)
	assert.Equal(t, Won, r.Outcome)
	assert.Equal(t, 1, r.LivesRemaining)
}

func TestSubmitGuess_HardLoss(t *testing.T) {
	e, _ := newTestEngine(HardcoreRules, 150)
	r, err := e.Start("Lee", Hard)
	require.NoError(t, err)
	require.Equal(t, 3, r.LivesRemaining)

	var res GuessResult
	for _, g := range []int{10, 20, 30} {
		r, res, err = e.SubmitGuess(r, g)
		require.NoError(t, err)
	}
	assert.Equal(t, VerdictLost, res.Verdict)
	assert.Equal(t, 150, res.Secret)
	assert.Equal(t, 0, r.LivesRemaining)
	assert.Equal(t, Lost, r.Outcome)
	assert.True(t, r.Terminated())

	after, _, err := e.SubmitGuess(r, 150)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, r, after)
}

func TestSubmitGuess_OutOfRange(t *testing.T) {
	e, _ := newTestEngine(ClassicRules, 5)
	r, err := e.Start("Kim", Easy)
	require.NoError(t, err)

	for _, g := range []int{0, -3, 51} {
		after, _, err := e.SubmitGuess(r, g)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Equal(t, r, after)
	}
}

func TestSubmitGuess_DoesNotMutateInput(t *testing.T) {
	e, _ := newTestEngine(ClassicRules, 5)
	r, err := e.Start("Kim", Easy)
	require.NoError(t, err)
	r, _, err = e.SubmitGuess(r, 9)
	require.NoError(t, err)

	a, _, err := e.SubmitGuess(r, 7)
	require.NoError(t, err)
	b, _, err := e.SubmitGuess(r, 8)
	require.NoError(t, err)

	assert.Equal(t, []int{9}, r.Guesses)
	assert.Equal(t, []int{9, 7}, a.Guesses)
	assert.Equal(t, []int{9, 8}, b.Guesses)
}

func TestSubmitGuess_EasyDistance(t *testing.T) {
	e, _ := newTestEngine(ClassicRules, 20)
	r, err := e.Start("Kim", Easy)
	require.NoError(t, err)

	_, res, err := e.SubmitGuess(r, 26)
	require.NoError(t, err)
	assert.Equal(t, Lower, res.Direction)
	assert.Equal(t, 6, res.Distance)
	assert.Equal(t, Close, res.Hint)
}

func TestAbandon(t *testing.T) {
	e, clock := newTestEngine(ClassicRules, 77)
	r, err := e.Start("Ana", Hard)
	require.NoError(t, err)
	r, _, err = e.SubmitGuess(r, 3)
	require.NoError(t, err)

	clock.Advance(time.Minute)
	r, secret, err := e.Abandon(r)
	require.NoError(t, err)
	assert.Equal(t, 77, secret)
	assert.Equal(t, Abandoned, r.Outcome)
	assert.True(t, r.Terminated())
	assert.Equal(t, time.Minute, r.Elapsed(clock.Now()))

	_, _, err = e.SubmitGuess(r, 77)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, _, err = e.Abandon(r)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestTrail(t *testing.T) {
	e, _ := newTestEngine(ClassicRules, 50)
	r, err := e.Start("Ana", Medium)
	require.NoError(t, err)
	for _, g := range []int{80, 20, 50} {
		r, _, err = e.SubmitGuess(r, g)
		require.NoError(t, err)
	}
	assert.Equal(t, []Clue{
		{Guess: 80, Direction: Lower},
		{Guess: 20, Direction: Higher},
		{Guess: 50},
	}, r.Trail())
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty(" Hard ")
	require.NoError(t, err)
	assert.Equal(t, Hard, d)

	_, err = ParseDifficulty("nightmare")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRules(t *testing.T) {
	for _, name := range []string{"", "classic", "hardcore"} {
		rules, err := RulesByName(name)
		require.NoError(t, err)
		assert.NoError(t, rules.Validate())
	}
	_, err := RulesByName("chaos")
	assert.Error(t, err)

	assert.Error(t, Rules{Easy: {RangeMax: 10, Lives: 1}}.Validate())
	assert.Error(t, Rules{Easy: {10, 0}, Medium: {10, 1}, Hard: {10, 1}}.Validate())
}
