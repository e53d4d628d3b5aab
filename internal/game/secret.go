// internal/game/secret.go
//
// Secret providers. Each round draws exactly one secret at Start.
//   - CryptoSecrets: crypto/rand, the default.
//   - SeededSecrets: math/rand/v2 PCG for reproducible demos.
//   - Fixed:         a constant, for tests.

package game

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// SecretProvider returns a uniformly random integer in [1, rangeMax].
type SecretProvider interface {
	Generate(rangeMax int) (int, error)
}

// CryptoSecrets draws from crypto/rand.
type CryptoSecrets struct{}

// Generate implements SecretProvider.
func (CryptoSecrets) Generate(rangeMax int) (int, error) {
	if rangeMax < 1 {
		return 0, fmt.Errorf("%w: range max must be positive, got %d", ErrInvalidInput, rangeMax)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(rangeMax)))
	if err != nil {
		return 0, fmt.Errorf("draw secret: %w", err)
	}
	return int(n.Int64()) + 1, nil
}

// SeededSecrets is a deterministic provider. Safe for concurrent use.
type SeededSecrets struct {
	mu sync.Mutex
	r  *mrand.Rand
}

// NewSeededSecrets creates a provider whose sequence depends only on seed.
func NewSeededSecrets(seed uint64) *SeededSecrets {
	return &SeededSecrets{r: mrand.New(mrand.NewPCG(seed, 0))}
}

// Generate implements SecretProvider.
func (s *SeededSecrets) Generate(rangeMax int) (int, error) {
	if rangeMax < 1 {
		return 0, fmt.Errorf("%w: range max must be positive, got %d", ErrInvalidInput, rangeMax)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(rangeMax) + 1, nil
}

// Fixed always returns n, clamped into [1, rangeMax].
type Fixed int

// Generate implements SecretProvider.
func (f Fixed) Generate(rangeMax int) (int, error) {
	if rangeMax < 1 {
		return 0, fmt.Errorf("%w: range max must be positive, got %d", ErrInvalidInput, rangeMax)
	}
	return min(max(int(f), 1), rangeMax), nil
}
