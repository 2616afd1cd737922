// internal/game/rng.go
package game

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the source of randomness for dice rolls, deck shuffles and the
// tie-break fallback choice. Injected so tests can supply deterministic
// sequences; *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// lockedRand serializes access to an underlying *rand.Rand, which is
// not safe for concurrent use. One shared instance serves every room,
// and distinct rooms reduce on separate goroutines.
type lockedRand struct {
	mu  sync.Mutex
	src *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Intn(n)
}

func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.src.Shuffle(n, swap)
}

// NewRand returns a time-seeded source for production use.
func NewRand() Rand {
	return &lockedRand{src: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// rollDie returns a single face in [1,6].
func rollDie(rng Rand) int {
	return rng.Intn(6) + 1
}

// rollDice returns n fresh hidden die faces.
func rollDice(rng Rand, n int) []int {
	dice := make([]int, n)
	for i := range dice {
		dice[i] = rollDie(rng)
	}
	return dice
}
