package pkg

import (
	"math/rand"
	"sync"
	"time"
)

// LockedRand is a rand.Rand safe for use from concurrent handlers.
type LockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewLockedRand() *LockedRand {
	return NewSeededRand(time.Now().UnixNano())
}

func NewSeededRand(seed int64) *LockedRand {
	return &LockedRand{
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (r *LockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// IntRange returns a value in [min, min+span).
func (r *LockedRand) IntRange(min, span int) int {
	return min + r.Intn(span)
}

func (r *LockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}
