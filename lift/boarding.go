package lift

import (
	"math/rand"
	"sync"
	"time"
)

// Boarding simulates passengers stepping in when a lift reaches the floor
// it was called to. It returns the floors they press, if any.
type Boarding interface {
	Board(liftID string, floor, floors int) []int
}

// BoardingFunc adapts a plain function to Boarding.
type BoardingFunc func(liftID string, floor, floors int) []int

func (f BoardingFunc) Board(liftID string, floor, floors int) []int { return f(liftID, floor, floors) }

// NoBoarding never presses anything.
type NoBoarding struct{}

func (NoBoarding) Board(string, int, int) []int { return nil }

// RandomBoarding presses between zero and two distinct random floors.
type RandomBoarding struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomBoarding seeds the generator; seed 0 seeds from the clock.
func NewRandomBoarding(seed int64) *RandomBoarding {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomBoarding{rng: rand.New(rand.NewSource(seed))}
}

func (b *RandomBoarding) Board(_ string, _ int, floors int) []int {
	if floors <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.rng.Intn(3)
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		f := b.rng.Intn(floors)
		if len(out) == 1 && out[0] == f {
			continue
		}
		out = append(out, f)
	}
	return out
}
