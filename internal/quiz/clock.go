package quiz

import (
	"math/rand/v2"
	"time"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the wall clock time in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time {
	return time.Time(c)
}

// RandomSource picks uniformly distributed indexes.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	// IntN returns a value in [0, n). n is always positive.
	IntN(n int) int
}

// SystemRandom uses the global math/rand/v2 source, which is safe for concurrent use.
type SystemRandom struct{}

func (SystemRandom) IntN(n int) int {
	return rand.IntN(n)
}
