package prng

import (
	"math/rand"

	"github.com/seehuhn/mt19937"
)

// Key is an immutable random stream value. A key is either split into fresh
// sub-keys or turned into a generator, never both.
type Key uint64

// splitmix64 step. Each call advances the state by the golden gamma and
// returns a well-mixed output, so sibling sub-keys are uncorrelated.
func mix(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Split consumes k and returns n fresh sub-keys. The caller must not reuse k
// for another draw afterwards.
func (k Key) Split(n int) []Key {
	ys := make([]Key, n)
	z := uint64(k)
	for i := 0; i < n; i++ {
		z = mix(z)
		ys[i] = Key(z)
	}
	return ys
}

// Next consumes k and returns one fresh sub-key together with the remainder
// to thread onward.
func (k Key) Next() (Key, Key) {
	sub := mix(uint64(k))
	rest := mix(sub + 0x9e3779b97f4a7c15)
	return Key(sub), Key(rest)
}

// New builds a mt19937-backed generator seeded from k. The generator is for
// a single consumer; independent consumers take independent sub-keys.
func New(k Key) *rand.Rand {
	src := mt19937.New()
	src.Seed(int64(uint64(k)))
	return rand.New(src)
}
