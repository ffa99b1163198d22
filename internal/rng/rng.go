package rng

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument reports a request the generator cannot satisfy, such as
// a non-positive spawn count or an empty integer range.
var ErrInvalidArgument = errors.New("invalid argument")

const (
	golden = 0x9E3779B97F4A7C15
	mixA   = 0xBF58476D1CE4E5B9
	mixB   = 0x94D049BB133111EB
)

// Random is a splittable generator whose whole state is one 64-bit key.
type Random struct {
	key uint64
}

// New returns a generator keyed by seed.
func New(seed uint64) *Random {
	return &Random{key: seed}
}

// Key returns the current key.
func (r *Random) Key() uint64 {
	return r.key
}

func mix(z uint64) uint64 {
	z = (z ^ (z >> 30)) * mixA
	z = (z ^ (z >> 27)) * mixB
	return z ^ (z >> 31)
}

// childKey derives the key of the child at index from a parent key.
func childKey(parent, index uint64) uint64 {
	return mix(parent + golden + index)
}

// Uint64 advances the generator and returns 64 random bits.
func (r *Random) Uint64() uint64 {
	r.key += golden
	return mix(r.key)
}

// Int63 returns a non-negative 63-bit integer. Together with Uint64 and Seed
// it makes *Random usable as a math/rand.Source64.
func (r *Random) Int63() int64 {
	return int64(r.Uint64() >> 1)
}

// Seed resets the key.
func (r *Random) Seed(seed int64) {
	r.key = uint64(seed)
}

// Spawn derives count independent child generators. The parent key is not
// advanced: repeated calls with the same key return identical children.
func (r *Random) Spawn(count int) ([]*Random, error) {
	if count <= 0 {
		return nil, fmt.Errorf("spawn count must be positive, got %d: %w", count, ErrInvalidArgument)
	}
	children := make([]*Random, count)
	for i := range children {
		children[i] = &Random{key: childKey(r.key, uint64(i))}
	}
	return children, nil
}

// Derive returns the child Spawn would place at index.
func (r *Random) Derive(index uint64) *Random {
	return &Random{key: childKey(r.key, index)}
}

// Fork is shorthand for the only child of Spawn(1).
func (r *Random) Fork() *Random {
	return r.Derive(0)
}

// Integer returns a uniform integer in [low, high), or [low, high] when
// inclusiveHigh is set.
func (r *Random) Integer(low, high int, inclusiveHigh bool) (int, error) {
	if inclusiveHigh {
		if high < low {
			return 0, fmt.Errorf("empty range [%d, %d]: %w", low, high, ErrInvalidArgument)
		}
		if uint64(high-low) == math.MaxUint64 {
			return low + int(r.Uint64()), nil
		}
		return low + int(r.bounded(uint64(high-low)+1)), nil
	}
	if high <= low {
		return 0, fmt.Errorf("empty range [%d, %d): %w", low, high, ErrInvalidArgument)
	}
	return low + int(r.bounded(uint64(high-low))), nil
}

// bounded returns a uniform value in [0, n) by rejection sampling.
func (r *Random) bounded(n uint64) uint64 {
	threshold := -n % n
	for {
		x := r.Uint64()
		if x >= threshold {
			return x % n
		}
	}
}

// Intn returns a uniform integer in [0, n). It panics if n <= 0, like math/rand.
func (r *Random) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with non-positive n")
	}
	return int(r.bounded(uint64(n)))
}

// Random returns a float in [0, 1).
func (r *Random) Random() float64 {
	return float64(r.Uint64()>>11) * 0x1.0p-53
}

// Boolean returns true with probability p.
func (r *Random) Boolean(p float64) bool {
	return r.Random() < p
}

// Bool is a fair coin.
func (r *Random) Bool() bool {
	return r.Boolean(0.5)
}

// RandomBytes returns length random bytes.
func (r *Random) RandomBytes(length int) ([]byte, error) {
	if length < 0 {
		return nil, fmt.Errorf("byte length must be non-negative, got %d: %w", length, ErrInvalidArgument)
	}
	out := make([]byte, length)
	var buf [8]byte
	for i := 0; i < length; i += 8 {
		binary.LittleEndian.PutUint64(buf[:], r.Uint64())
		copy(out[i:], buf[:])
	}
	return out, nil
}

// NormFloat64 returns a standard normal sample (Box-Muller).
func (r *Random) NormFloat64() float64 {
	u1 := r.Random()
	for u1 == 0 {
		u1 = r.Random()
	}
	u2 := r.Random()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// Shuffle performs a Fisher-Yates shuffle over n elements.
func (r *Random) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := int(r.bounded(uint64(i + 1)))
		swap(i, j)
	}
}

// Perm returns a random permutation of 0..n-1.
func (r *Random) Perm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	r.Shuffle(n, func(i, j int) { p[i], p[j] = p[j], p[i] })
	return p
}
