package gacha

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math"
	"math/rand/v2"
	"sync"
)

// RandomSource abstracts the randomness behind every roll.
// Implementations must be safe for concurrent use.
type RandomSource interface {
	Float64() float64 // [0, 1)
	IntN(n int) int   // [0, n); n must be > 0
}

// crypto random : default generation method
type cryptoRNG struct{}

func (cryptoRNG) uint64() uint64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		// back to math/rand/v2
		return rand.Uint64()
	}
	return binary.BigEndian.Uint64(buf[:])
}

func (c cryptoRNG) Float64() float64 {
	u := c.uint64() >> 11 // 53 bits
	return float64(u) / (1 << 53)
}

func (c cryptoRNG) IntN(n int) int {
	if n <= 0 {
		panic("gacha: IntN called with n <= 0")
	}
	bound := uint64(n)
	// rejection sampling keeps the result unbiased
	limit := math.MaxUint64 - math.MaxUint64%bound
	for {
		v := c.uint64()
		if v < limit {
			return int(v % bound)
		}
	}
}

func DefaultRNG() RandomSource { return cryptoRNG{} }

// Replicable RNG (tests, Monte Carlo, reproducible servers)
type seededRNG struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

func (s *seededRNG) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}
