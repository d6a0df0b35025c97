// Package feed implements deterministic seeded shuffling and pagination
// for the discoverability feed.
package feed

import (
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"strconv"
	"time"
)

const (
	// DefaultPageSize is used when the caller supplies a non-positive page size.
	DefaultPageSize = 10
	// MaxPageSize caps the page size a caller may request.
	MaxPageSize = 50
)

// NewSeed returns a time-derived seed for callers that did not supply one.
// Orderings produced from it are not reproducible across requests unless
// the caller echoes the seed back on subsequent pages.
func NewSeed() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}

// Paginate produces a stable pseudo-random ordering of candidates and
// returns the requested page of it, plus whether more pages follow.
//
// The permutation is a pure function of seed and the input sequence: the
// same seed over the same candidates always yields the same ordering, so a
// client scrolling through pages with a fixed seed sees each candidate
// exactly once. An empty seed falls back to a time-derived one, trading
// reproducibility for variety.
//
// page < 1 is treated as 1; pageSize <= 0 as DefaultPageSize; pageSize
// above MaxPageSize is clamped. Paginate never fails.
func Paginate[T any](candidates []T, seed string, page, pageSize int) ([]T, bool) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	if len(candidates) == 0 {
		return []T{}, false
	}

	shuffled := shuffle(candidates, seed)

	start := (page - 1) * pageSize
	if start >= len(shuffled) {
		return []T{}, false
	}

	end := min(start+pageSize, len(shuffled))
	return shuffled[start:end], end < len(shuffled)
}

// shuffle returns a Fisher-Yates permutation of items drawn from a
// generator derived solely from seed. The input slice is not mutated.
func shuffle[T any](items []T, seed string) []T {
	if seed == "" {
		seed = NewSeed()
	}

	out := slices.Clone(items)
	rng := rand.New(rand.NewPCG(seedValue(seed), 0))
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// seedValue hashes the seed string to a 64-bit generator seed.
func seedValue(seed string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return h.Sum64()
}
