package rank

import (
	"math/rand"
	"sort"
)

// newRNG returns a deterministic *rand.Rand for seed.
// math/rand.Rand is not safe for concurrent use; every walker owns one.
func newRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed)) //nolint:gosec // simulation, not security
}

// deriveSeed mixes a parent seed and a stream number into an independent
// seed using the SplitMix64 finalizer, so walker streams do not correlate
// even for adjacent stream numbers.
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// drawIndex returns the index selected by u in [0, 1) from the cumulative
// distribution cdf: the first index whose cumulative mass exceeds u times
// the total mass. Scaling by the last entry absorbs rounding in the prefix
// sums, so the drawn mass matches the weights exactly.
func drawIndex(cdf []float64, u float64) int {
	target := u * cdf[len(cdf)-1]
	i := sort.Search(len(cdf), func(k int) bool { return cdf[k] > target })
	if i == len(cdf) {
		// u*total rounded up to total.
		i = len(cdf) - 1
	}
	return i
}
