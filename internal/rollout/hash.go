package rollout

import (
	"github.com/cespare/xxhash/v2"
)

// Hasher reduces a string to a 32-bit value. Implementations must be
// deterministic: the same input always yields the same hash.
type Hasher interface {
	Sum32(s string) uint32
}

// RollingHash is a 32-bit multiply-add string hash (h = h*31 + b) over the
// UTF-8 bytes of the input. The signed result is folded to its absolute value
// so buckets never depend on the sign bit.
type RollingHash struct{}

// Sum32 implements Hasher.
func (RollingHash) Sum32(s string) uint32 {
	var h int32
	for i := 0; i < len(s); i++ {
		h = h*31 + int32(s[i])
	}
	if h < 0 {
		// -MinInt32 overflows back to itself; uint32 keeps the magnitude.
		return uint32(-int64(h))
	}
	return uint32(h)
}

// XXHash folds the 64-bit xxHash of the input to 32 bits.
type XXHash struct{}

// Sum32 implements Hasher.
func (XXHash) Sum32(s string) uint32 {
	sum := xxhash.Sum64String(s)
	return uint32(sum>>32) ^ uint32(sum)
}

// Bucket returns the deterministic 1-100 bucket for a user of a toggle.
// The hashed seed is "{toggleKey}-{userID}".
func Bucket(h Hasher, toggleKey, userID string) int {
	if h == nil {
		h = RollingHash{}
	}
	return int(h.Sum32(toggleKey+"-"+userID)%100) + 1
}
