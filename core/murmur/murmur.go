// Package murmur implements the word-oriented MurmurHash3 (x86, 32-bit) mixer used to
// hash structured values field by field.
//
// Values are hashed by calling Initialize once, Update once per field in a fixed
// order, and Finish with the number of fields that were mixed in. Because the field
// count participates in finalization, values with different arity cannot collide just
// because their payloads overlap.
package murmur

import "math/bits"

const (
	c1 = 0xCC9E2D51
	c2 = 0x1B873593
	r1 = 15
	r2 = 13
	m  = 5
	n  = 0xE6546B64
)

// DefaultSeed is the seed used for action and sequence hashes.
const DefaultSeed uint32 = 0

// Initialize starts a new hash with the given seed.
func Initialize(seed uint32) uint32 {
	return seed
}

// Update mixes one 32-bit word into hash. Only the low 32 bits of value are used.
func Update(hash uint32, value int) uint32 {
	k := uint32(value)
	k *= c1
	k = bits.RotateLeft32(k, r1)
	k *= c2

	hash ^= k
	hash = bits.RotateLeft32(hash, r2)
	return hash*m + n
}

// UpdateHash mixes a previously computed hash into hash.
func UpdateHash(hash, value uint32) uint32 {
	return Update(hash, int(value))
}

// Finish applies the final avalanche. words is the number of Update calls made.
func Finish(hash uint32, words int) uint32 {
	hash ^= uint32(words) * 4
	hash ^= hash >> 16
	hash *= 0x85EBCA6B
	hash ^= hash >> 13
	hash *= 0xC2B2AE35
	hash ^= hash >> 16
	return hash
}

// Words hashes values in order with DefaultSeed.
func Words(values ...int) uint32 {
	h := Initialize(DefaultSeed)
	for _, v := range values {
		h = Update(h, v)
	}
	return Finish(h, len(values))
}
