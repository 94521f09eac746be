package hwio

import (
	"fmt"
	"math/bits"
)

const (
	NumBits  = 0x10000            // one bit per 16 bytes of a 1MB image
	wordSize = 64                 // using 64-bit words
	numWords = NumBits / wordSize // 1024 words exactly
)

// Bitset is a 64Kbit set. Zero value is an empty set (all bits cleared).
type Bitset struct {
	words [numWords]uint64
}

// Set sets the bit at index i.
func (b *Bitset) Set(i uint) {
	b.words[i/wordSize] |= 1 << (i % wordSize)
}

// Clear clears the bit at index i.
func (b *Bitset) Clear(i uint) {
	b.words[i/wordSize] &^= 1 << (i % wordSize)
}

// Test returns true if the bit at index i is set.
func (b *Bitset) Test(i uint) bool {
	return (b.words[i/wordSize] & (1 << (i % wordSize))) != 0
}

// AnyInRange reports whether a bit is set in the half-open interval
// [start, end).
func (b *Bitset) AnyInRange(start, end uint) bool {
	if start >= end || end > NumBits {
		panic(fmt.Sprintf("invalid range [%d, %d)", start, end))
	}
	for i := start; i < end; {
		if i%wordSize == 0 && end-i >= wordSize {
			if b.words[i/wordSize] != 0 {
				return true
			}
			i += wordSize
			continue
		}
		if b.Test(i) {
			return true
		}
		i++
	}
	return false
}

// Count returns the number of bits set.
func (b *Bitset) Count() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// SetRange sets all bits in the half-open interval [start, end).
func (b *Bitset) SetRange(start, end uint) {
	if start >= end || end > NumBits {
		panic(fmt.Sprintf("invalid range [%d, %d)", start, end))
	}
	for i := start; i < end; i++ {
		b.Set(i)
	}
}

// Reset clears all bits in the Bitset.
func (b *Bitset) Reset() {
	clear(b.words[:])
}
