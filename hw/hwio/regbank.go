package hwio

import "fmt"

// RegBank is a chip register file. Every register has a live value, a
// shadow holding the last byte written by the host, and a read mask of bits
// which are hard-wired to 1.
type RegBank struct {
	Name   string
	Value  []uint8
	Shadow []uint8
	Mask   []uint8
}

func NewRegBank(name string, size int) *RegBank {
	return &RegBank{
		Name:   name,
		Value:  make([]uint8, size),
		Shadow: make([]uint8, size),
		Mask:   make([]uint8, size),
	}
}

func (rb *RegBank) String() string {
	return fmt.Sprintf("%s{% x}", rb.Name, rb.Value)
}

// Read returns what the host sees when reading register off: unimplemented
// bits read as 1.
func (rb *RegBank) Read(off int) uint8 {
	return rb.Value[off] | rb.Mask[off]
}

// Write stores a host write in both the live register and its shadow.
func (rb *RegBank) Write(off int, val uint8) {
	rb.Value[off] = val
	rb.Shadow[off] = val
}

// Restore reloads the live register off from its shadow.
func (rb *RegBank) Restore(off int) {
	rb.Value[off] = rb.Shadow[off]
}

// Reset clears live and shadow registers and sets the mask of each register.
func (rb *RegBank) Reset(masks map[int]uint8) {
	clear(rb.Value)
	clear(rb.Shadow)
	clear(rb.Mask)
	for off, m := range masks {
		rb.Mask[off] = m
	}
}

// Little-endian multi-byte fields. The live and shadow views share these
// helpers so that quirks operating on raw bytes stay byte exact.

func Get16(regs []uint8, off int) uint16 {
	return uint16(regs[off]) | uint16(regs[off+1])<<8
}

func Put16(regs []uint8, off int, val uint16) {
	regs[off] = Lo8(val)
	regs[off+1] = Hi8(val)
}

func Get24(regs []uint8, off int) uint32 {
	return uint32(regs[off]) | uint32(regs[off+1])<<8 | uint32(regs[off+2])<<16
}

func Put24(regs []uint8, off int, val uint32) {
	regs[off] = uint8(val)
	regs[off+1] = uint8(val >> 8)
	regs[off+2] = uint8(val >> 16)
}
