package hwio

import "fmt"

// Mem is a linear memory area with a power of two size. Addresses wrap
// around the size, as the unconnected upper address lines of a memory chip.
type Mem struct {
	Name string
	Data []byte

	// OnWrite, if set, is called after each Write8 with the wrapped offset.
	OnWrite func(off uint32)

	mask uint32
}

func NewMem(name string, data []byte) *Mem {
	if !IsPow2(len(data)) {
		panic(fmt.Sprintf("memory %s: size %d is not pow2", name, len(data)))
	}
	return &Mem{
		Name: name,
		Data: data,
		mask: uint32(len(data) - 1),
	}
}

func (m *Mem) Mask() uint32 { return m.mask }

func (m *Mem) Read8(addr uint32) uint8 {
	return m.Data[addr&m.mask]
}

func (m *Mem) Write8(addr uint32, val uint8) {
	off := addr & m.mask
	m.Data[off] = val
	if m.OnWrite != nil {
		m.OnWrite(off)
	}
}

// Fill sets n bytes starting at addr to val, wrapping around.
func (m *Mem) Fill(addr uint32, n int, val uint8) {
	for i := range n {
		m.Write8(addr+uint32(i), val)
	}
}
