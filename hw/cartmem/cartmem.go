// Package cartmem holds the cartridge image buffers shared by the cartridge
// variants, the RAM expansion and the file management layer.
package cartmem

import (
	"fmt"

	"cartport/emu/log"
	"cartport/hw/hwio"
)

const (
	ROMSize     = 1024 * 1024
	ROMBankSize = 16 * 1024
	ROMBanks    = ROMSize / ROMBankSize

	RAMSize     = 32 * 1024
	RAMBankSize = 8 * 1024

	// dirtyShift converts a ROM offset into a dirty bit index.
	dirtyShift = 4
)

const signature = "cartport::image"

type header struct {
	signature string
	banks     uint8 // number of 16k banks in use
	updated   bool  // the image was modified through a flash write
}

// Buffers are the image buffers. ROM holds the cartridge image, or the
// expansion memory in RAM expansion mode. RAM holds cartridge RAM banks.
type Buffers struct {
	ROM []byte
	RAM []byte

	hdr   header
	dirty hwio.Bitset
}

func New() *Buffers {
	return &Buffers{
		ROM: make([]byte, ROMSize),
		RAM: make([]byte, RAMSize),
	}
}

// Bank returns the 16k ROM bank n. Bank numbers wrap around.
func (b *Buffers) Bank(n int) []byte {
	n &= ROMBanks - 1
	return b.ROM[n*ROMBankSize : (n+1)*ROMBankSize]
}

// RAMBank returns the 8k RAM bank n. Banks 4-7 mirror banks 0-3.
func (b *Buffers) RAMBank(n int) []byte {
	n &= 3
	return b.RAM[n*RAMBankSize : (n+1)*RAMBankSize]
}

// Load copies an image into the ROM buffer, filling the rest with $FF as an
// erased flash would read, and marks the buffer valid.
func (b *Buffers) Load(image []byte) error {
	if len(image) > ROMSize {
		return fmt.Errorf("image too big: %d bytes, max %d", len(image), ROMSize)
	}
	n := copy(b.ROM, image)
	for i := n; i < ROMSize; i++ {
		b.ROM[i] = 0xff
	}
	banks := (len(image) + ROMBankSize - 1) / ROMBankSize
	b.MarkValid(uint8(banks))
	return nil
}

// MarkValid marks the ROM buffer as holding a complete image of banks
// 16k banks, not modified.
func (b *Buffers) MarkValid(banks uint8) {
	b.hdr = header{signature: signature, banks: banks}
	b.dirty.Reset()
}

func (b *Buffers) IsValid() bool {
	return b.hdr.signature == signature
}

// Banks returns the number of banks in use of a valid image.
func (b *Buffers) Banks() int {
	return int(b.hdr.banks)
}

// Updated reports whether a valid image has been modified since it was marked
// valid.
func (b *Buffers) Updated() bool {
	return b.IsValid() && b.hdr.updated
}

func (b *Buffers) Invalidate() {
	b.hdr.signature = ""
}

// Modified records a write at ROM offset off. It is called from bus cycles
// and must stay cheap.
func (b *Buffers) Modified(off uint32) {
	b.hdr.updated = true
	b.dirty.Set(uint(off&(ROMSize-1)) >> dirtyShift)
}

// ModifiedRange records a write of n bytes starting at ROM offset off.
func (b *Buffers) ModifiedRange(off uint32, n int) {
	b.hdr.updated = true
	start := uint(off&(ROMSize-1)) >> dirtyShift
	end := (uint(off&(ROMSize-1)) + uint(n) + (1 << dirtyShift) - 1) >> dirtyShift
	b.dirty.SetRange(start, min(end, hwio.NumBits))
}

// DirtyBanks returns the 16k banks modified since the image was marked valid.
func (b *Buffers) DirtyBanks() []int {
	const bitsPerBank = ROMBankSize >> dirtyShift

	var banks []int
	for bank := range ROMBanks {
		start := uint(bank * bitsPerBank)
		if b.dirty.AnyInRange(start, start+bitsPerBank) {
			banks = append(banks, bank)
		}
	}
	if len(banks) > 0 {
		log.ModCart.DebugZ("dirty banks").Int("count", int64(len(banks))).End()
	}
	return banks
}

// BankEmpty reports whether the first size bytes of ROM bank n are erased.
func (b *Buffers) BankEmpty(n int, size int) bool {
	for _, v := range b.Bank(n)[:size] {
		if v != 0xff {
			return false
		}
	}
	return true
}
