package carts

import "cartport/emu/log"

// AM29F040 identification, read in autoselect mode.
const (
	flashManufacturer = 0x01
	flashDevice       = 0xa4

	flashSize       = 512 * 1024
	flashSectorSize = 64 * 1024
)

type flashState uint8

const (
	flashRead flashState = iota
	flashUnlock1
	flashUnlock2
	flashProgram
	flashErase
	flashEraseUnlock1
	flashEraseUnlock2
	flashAutoselect
)

// flashMem gives access to the bytes of a flash chip, which may not be stored
// contiguously.
type flashMem interface {
	Offset(off uint32) uint32 // image buffer offset of flash offset off
	Program(off uint32, data uint8)
	Erase(off uint32, n int)
}

// flash is the command state machine of an AM29F040 chip.
type flash struct {
	name  string
	mem   flashMem
	state flashState
}

// command handles a write at chip offset off.
func (f *flash) command(off uint32, data uint8) {
	cmdAddr := off & 0x7ff

	// Reset is accepted in any state but program.
	if data == 0xf0 && f.state != flashProgram {
		f.state = flashRead
		return
	}

	switch f.state {
	case flashRead, flashAutoselect:
		if cmdAddr == 0x555 && data == 0xaa {
			f.state = flashUnlock1
			return
		}
	case flashUnlock1:
		if cmdAddr == 0x2aa && data == 0x55 {
			f.state = flashUnlock2
			return
		}
	case flashUnlock2:
		if cmdAddr == 0x555 {
			switch data {
			case 0xa0:
				f.state = flashProgram
				return
			case 0x80:
				f.state = flashErase
				return
			case 0x90:
				f.state = flashAutoselect
				return
			}
		}
	case flashProgram:
		f.mem.Program(off, data)
		log.ModCart.DebugZ("flash program").String("chip", f.name).Hex20("off", off).Hex8("data", data).End()
		f.state = flashRead
		return
	case flashErase:
		if cmdAddr == 0x555 && data == 0xaa {
			f.state = flashEraseUnlock1
			return
		}
	case flashEraseUnlock1:
		if cmdAddr == 0x2aa && data == 0x55 {
			f.state = flashEraseUnlock2
			return
		}
	case flashEraseUnlock2:
		switch {
		case data == 0x30:
			sector := off &^ (flashSectorSize - 1)
			f.mem.Erase(sector, flashSectorSize)
			log.ModCart.DebugZ("flash sector erase").String("chip", f.name).Hex20("sector", sector).End()
			f.state = flashRead
			return
		case data == 0x10 && cmdAddr == 0x555:
			f.mem.Erase(0, flashSize)
			log.ModCart.DebugZ("flash chip erase").String("chip", f.name).End()
			f.state = flashRead
			return
		}
	}

	// Unexpected sequences return to read mode.
	log.ModCart.DebugZ("flash unexpected command").
		String("chip", f.name).
		Hex20("off", off).
		Hex8("data", data).
		Int("state", int64(f.state)).
		End()
	f.state = flashRead
}

// autoselect returns the identification byte at chip offset off, and false
// when not in autoselect mode.
func (f *flash) autoselect(off uint32) (uint8, bool) {
	if f.state != flashAutoselect {
		return 0, false
	}
	switch off & 0xff {
	case 0:
		return flashManufacturer, true
	case 1:
		return flashDevice, true
	}
	return 0, true // no sector is write protected
}
