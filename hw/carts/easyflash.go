package carts

import (
	"cartport/hw/cartmem"
	"cartport/hw/hwio"
)

// EasyFlash: 1MB of flash in two chips, ROML and ROMH, 64 banks of 16k
// selected by $DE00. $DE02 controls the port lines and the LED, and 256 bytes
// of RAM are visible in IO2. The flash chips are programmable from the host.
var EasyFlash = Desc{
	ID:      32,
	Name:    "EasyFlash",
	New:     newEasyFlash,
	OwnsIO2: true,
}

// $DE02 bits.
const (
	efGAME  = 0x01 // GAME asserted, if efMode
	efEXROM = 0x02 // EXROM asserted
	efMode  = 0x04 // GAME from efGAME instead of the boot jumper
	efLED   = 0x80
)

type easyFlash struct {
	*base

	bank int
	roml []byte
	romh []byte
	ram  []byte

	chips [2]flash
}

// efChip maps the flash offsets of one chip to the image buffer: 16k banks
// hold the ROML half followed by the ROMH half.
type efChip struct {
	buf  *cartmem.Buffers
	half uint32
}

func (c efChip) Offset(off uint32) uint32 {
	off &= flashSize - 1
	return (off>>13)*cartmem.ROMBankSize + c.half + off&0x1fff
}

func (c efChip) Program(off uint32, data uint8) {
	i := c.Offset(off)
	c.buf.ROM[i] &= data
	c.buf.Modified(i)
}

func (c efChip) Erase(off uint32, n int) {
	for ; n > 0; n -= 0x2000 {
		i := c.Offset(off)
		clear8k := c.buf.ROM[i : i+0x2000]
		for j := range clear8k {
			clear8k[j] = 0xff
		}
		c.buf.ModifiedRange(i, 0x2000)
		off += 0x2000
	}
}

func newEasyFlash(b *base) Cartridge {
	c := &easyFlash{
		base: b,
		ram:  b.buf.RAMBank(0)[:0x100],
	}
	c.chips[0] = flash{name: "roml", mem: efChip{buf: b.buf}}
	c.chips[1] = flash{name: "romh", mem: efChip{buf: b.buf, half: 0x2000}}
	c.setBank(0)
	return c
}

func (c *easyFlash) setBank(bank int) {
	c.bank = bank & 0x3f
	rom := c.rom16k(c.bank)
	c.roml = rom[:0x2000]
	c.romh = rom[0x2000:]
}

// Init starts in Ultimax mode, as with the boot jumper set.
func (c *easyFlash) Init() {
	c.control(0)
}

func (c *easyFlash) control(data uint8) {
	game := data&efGAME != 0
	if data&efMode == 0 {
		game = true // boot jumper
	}
	exrom := data&efEXROM != 0

	var s hwio.Signal
	switch {
	case exrom && game:
		s = hwio.Port16K
	case exrom:
		s = hwio.Port8K
	case game:
		s = hwio.PortUltimax
	default:
		s = hwio.PortNone
	}
	if data&efLED != 0 {
		s = s.With(hwio.LEDOn)
	} else {
		s = s.With(hwio.LEDOff)
	}
	c.set(s)
}

func (c *easyFlash) chipOffset(addr uint16) uint32 {
	return uint32(c.bank)<<13 | uint32(addr&0x1fff)
}

func (c *easyFlash) Read(ctl hwio.Control, addr uint16) bool {
	switch {
	case ctl.ROML():
		if id, ok := c.chips[0].autoselect(c.chipOffset(addr)); ok {
			c.port.DriveData(id)
			return true
		}
		return c.drive8k(c.roml, addr)
	case ctl.ROMH():
		if id, ok := c.chips[1].autoselect(c.chipOffset(addr)); ok {
			c.port.DriveData(id)
			return true
		}
		return c.drive8k(c.romh, addr)
	case ctl.IO2():
		c.port.DriveData(c.ram[addr&0xff])
		return true
	}
	return false
}

func (c *easyFlash) Write(ctl hwio.Control, addr uint16, data uint8) bool {
	switch {
	case ctl.IO1():
		switch addr & 0x02 {
		case 0x00:
			c.setBank(int(data))
		case 0x02:
			c.control(data)
		}
		return true
	case ctl.IO2():
		c.ram[addr&0xff] = data
		return true
	case ctl.ROML():
		c.chips[0].command(c.chipOffset(addr), data)
		return true
	case ctl.ROMH():
		c.chips[1].command(c.chipOffset(addr), data)
		return true
	}
	return false
}
