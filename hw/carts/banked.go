package carts

import "cartport/hw/hwio"

// Bank switched variants.

// Ocean type 1: 8k banks selected by writing $DE00, the bank shows at both
// ROML and ROMH.
var Ocean = Desc{
	ID:   5,
	Name: "Ocean type 1",
	New:  func(b *base) Cartridge { return &ocean{base: b, rom: b.rom8k(0)} },
}

type ocean struct {
	*base
	rom []byte
}

func (c *ocean) Init() { c.set(hwio.Port16K.With(hwio.LEDOn)) }

func (c *ocean) Read(ctl hwio.Control, addr uint16) bool {
	if ctl.ROM() {
		return c.drive8k(c.rom, addr)
	}
	return false
}

func (c *ocean) Write(ctl hwio.Control, addr uint16, data uint8) bool {
	if ctl.IO1() {
		c.rom = c.rom8k(int(data & 0x3f))
		return true
	}
	return false
}

// FunPlay: 8k banks, $DE00 bits 3-5 and 0 select the bank, $86 disables the
// cartridge.
var FunPlay = Desc{
	ID:   7,
	Name: "Fun Play, Power Play",
	New:  func(b *base) Cartridge { return &funPlay{base: b, rom: b.rom8k(0)} },
}

type funPlay struct {
	*base
	rom []byte
}

func (c *funPlay) Init() { c.set(hwio.Port8K.With(hwio.LEDOn)) }

func (c *funPlay) Read(ctl hwio.Control, addr uint16) bool {
	if ctl.ROML() {
		return c.drive8k(c.rom, addr)
	}
	return false
}

func (c *funPlay) Write(ctl hwio.Control, addr uint16, data uint8) bool {
	if !ctl.IO1() {
		return false
	}
	if data == 0x86 {
		c.set(hwio.PortNone.With(hwio.LEDOff))
		return true
	}
	bank := (data>>3)&0x07 | (data&0x01)<<3
	c.rom = c.rom8k(int(bank))
	c.set(hwio.Port8K)
	return true
}

// SuperGames: 16k banks selected by writing $DF00. Bit 2 disables the
// cartridge and bit 3 locks the register until reset.
var SuperGames = Desc{
	ID:   8,
	Name: "Super Games",
	New:  func(b *base) Cartridge { return &superGames{base: b, rom: b.rom16k(0)} },
}

type superGames struct {
	*base
	rom    []byte
	locked bool
}

func (c *superGames) Init() { c.set(hwio.Port16K.With(hwio.LEDOn)) }

func (c *superGames) Read(ctl hwio.Control, addr uint16) bool {
	if ctl.ROM() {
		return c.drive16k(c.rom, addr)
	}
	return false
}

func (c *superGames) Write(ctl hwio.Control, addr uint16, data uint8) bool {
	if !ctl.IO2() {
		return false
	}
	if c.locked {
		return true
	}
	c.rom = c.rom16k(int(data & 0x03))
	if data&0x04 != 0 {
		c.set(hwio.PortNone)
	} else {
		c.set(hwio.Port16K)
	}
	c.locked = data&0x08 != 0
	return true
}

// Dinamic: 8k banks, reading $DE0x selects bank x.
var Dinamic = Desc{
	ID:   17,
	Name: "Dinamic",
	New:  func(b *base) Cartridge { return &dinamic{base: b, rom: b.rom8k(0)} },
}

type dinamic struct {
	*base
	rom []byte
}

func (c *dinamic) Init() { c.set(hwio.Port8K.With(hwio.LEDOn)) }

func (c *dinamic) Read(ctl hwio.Control, addr uint16) bool {
	if ctl.ROML() {
		return c.drive8k(c.rom, addr)
	}
	if ctl.IO1() {
		c.rom = c.rom8k(int(addr & 0x0f))
	}
	return false
}

func (c *dinamic) Write(ctl hwio.Control, addr uint16, data uint8) bool {
	return false
}

// MagicDesk: 8k banks selected by writing $DE00, bit 7 disables the
// cartridge.
var MagicDesk = Desc{
	ID:   19,
	Name: "Magic Desk, Domark, HES Australia",
	New:  func(b *base) Cartridge { return &magicDesk{base: b, rom: b.rom8k(0)} },
}

type magicDesk struct {
	*base
	rom []byte
}

func (c *magicDesk) Init() { c.set(hwio.Port8K.With(hwio.LEDOn)) }

func (c *magicDesk) Read(ctl hwio.Control, addr uint16) bool {
	if ctl.ROML() {
		return c.drive8k(c.rom, addr)
	}
	return false
}

func (c *magicDesk) Write(ctl hwio.Control, addr uint16, data uint8) bool {
	if !ctl.IO1() {
		return false
	}
	if data&0x80 != 0 {
		c.set(hwio.PortNone.With(hwio.LEDOff))
		return true
	}
	c.rom = c.rom8k(int(data & 0x7f))
	c.set(hwio.Port8K.With(hwio.LEDOn))
	return true
}

// Comal80: 16k banks selected by writing IO1.
var Comal80 = Desc{
	ID:   21,
	Name: "Comal-80",
	New:  func(b *base) Cartridge { return &comal80{base: b, rom: b.rom16k(0)} },
}

type comal80 struct {
	*base
	rom []byte
}

func (c *comal80) Init() { c.set(hwio.Port16K.With(hwio.LEDOn)) }

func (c *comal80) Read(ctl hwio.Control, addr uint16) bool {
	if ctl.ROM() {
		return c.drive16k(c.rom, addr)
	}
	return false
}

func (c *comal80) Write(ctl hwio.Control, addr uint16, data uint8) bool {
	if ctl.IO1() {
		c.rom = c.rom16k(int(data & 0x03))
		return true
	}
	return false
}
