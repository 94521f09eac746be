package carts

import "cartport/hw/hwio"

// Variants switching their configuration on I/O accesses, with a single ROM
// bank.

// SimonsBasic: 16k ROM, reading IO1 switches to 8k mode, writing IO1 back to
// 16k mode.
var SimonsBasic = Desc{
	ID:   4,
	Name: "Simons' BASIC",
	New:  func(b *base) Cartridge { return &simonsBasic{base: b, rom: b.rom16k(0)} },
}

type simonsBasic struct {
	*base
	rom []byte
}

func (c *simonsBasic) Init() { c.set(hwio.Port16K.With(hwio.LEDOn)) }

func (c *simonsBasic) Read(ctl hwio.Control, addr uint16) bool {
	if ctl.ROM() {
		return c.drive16k(c.rom, addr)
	}
	if ctl.IO1() {
		c.set(hwio.Port8K)
	}
	return false
}

func (c *simonsBasic) Write(ctl hwio.Control, addr uint16, data uint8) bool {
	if ctl.IO1() {
		c.set(hwio.Port16K)
		return true
	}
	return false
}

// Westermann: 16k ROM, starts in 16k mode. Any read of IO2 switches to 8k
// mode. IO2 reads are claimed without driving the bus, a chained handler
// never sees them.
var Westermann = Desc{
	ID:   11,
	Name: "Westermann Learning",
	New:  func(b *base) Cartridge { return &westermann{base: b, rom: b.rom16k(0)} },
}

type westermann struct {
	*base
	rom []byte
}

func (c *westermann) Init() { c.set(hwio.Port16K.With(hwio.LEDOn)) }

func (c *westermann) Read(ctl hwio.Control, addr uint16) bool {
	if ctl.ROM() {
		return c.drive16k(c.rom, addr)
	}
	if ctl.IO2() {
		c.set(hwio.Port8K.With(hwio.LEDOff))
		return true
	}
	return false
}

func (c *westermann) Write(ctl hwio.Control, addr uint16, data uint8) bool {
	return false
}

// RexUtility: 8k ROM. Reading $DF00-$DFBF disables the ROM, reading
// $DFC0-$DFFF enables it. IO2 reads are claimed as for Westermann.
var RexUtility = Desc{
	ID:   12,
	Name: "REX Utility",
	New:  func(b *base) Cartridge { return &rexUtility{base: b, rom: b.rom8k(0)} },
}

type rexUtility struct {
	*base
	rom []byte
}

func (c *rexUtility) Init() { c.set(hwio.Port8K.With(hwio.LEDOn)) }

func (c *rexUtility) Read(ctl hwio.Control, addr uint16) bool {
	if ctl.ROML() {
		return c.drive8k(c.rom, addr)
	}
	if ctl.IO2() {
		if addr&0xff < 0xc0 {
			c.set(hwio.PortNone.With(hwio.LEDOff))
		} else {
			c.set(hwio.Port8K.With(hwio.LEDOn))
		}
		return true
	}
	return false
}

func (c *rexUtility) Write(ctl hwio.Control, addr uint16, data uint8) bool {
	return false
}
