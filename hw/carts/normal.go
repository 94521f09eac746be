package carts

import "cartport/hw/hwio"

// Normal is a plain 8k, 16k or Ultimax ROM cartridge.
var Normal = Desc{
	ID:   0,
	Name: "Normal cartridge",
	New:  func(b *base) Cartridge { return &normal{base: b, rom: b.rom16k(0)} },
}

type normal struct {
	*base
	rom []byte
}

func (c *normal) Init() {
	var s hwio.Signal
	switch {
	case c.opts.EXROM && c.opts.GAME:
		s = hwio.Port16K
	case c.opts.GAME:
		s = hwio.PortUltimax
	case c.opts.EXROM:
		s = hwio.Port8K
	default:
		s = hwio.PortNone
	}
	c.set(s.With(hwio.LEDOn))
}

func (c *normal) Read(ctl hwio.Control, addr uint16) bool {
	if ctl.ROM() {
		return c.drive16k(c.rom, addr)
	}
	return false
}

func (c *normal) Write(ctl hwio.Control, addr uint16, data uint8) bool {
	return false
}
