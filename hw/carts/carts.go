// Package carts implements the cartridge variants, as bus handlers working on
// the cartridge image buffers.
package carts

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"cartport/emu/log"
	"cartport/hw/bus"
	"cartport/hw/cartmem"
	"cartport/hw/hwio"
)

var ErrUnsupported = errors.New("unsupported cartridge type")

// A Cartridge is an installed cartridge variant.
type Cartridge interface {
	bus.Handler

	// Init drives the initial port configuration, before the bus interface is
	// enabled.
	Init()
	Desc() Desc
}

// Desc describes a cartridge variant.
type Desc struct {
	ID   uint16 // hardware type in cartridge image files
	Name string
	New  func(*base) Cartridge

	// OwnsIO2 is set for variants answering every IO2 cycle, leaving nothing
	// for a RAM expansion chained behind them.
	OwnsIO2 bool
}

// Options are the settings read from the cartridge image header.
type Options struct {
	// EXROM and GAME are the line states of a normal cartridge, true when
	// asserted (low).
	EXROM, GAME bool
}

// All maps hardware type ids to cartridge variants.
var All = map[uint16]Desc{
	0:  Normal,
	4:  SimonsBasic,
	5:  Ocean,
	7:  FunPlay,
	8:  SuperGames,
	11: Westermann,
	12: RexUtility,
	17: Dinamic,
	19: MagicDesk,
	21: Comal80,
	32: EasyFlash,
}

// IDs returns the supported hardware type ids, sorted.
func IDs() []uint16 {
	return slices.Sorted(maps.Keys(All))
}

// Load creates the cartridge variant id working on buf.
func Load(id uint16, port hwio.Port, buf *cartmem.Buffers, opts Options) (Cartridge, error) {
	desc, ok := All[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupported, id)
	}
	if !buf.IsValid() {
		return nil, fmt.Errorf("cartridge %s: no valid image loaded", desc.Name)
	}

	b := &base{desc: desc, port: port, buf: buf, opts: opts}
	crt := desc.New(b)
	log.ModCart.InfoZ("cartridge loaded").
		String("name", desc.Name).
		Int("id", int64(id)).
		Int("banks", int64(buf.Banks())).
		End()
	return crt, nil
}

// base holds what every variant needs.
type base struct {
	desc Desc
	port hwio.Port
	buf  *cartmem.Buffers
	opts Options
}

func (b *base) Desc() Desc { return b.desc }

// rom8k returns the 8k bank n, banks being stored contiguously.
func (b *base) rom8k(n int) []byte {
	const size = 0x2000
	n &= cartmem.ROMSize/size - 1
	return b.buf.ROM[n*size : (n+1)*size]
}

func (b *base) rom16k(n int) []byte {
	return b.buf.Bank(n)
}

// drive8k drives a byte of an 8k ROM area.
func (b *base) drive8k(rom []byte, addr uint16) bool {
	b.port.DriveData(rom[addr&0x1fff])
	return true
}

func (b *base) drive16k(rom []byte, addr uint16) bool {
	b.port.DriveData(rom[addr&0x3fff])
	return true
}

func (b *base) set(s hwio.Signal) {
	b.port.Crt(s)
}
