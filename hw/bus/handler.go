package bus

import "cartport/hw/hwio"

// A Handler emulates the cartridge side of host bus cycles.
//
// Read is called during a host read cycle. It returns true when it takes the
// cycle, the core then releases the data bus at phase-low. A handler driving
// the bus must return true; it may also take a cycle without driving, the
// host then reads open bus. Write is called
// during a host write cycle with the data the host put on the bus, it never
// drives the bus and returns whether the cycle was for this handler.
//
// Handlers run inside the bus cycle and must complete in bounded time.
type Handler interface {
	Read(ctl hwio.Control, addr uint16) bool
	Write(ctl hwio.Control, addr uint16, data uint8) bool
}

// A DMAStep performs one cycle of a DMA transfer. It runs once the DMA phase
// reference is reached and the host left the bus (BA high).
type DMAStep func()

// Funcs adapts a pair of functions to the Handler interface. A nil function
// declines every cycle.
type Funcs struct {
	ReadFunc  func(ctl hwio.Control, addr uint16) bool
	WriteFunc func(ctl hwio.Control, addr uint16, data uint8) bool
}

func (f Funcs) Read(ctl hwio.Control, addr uint16) bool {
	if f.ReadFunc == nil {
		return false
	}
	return f.ReadFunc(ctl, addr)
}

func (f Funcs) Write(ctl hwio.Control, addr uint16, data uint8) bool {
	if f.WriteFunc == nil {
		return false
	}
	return f.WriteFunc(ctl, addr, data)
}

// Chain returns a handler offering each cycle to primary first, and to
// secondary when primary declines. This lets two emulations share the bus
// without knowing about each other (e.g. a cartridge and a RAM expansion).
func Chain(primary, secondary Handler) Handler {
	return &chain{primary: primary, secondary: secondary}
}

type chain struct {
	primary, secondary Handler
}

func (c *chain) Read(ctl hwio.Control, addr uint16) bool {
	if c.primary.Read(ctl, addr) {
		return true
	}
	return c.secondary.Read(ctl, addr)
}

func (c *chain) Write(ctl hwio.Control, addr uint16, data uint8) bool {
	if c.primary.Write(ctl, addr, data) {
		return true
	}
	return c.secondary.Write(ctl, addr, data)
}
