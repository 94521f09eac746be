// Package bus implements the bus handler dispatch core: once per host clock
// cycle it samples the expansion port at the right instant and runs the
// installed cartridge handler, or a step of the running DMA transfer.
package bus

import (
	"fmt"

	"cartport/emu/log"
	"cartport/hw/clock"
	"cartport/hw/hwio"
)

// Mode selects what the next bus cycle interrupt runs.
type Mode uint8

const (
	Idle Mode = iota // no handler, bus untouched
	CPU              // host owns the bus, the installed Handler runs
	DMA              // a DMA transfer owns the bus, the DMAStep runs
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case CPU:
		return "cpu"
	case DMA:
		return "dma"
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// Core is the bus handler dispatch core. Cycle is the body of the periodic
// compare interrupt; installing handlers from within a cycle takes effect at
// the next one.
type Core struct {
	port  hwio.Port
	timer clock.Timer
	clk   clock.Source
	refs  clock.Refs
	armed bool

	active  bool
	mode    Mode
	handler Handler
	step    DMAStep

	tracer *Tracer

	Cycles uint64 // dispatched cycles, since creation
}

func NewCore(port hwio.Port, timer clock.Timer, clk clock.Source) *Core {
	return &Core{port: port, timer: timer, clk: clk}
}

func (c *Core) Port() hwio.Port      { return c.port }
func (c *Core) Source() clock.Source { return c.clk }
func (c *Core) Refs() clock.Refs     { return c.refs }
func (c *Core) Mode() Mode           { return c.mode }
func (c *Core) Active() bool         { return c.active }
func (c *Core) Handler() Handler     { return c.handler }

// SetTracer enables cycle tracing. A nil tracer disables it.
func (c *Core) SetTracer(t *Tracer) { c.tracer = t }

// Arm sets the phase references used by the next cycles. It must be called
// whenever the interface is (re-)enabled.
func (c *Core) Arm(refs clock.Refs) {
	c.refs = refs
	c.armed = true
	log.ModBus.DebugZ("armed").
		Stringer("profile", refs.Profile).
		Int("offset", int64(refs.Offset)).
		Uint("high", uint64(refs.High)).
		Uint("low", uint64(refs.Low)).
		End()
}

// Install makes h the handler of host cycles, and leaves DMA mode.
func (c *Core) Install(h Handler) {
	c.handler = h
	c.step = nil
	c.mode = CPU
}

// InstallDMA makes step run on the next cycles instead of the host handler.
// The host handler stays installed and is restored by Resume.
func (c *Core) InstallDMA(step DMAStep) {
	c.step = step
	c.mode = DMA
}

// Resume returns from DMA mode to the installed host handler.
func (c *Core) Resume() {
	c.step = nil
	if c.handler != nil {
		c.mode = CPU
	} else {
		c.mode = Idle
	}
}

// Enable starts dispatching cycles. The core must have been armed and a
// handler installed.
func (c *Core) Enable() error {
	if !c.armed {
		return fmt.Errorf("bus: enable before phase references are armed")
	}
	if c.mode == Idle {
		return fmt.Errorf("bus: enable without an installed handler")
	}
	c.active = true
	log.ModBus.InfoZ("bus interface enabled").
		Stringer("mode", c.mode).
		Bits8("lines", uint8(c.port.Lines())).
		End()
	return nil
}

// Disable stops dispatching and puts every line back to its safe idle state,
// aborting any running DMA transfer.
func (c *Core) Disable() {
	c.active = false
	c.step = nil
	c.mode = Idle
	c.handler = nil
	hwio.Release(c.port)
	log.ModBus.InfoZ("bus interface disabled").End()
}

// IRQPoint returns the compare value at which the cycle interrupt fires in
// the current mode. It reports false when no interrupt is enabled.
func (c *Core) IRQPoint() (uint32, bool) {
	if !c.active {
		return 0, false
	}
	if c.mode == DMA {
		return c.refs.IntDMA, true
	}
	return c.refs.Int, true
}

// Cycle runs one bus cycle.
func (c *Core) Cycle() {
	if !c.active {
		return
	}
	c.Cycles++

	switch c.mode {
	case CPU:
		c.cpuCycle()
	case DMA:
		c.dmaCycle()
	}
}

func (c *Core) sync() {
	// Acknowledge before anything else, waiting with the flag pending would
	// delay the next cycle interrupt.
	c.timer.Ack()
	c.clk.Set(c.timer.Count())
}

func (c *Core) cpuCycle() {
	c.sync()
	c.clk.WaitUntil(c.refs.High)

	addr := c.port.ReadAddr()
	ctl := c.port.ReadControl()

	if ctl.IsRead() {
		handled := c.handler.Read(ctl, addr)
		if handled {
			c.clk.WaitUntil(c.refs.Low)
			c.port.ReleaseData()
		}
		c.trace(ctl, addr, 0, handled)
		return
	}

	data := c.port.ReadData()
	handled := c.handler.Write(ctl, addr, data)
	c.trace(ctl, addr, data, handled)
}

func (c *Core) dmaCycle() {
	c.sync()
	c.clk.WaitUntil(c.refs.HighDMA)

	ctl := c.port.ReadControl()
	if !ctl.BA() {
		// The video chip holds the bus, retry next cycle.
		log.ModDMA.DebugZ("dma stalled").Uint("cycle", c.Cycles).End()
		return
	}
	step := c.step
	step()
}

// DMARead completes a DMA read cycle: it waits for phase-low, samples the data
// the host put on the bus and releases the address bus.
func (c *Core) DMARead() uint8 {
	c.clk.WaitUntil(c.refs.Low)
	data := c.port.ReadData()
	c.traceDMA(false, data)
	c.port.ReleaseAddr()
	return data
}

// DMAWriteEnd completes a DMA write cycle: it waits for phase-low and
// releases R/W, the address and data buses.
func (c *Core) DMAWriteEnd() {
	c.clk.WaitUntil(c.refs.Low)
	if c.tracer != nil {
		c.traceDMA(true, c.port.ReadData())
	}
	c.port.ReleaseWrite()
	c.port.ReleaseAddr()
	c.port.ReleaseData()
}

func (c *Core) trace(ctl hwio.Control, addr uint16, data uint8, handled bool) {
	if c.tracer == nil {
		return
	}
	c.tracer.write(record{
		cycle:   c.Cycles,
		mode:    CPU,
		ctl:     ctl,
		addr:    addr,
		data:    data,
		write:   !ctl.IsRead(),
		handled: handled,
	})
}

func (c *Core) traceDMA(write bool, data uint8) {
	if c.tracer == nil {
		return
	}
	c.tracer.write(record{
		cycle:   c.Cycles,
		mode:    DMA,
		ctl:     c.port.ReadControl(),
		addr:    c.port.ReadAddr(),
		data:    data,
		write:   write,
		handled: true,
	})
}
