// Package host simulates the host computer side of the expansion port: its
// CPU bus cycles, the decoding of the cartridge select lines, and the memory
// answering DMA cycles. It is the test bench of the cartridge emulation.
package host

import (
	"fmt"

	"cartport/emu/log"
	"cartport/hw/bus"
	"cartport/hw/clock"
	"cartport/hw/hwio"
)

// maxDMACycles bounds a single DMA run, a swap of 64K bytes takes 128K cycles.
const maxDMACycles = 1 << 18

// Host is the simulated host computer.
type Host struct {
	W    *hwio.Wires
	Sim  *clock.Sim
	Core *bus.Core

	RAM [0x10000]byte

	Clock Clock

	baLow int // upcoming DMA cycles with BA low

	DMACycles uint64
	CPUCycles uint64
}

func New(w *hwio.Wires, sim *clock.Sim, core *bus.Core) *Host {
	return &Host{W: w, Sim: sim, Core: core}
}

// decode returns the control lines the host asserts for an access at addr,
// given the GAME and EXROM lines driven by the cartridge.
func (h *Host) decode(addr uint16, write bool) hwio.Control {
	ctl := hwio.CtlIdle
	if write {
		ctl &^= hwio.CtlWrite
	}

	switch addr >> 8 {
	case 0xde:
		return ctl &^ hwio.CtlIO1
	case 0xdf:
		return ctl &^ hwio.CtlIO2
	}

	lines := h.W.Lines()
	game := lines&hwio.OutGAME == 0 // asserted
	exrom := lines&hwio.OutEXROM == 0
	ultimax := game && !exrom

	// In 8K and 16K modes writes go to the RAM below the cartridge.
	if write && !ultimax {
		return ctl
	}

	switch {
	case addr >= 0x8000 && addr < 0xa000:
		if exrom || ultimax {
			ctl &^= hwio.CtlROML
		}
	case addr >= 0xa000 && addr < 0xc000:
		if exrom && game {
			ctl &^= hwio.CtlROMH
		}
	case addr >= 0xe000:
		if ultimax {
			ctl &^= hwio.CtlROMH
		}
	}
	return ctl
}

func (h *Host) begin() {
	at, ok := h.Core.IRQPoint()
	if !ok {
		at = 0
	}
	h.Sim.Begin(at)
}

// sampleAt is the instant the host latches the data bus, just before
// phase-2 goes low.
func (h *Host) sampleAt() uint32 {
	if low := h.Core.Refs().Low; low > 0 {
		return low - 1
	}
	return 0
}

// Read runs a CPU read cycle and returns the byte the CPU latched.
func (h *Host) Read(addr uint16) uint8 {
	h.RunDMA()

	ctl := h.decode(addr, false)
	h.W.HostCycle(addr, ctl)
	h.begin()

	var val uint8
	h.Sim.At(h.sampleAt(), func() {
		switch {
		case h.W.CrtDrivesData():
			val = h.W.ReadData()
		case ctl.IO1() || ctl.IO2() || ctl.ROM():
			val = h.W.ReadData() // open bus
		default:
			val = h.RAM[addr]
		}
	})
	h.Core.Cycle()
	h.Sim.End()
	h.CPUCycles++
	return val
}

// Write runs a CPU write cycle.
func (h *Host) Write(addr uint16, val uint8) {
	h.RunDMA()

	ctl := h.decode(addr, true)
	h.W.HostCycle(addr, ctl)
	h.W.HostDriveData(val)
	h.begin()
	h.Core.Cycle()
	h.Sim.End()
	h.W.HostReleaseData()
	h.CPUCycles++

	if !ctl.IO1() && !ctl.IO2() && !ctl.ROM() {
		h.RAM[addr] = val
	}
}

// Idle runs n CPU cycles reading the stack page, as the CPU does during
// internal operations.
func (h *Host) Idle(n int) {
	for range n {
		h.Read(0x0100)
	}
}

// StealBA makes the next n DMA cycles see BA low, as when the video chip
// fetches.
func (h *Host) StealBA(n int) { h.baLow = n }

// DMA reports whether the cartridge requests the bus.
func (h *Host) DMA() bool { return h.W.Lines()&hwio.OutDMA == 0 }

// IRQ reports whether the cartridge asserts the interrupt line.
func (h *Host) IRQ() bool { return h.W.Lines()&hwio.OutIRQ == 0 }

// NMI reports whether the cartridge asserts the non-maskable interrupt line.
func (h *Host) NMI() bool { return h.W.Lines()&hwio.OutNMI == 0 }

// DMACycle runs one cycle with the CPU off the bus. The host RAM answers the
// address driven by the cartridge.
func (h *Host) DMACycle() {
	ctl := hwio.CtlIdle
	if h.baLow > 0 {
		ctl &^= hwio.CtlBA
		h.baLow--
	}
	h.W.HostFloat(ctl)
	h.begin()
	h.Sim.At(h.sampleAt(), func() {
		if !h.W.CrtDrivesAddr() {
			return
		}
		addr := h.W.ReadAddr()
		if h.W.CrtDrivesWrite() {
			h.RAM[addr] = h.W.ReadData()
		} else {
			h.W.HostDriveData(h.RAM[addr])
		}
	})
	h.Core.Cycle()
	h.Sim.End()
	h.W.HostReleaseData()
	h.DMACycles++
}

// RunDMA runs DMA cycles as long as the cartridge holds the DMA line low and
// returns their number.
func (h *Host) RunDMA() int {
	n := 0
	for h.DMA() {
		if n == maxDMACycles {
			log.ModEmu.ErrorZ("dma line stuck low").Int("cycles", int64(n)).End()
			break
		}
		h.DMACycle()
		n++
	}
	return n
}

func (h *Host) String() string {
	return fmt.Sprintf("host cpu=%d dma=%d lines=%06b", h.CPUCycles, h.DMACycles, h.W.Lines())
}
