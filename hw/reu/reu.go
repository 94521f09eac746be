// Package reu emulates a RAM expansion unit built around the 8726 DMA
// controller: its register file in the IO2 area and the DMA engine moving
// blocks between the host memory and the expansion memory.
package reu

import (
	"fmt"

	"cartport/emu/log"
	"cartport/hw/bus"
	"cartport/hw/hwio"
)

// REU is the RAM expansion. It implements bus.Handler for its registers and
// the $FF00 trigger, and installs its DMA steps on the dispatch core.
type REU struct {
	core *bus.Core
	port hwio.Port
	regs *hwio.RegBank
	mem  *hwio.Mem

	autoShadow bool // autoload from the shadow registers
	c64Inc     uint16
	reuInc     uint32
	temp       uint8
	busy       bool

	steps     [4]bus.DMAStep
	swap2     bus.DMAStep
	verifyErr bus.DMAStep
}

// New returns a RAM expansion using mem as expansion memory. mem must have a
// power of two size, addresses wrap at 1MB or at the memory size whichever is
// lower.
func New(core *bus.Core, mem []byte) *REU {
	r := &REU{
		core: core,
		port: core.Port(),
		regs: hwio.NewRegBank("reu", NumRegs),
		mem:  hwio.NewMem("reu", mem),
	}
	r.steps = [4]bus.DMAStep{
		ToREU:  r.toREUStep,
		ToHost: r.toHostStep,
		Swap:   r.swapStep,
		Verify: r.verifyStep,
	}
	r.swap2 = r.swap2Step
	r.verifyErr = r.verifyErrorStep
	r.Reset()
	return r
}

// Reset sets the registers to their power-up values.
func (r *REU) Reset() {
	r.regs.Reset(readMasks)
	r.regs.Value[RegCommand] = CmdNoFF00
	hwio.Put16(r.regs.Value, RegLength, 0xffff)
	hwio.Put16(r.regs.Shadow, RegLength, 0xffff)

	r.autoShadow = false
	r.c64Inc = 1
	r.reuInc = 1
	r.busy = false
}

// Mem is the expansion memory.
func (r *REU) Mem() *hwio.Mem { return r.mem }

// Abort drops a running transfer, as when the bus interface is disabled. The
// registers keep the progress made so far.
func (r *REU) Abort() {
	if !r.busy {
		return
	}
	r.busy = false
	log.ModDMA.InfoZ("transfer aborted").
		Hex16("c64", r.c64Base()).
		Hex16("len", r.length()).
		End()
}

// Busy reports whether a transfer is running.
func (r *REU) Busy() bool { return r.busy }

// Peek returns the value the host would read from register off, without the
// read side effects.
func (r *REU) Peek(off int) uint8 {
	return r.regs.Read(off & (NumRegs - 1))
}

func (r *REU) Read(ctl hwio.Control, addr uint16) bool {
	if !ctl.IO2() {
		return false
	}

	off := int(addr & (NumRegs - 1))
	r.port.DriveData(r.regs.Read(off))

	if off == RegStatus {
		// Reading the status acknowledges the interrupt.
		r.regs.Value[RegStatus] = 0
		r.port.Crt(hwio.IRQHigh)
	}
	return true
}

func (r *REU) Write(ctl hwio.Control, addr uint16, data uint8) bool {
	if !ctl.IO2() {
		if addr == 0xff00 && r.command()&CmdExecute != 0 {
			r.trigger(r.command() & CmdType)
		}
		return false
	}

	off := int(addr & (NumRegs - 1))
	switch off {
	case RegStatus:
		return true

	case RegCommand:
		r.autoShadow = data&CmdAutoload != 0
		if data&(CmdExecute|CmdNoFF00) == CmdExecute|CmdNoFF00 {
			r.trigger(data & CmdType)
		}

	case RegIntMask:
		if data&(IntEOB|IntFault)&r.regs.Value[RegStatus] != 0 && data&IntEnable != 0 {
			r.orStatus(StatusIRQ)
			r.port.Crt(hwio.IRQLow)
		}

	case RegAddrCtl:
		r.c64Inc = uint16(^data>>7) & 1
		r.reuInc = uint32(^data>>6) & 1

	default:
		if other, ok := halfAutoload(off); ok {
			r.regs.Restore(other)
		}
	}

	r.regs.Write(off, data)
	return true
}

func (r *REU) trigger(kind uint8) {
	if r.busy {
		log.ModDMA.WarnZ("transfer triggered while busy, ignored").Hex8("type", kind).End()
		return
	}

	r.busy = true
	r.core.InstallDMA(r.steps[kind])
	r.port.Crt(hwio.DMALow)

	log.ModDMA.DebugZ("transfer").
		Hex8("type", kind).
		Hex16("c64", r.c64Base()).
		Hex20("reu", r.reuBase()).
		Hex16("len", r.length()).
		End()
}

func (r *REU) String() string {
	return fmt.Sprintf("reu status=%02x cmd=%02x c64=%04x reu=%05x len=%04x",
		r.regs.Value[RegStatus], r.command(), r.c64Base(), r.reuBase(), r.length())
}
