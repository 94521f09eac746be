package reu

import (
	"cartport/emu/log"
	"cartport/hw/hwio"
)

// Each step runs one DMA cycle, after the dispatch core checked the host left
// the bus. The transfer ends on the cycle entered with a length of 1, the
// length is never decremented past it.

// nextC64 drives the current host address and advances it.
func (r *REU) nextC64() {
	addr := r.c64Base()
	r.port.DriveAddr(addr)
	r.setC64Base(addr + r.c64Inc)
}

// nextREU returns the current expansion memory offset and advances it.
func (r *REU) nextREU() uint32 {
	off := r.reuBase()
	r.setREUBase(off + r.reuInc)
	return off
}

// last reports whether this cycle ends the block, and counts it otherwise.
func (r *REU) last() bool {
	n := r.length()
	if n != 1 {
		r.setLength(n - 1)
		return false
	}
	return true
}

// autoload reloads command, addresses and length from the autoload source,
// clearing the execute bit and disabling the $FF00 trigger.
func (r *REU) autoload() {
	src := r.regs.Value
	if r.autoShadow {
		src = r.regs.Shadow
	}
	v := r.regs.Value
	cmd := src[RegCommand]
	copy(v[RegC64Base:RegLength+2], src[RegC64Base:RegLength+2])
	v[RegCommand] = cmd&^CmdExecute | CmdNoFF00
}

// endOfBlock returns the status of a completed read, write or swap.
func (r *REU) endOfBlock() uint8 {
	status := uint8(StatusEOB)
	if r.intMask()&(IntEnable|IntEOB) == IntEnable|IntEOB {
		status |= StatusIRQ
	}
	return status
}

// verifyIRQ adds the interrupt pending flag to a verify status if the
// interrupt mask asks for it.
func (r *REU) verifyIRQ(status uint8) uint8 {
	mask := r.intMask()
	if status&mask&(IntEOB|IntFault) != 0 && mask&IntEnable != 0 {
		status |= StatusIRQ
	}
	return status
}

// complete ends the transfer with status, gives the bus back to the host and
// restores the host cycle handler.
func (r *REU) complete(status uint8) {
	r.orStatus(status)
	r.busy = false
	r.core.Resume()

	sig := hwio.DMAHigh
	if status&StatusIRQ != 0 {
		sig = sig.With(hwio.IRQLow)
	}
	r.port.Crt(sig)

	log.ModDMA.DebugZ("transfer done").Hex8("status", r.regs.Value[RegStatus]).End()
}

// toREUStep copies a byte from the host to the expansion memory.
func (r *REU) toREUStep() {
	r.nextC64()
	off := r.nextREU()

	if !r.last() {
		r.mem.Write8(off, r.core.DMARead())
		return
	}

	r.autoload()
	status := r.endOfBlock()
	r.mem.Write8(off, r.core.DMARead())
	r.complete(status)
}

// toHostStep copies a byte from the expansion memory to the host.
func (r *REU) toHostStep() {
	r.port.DriveAddr(r.c64Base())
	r.port.DriveWrite()
	r.port.DriveData(r.mem.Read8(r.reuBase()))

	r.setC64Base(r.c64Base() + r.c64Inc)
	r.nextREU()

	if !r.last() {
		r.core.DMAWriteEnd()
		return
	}

	r.autoload()
	status := r.endOfBlock()
	r.core.DMAWriteEnd()
	r.complete(status)
}

// swapStep is the first cycle of a swapped byte: the host byte goes to the
// expansion memory, the expansion byte is kept for the next cycle.
func (r *REU) swapStep() {
	r.port.DriveAddr(r.c64Base())
	off := r.nextREU()
	r.temp = r.mem.Read8(off)

	r.mem.Write8(off, r.core.DMARead())
	r.core.InstallDMA(r.swap2)
}

// swap2Step writes the kept expansion byte to the host.
func (r *REU) swap2Step() {
	r.nextC64()
	r.port.DriveWrite()
	r.port.DriveData(r.temp)

	if !r.last() {
		r.core.InstallDMA(r.steps[Swap])
		r.core.DMAWriteEnd()
		return
	}

	r.autoload()
	status := r.endOfBlock()
	r.core.DMAWriteEnd()
	r.complete(status)
}

// verifyStep compares a host byte with the expansion memory.
func (r *REU) verifyStep() {
	r.nextC64()
	want := r.mem.Read8(r.nextREU())

	if !r.last() {
		if r.core.DMARead() != want {
			// The 8726 takes one more cycle when the error is detected
			// before the last byte.
			r.core.InstallDMA(r.verifyErr)
		}
		return
	}

	r.autoload()
	// The last byte always sets end of block.
	status := uint8(StatusEOB)
	if r.core.DMARead() != want {
		status |= StatusFault
	}
	r.complete(r.verifyIRQ(status))
}

// verifyErrorStep is the extra cycle after a verify error. It compares the
// next pair of bytes without advancing, and ends the transfer.
func (r *REU) verifyErrorStep() {
	r.port.DriveAddr(r.c64Base())
	want := r.mem.Read8(r.reuBase())
	lastByte := r.length() == 1

	r.autoload()
	status := uint8(StatusFault)
	if r.core.DMARead() == want && lastByte {
		// Error on the penultimate byte only: end of block is still set.
		status |= StatusEOB
	}
	r.complete(r.verifyIRQ(status))
}
