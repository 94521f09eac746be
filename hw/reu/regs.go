package reu

import "cartport/hw/hwio"

// Register offsets within the $DF00-$DF1F window, mirrored every 32 bytes in
// the IO2 area.
const (
	RegStatus  = 0x00
	RegCommand = 0x01
	RegC64Base = 0x02 // 2 bytes
	RegREUBase = 0x04 // 3 bytes, the third one is the bank
	RegBank    = 0x06
	RegLength  = 0x07 // 2 bytes
	RegIntMask = 0x09
	RegAddrCtl = 0x0a

	NumRegs = 0x20
)

// Status register bits.
const (
	StatusIRQ   = 0x80 // interrupt pending
	StatusEOB   = 0x40 // end of block
	StatusFault = 0x20 // verify error
	StatusSize  = 0x10 // 256K/512K model
)

// Command register bits.
const (
	CmdExecute  = 0x80
	CmdAutoload = 0x20
	CmdNoFF00   = 0x10 // execute immediately, no $FF00 trigger
	CmdType     = 0x03
)

// Transfer types, from the low bits of the command register.
const (
	ToREU  = 0 // host to expansion memory
	ToHost = 1 // expansion memory to host
	Swap   = 2
	Verify = 3
)

// Interrupt mask bits.
const (
	IntEnable = 0x80
	IntEOB    = 0x40
	IntFault  = 0x20
)

// Address control bits.
const (
	FixC64 = 0x80
	FixREU = 0x40
)

// MemMask is the expansion memory address mask, 1MB.
const MemMask = 0xfffff

// Bits of each register reading as 1.
var readMasks = func() map[int]uint8 {
	m := map[int]uint8{
		RegStatus:  StatusSize,
		RegBank:    0xf8, // 3 bit bank pointer
		RegIntMask: 0x1f,
		RegAddrCtl: 0x3f,
	}
	for off := RegAddrCtl + 1; off < NumRegs; off++ {
		m[off] = 0xff
	}
	return m
}()

// halfAutoload returns the register restored from its shadow when off, one
// half of a 16-bit register pair, is written. This is the 8726 half-autoload
// bug.
func halfAutoload(off int) (int, bool) {
	switch off {
	case RegC64Base, RegREUBase, RegLength:
		return off + 1, true
	case RegC64Base + 1, RegREUBase + 1, RegLength + 1:
		return off - 1, true
	}
	return 0, false
}

// live register accessors, used by the transfer.

func (r *REU) c64Base() uint16       { return hwio.Get16(r.regs.Value, RegC64Base) }
func (r *REU) setC64Base(v uint16)   { hwio.Put16(r.regs.Value, RegC64Base, v) }
func (r *REU) reuBase() uint32       { return hwio.Get24(r.regs.Value, RegREUBase) & MemMask }
func (r *REU) setREUBase(v uint32)   { hwio.Put24(r.regs.Value, RegREUBase, v) }
func (r *REU) length() uint16        { return hwio.Get16(r.regs.Value, RegLength) }
func (r *REU) setLength(v uint16)    { hwio.Put16(r.regs.Value, RegLength, v) }
func (r *REU) intMask() uint8        { return r.regs.Value[RegIntMask] }
func (r *REU) command() uint8        { return r.regs.Value[RegCommand] }
func (r *REU) orStatus(status uint8) { r.regs.Value[RegStatus] |= status }
