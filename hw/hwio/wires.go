package hwio

import "cartport/emu/log"

// Wires is a simulated expansion port. The host side and the cartridge side
// drive the buses independently; reads return what is electrically visible.
// Wires implements Port for the cartridge side, the Host* methods are used by
// the simulated host.
type Wires struct {
	// Host side.
	hostAddr      uint16
	hostCtl       Control
	hostData      uint8
	hostDrives    bool
	hostAddrValid bool

	// Cartridge side.
	addr        uint16
	addrDriven  bool
	data        uint8
	dataDriven  bool
	writeDriven bool
	out         Out

	openbus uint8

	DataDrives int // number of DriveData calls
	Contention int // number of cycles where both sides drove the data bus
}

func NewWires() *Wires {
	w := &Wires{hostCtl: CtlIdle, openbus: 0xff}
	w.out = Idle.Apply(0)
	return w
}

// Cartridge side.

func (w *Wires) ReadAddr() uint16 {
	if w.addrDriven {
		return w.addr
	}
	return w.hostAddr
}

func (w *Wires) DriveAddr(addr uint16) {
	if w.hostAddrValid {
		log.ModHwIo.WarnZ("address bus contention").Hex16("host", w.hostAddr).Hex16("crt", addr).End()
	}
	w.addr = addr
	w.addrDriven = true
}

func (w *Wires) ReleaseAddr() { w.addrDriven = false }

func (w *Wires) ReadData() uint8 {
	switch {
	case w.dataDriven && w.hostDrives:
		return w.data & w.hostData
	case w.dataDriven:
		return w.data
	case w.hostDrives:
		return w.hostData
	}
	return w.openbus
}

func (w *Wires) DriveData(val uint8) {
	w.data = val
	w.dataDriven = true
	w.DataDrives++
	if w.hostDrives {
		w.Contention++
	}
}

func (w *Wires) ReleaseData() {
	if w.dataDriven {
		w.openbus = w.data
	}
	w.dataDriven = false
}

func (w *Wires) ReadControl() Control {
	ctl := w.hostCtl
	if w.writeDriven {
		ctl &^= CtlWrite
	}
	return ctl
}

func (w *Wires) DriveWrite()   { w.writeDriven = true }
func (w *Wires) ReleaseWrite() { w.writeDriven = false }

func (w *Wires) Crt(s Signal) { w.out = s.Apply(w.out) }
func (w *Wires) Lines() Out   { return w.out }

// Host side.

// HostCycle starts a host bus cycle: the host presents addr and control, and
// drops whatever it was driving on the data bus.
func (w *Wires) HostCycle(addr uint16, ctl Control) {
	w.hostAddr = addr
	w.hostAddrValid = true
	w.hostCtl = ctl
	w.hostDrives = false
}

// HostFloat starts a cycle where the host CPU is off the bus (the cartridge
// owns it), ctl still carries BA and the reset/button inputs.
func (w *Wires) HostFloat(ctl Control) {
	w.hostAddrValid = false
	w.hostCtl = ctl | CtlWrite
	w.hostDrives = false
}

// HostControl updates the control inputs mid cycle, as the host decodes a
// cartridge driven address.
func (w *Wires) HostControl(ctl Control) { w.hostCtl = ctl }

func (w *Wires) HostDriveData(val uint8) {
	w.hostData = val
	w.hostDrives = true
	if w.dataDriven {
		w.Contention++
	}
}

func (w *Wires) HostReleaseData() { w.hostDrives = false }

// CrtDrivesData reports whether the cartridge drives the data bus.
func (w *Wires) CrtDrivesData() bool { return w.dataDriven }

// CrtDrivesAddr reports whether the cartridge drives the address bus.
func (w *Wires) CrtDrivesAddr() bool { return w.addrDriven }

// CrtDrivesWrite reports whether the cartridge pulls R/W low.
func (w *Wires) CrtDrivesWrite() bool { return w.writeDriven }
