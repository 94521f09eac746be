package hwio

import "testing"

func TestRegBankMaskedRead(t *testing.T) {
	rb := NewRegBank("test", 4)
	rb.Reset(map[int]uint8{0: 0x10})

	if got := rb.Read(0); got != 0x10 {
		t.Errorf("Read(0) = %02x, want 10", got)
	}
	rb.Value[0] = 0x20
	if got := rb.Read(0); got != 0x30 {
		t.Errorf("Read(0) = %02x, want 30", got)
	}
}

func TestRegBankShadow(t *testing.T) {
	rb := NewRegBank("test", 4)
	rb.Write(1, 0x12)
	if rb.Value[1] != 0x12 || rb.Shadow[1] != 0x12 {
		t.Fatalf("Write did not update live and shadow: %02x %02x", rb.Value[1], rb.Shadow[1])
	}

	rb.Value[1] = 0x99
	rb.Restore(1)
	if rb.Value[1] != 0x12 {
		t.Errorf("Restore: got %02x, want 12", rb.Value[1])
	}
}

func TestFields(t *testing.T) {
	regs := make([]uint8, 8)
	Put16(regs, 1, 0xbeef)
	Put24(regs, 3, 0x0abcde)
	if got := Get16(regs, 1); got != 0xbeef {
		t.Errorf("Get16 = %04x", got)
	}
	if got := Get24(regs, 3); got != 0x0abcde {
		t.Errorf("Get24 = %06x", got)
	}
	if regs[1] != 0xef || regs[2] != 0xbe {
		t.Errorf("not little endian: % x", regs)
	}
}

func TestMemWraps(t *testing.T) {
	var written []uint32
	m := NewMem("ram", make([]byte, 0x100))
	m.OnWrite = func(off uint32) { written = append(written, off) }

	m.Write8(0x1ff, 0x42)
	if got := m.Read8(0xff); got != 0x42 {
		t.Errorf("Read8(ff) = %02x, want 42", got)
	}
	if len(written) != 1 || written[0] != 0xff {
		t.Errorf("OnWrite offsets = %v", written)
	}
}

func TestMemNotPow2(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewMem should panic on non pow2 size")
		}
	}()
	NewMem("bad", make([]byte, 100))
}

func TestWiresDataBus(t *testing.T) {
	w := NewWires()
	w.HostCycle(0xdf00, CtlIdle&^CtlIO2)

	if ctl := w.ReadControl(); !ctl.IO2() || !ctl.IsRead() {
		t.Fatalf("control = %s", ctl)
	}

	w.DriveData(0x5a)
	if !w.CrtDrivesData() || w.ReadData() != 0x5a {
		t.Fatalf("driven data not visible")
	}
	w.ReleaseData()
	if w.CrtDrivesData() {
		t.Fatal("data still driven after release")
	}
	if got := w.ReadData(); got != 0x5a {
		t.Errorf("open bus = %02x, want last driven value 5a", got)
	}

	w.HostDriveData(0x0f)
	w.DriveData(0xf3)
	if w.Contention != 1 {
		t.Errorf("Contention = %d, want 1", w.Contention)
	}
	if got := w.ReadData(); got != 0x03 {
		t.Errorf("contended bus = %02x, want 03", got)
	}
}

func TestWiresSignals(t *testing.T) {
	w := NewWires()
	if w.Lines()&OutDMA == 0 {
		t.Fatal("DMA should idle high")
	}

	w.Crt(DMALow.With(IRQLow))
	if w.Lines()&(OutDMA|OutIRQ) != 0 {
		t.Fatalf("lines = %06b, want DMA and IRQ low", w.Lines())
	}

	w.Crt(Port8K)
	if w.Lines()&OutEXROM != 0 || w.Lines()&OutGAME == 0 {
		t.Errorf("lines = %06b, want 8K config", w.Lines())
	}

	w.DriveWrite()
	if w.ReadControl().IsRead() {
		t.Error("R/W driven low should read as write")
	}

	Release(w)
	if w.CrtDrivesData() || w.CrtDrivesAddr() || w.CrtDrivesWrite() {
		t.Error("Release left a bus driven")
	}
	if w.Lines() != Idle.Apply(0) {
		t.Errorf("lines = %06b after release", w.Lines())
	}
}
