package host

import (
	"testing"

	"cartport/hw/bus"
	"cartport/hw/clock"
	"cartport/hw/hwio"
)

func newHost(t *testing.T, h bus.Handler) *Host {
	t.Helper()
	refs, err := clock.Arm(clock.NTSC, 0)
	if err != nil {
		t.Fatal(err)
	}
	sim := clock.NewSim(clock.NTSC.Nominal())
	w := hwio.NewWires()
	core := bus.NewCore(w, sim, sim)
	core.Arm(refs)
	core.Install(h)
	if err := core.Enable(); err != nil {
		t.Fatal(err)
	}
	return New(w, sim, core)
}

func TestDecode(t *testing.T) {
	const (
		roml = hwio.CtlIdle &^ hwio.CtlROML
		romh = hwio.CtlIdle &^ hwio.CtlROMH
	)
	tests := []struct {
		name  string
		port  hwio.Signal
		addr  uint16
		write bool
		want  hwio.Control
	}{
		{"none roml", hwio.PortNone, 0x8000, false, hwio.CtlIdle},
		{"none io1", hwio.PortNone, 0xde00, false, hwio.CtlIdle &^ hwio.CtlIO1},
		{"none io2 write", hwio.PortNone, 0xdf7f, true, hwio.CtlIdle &^ (hwio.CtlIO2 | hwio.CtlWrite)},
		{"8k roml", hwio.Port8K, 0x9fff, false, roml},
		{"8k a000", hwio.Port8K, 0xa000, false, hwio.CtlIdle},
		{"8k roml write", hwio.Port8K, 0x8000, true, hwio.CtlIdle &^ hwio.CtlWrite},
		{"16k roml", hwio.Port16K, 0x8000, false, roml},
		{"16k romh", hwio.Port16K, 0xbfff, false, romh},
		{"16k e000", hwio.Port16K, 0xe000, false, hwio.CtlIdle},
		{"ultimax roml", hwio.PortUltimax, 0x8000, false, roml},
		{"ultimax romh", hwio.PortUltimax, 0xfffc, false, romh},
		{"ultimax romh write", hwio.PortUltimax, 0xe000, true, romh &^ hwio.CtlWrite},
		{"ultimax a000", hwio.PortUltimax, 0xa000, false, hwio.CtlIdle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHost(t, bus.Funcs{})
			h.W.Crt(tt.port)
			if got := h.decode(tt.addr, tt.write); got != tt.want {
				t.Errorf("decode($%04x) = %q, want %q", tt.addr, got, tt.want)
			}
		})
	}
}

func TestReadWriteRAM(t *testing.T) {
	h := newHost(t, bus.Funcs{})
	h.Write(0x1234, 0x56)
	if got := h.Read(0x1234); got != 0x56 {
		t.Errorf("read back %#02x, want 0x56", got)
	}
	h.Write(0xde00, 0x99)
	if h.RAM[0xde00] != 0 {
		t.Error("i/o writes must not reach the RAM")
	}
	if h.CPUCycles != 3 {
		t.Errorf("cpu cycles = %d, want 3", h.CPUCycles)
	}
}

func TestCartridgeRead(t *testing.T) {
	var h *Host
	h = newHost(t, bus.Funcs{
		ReadFunc: func(ctl hwio.Control, addr uint16) bool {
			if !ctl.ROML() {
				return false
			}
			h.W.DriveData(0xc3)
			return true
		},
	})
	h.W.Crt(hwio.Port8K)
	h.RAM[0x8000] = 0x11

	if got := h.Read(0x8000); got != 0xc3 {
		t.Errorf("read %#02x, want 0xc3 from the cartridge", got)
	}
	h.W.Crt(hwio.PortNone)
	if got := h.Read(0x8000); got != 0x11 {
		t.Errorf("read %#02x, want 0x11 from the RAM", got)
	}
	if h.Sim.LateAcks != 0 {
		t.Errorf("late acks: %d", h.Sim.LateAcks)
	}
}

func TestClockSampler(t *testing.T) {
	c := &Clock{Profile: clock.PAL, Jitter: 3}
	for range 20 {
		v, ok := c.Sample()
		if !ok || v < 280 || v > 286 {
			t.Fatalf("sample = %d %t, want 283±3", v, ok)
		}
	}
	p, err := clock.MeasureAndClassify(c, 1000)
	if err != nil || p != clock.PAL {
		t.Errorf("classified %s %v, want PAL", p, err)
	}

	off := &Clock{}
	if _, err := clock.MeasureAndClassify(off, 1000); err == nil {
		t.Error("a powered off host should not classify")
	}
}

func TestDMALineStuck(t *testing.T) {
	h := newHost(t, bus.Funcs{})
	h.W.Crt(hwio.DMALow)
	if n := h.RunDMA(); n != maxDMACycles {
		t.Errorf("ran %d dma cycles, want %d", n, maxDMACycles)
	}
}
