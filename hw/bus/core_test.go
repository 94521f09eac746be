package bus

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/go-faster/jx"
	"github.com/google/go-cmp/cmp"

	"cartport/hw/clock"
	"cartport/hw/hwio"
)

type rig struct {
	t    *testing.T
	sim  *clock.Sim
	w    *hwio.Wires
	core *Core
	refs clock.Refs
}

func newRig(t *testing.T, h Handler) *rig {
	t.Helper()
	refs, err := clock.Arm(clock.PAL, 0)
	if err != nil {
		t.Fatal(err)
	}
	sim := clock.NewSim(clock.PAL.Nominal())
	w := hwio.NewWires()
	core := NewCore(w, sim, sim)
	core.Arm(refs)
	core.Install(h)
	if err := core.Enable(); err != nil {
		t.Fatal(err)
	}
	return &rig{t: t, sim: sim, w: w, core: core, refs: refs}
}

func (r *rig) begin() {
	at, ok := r.core.IRQPoint()
	if !ok {
		r.t.Fatal("no cycle interrupt enabled")
	}
	r.sim.Begin(at)
}

// read runs a host read cycle and returns what the host latched just before
// phase-low, and whether the cartridge was driving at that instant.
func (r *rig) read(addr uint16, ctl hwio.Control) (val uint8, driven bool) {
	r.w.HostCycle(addr, ctl|hwio.CtlWrite)
	r.begin()
	r.sim.At(r.refs.Low-1, func() {
		val = r.w.ReadData()
		driven = r.w.CrtDrivesData()
	})
	r.core.Cycle()
	r.sim.End()
	return val, driven
}

func (r *rig) write(addr uint16, ctl hwio.Control, data uint8) {
	r.w.HostCycle(addr, ctl&^hwio.CtlWrite)
	r.w.HostDriveData(data)
	r.begin()
	r.core.Cycle()
	r.sim.End()
	r.w.HostReleaseData()
}

// dma runs a cycle with the host CPU off the bus, the host memory answers the
// address driven by the cartridge.
func (r *rig) dma(mem []byte, ba bool) {
	ctl := hwio.CtlIdle
	if !ba {
		ctl &^= hwio.CtlBA
	}
	r.w.HostFloat(ctl)
	r.begin()
	r.sim.At(r.refs.Low-1, func() {
		if !r.w.CrtDrivesAddr() {
			return
		}
		addr := r.w.ReadAddr()
		if r.w.CrtDrivesWrite() {
			mem[addr] = r.w.ReadData()
		} else {
			r.w.HostDriveData(mem[addr])
		}
	})
	r.core.Cycle()
	r.sim.End()
	r.w.HostReleaseData()
}

func (r *rig) checkTiming() {
	r.t.Helper()
	if r.sim.LateAcks != 0 {
		r.t.Errorf("late interrupt acks: %d", r.sim.LateAcks)
	}
	if r.sim.Overruns != 0 {
		r.t.Errorf("waits past the end of the period: %d", r.sim.Overruns)
	}
}

const romlRead = hwio.CtlIdle &^ hwio.CtlROML

func TestReadHandled(t *testing.T) {
	var r *rig
	r = newRig(t, Funcs{
		ReadFunc: func(ctl hwio.Control, addr uint16) bool {
			if !ctl.ROML() {
				return false
			}
			r.w.DriveData(uint8(addr))
			return true
		},
	})

	val, driven := r.read(0x8042, romlRead)
	if val != 0x42 || !driven {
		t.Errorf("host read %#02x (driven %t), want 0x42 driven", val, driven)
	}
	if r.w.CrtDrivesData() {
		t.Error("data bus still driven after phase-low")
	}
	r.checkTiming()
}

func TestReadDeclinedNeverDrives(t *testing.T) {
	calls := 0
	r := newRig(t, Funcs{
		ReadFunc: func(ctl hwio.Control, addr uint16) bool {
			calls++
			return false
		},
	})

	for addr := uint16(0x0800); addr < 0x0810; addr++ {
		r.read(addr, hwio.CtlIdle)
	}
	if calls != 16 {
		t.Errorf("read handler called %d times, want 16", calls)
	}
	if r.w.DataDrives != 0 {
		t.Errorf("data bus driven %d times on declined cycles", r.w.DataDrives)
	}
	r.checkTiming()
}

func TestWriteDispatch(t *testing.T) {
	type access struct {
		Addr uint16
		Data uint8
	}
	var got []access
	r := newRig(t, Funcs{
		WriteFunc: func(ctl hwio.Control, addr uint16, data uint8) bool {
			got = append(got, access{addr, data})
			return true
		},
	})

	r.write(0xde00, hwio.CtlIdle&^hwio.CtlIO1, 0x05)
	r.write(0xdf01, hwio.CtlIdle&^hwio.CtlIO2, 0x90)

	want := []access{{0xde00, 0x05}, {0xdf01, 0x90}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("writes (-want +got):\n%s", diff)
	}
	if r.w.DataDrives != 0 {
		t.Error("write cycles must not drive the data bus")
	}
	r.checkTiming()
}

func TestChain(t *testing.T) {
	var order []string
	primary := Funcs{
		ReadFunc: func(ctl hwio.Control, addr uint16) bool {
			order = append(order, "primary-read")
			return ctl.ROML()
		},
		WriteFunc: func(ctl hwio.Control, addr uint16, data uint8) bool {
			order = append(order, "primary-write")
			return ctl.IO1()
		},
	}
	secondary := Funcs{
		ReadFunc: func(ctl hwio.Control, addr uint16) bool {
			order = append(order, "secondary-read")
			return true
		},
		WriteFunc: func(ctl hwio.Control, addr uint16, data uint8) bool {
			order = append(order, "secondary-write")
			return true
		},
	}
	h := Chain(primary, secondary)

	h.Read(romlRead, 0x8000)
	h.Read(hwio.CtlIdle&^hwio.CtlIO2, 0xdf00)
	h.Write(hwio.CtlIdle&^hwio.CtlIO1, 0xde00, 0)
	h.Write(hwio.CtlIdle&^hwio.CtlIO2, 0xdf01, 0)

	want := []string{
		"primary-read",
		"primary-read", "secondary-read",
		"primary-write",
		"primary-write", "secondary-write",
	}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("dispatch order (-want +got):\n%s", diff)
	}
}

func TestDMAMode(t *testing.T) {
	mem := make([]byte, 0x10000)
	mem[0x1000] = 0xaa

	var r *rig
	var got []uint8
	step := func() {
		r.w.DriveAddr(0x1000)
		got = append(got, r.core.DMARead())
		if len(got) == 2 {
			r.core.Resume()
		}
	}
	r = newRig(t, Funcs{
		WriteFunc: func(ctl hwio.Control, addr uint16, data uint8) bool {
			r.core.InstallDMA(step)
			return true
		},
	})

	r.write(0xdf01, hwio.CtlIdle&^hwio.CtlIO2, 0x91)
	if r.core.Mode() != DMA {
		t.Fatalf("mode = %s, want dma", r.core.Mode())
	}
	if at, _ := r.core.IRQPoint(); at != r.refs.IntDMA {
		t.Errorf("dma interrupt point = %d, want %d", at, r.refs.IntDMA)
	}

	r.dma(mem, false)
	if len(got) != 0 {
		t.Fatal("dma step ran while BA was low")
	}
	r.dma(mem, true)
	r.dma(mem, true)

	if diff := cmp.Diff([]uint8{0xaa, 0xaa}, got); diff != "" {
		t.Errorf("dma reads (-want +got):\n%s", diff)
	}
	if r.core.Mode() != CPU {
		t.Errorf("mode = %s after resume, want cpu", r.core.Mode())
	}
	if r.w.CrtDrivesAddr() {
		t.Error("address bus still driven after the dma read")
	}
	r.checkTiming()
}

func TestDMAWrite(t *testing.T) {
	mem := make([]byte, 0x10000)
	var r *rig
	r = newRig(t, Funcs{})
	r.core.InstallDMA(func() {
		r.w.DriveAddr(0x2000)
		r.w.DriveWrite()
		r.w.DriveData(0x55)
		r.core.DMAWriteEnd()
	})

	r.dma(mem, true)
	if mem[0x2000] != 0x55 {
		t.Errorf("host memory = %#02x, want 0x55", mem[0x2000])
	}
	if r.w.CrtDrivesAddr() || r.w.CrtDrivesData() || r.w.CrtDrivesWrite() {
		t.Error("dma write did not release the buses")
	}
	r.checkTiming()
}

func TestDisable(t *testing.T) {
	r := newRig(t, Funcs{})
	r.w.DriveAddr(0x1234)
	r.w.DriveData(0x12)
	r.w.DriveWrite()
	r.w.Crt(hwio.DMALow.With(hwio.IRQLow).With(hwio.Port16K))

	r.core.Disable()

	if r.core.Active() || r.core.Mode() != Idle {
		t.Error("core still active after Disable")
	}
	if _, ok := r.core.IRQPoint(); ok {
		t.Error("cycle interrupt still enabled")
	}
	if r.w.CrtDrivesAddr() || r.w.CrtDrivesData() || r.w.CrtDrivesWrite() {
		t.Error("buses not released")
	}
	if got, want := r.w.Lines(), hwio.Idle.Apply(0); got != want {
		t.Errorf("lines = %06b, want %06b", got, want)
	}

	// Cycles are no-ops once disabled.
	r.sim.Begin(0)
	r.core.Cycle()
	if !r.sim.Pending() {
		t.Error("a disabled core must not touch the timer")
	}
	r.sim.End()
}

func TestEnableErrors(t *testing.T) {
	sim := clock.NewSim(clock.PAL.Nominal())
	core := NewCore(hwio.NewWires(), sim, sim)
	core.Install(Funcs{})
	if err := core.Enable(); err == nil {
		t.Error("enable before arm should fail")
	}

	refs, _ := clock.Arm(clock.NTSC, 0)
	core = NewCore(hwio.NewWires(), sim, sim)
	core.Arm(refs)
	if err := core.Enable(); err == nil {
		t.Error("enable without handler should fail")
	}
}

func TestTracer(t *testing.T) {
	var r *rig
	r = newRig(t, Funcs{
		ReadFunc: func(ctl hwio.Control, addr uint16) bool {
			r.w.DriveData(0x10)
			return ctl.IO2()
		},
	})
	var buf bytes.Buffer
	r.core.SetTracer(NewTracer(&buf))

	r.read(0xdf00, hwio.CtlIdle&^hwio.CtlIO2)
	r.write(0xdf01, hwio.CtlIdle&^hwio.CtlIO2, 0x90)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d trace lines, want 2:\n%s", len(lines), buf.String())
	}

	type entry struct {
		Mode, Addr, Data string
		Write, Handled   bool
	}
	var got []entry
	for _, l := range lines {
		var e entry
		err := jx.DecodeStr(l).Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "mode":
				e.Mode, err = d.Str()
			case "addr":
				e.Addr, err = d.Str()
			case "data":
				e.Data, err = d.Str()
			case "write":
				e.Write, err = d.Bool()
			case "handled":
				e.Handled, err = d.Bool()
			default:
				err = d.Skip()
			}
			return err
		})
		if err != nil {
			t.Fatalf("decoding %q: %v", l, err)
		}
		got = append(got, e)
	}

	want := []entry{
		{Mode: "cpu", Addr: "df00", Handled: true},
		{Mode: "cpu", Addr: "df01", Data: "90", Write: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("trace (-want +got):\n%s", diff)
	}
}

// failAfter accepts n writes, then fails.
type failAfter struct {
	n      int
	writes int
}

var errDiskFull = errors.New("disk full")

func (f *failAfter) Write(p []byte) (int, error) {
	f.writes++
	if f.writes > f.n {
		return 0, errDiskFull
	}
	return len(p), nil
}

func TestTracerWriteError(t *testing.T) {
	r := newRig(t, Funcs{})
	w := &failAfter{n: 1}
	tr := NewTracer(w)
	r.core.SetTracer(tr)

	r.read(0x1000, hwio.CtlIdle)
	if tr.Err() != nil {
		t.Fatalf("Err() = %v after a successful write", tr.Err())
	}
	r.read(0x1001, hwio.CtlIdle)
	r.read(0x1002, hwio.CtlIdle)

	if !errors.Is(tr.Err(), errDiskFull) {
		t.Errorf("Err() = %v, want %v", tr.Err(), errDiskFull)
	}
	if w.writes != 2 {
		t.Errorf("%d writes, tracing should stop at the first error", w.writes)
	}
}
