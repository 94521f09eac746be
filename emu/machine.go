package emu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"cartport/emu/log"
	"cartport/hw/bus"
	"cartport/hw/cartmem"
	"cartport/hw/carts"
	"cartport/hw/clock"
	"cartport/hw/host"
	"cartport/hw/hwio"
	"cartport/hw/reu"
)

// Machine is a cartridge port emulation wired to a simulated host.
type Machine struct {
	Wires *hwio.Wires
	Sim   *clock.Sim
	Core  *bus.Core
	Host  *host.Host
	Buf   *cartmem.Buffers

	Cart carts.Cartridge // nil without cartridge
	REU  *reu.REU        // nil when disabled

	cfg     Config
	tracer  *bus.Tracer
	handler bus.Handler
	initSig hwio.Signal
}

var (
	errNothing     = errors.New("no cartridge and no RAM expansion configured")
	errIO2Conflict = errors.New("cartridge uses IO2, it cannot be combined with the RAM expansion")
)

// New builds a machine from cfg. The bus interface is not enabled.
func New(cfg Config) (*Machine, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}
	profile, err := ParseProfile(cfg.Clock.Profile)
	if err != nil {
		return nil, err
	}

	m := &Machine{
		Wires: hwio.NewWires(),
		Sim:   clock.NewSim(profile.Nominal()),
		Buf:   cartmem.New(),
		cfg:   cfg,
	}
	m.Core = bus.NewCore(m.Wires, m.Sim, m.Sim)
	m.Host = host.New(m.Wires, m.Sim, m.Core)
	m.Host.Clock = host.Clock{Profile: profile, Jitter: 2}

	if cfg.Cartridge.Image != "" {
		img, err := os.ReadFile(cfg.Cartridge.Image)
		if err != nil {
			return nil, fmt.Errorf("cartridge image: %w", err)
		}
		if err := m.Buf.Load(img); err != nil {
			return nil, fmt.Errorf("cartridge image %s: %w", cfg.Cartridge.Image, err)
		}
	}

	if err := m.SetMode(); err != nil {
		return nil, err
	}
	return m, nil
}

// SetMode creates the cartridge and RAM expansion from the configuration. It
// must be called while the bus interface is disabled.
func (m *Machine) SetMode() error {
	if m.Core.Active() {
		return fmt.Errorf("cannot change mode while the bus interface is enabled")
	}

	cc := m.cfg.Cartridge
	m.Cart, m.REU, m.handler = nil, nil, nil
	m.initSig = hwio.PortNone

	if cc.Type >= 0 {
		crt, err := carts.Load(uint16(cc.Type), m.Wires, m.Buf, carts.Options{EXROM: cc.EXROM, GAME: cc.GAME})
		if err != nil {
			return err
		}
		m.Cart = crt
	}

	if m.cfg.REU.Enabled {
		if m.Cart != nil && m.Cart.Desc().OwnsIO2 {
			name := m.Cart.Desc().Name
			m.Cart = nil
			return fmt.Errorf("%s: %w", name, errIO2Conflict)
		}
		if m.Cart != nil {
			// The image buffer is taken by the cartridge.
			m.REU = reu.New(m.Core, make([]byte, cartmem.ROMSize))
		} else {
			m.REU = reu.New(m.Core, m.Buf.ROM)
			m.REU.Mem().OnWrite = m.Buf.Modified
		}
	}

	switch {
	case m.Cart != nil && m.REU != nil:
		m.handler = bus.Chain(m.Cart, m.REU)
	case m.Cart != nil:
		m.handler = m.Cart
	case m.REU != nil:
		m.handler = m.REU
		m.initSig = hwio.PortNone.With(hwio.LEDOn)
	default:
		return errNothing
	}

	log.ModEmu.InfoZ("mode set").
		Bool("cartridge", m.Cart != nil).
		Bool("reu", m.REU != nil).
		End()
	return nil
}

// SetTracer writes a JSON trace of the bus cycles to w, nil disables it.
func (m *Machine) SetTracer(w io.Writer) {
	m.tracer = nil
	if w != nil {
		m.tracer = bus.NewTracer(w)
	}
	m.Core.SetTracer(m.tracer)
}

// TraceErr returns the error which stopped tracing, if any.
func (m *Machine) TraceErr() error {
	if m.tracer == nil {
		return nil
	}
	return m.tracer.Err()
}

// Enable waits for a valid host clock, arms the phase references and enables
// the bus interface. It blocks until the clock is valid or ctx is done. It
// does nothing if the interface is already enabled.
func (m *Machine) Enable(ctx context.Context) error {
	if m.Core.Active() {
		return nil
	}

	profile, err := clock.WaitValidClock(ctx, &m.Host.Clock, hwio.LED{Port: m.Wires})
	if err != nil {
		return err
	}

	refs, err := clock.Arm(profile, m.cfg.Clock.Phi2Offset)
	if err != nil {
		return err
	}
	m.Sim.SetPeriod(profile.Nominal())
	m.Core.Arm(refs)

	if m.REU != nil {
		m.REU.Abort()
	}
	m.Core.Install(m.handler)
	if m.Cart != nil {
		m.Cart.Init()
	} else {
		m.Wires.Crt(m.initSig)
	}
	return m.Core.Enable()
}

// Disable stops the bus interface, releasing every line. A running DMA
// transfer is aborted.
func (m *Machine) Disable() {
	m.Core.Disable()
	if m.REU != nil {
		m.REU.Abort()
	}
}
