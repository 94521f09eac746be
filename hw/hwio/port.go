package hwio

// Port is the cartridge side of the host expansion port. Each method is a
// single access to the pins, cheap enough to be called from a bus cycle.
type Port interface {
	// Address bus.
	ReadAddr() uint16
	DriveAddr(addr uint16)
	ReleaseAddr()

	// Data bus.
	ReadData() uint8
	DriveData(val uint8)
	ReleaseData()

	// Control inputs. R/W is the only control line the cartridge can drive,
	// and only while it owns the bus.
	ReadControl() Control
	DriveWrite()
	ReleaseWrite()

	// Crt updates the output lines (IRQ, NMI, DMA, GAME, EXROM, LED).
	Crt(s Signal)
	Lines() Out
}

// Release puts every pin of p back to a safe idle state.
func Release(p Port) {
	p.ReleaseData()
	p.ReleaseAddr()
	p.ReleaseWrite()
	p.Crt(Idle)
}

// LED drives the status LED of a port, it implements the liveness indicator
// of the clock tracker.
type LED struct {
	Port Port
}

func (l LED) Toggle() {
	if l.Port.Lines()&OutLED != 0 {
		l.Port.Crt(LEDOff)
	} else {
		l.Port.Crt(LEDOn)
	}
}

func (l LED) On() { l.Port.Crt(LEDOn) }
