package hwio

import "strings"

// Control is a sample of the cartridge port control inputs. IO1, IO2, ROML
// and ROMH are active low, as on the connector: a cleared bit means the line
// is asserted.
type Control uint16

const (
	CtlWrite   Control = 1 << iota // R/W, set when the host reads
	CtlIO1                         // $DE00-$DEFF select
	CtlIO2                         // $DF00-$DFFF select
	CtlBA                          // bus available, low when the video chip steals the bus
	CtlROML                        // $8000-$9FFF select
	CtlROMH                        // $A000-$BFFF or $E000-$FFFF select
	CtlReset                       // reset detect, high while the host runs
	CtlMenu                        // menu button, high while pressed
	CtlSpecial                     // special button, high while pressed
)

// CtlIdle is the control state of a host reading outside of the cartridge
// areas with the bus available.
const CtlIdle = CtlWrite | CtlIO1 | CtlIO2 | CtlBA | CtlROML | CtlROMH | CtlReset

func (c Control) IsRead() bool { return c&CtlWrite != 0 }
func (c Control) IO1() bool    { return c&CtlIO1 == 0 }
func (c Control) IO2() bool    { return c&CtlIO2 == 0 }
func (c Control) ROML() bool   { return c&CtlROML == 0 }
func (c Control) ROMH() bool   { return c&CtlROMH == 0 }
func (c Control) BA() bool     { return c&CtlBA != 0 }

// ROM reports whether ROML or ROMH is asserted.
func (c Control) ROM() bool { return c&(CtlROML|CtlROMH) != CtlROML|CtlROMH }

func (c Control) String() string {
	var sb strings.Builder
	if c.IsRead() {
		sb.WriteString("R")
	} else {
		sb.WriteString("W")
	}
	for _, l := range []struct {
		on   bool
		name string
	}{
		{c.IO1(), " io1"},
		{c.IO2(), " io2"},
		{c.ROML(), " roml"},
		{c.ROMH(), " romh"},
		{!c.BA(), " !ba"},
	} {
		if l.on {
			sb.WriteString(l.name)
		}
	}
	return sb.String()
}

// Out is a set of output lines driven by the cartridge. A set bit means the
// line is high (released for the open-drain ones).
type Out uint8

const (
	OutIRQ Out = 1 << iota
	OutNMI
	OutDMA
	OutGAME
	OutEXROM
	OutLED
)

// Signal is one atomic update of the output lines: lines in High are set and
// lines in Low are cleared, in a single write.
type Signal struct {
	High, Low Out
}

func (s Signal) With(o Signal) Signal {
	return Signal{High: s.High | o.High, Low: s.Low | o.Low}
}

// Apply returns the output levels after s is written to out.
func (s Signal) Apply(out Out) Out {
	return (out | s.High) &^ s.Low
}

var (
	IRQHigh = Signal{High: OutIRQ}
	IRQLow  = Signal{Low: OutIRQ}
	NMIHigh = Signal{High: OutNMI}
	NMILow  = Signal{Low: OutNMI}
	DMAHigh = Signal{High: OutDMA}
	DMALow  = Signal{Low: OutDMA}
	LEDOn   = Signal{High: OutLED}
	LEDOff  = Signal{Low: OutLED}

	PortNone    = Signal{High: OutEXROM | OutGAME}
	Port8K      = Signal{High: OutGAME, Low: OutEXROM}
	Port16K     = Signal{Low: OutEXROM | OutGAME}
	PortUltimax = Signal{High: OutEXROM, Low: OutGAME}

	// Idle releases every line and disables the cartridge.
	Idle = Signal{High: OutIRQ | OutNMI | OutDMA | OutGAME | OutEXROM, Low: OutLED}
)
