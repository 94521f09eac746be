package clock

import "fmt"

// MaxOffset bounds the user calibration offset, in cycle counter units.
const MaxOffset = 30

// Refs are the cycle counter values, relative to the falling edge of the
// host phase-2 clock, at which the bus handlers sample and release the bus.
type Refs struct {
	Profile Profile
	Offset  int

	Int    uint32 // compare match raising the bus cycle interrupt
	IntDMA uint32 // compare match raising the DMA cycle interrupt

	High    uint32 // phase-2 is high, address and control are stable
	Low     uint32 // phase-2 is about to go low, the data bus may be released
	HighDMA uint32 // before phase-2 goes high, DMA address must be driven

	// Fine corrects the cycle counter of handlers that resynchronize it
	// themselves instead of trusting the timer compare.
	Fine int32
}

type timing struct {
	high, int, low int
}

const (
	dmaIntOffset = 65
	dmaOffset    = 76
)

var timings = [...]timing{
	PAL:  {high: 164, int: 164 - 59, low: 249},
	NTSC: {high: 154, int: 154 - 58, low: 236},
}

// ClampOffset limits a calibration offset to [-MaxOffset, MaxOffset].
func ClampOffset(off int) int {
	return min(max(off, -MaxOffset), MaxOffset)
}

// Arm computes the phase references of profile p, shifted by the calibration
// offset. The offset is clamped.
func Arm(p Profile, offset int) (Refs, error) {
	if p != PAL && p != NTSC {
		return Refs{}, fmt.Errorf("cannot arm phase references for %s clock", p)
	}

	offset = ClampOffset(offset)
	t := timings[p]
	at := func(v int) uint32 { return uint32(v + offset) }

	return Refs{
		Profile: p,
		Offset:  offset,
		Int:     at(t.int),
		IntDMA:  at(t.int - dmaIntOffset),
		High:    at(t.high),
		Low:     at(t.low),
		HighDMA: at(t.high - dmaOffset),
		Fine:    int32(-offset),
	}, nil
}

// Ordered returns the references in the order they occur within one host
// clock period.
func (r Refs) Ordered() []uint32 {
	return []uint32{r.IntDMA, r.HighDMA, r.Int, r.High, r.Low}
}
