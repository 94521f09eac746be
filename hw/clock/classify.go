package clock

import (
	"context"
	"errors"

	"cartport/emu/log"
)

const (
	// TolerancePct is the maximum deviation, in percent of a nominal count,
	// of a capture sample.
	TolerancePct = 5

	// StableSamples is the number of consecutive in-band samples required
	// for a classification.
	StableSamples = 100

	// blinkSamples is the number of failed samples between two toggles of
	// the liveness indicator.
	blinkSamples = 25000
)

var ErrNoClock = errors.New("no valid host clock")

// A Sampler captures the length, in timer ticks, of the last host clock
// period. ok is false when no clock edge was captured since the last call.
type Sampler interface {
	Sample() (count uint32, ok bool)
}

// An Indicator is a visible liveness signal, e.g. a LED.
type Indicator interface {
	Toggle()
	On()
}

// Classifier classifies a stream of capture samples.
type Classifier struct {
	streak int
	sum    uint64
}

func (c *Classifier) Reset() {
	c.streak = 0
	c.sum = 0
}

func inBand(count uint32, p Profile) bool {
	nom := int64(p.Nominal())
	diff := int64(count) - nom
	if diff < 0 {
		diff = -diff
	}
	return diff*100 <= nom*TolerancePct
}

// Add feeds one capture sample. It returns the classified profile and true
// once StableSamples consecutive samples fell within tolerance of a nominal.
func (c *Classifier) Add(count uint32, ok bool) (Profile, bool) {
	if !ok || !(inBand(count, PAL) || inBand(count, NTSC)) {
		c.Reset()
		return Unknown, false
	}

	c.streak++
	c.sum += uint64(count)
	if c.streak < StableSamples {
		return Unknown, false
	}

	// Pick the nearest nominal. Counts are compared doubled to stay exact.
	mean2 := 2 * c.sum / uint64(c.streak)
	mid2 := uint64(PAL.Nominal() + NTSC.Nominal())
	if mean2 < mid2 {
		return NTSC, true
	}
	return PAL, true
}

// MeasureAndClassify reads at most maxSamples samples from s and returns the
// host clock profile, or ErrNoClock if no stable classification is reached.
func MeasureAndClassify(s Sampler, maxSamples int) (Profile, error) {
	var c Classifier
	for range maxSamples {
		if p, ok := c.Add(s.Sample()); ok {
			return p, nil
		}
	}
	return Unknown, ErrNoClock
}

// WaitValidClock waits until the host clock is classified, blinking ind while
// it is not. It only returns early when ctx is done.
func WaitValidClock(ctx context.Context, s Sampler, ind Indicator) (Profile, error) {
	var (
		c        Classifier
		activity int
	)
	for {
		select {
		case <-ctx.Done():
			return Unknown, ctx.Err()
		default:
		}

		if p, ok := c.Add(s.Sample()); ok {
			ind.On()
			log.ModClock.InfoZ("valid clock").Stringer("profile", p).End()
			return p, nil
		}

		activity++
		if activity > blinkSamples {
			activity = 0
			ind.Toggle()
		}
	}
}
