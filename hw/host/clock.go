package host

import "cartport/hw/clock"

// Clock samples the simulated phase-2 clock, as captured by the period
// measuring timer.
type Clock struct {
	Profile clock.Profile // Unknown means the host is off
	Jitter  uint32        // max capture jitter, in timer counts

	n uint32
}

func (c *Clock) Sample() (uint32, bool) {
	if c.Profile == clock.Unknown {
		return 0, false
	}
	c.n++
	count := c.Profile.Nominal()
	if c.Jitter == 0 {
		return count, true
	}
	// Spread evenly in [-Jitter, +Jitter].
	return count - c.Jitter + c.n%(2*c.Jitter+1), true
}
