package clock

// Source is the free-running cycle counter used to busy-wait within a host
// clock period.
type Source interface {
	Now() uint32
	// Set resynchronizes the counter, usually to the timer count.
	Set(v uint32)
	// WaitUntil spins until the counter reaches t.
	WaitUntil(t uint32)
}

// Timer is the capture/compare unit clocked alongside the host clock. Its
// count restarts at every falling edge of phase-2.
type Timer interface {
	Count() uint32
	// Ack clears the pending compare interrupt.
	Ack()
	Pending() bool
}

// Spin is a Source busy-waiting on a hardware counter.
type Spin struct {
	// Read returns the raw hardware counter, which increments at TimerHz.
	Read func() uint32

	base uint32
}

func (s *Spin) Now() uint32 { return s.Read() - s.base }

func (s *Spin) Set(v uint32) { s.base = s.Read() - v }

func (s *Spin) WaitUntil(t uint32) {
	for s.Now() < t {
	}
}
