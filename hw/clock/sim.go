package clock

import (
	"slices"

	"cartport/emu/log"
)

type event struct {
	at uint32
	fn func()
}

// Sim is a simulated timer and cycle counter. Time only moves when a handler
// waits, which makes every bus cycle deterministic. Events scheduled with At
// fire when the waiting handler crosses them, which is how a simulated host
// samples or drives the bus at a precise instant of the cycle.
type Sim struct {
	period  uint32
	now     uint32
	pending bool
	events  []event

	Cycles   uint64 // number of simulated periods
	LateAcks int    // waits entered with the compare interrupt still pending
	Overruns int    // waits reaching past the end of the period
}

// NewSim returns a simulated clock whose periods last period counter ticks.
func NewSim(period uint32) *Sim {
	return &Sim{period: period}
}

func (s *Sim) Period() uint32 { return s.period }

// SetPeriod changes the period length, for clock profile switches.
func (s *Sim) SetPeriod(period uint32) { s.period = period }

// Begin starts a period at counter value at, with the compare interrupt
// pending. Events of the previous period are dropped.
func (s *Sim) Begin(at uint32) {
	s.now = at
	s.pending = true
	s.events = s.events[:0]
	s.Cycles++
}

// At schedules fn at time t of the current period.
func (s *Sim) At(t uint32, fn func()) {
	i, _ := slices.BinarySearchFunc(s.events, t, func(e event, t uint32) int {
		if e.at <= t {
			return -1
		}
		return 1
	})
	s.events = slices.Insert(s.events, i, event{at: t, fn: fn})
}

// End finishes the period, firing the remaining events.
func (s *Sim) End() {
	s.fire(s.period)
	s.pending = false
}

func (s *Sim) fire(until uint32) {
	for len(s.events) > 0 && s.events[0].at < until {
		ev := s.events[0]
		s.events = s.events[1:]
		if ev.at > s.now {
			s.now = ev.at
		}
		ev.fn()
	}
}

// Timer

func (s *Sim) Count() uint32 { return s.now }
func (s *Sim) Ack()          { s.pending = false }
func (s *Sim) Pending() bool { return s.pending }

// Source

func (s *Sim) Now() uint32  { return s.now }
func (s *Sim) Set(v uint32) { s.now = v }

func (s *Sim) WaitUntil(t uint32) {
	if s.pending {
		s.LateAcks++
		log.ModClock.WarnZ("wait with pending interrupt").Uint("cycle", s.Cycles).End()
	}
	if t >= s.period {
		s.Overruns++
		log.ModClock.WarnZ("wait past end of period").Uint("cycle", s.Cycles).Uint("until", uint64(t)).End()
	}
	s.fire(t)
	if t > s.now {
		s.now = t
	}
}
