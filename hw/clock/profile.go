// Package clock tracks the host phase-2 clock: it classifies the host clock
// frequency and provides the intra-cycle timing references used by the bus
// handlers.
package clock

import (
	"fmt"
	"strings"
)

// TimerHz is the frequency of the capture timer and of the cycle counter.
const TimerHz = 280_000_000

// Profile is one of the supported host clock frequencies.
type Profile uint8

const (
	Unknown Profile = iota
	PAL             // 0.985 MHz
	NTSC            // 1.023 MHz
)

var profiles = [...]struct {
	name    string
	hz      int
	nominal uint32 // capture count of one host clock period
}{
	Unknown: {name: "unknown"},
	PAL:     {name: "pal", hz: 985_248, nominal: 283},
	NTSC:    {name: "ntsc", hz: 1_022_727, nominal: 272},
}

func (p Profile) String() string { return profiles[p].name }

// Hz returns the host clock frequency.
func (p Profile) Hz() int { return profiles[p].hz }

// Nominal returns the expected capture count of one host clock period.
func (p Profile) Nominal() uint32 { return profiles[p].nominal }

// ParseProfile parses a profile name. "auto" and "" map to Unknown.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return Unknown, nil
	case "pal":
		return PAL, nil
	case "ntsc":
		return NTSC, nil
	}
	return Unknown, fmt.Errorf("unknown clock profile %q", s)
}
