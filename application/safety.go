package application

import "time"

// DefaultMaxRuntime is the safety ceiling: no valve may stay open longer than
// this, no matter what commands were (or were not) received.
const DefaultMaxRuntime = 2 * time.Hour

// SafetyMonitor force-closes zones that have been ON for longer than
// MaxRuntime. It is a pure scan-and-mutate step, O(NumZones), with no failure
// path.
type SafetyMonitor struct {
	MaxRuntime time.Duration
}

func NewSafetyMonitor(maxRuntime time.Duration) *SafetyMonitor {
	if maxRuntime <= 0 {
		maxRuntime = DefaultMaxRuntime
	}
	return &SafetyMonitor{MaxRuntime: maxRuntime}
}

// Scan forces OFF every zone whose continuous ON time exceeds MaxRuntime and
// appends its 1-based number to forced. The comparison is strictly greater
// than: a zone at exactly MaxRuntime is left running until the next tick.
// Callers pass a reused slice to keep the tick path allocation-free.
func (m *SafetyMonitor) Scan(bank *ZoneBank, now time.Time, forced []int) []int {
	for zone := 1; zone <= NumZones; zone++ {
		z := bank.Zone(zone)
		if z.On && now.Sub(z.ActivatedAt) > m.MaxRuntime {
			bank.Set(zone, false, now)
			forced = append(forced, zone)
		}
	}
	return forced
}
