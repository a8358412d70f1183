package application

import "time"

// NumZones is fixed at build time; the relay board has seven outputs.
const NumZones = 7

// ZoneOutput drives the physical relay for a zone. Implementations must not
// block; a write is fire-and-forget from the control loop's point of view.
type ZoneOutput interface {
	WriteZone(zone int, on bool)
}

// Zone is the state of one valve output. ActivatedAt is non-zero exactly
// while the zone is ON.
type Zone struct {
	Name        string
	On          bool
	ActivatedAt time.Time
}

// ZoneBank owns the output state of all zones. It is touched only from the
// tick goroutine, so it carries no locking.
type ZoneBank struct {
	zones  [NumZones]Zone
	output ZoneOutput
}

// NewZoneBank initializes every zone to OFF and drives the outputs low.
func NewZoneBank(names [NumZones]string, output ZoneOutput) *ZoneBank {
	b := &ZoneBank{output: output}
	for i := range b.zones {
		b.zones[i].Name = names[i]
		output.WriteZone(i+1, false)
	}
	return b
}

// Set switches a zone and keeps the ActivatedAt invariant. zone is 1-based
// and must be in [1, NumZones]; callers validate before calling (the command
// parser guarantees this for inbound traffic).
//
// Turning ON a zone that is already ON keeps its original ActivatedAt so the
// safety ceiling is measured from the first activation, not the latest
// repeated command.
func (b *ZoneBank) Set(zone int, on bool, now time.Time) {
	z := &b.zones[zone-1]
	if on {
		if !z.On {
			z.ActivatedAt = now
		}
	} else {
		z.ActivatedAt = time.Time{}
	}
	z.On = on
	b.output.WriteZone(zone, on)
}

// Zone returns the state of one zone. zone is 1-based.
func (b *ZoneBank) Zone(zone int) Zone {
	return b.zones[zone-1]
}

// Snapshot returns all zone states by value. It does not allocate and never
// blocks, so it is safe to call from the publish path every tick.
func (b *ZoneBank) Snapshot() [NumZones]Zone {
	return b.zones
}
