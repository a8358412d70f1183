package adapters

import (
	"sprinkler-controller/application"

	"github.com/rs/zerolog"
	rpio "github.com/stianeikeland/go-rpio/v4"
)

// DefaultZonePins is the relay pin map, one GPIO per zone.
var DefaultZonePins = [application.NumZones]int{5, 4, 14, 12, 13, 15, 16}

type RelayBankParams struct {
	Pins [application.NumZones]int

	Log zerolog.Logger
}

// RelayBank drives the valve relays through the Raspberry Pi GPIO. On hosts
// without a usable GPIO device it degrades to log-only writes so the rest of
// the controller keeps working during development.
type RelayBank struct {
	pins      [application.NumZones]rpio.Pin
	available bool

	log zerolog.Logger
}

func NewRelayBank(params RelayBankParams) *RelayBank {
	r := &RelayBank{log: params.Log}

	if err := rpio.Open(); err != nil {
		r.log.Warn().Err(err).Msg("GPIO unavailable, relay writes are log-only")
		return r
	}
	r.available = true

	for i, pin := range params.Pins {
		r.pins[i] = rpio.Pin(pin)
		r.pins[i].Output()
		r.pins[i].Low()
	}
	return r
}

// WriteZone sets the relay output for a 1-based zone.
func (r *RelayBank) WriteZone(zone int, on bool) {
	if !r.available {
		r.log.Debug().Int("zone", zone).Bool("on", on).Msg("relay write (no GPIO)")
		return
	}

	if on {
		r.pins[zone-1].High()
	} else {
		r.pins[zone-1].Low()
	}
}

// Close releases the GPIO device. All relays are driven low first.
func (r *RelayBank) Close() error {
	if !r.available {
		return nil
	}
	for i := range r.pins {
		r.pins[i].Low()
	}
	return rpio.Close()
}

var _ application.ZoneOutput = &RelayBank{}
