package application

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultStatusInterval is the minimum spacing between health reports,
// measured from the previous publish rather than aligned to the wall clock.
const DefaultStatusInterval = 60 * time.Second

// Telemetry supplies the device-level readings in the health report.
type Telemetry interface {
	Uptime() time.Duration
	FreeHeap() uint64
	LinkQuality() int
	ChipID() string
}

// ZoneReport is one zone's entry in the health report.
type ZoneReport struct {
	Zone  int    `json:"zone"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// HealthReport is the structured status message published to TopicHealth.
type HealthReport struct {
	Status   string       `json:"status"`
	Uptime   int64        `json:"uptime"`
	FreeHeap uint64       `json:"free_heap"`
	WifiRSSI int          `json:"wifi_rssi"`
	ChipID   string       `json:"chip_id"`
	Zones    []ZoneReport `json:"zones"`
}

type StatusPublisherParams struct {
	Client    MQTTClient
	Bank      *ZoneBank
	Telemetry Telemetry

	Interval time.Duration

	Log zerolog.Logger
}

func (p *StatusPublisherParams) EnsureDefaults() {
	if p.Interval == 0 {
		p.Interval = DefaultStatusInterval
	}
}

// StatusPublisher emits the periodic health report while connected. The
// interval gate is pure elapsed time, so after a long disconnection the first
// connected tick publishes immediately.
type StatusPublisher struct {
	client    MQTTClient
	bank      *ZoneBank
	telemetry Telemetry

	interval   time.Duration
	lastReport time.Time

	zones [NumZones]ZoneReport

	log zerolog.Logger
}

func NewStatusPublisher(params StatusPublisherParams) (*StatusPublisher, error) {
	params.EnsureDefaults()

	if params.Client == nil {
		return nil, fmt.Errorf("Client is nil")
	}
	if params.Bank == nil {
		return nil, fmt.Errorf("Bank is nil")
	}
	if params.Telemetry == nil {
		return nil, fmt.Errorf("Telemetry is nil")
	}

	return &StatusPublisher{
		client:    params.Client,
		bank:      params.Bank,
		telemetry: params.Telemetry,
		interval:  params.Interval,
		log:       params.Log,
	}, nil
}

// Tick publishes the health report if connected and the interval has elapsed.
// While disconnected it neither publishes nor re-arms the interval.
func (p *StatusPublisher) Tick(now time.Time, connected bool) {
	if !connected {
		return
	}
	if !p.lastReport.IsZero() && now.Sub(p.lastReport) <= p.interval {
		return
	}
	p.lastReport = now

	snapshot := p.bank.Snapshot()
	for i, z := range snapshot {
		p.zones[i] = ZoneReport{
			Zone:  i + 1,
			Name:  z.Name,
			State: StatePayload(z.On),
		}
	}

	report := HealthReport{
		Status:   PayloadOnline,
		Uptime:   int64(p.telemetry.Uptime() / time.Second),
		FreeHeap: p.telemetry.FreeHeap(),
		WifiRSSI: p.telemetry.LinkQuality(),
		ChipID:   p.telemetry.ChipID(),
		Zones:    p.zones[:],
	}

	payload, err := json.Marshal(report)
	if err != nil {
		p.log.Error().Err(err).Msg("failed to marshal health report")
		return
	}

	if err := p.client.Publish(TopicHealth, 0, true, payload); err != nil {
		p.log.Warn().Err(err).Msg("failed to publish health report")
		return
	}

	p.log.Debug().Msg("health report published")
}
