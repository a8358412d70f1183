package application

import (
	"encoding/json"
	"fmt"
)

// DiscoveryPrefix is the Home Assistant discovery namespace.
const DiscoveryPrefix = "homeassistant"

// DeviceInfo identifies this controller in discovery records and health
// reports.
type DeviceInfo struct {
	Identifier   string
	Name         string
	Model        string
	Manufacturer string
	SWVersion    string
}

type discoveryDevice struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
	SWVersion    string   `json:"sw_version"`
}

// switchConfig is the discovery record for one zone. Field set follows the
// Home Assistant MQTT switch schema.
type switchConfig struct {
	Name              string          `json:"name"`
	UniqueID          string          `json:"unique_id"`
	CommandTopic      string          `json:"command_topic"`
	StateTopic        string          `json:"state_topic"`
	AvailabilityTopic string          `json:"availability_topic"`
	PayloadOn         string          `json:"payload_on"`
	PayloadOff        string          `json:"payload_off"`
	StateOn           string          `json:"state_on"`
	StateOff          string          `json:"state_off"`
	Optimistic        bool            `json:"optimistic"`
	QoS               int             `json:"qos"`
	Retain            bool            `json:"retain"`
	Device            discoveryDevice `json:"device"`
}

// DiscoveryTopic returns the discovery config topic for a 1-based zone.
func DiscoveryTopic(zone int) string {
	return fmt.Sprintf("%s/switch/sprinkler_zone%d/config", DiscoveryPrefix, zone)
}

// DiscoveryPayload renders the discovery record for a zone. Records are
// declarative: republishing the same record on every reconnect is expected
// and harmless.
func DiscoveryPayload(zone int, name string, dev DeviceInfo) ([]byte, error) {
	cfg := switchConfig{
		Name:              name,
		UniqueID:          fmt.Sprintf("sprinkler_zone%d", zone),
		CommandTopic:      ZoneCommandTopic(zone),
		StateTopic:        ZoneStateTopic(zone),
		AvailabilityTopic: TopicStatus,
		PayloadOn:         PayloadOn,
		PayloadOff:        PayloadOff,
		StateOn:           PayloadOn,
		StateOff:          PayloadOff,
		Optimistic:        false,
		QoS:               0,
		Retain:            true,
		Device: discoveryDevice{
			Identifiers:  []string{dev.Identifier},
			Name:         dev.Name,
			Model:        dev.Model,
			Manufacturer: dev.Manufacturer,
			SWVersion:    dev.SWVersion,
		},
	}
	return json.Marshal(cfg)
}
