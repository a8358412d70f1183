package application

import "fmt"

// Topic layout is fixed; consumers (Home Assistant, dashboards) key off these
// exact strings, so they are constants rather than configuration.
const (
	TopicPrefix      = "home/sprinkler/"
	TopicZoneCommand = TopicPrefix + "zone/+/command"
	TopicStatus      = TopicPrefix + "status"
	TopicHealth      = TopicPrefix + "health"

	PayloadOnline  = "online"
	PayloadOffline = "offline"
	PayloadOn      = "ON"
	PayloadOff     = "OFF"
)

// ZoneStateTopic returns the retained state topic for a 1-based zone.
func ZoneStateTopic(zone int) string {
	return fmt.Sprintf("%szone/%d/state", TopicPrefix, zone)
}

// ZoneCommandTopic returns the concrete command topic for a 1-based zone, as
// referenced from discovery records. Inbound subscription uses the wildcard
// TopicZoneCommand instead.
func ZoneCommandTopic(zone int) string {
	return fmt.Sprintf("%szone/%d/command", TopicPrefix, zone)
}

// StatePayload maps a zone output to its wire form.
func StatePayload(on bool) string {
	if on {
		return PayloadOn
	}
	return PayloadOff
}
