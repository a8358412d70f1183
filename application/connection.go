package application

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultReconnectInterval caps how often a broker connection is attempted.
const DefaultReconnectInterval = 5 * time.Second

// ConnState is the messaging-channel connection state.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	}
	return "unknown"
}

type ConnectionManagerParams struct {
	Client MQTTClient
	Bank   *ZoneBank
	Device DeviceInfo

	ReconnectInterval time.Duration

	Log zerolog.Logger
}

func (p *ConnectionManagerParams) EnsureDefaults() {
	if p.ReconnectInterval == 0 {
		p.ReconnectInterval = DefaultReconnectInterval
	}
}

// ConnectionManager drives the broker connection: reconnect with a fixed
// retry cadence, (re)subscribe, and (re)announce retained state on every
// successful connect. Failures are never escalated; the controller retries
// forever.
type ConnectionManager struct {
	client MQTTClient
	bank   *ZoneBank
	device DeviceInfo

	reconnectInterval time.Duration

	state       ConnState
	lastAttempt time.Time

	handler func(msg MQTTMessage)

	log zerolog.Logger
}

func NewConnectionManager(params ConnectionManagerParams) (*ConnectionManager, error) {
	params.EnsureDefaults()

	if params.Client == nil {
		return nil, fmt.Errorf("Client is nil")
	}
	if params.Bank == nil {
		return nil, fmt.Errorf("Bank is nil")
	}

	return &ConnectionManager{
		client:            params.Client,
		bank:              params.Bank,
		device:            params.Device,
		reconnectInterval: params.ReconnectInterval,
		state:             StateDisconnected,
		log:               params.Log,
	}, nil
}

// SetMessageHandler installs the inbound dispatch function. It must be set
// before the first Tick; messages arriving through the transport's pump are
// delivered to it synchronously.
func (c *ConnectionManager) SetMessageHandler(handler func(msg MQTTMessage)) {
	c.handler = handler
}

// State returns the current connection state.
func (c *ConnectionManager) State() ConnState {
	return c.state
}

// Connected reports whether the messaging channel is up.
func (c *ConnectionManager) Connected() bool {
	return c.state == StateConnected
}

// Tick advances the connection state machine once. While disconnected it
// attempts a reconnect at most every ReconnectInterval; while connected it
// services the transport's inbound pump.
func (c *ConnectionManager) Tick(now time.Time) {
	if c.state == StateConnected && !c.client.IsConnected() {
		c.log.Warn().Msg("broker connection lost")
		c.state = StateDisconnected
		c.lastAttempt = now
	}

	switch c.state {
	case StateDisconnected:
		if !c.lastAttempt.IsZero() && now.Sub(c.lastAttempt) <= c.reconnectInterval {
			return
		}
		c.lastAttempt = now
		c.state = StateConnecting
		if err := c.connect(); err != nil {
			c.log.Warn().Err(err).Msg("broker connect failed")
			c.state = StateDisconnected
			return
		}
		c.log.Info().Msg("broker connected")
		c.state = StateConnected

	case StateConnected:
		c.client.Loop()
	}
}

// PublishZoneState publishes the retained state of one zone. It is a no-op
// error-wise: a failed publish is logged and the retained announcement on the
// next reconnect repairs observer state.
func (c *ConnectionManager) PublishZoneState(zone int) {
	payload := StatePayload(c.bank.Zone(zone).On)
	if err := c.client.Publish(ZoneStateTopic(zone), 0, true, []byte(payload)); err != nil {
		c.log.Warn().Err(err).Int("zone", zone).Msg("failed to publish zone state")
	}
}

// connect performs one connection attempt and, on success, the full
// announcement sequence: subscribe, online, per-zone state, per-zone
// discovery. The order is part of the contract.
func (c *ConnectionManager) connect() error {
	if err := c.client.Connect(); err != nil {
		return err
	}

	if err := c.client.Subscribe(TopicZoneCommand, 0, c.dispatch); err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicZoneCommand, err)
	}

	if err := c.client.Publish(TopicStatus, 0, true, []byte(PayloadOnline)); err != nil {
		return fmt.Errorf("publish availability: %w", err)
	}

	for zone := 1; zone <= NumZones; zone++ {
		c.PublishZoneState(zone)
	}

	for zone := 1; zone <= NumZones; zone++ {
		payload, err := DiscoveryPayload(zone, c.bank.Zone(zone).Name, c.device)
		if err != nil {
			c.log.Error().Err(err).Int("zone", zone).Msg("failed to build discovery record")
			continue
		}
		if err := c.client.Publish(DiscoveryTopic(zone), 0, true, payload); err != nil {
			c.log.Warn().Err(err).Int("zone", zone).Msg("failed to publish discovery record")
		}
	}

	return nil
}

func (c *ConnectionManager) dispatch(msg MQTTMessage) {
	if c.handler != nil {
		c.handler(msg)
	}
}
