package adapters

import (
	"fmt"
	"sync/atomic"
	"time"

	"sprinkler-controller/application"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

const (
	MQTTDefaultConnectTimeout = 10 * time.Second
	MQTTDefaultPublishTimeout = 5 * time.Second

	// MQTTDefaultQueueSize bounds the inbound message queue. Messages
	// arriving while the queue is full are dropped and counted; the
	// controller never buffers unboundedly.
	MQTTDefaultQueueSize = 64
)

var (
	ErrMQTTNotConnected   = fmt.Errorf("not connected")
	ErrMQTTConnectTimeout = fmt.Errorf("connect timeout")
	ErrMQTTPublishTimeout = fmt.Errorf("publish timeout")
)

type MQTTClientParams struct {
	ClientID string
	Broker   application.BrokerConfig

	// WillTopic/WillPayload register the last-will message delivered by the
	// broker on an unclean disconnect. Retained, QoS 0.
	WillTopic   string
	WillPayload string

	ConnectTimeout time.Duration
	PublishTimeout time.Duration
	QueueSize      int

	NewClientFunc func(options *mqtt.ClientOptions) mqtt.Client

	Log zerolog.Logger
}

func (m *MQTTClientParams) EnsureDefaults() {
	if m.ConnectTimeout == 0 {
		m.ConnectTimeout = MQTTDefaultConnectTimeout
	}

	if m.PublishTimeout == 0 {
		m.PublishTimeout = MQTTDefaultPublishTimeout
	}

	if m.QueueSize == 0 {
		m.QueueSize = MQTTDefaultQueueSize
	}

	if m.NewClientFunc == nil {
		m.NewClientFunc = mqtt.NewClient
	}
}

type inboundMessage struct {
	handler func(msg application.MQTTMessage)
	msg     application.MQTTMessage
}

// MQTTClient adapts the paho client to the non-blocking transport the control
// loop expects. Paho delivers messages on its own goroutines; they are queued
// on a bounded channel here and handed to the subscription handler only when
// Loop drains the queue from the tick goroutine, keeping the core
// single-threaded.
type MQTTClient struct {
	params MQTTClientParams

	client  mqtt.Client
	inbound chan inboundMessage

	connected          uint64
	msgCount           uint64
	droppedCount       uint64
	msgCountUpdateTime atomic.Pointer[time.Time]

	log zerolog.Logger
}

func NewMQTTClient(params MQTTClientParams) *MQTTClient {
	params.EnsureDefaults()

	m := &MQTTClient{
		params:  params,
		inbound: make(chan inboundMessage, params.QueueSize),
		log:     params.Log,
	}
	m.client = m.newMqttClient()

	t := time.Unix(0, 0)
	m.msgCountUpdateTime.Store(&t)

	return m
}

func (m *MQTTClient) Connect() error {
	if atomic.LoadUint64(&m.connected) == 1 {
		return nil
	}

	tc := time.NewTimer(m.params.ConnectTimeout)
	defer tc.Stop()

	token := m.client.Connect()
	select {
	case <-tc.C:
		return ErrMQTTConnectTimeout
	case <-token.Done():
		if token.Error() != nil {
			return token.Error()
		}
	}

	atomic.StoreUint64(&m.connected, 1)
	return nil
}

func (m *MQTTClient) IsConnected() bool {
	return atomic.LoadUint64(&m.connected) == 1
}

func (m *MQTTClient) Status() application.MQTTStatus {
	return application.MQTTStatus{
		MessageCount:      atomic.LoadUint64(&m.msgCount),
		DroppedCount:      atomic.LoadUint64(&m.droppedCount),
		LastTimePublished: *m.msgCountUpdateTime.Load(),
		Connected:         m.IsConnected(),
	}
}

func (m *MQTTClient) Publish(topic string, qos byte, retained bool, payload []byte) error {
	if !m.IsConnected() {
		return ErrMQTTNotConnected
	}

	tc := time.NewTimer(m.params.PublishTimeout)
	defer tc.Stop()

	token := m.client.Publish(topic, qos, retained, payload)
	select {
	case <-tc.C:
		return ErrMQTTPublishTimeout
	case <-token.Done():
		if token.Error() != nil {
			return token.Error()
		}
	}

	t := time.Now()
	m.msgCountUpdateTime.Store(&t)
	atomic.AddUint64(&m.msgCount, 1)
	return nil
}

func (m *MQTTClient) Subscribe(topic string, qos byte, handler func(msg application.MQTTMessage)) error {
	token := m.client.Subscribe(topic, qos, func(client mqtt.Client, msg mqtt.Message) {
		m.enqueue(handler, msg)
	})

	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Loop drains queued inbound messages, dispatching each to its subscription
// handler on the caller's goroutine. It returns as soon as the queue is
// empty and never blocks.
func (m *MQTTClient) Loop() {
	for {
		select {
		case in := <-m.inbound:
			in.handler(in.msg)
		default:
			return
		}
	}
}

func (m *MQTTClient) enqueue(handler func(msg application.MQTTMessage), msg mqtt.Message) {
	select {
	case m.inbound <- inboundMessage{handler: handler, msg: msg}:
	default:
		atomic.AddUint64(&m.droppedCount, 1)
		m.log.Warn().Str("topic", msg.Topic()).Msg("inbound queue full, message dropped")
	}
}

func (m *MQTTClient) OnConnect(client mqtt.Client) {
	m.log.Info().Msgf("connected")
	atomic.StoreUint64(&m.connected, 1)
}

func (m *MQTTClient) OnConnectionLost(client mqtt.Client, err error) {
	m.log.Info().Msgf("connect lost: %v", err)
	atomic.StoreUint64(&m.connected, 0)
}

func (m *MQTTClient) newMqttClient() mqtt.Client {
	opts := mqtt.NewClientOptions()

	opts.AddBroker(m.params.Broker.URL())
	opts.SetClientID(m.params.ClientID)
	opts.SetUsername(m.params.Broker.Username)
	opts.SetPassword(m.params.Broker.Password)

	// The broker delivers this on our behalf if the connection drops without
	// a clean disconnect; nothing else tells observers we went away.
	if m.params.WillTopic != "" {
		opts.SetWill(m.params.WillTopic, m.params.WillPayload, 0, true)
	}

	// Reconnects are driven by the connection manager's state machine, not
	// by paho's own retry loop.
	opts.SetAutoReconnect(false)

	opts.OnConnect = m.OnConnect
	opts.OnConnectionLost = m.OnConnectionLost

	return m.params.NewClientFunc(opts)
}

var _ application.MQTTClient = &MQTTClient{}
