package application

import "time"

type outputWrite struct {
	zone int
	on   bool
}

// fakeOutput records relay writes in order.
type fakeOutput struct {
	writes []outputWrite
}

func (f *fakeOutput) WriteZone(zone int, on bool) {
	f.writes = append(f.writes, outputWrite{zone: zone, on: on})
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return m.payload }

type publishRecord struct {
	topic    string
	qos      byte
	retained bool
	payload  string
}

// fakeTransport is a recording MQTTClient. Inbound messages are injected
// into a queue and delivered to the subscription handler on Loop, mirroring
// the real adapter's pump.
type fakeTransport struct {
	connected    bool
	connectErr   error
	connectCalls int

	subscribeErr error
	publishErr   error

	subscriptions map[string]func(msg MQTTMessage)
	published     []publishRecord
	queue         []fakeMessage
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		subscriptions: make(map[string]func(msg MQTTMessage)),
	}
}

func (t *fakeTransport) Connect() error {
	t.connectCalls++
	if t.connectErr != nil {
		return t.connectErr
	}
	t.connected = true
	return nil
}

func (t *fakeTransport) IsConnected() bool { return t.connected }

func (t *fakeTransport) Subscribe(topic string, qos byte, handler func(msg MQTTMessage)) error {
	if t.subscribeErr != nil {
		return t.subscribeErr
	}
	t.subscriptions[topic] = handler
	return nil
}

func (t *fakeTransport) Publish(topic string, qos byte, retained bool, payload []byte) error {
	if t.publishErr != nil {
		return t.publishErr
	}
	t.published = append(t.published, publishRecord{
		topic:    topic,
		qos:      qos,
		retained: retained,
		payload:  string(payload),
	})
	return nil
}

func (t *fakeTransport) Loop() {
	pending := t.queue
	t.queue = nil
	for _, msg := range pending {
		if handler, ok := t.subscriptions[TopicZoneCommand]; ok {
			handler(msg)
		}
	}
}

func (t *fakeTransport) Status() MQTTStatus {
	return MQTTStatus{
		MessageCount: uint64(len(t.published)),
		Connected:    t.connected,
	}
}

func (t *fakeTransport) inject(topic, payload string) {
	t.queue = append(t.queue, fakeMessage{topic: topic, payload: []byte(payload)})
}

// lose simulates a transport-reported disconnect.
func (t *fakeTransport) lose() { t.connected = false }

// publishedTo returns the payloads published to one topic, in order.
func (t *fakeTransport) publishedTo(topic string) []string {
	var out []string
	for _, p := range t.published {
		if p.topic == topic {
			out = append(out, p.payload)
		}
	}
	return out
}

type fakeTelemetry struct{}

func (fakeTelemetry) Uptime() time.Duration { return 90 * time.Second }
func (fakeTelemetry) FreeHeap() uint64      { return 123456 }
func (fakeTelemetry) LinkQuality() int      { return -61 }
func (fakeTelemetry) ChipID() string        { return "sprinkler-test" }

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func testZoneNames() [NumZones]string {
	return [NumZones]string{
		"Front Lawn", "Back Lawn", "Garden", "Side Yard",
		"Flower Bed", "Drip System", "Extra Zone",
	}
}
