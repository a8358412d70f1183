package application

import "time"

// MQTTMessage is one inbound message as delivered by the transport.
type MQTTMessage interface {
	Topic() string
	Payload() []byte
}

// MQTTStatus is a point-in-time view of the transport, used by the periodic
// log reporter.
type MQTTStatus struct {
	MessageCount      uint64
	DroppedCount      uint64
	LastTimePublished time.Time
	Connected         bool
}

// MQTTClient is the messaging transport consumed by the control loop. All
// methods other than Connect must be non-blocking or bounded by a short
// timeout; Loop drains already-queued inbound messages synchronously on the
// caller's goroutine and returns immediately when the queue is empty.
//
// The last-will ("offline") registration is a construction-time property of
// the transport, not an operation: it has to ride along with the connect
// handshake to mean anything.
type MQTTClient interface {
	Connect() error
	IsConnected() bool
	Subscribe(topic string, qos byte, handler func(msg MQTTMessage)) error
	Publish(topic string, qos byte, retained bool, payload []byte) error
	Loop()
	Status() MQTTStatus
}
