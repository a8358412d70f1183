package adapters

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/mock"
)

type MockMQTTClient struct {
	mock.Mock
}

func (m *MockMQTTClient) IsConnected() bool {
	return m.Called().Bool(0)
}

func (m *MockMQTTClient) IsConnectionOpen() bool {
	return m.Called().Bool(0)
}

func (m *MockMQTTClient) Connect() mqtt.Token {
	return m.Called().Get(0).(mqtt.Token)
}

func (m *MockMQTTClient) Disconnect(quiesce uint) {
	m.Called(quiesce)
}

func (m *MockMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	return m.Called(topic, qos, retained, payload).Get(0).(mqtt.Token)
}

func (m *MockMQTTClient) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	return m.Called(topic, qos, callback).Get(0).(mqtt.Token)
}

func (m *MockMQTTClient) SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token {
	return m.Called(filters, callback).Get(0).(mqtt.Token)
}

func (m *MockMQTTClient) Unsubscribe(topics ...string) mqtt.Token {
	return m.Called(topics).Get(0).(mqtt.Token)
}

func (m *MockMQTTClient) AddRoute(topic string, callback mqtt.MessageHandler) {
	m.Called(topic, callback)
}

func (m *MockMQTTClient) OptionsReader() mqtt.ClientOptionsReader {
	return mqtt.ClientOptionsReader{}
}

var _ mqtt.Client = &MockMQTTClient{}

// MockToken mocks Wait/Error; Done always reports completion so the
// adapter's token select never waits on the timeout path.
type MockToken struct {
	mock.Mock
}

func (m *MockToken) Wait() bool {
	return m.Called().Bool(0)
}

func (m *MockToken) WaitTimeout(d time.Duration) bool {
	return m.Called(d).Bool(0)
}

func (m *MockToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (m *MockToken) Error() error {
	args := m.Called()
	if err := args.Get(0); err != nil {
		return err.(error)
	}
	return nil
}

var _ mqtt.Token = &MockToken{}

// fakeInboundMessage stands in for a broker-delivered message.
type fakeInboundMessage struct {
	topic   string
	payload []byte
}

func (f fakeInboundMessage) Duplicate() bool   { return false }
func (f fakeInboundMessage) Qos() byte         { return 0 }
func (f fakeInboundMessage) Retained() bool    { return false }
func (f fakeInboundMessage) Topic() string     { return f.topic }
func (f fakeInboundMessage) MessageID() uint16 { return 0 }
func (f fakeInboundMessage) Payload() []byte   { return f.payload }
func (f fakeInboundMessage) Ack()              {}

var _ mqtt.Message = fakeInboundMessage{}
