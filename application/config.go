package application

import (
	"fmt"
	"time"
)

const (
	DefaultBrokerPort = 1883
	DefaultClientID   = "sprinkler_controller"
)

// BrokerConfig is the immutable snapshot of broker parameters used for one
// connection attempt. Loading and persisting it is the caller's problem; the
// core only validates it.
type BrokerConfig struct {
	Server   string
	Port     int
	Username string
	Password string
}

// Normalize validates the config. A port outside [1, 65535] is replaced with
// DefaultBrokerPort; an empty server address is the one unrecoverable case
// and aborts the connection attempt.
func (c BrokerConfig) Normalize() (BrokerConfig, error) {
	if c.Server == "" {
		return c, fmt.Errorf("broker server address is empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		c.Port = DefaultBrokerPort
	}
	return c, nil
}

// URL renders the broker address in the form the MQTT client expects.
func (c BrokerConfig) URL() string {
	return fmt.Sprintf("tcp://%s:%d", c.Server, c.Port)
}

// Clock supplies the control loop's notion of now. Production code uses
// SystemClock; tests substitute a manual clock to step through intervals.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock. time.Time carries a monotonic reading on
// all supported platforms, so elapsed-time comparisons are wrap-safe.
var SystemClock Clock = systemClock{}
