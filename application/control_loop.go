package application

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// UpdateHandler services the firmware-update transport. Handle must be
// non-blocking; it is called once per tick before anything else, matching the
// firmware's loop order.
type UpdateHandler interface {
	Handle()
}

// NoopUpdater satisfies UpdateHandler when OTA is disabled.
type NoopUpdater struct{}

func (NoopUpdater) Handle() {}

type ControlLoopParams struct {
	OTA        UpdateHandler
	Connection *ConnectionManager
	Safety     *SafetyMonitor
	Status     *StatusPublisher
	Bank       *ZoneBank
	Clock      Clock

	Log zerolog.Logger
}

func (p *ControlLoopParams) EnsureDefaults() {
	if p.OTA == nil {
		p.OTA = NoopUpdater{}
	}
	if p.Clock == nil {
		p.Clock = SystemClock
	}
}

// ControlLoop is the top-level scheduler. One Tick drives, in fixed order:
// the firmware-update handler, the connection state machine (which pumps
// inbound messages while connected), the safety scan, and the status
// publisher. No step blocks.
type ControlLoop struct {
	ota    UpdateHandler
	conn   *ConnectionManager
	safety *SafetyMonitor
	status *StatusPublisher
	bank   *ZoneBank
	clock  Clock

	forced [NumZones]int

	log zerolog.Logger
}

func NewControlLoop(params ControlLoopParams) (*ControlLoop, error) {
	params.EnsureDefaults()

	if params.Connection == nil {
		return nil, fmt.Errorf("Connection is nil")
	}
	if params.Safety == nil {
		return nil, fmt.Errorf("Safety is nil")
	}
	if params.Status == nil {
		return nil, fmt.Errorf("Status is nil")
	}
	if params.Bank == nil {
		return nil, fmt.Errorf("Bank is nil")
	}

	l := &ControlLoop{
		ota:    params.OTA,
		conn:   params.Connection,
		safety: params.Safety,
		status: params.Status,
		bank:   params.Bank,
		clock:  params.Clock,
		log:    params.Log,
	}
	l.conn.SetMessageHandler(l.handleMessage)
	return l, nil
}

// Tick runs one scheduler pass. The safety scan runs every tick, connected or
// not: a stuck-open valve during a broker outage is exactly the case the
// ceiling exists for. Forced-off state is published immediately when
// connected; otherwise the reconnect announcement republishes all states.
func (l *ControlLoop) Tick(now time.Time) {
	l.ota.Handle()

	l.conn.Tick(now)

	forced := l.safety.Scan(l.bank, now, l.forced[:0])
	for _, zone := range forced {
		l.log.Warn().Int("zone", zone).Msg("safety ceiling exceeded, zone forced off")
		if l.conn.Connected() {
			l.conn.PublishZoneState(zone)
		}
	}

	l.status.Tick(now, l.conn.Connected())
}

// handleMessage is the synchronous inbound dispatch: classify, mutate,
// publish. Anything the parser does not recognize is dropped with a debug
// log and no other effect.
func (l *ControlLoop) handleMessage(msg MQTTMessage) {
	cmd, ok := ParseCommand(msg.Topic(), msg.Payload())
	if !ok {
		l.log.Debug().Str("topic", msg.Topic()).Msg("ignoring message")
		return
	}

	now := l.clock.Now()
	l.bank.Set(cmd.Zone, cmd.On, now)
	l.conn.PublishZoneState(cmd.Zone)

	l.log.Info().Int("zone", cmd.Zone).Str("state", StatePayload(cmd.On)).Msg("zone switched")
}
