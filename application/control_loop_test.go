package application

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingUpdater struct {
	calls int
}

func (u *countingUpdater) Handle() { u.calls++ }

type loopFixture struct {
	transport *fakeTransport
	bank      *ZoneBank
	clock     *manualClock
	loop      *ControlLoop
	ota       *countingUpdater
}

func newLoopFixture(t *testing.T) *loopFixture {
	t.Helper()

	transport := newFakeTransport()
	bank := NewZoneBank(testZoneNames(), &fakeOutput{})
	clock := &manualClock{now: time.Date(2026, 5, 1, 6, 0, 0, 0, time.UTC)}
	ota := &countingUpdater{}

	manager, err := NewConnectionManager(ConnectionManagerParams{
		Client: transport,
		Bank:   bank,
		Device: testDevice(),
		Log:    zerolog.Nop(),
	})
	require.NoError(t, err)

	publisher, err := NewStatusPublisher(StatusPublisherParams{
		Client:    transport,
		Bank:      bank,
		Telemetry: fakeTelemetry{},
		Log:       zerolog.Nop(),
	})
	require.NoError(t, err)

	loop, err := NewControlLoop(ControlLoopParams{
		OTA:        ota,
		Connection: manager,
		Safety:     NewSafetyMonitor(0),
		Status:     publisher,
		Bank:       bank,
		Clock:      clock,
		Log:        zerolog.Nop(),
	})
	require.NoError(t, err)

	return &loopFixture{
		transport: transport,
		bank:      bank,
		clock:     clock,
		loop:      loop,
		ota:       ota,
	}
}

func (f *loopFixture) tick() {
	f.loop.Tick(f.clock.now)
}

func TestControlLoop_CommandTurnsZoneOn(t *testing.T) {
	f := newLoopFixture(t)

	f.tick() // connects and announces
	require.True(t, f.transport.connected)
	f.transport.published = nil

	f.transport.inject("home/sprinkler/zone/3/command", "ON")
	f.clock.advance(50 * time.Millisecond)
	f.tick() // pumps the inbound queue

	assert.True(t, f.bank.Zone(3).On)

	states := f.transport.publishedTo(ZoneStateTopic(3))
	require.Len(t, states, 1)
	assert.Equal(t, PayloadOn, states[0])
}

func TestControlLoop_InvalidZoneIsNoOp(t *testing.T) {
	f := newLoopFixture(t)

	f.tick()
	f.transport.published = nil

	f.transport.inject("home/sprinkler/zone/99/command", "7")
	f.clock.advance(50 * time.Millisecond)
	f.tick()

	for zone := 1; zone <= NumZones; zone++ {
		assert.False(t, f.bank.Zone(zone).On)
	}
	assert.Empty(t, f.transport.published)
}

func TestControlLoop_SafetyForcedOffPublishesOnce(t *testing.T) {
	f := newLoopFixture(t)

	f.tick()
	f.transport.inject("home/sprinkler/zone/2/command", "ON")
	f.clock.advance(50 * time.Millisecond)
	f.tick()
	require.True(t, f.bank.Zone(2).On)
	f.transport.published = nil

	// just short of the ceiling, nothing happens
	f.clock.advance(DefaultMaxRuntime - time.Minute)
	f.tick()
	assert.True(t, f.bank.Zone(2).On)
	assert.Empty(t, f.transport.publishedTo(ZoneStateTopic(2)))

	// one second past, forced off and published exactly once
	f.clock.advance(time.Minute + time.Second)
	f.tick()
	assert.False(t, f.bank.Zone(2).On)

	states := f.transport.publishedTo(ZoneStateTopic(2))
	require.Len(t, states, 1)
	assert.Equal(t, PayloadOff, states[0])

	// subsequent ticks stay quiet
	f.clock.advance(time.Minute)
	f.tick()
	assert.Len(t, f.transport.publishedTo(ZoneStateTopic(2)), 1)
}

func TestControlLoop_SafetyEnforcedWhileDisconnected(t *testing.T) {
	f := newLoopFixture(t)
	f.transport.connectErr = fmt.Errorf("broker unreachable")

	f.tick()
	require.False(t, f.transport.connected)

	f.bank.Set(1, true, f.clock.now)

	f.clock.advance(DefaultMaxRuntime + time.Second)
	f.tick()

	// the valve is shut even though there is nowhere to publish
	assert.False(t, f.bank.Zone(1).On)
	assert.Empty(t, f.transport.published)
}

func TestControlLoop_OTAServicedEveryTick(t *testing.T) {
	f := newLoopFixture(t)

	for i := 0; i < 5; i++ {
		f.clock.advance(50 * time.Millisecond)
		f.tick()
	}
	assert.Equal(t, 5, f.ota.calls)
}

func TestControlLoop_StatusSuppressedWhileDisconnected(t *testing.T) {
	f := newLoopFixture(t)
	f.transport.connectErr = fmt.Errorf("broker unreachable")

	for i := 0; i < 10; i++ {
		f.clock.advance(time.Minute)
		f.tick()
	}
	assert.Empty(t, f.transport.publishedTo(TopicHealth))
}

func TestNewControlLoop_Validation(t *testing.T) {
	_, err := NewControlLoop(ControlLoopParams{})
	assert.Error(t, err)
}
