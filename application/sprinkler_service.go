package application

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultTickInterval is the control-loop cadence. It only needs to be short
// relative to the reconnect and status intervals and fast enough that the
// inbound pump never starves.
const DefaultTickInterval = 50 * time.Millisecond

type SprinklerService interface {
	Run(ctx context.Context) error
}

type SprinklerServiceParams struct {
	ControlLoop *ControlLoop
	MQTTClient  MQTTClient
	Clock       Clock

	TickInterval time.Duration

	Log zerolog.Logger
}

func (p *SprinklerServiceParams) EnsureDefaults() {
	if p.TickInterval == 0 {
		p.TickInterval = DefaultTickInterval
	}
	if p.Clock == nil {
		p.Clock = SystemClock
	}
}

type sprinklerService struct {
	params SprinklerServiceParams

	log zerolog.Logger
}

func NewSprinklerService(params SprinklerServiceParams) (SprinklerService, error) {
	params.EnsureDefaults()

	if params.ControlLoop == nil {
		return nil, fmt.Errorf("ControlLoop is nil")
	}
	if params.MQTTClient == nil {
		return nil, fmt.Errorf("MQTTClient is nil")
	}
	return &sprinklerService{params: params, log: params.Log}, nil
}

func (s *sprinklerService) Run(ctx context.Context) error {
	g := errgroup.Group{}

	// control loop ticker
	g.Go(func() error {
		s.log.Info().Msg("control loop started")
		defer s.log.Info().Msg("control loop stopped")

		ticker := time.NewTicker(s.params.TickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				s.params.ControlLoop.Tick(s.params.Clock.Now())
			}
		}
	})

	// mqtt transport reporter
	g.Go(func() error {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		lastStatus := MQTTStatus{}

	ReporterLoop:
		for {
			select {
			case <-ctx.Done():
				break ReporterLoop
			case <-ticker.C:
				newStatus := s.params.MQTTClient.Status()
				s.log.Info().
					Uint64("published", newStatus.MessageCount-lastStatus.MessageCount).
					Uint64("dropped", newStatus.DroppedCount-lastStatus.DroppedCount).
					Bool("is_connected", newStatus.Connected).
					Time("last_time_published", newStatus.LastTimePublished).
					Msg("transport report")
				lastStatus = newStatus
			}
		}

		return nil
	})

	return g.Wait()
}
