// Package status composes the aggregated queue estimate and the event
// window into the values the public status boundary serves.
package status

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexey-nikolaev/bhqueue/internal/core/domain"
	"github.com/alexey-nikolaev/bhqueue/internal/estimate"
	"github.com/alexey-nikolaev/bhqueue/internal/event"
	"github.com/alexey-nikolaev/bhqueue/internal/platform/observability"
)

const eventName = "Klubnacht"

// SignalStore supplies recent stored signals, already deduplicated and
// outlier-filtered.
type SignalStore interface {
	RecentSignals(ctx context.Context, since time.Time) ([]domain.SignalRecord, error)
}

// ClubStatus reports whether the club is currently open and the relevant
// event window (the active one, or the next upcoming one when closed).
type ClubStatus struct {
	IsOpen    bool
	EventName string
	Phase     string
	Window    domain.EventWindow
}

// Service answers queue and club status queries.
type Service struct {
	store      SignalStore
	engine     *estimate.Engine
	calculator *event.Calculator
	window     time.Duration
	logger     *zerolog.Logger
}

func NewService(store SignalStore, engine *estimate.Engine, calculator *event.Calculator, window time.Duration, logger *zerolog.Logger) *Service {
	if window <= 0 {
		window = estimate.DefaultWindow
	}

	return &Service{
		store:      store,
		engine:     engine,
		calculator: calculator,
		window:     window,
		logger:     logger,
	}
}

// QueueStatus aggregates recent signals into the public queue estimate.
func (s *Service) QueueStatus(ctx context.Context, now time.Time) (domain.AggregatedEstimate, error) {
	records, err := s.store.RecentSignals(ctx, now.Add(-s.window))
	if err != nil {
		return domain.AggregatedEstimate{}, fmt.Errorf("load recent signals: %w", err)
	}

	est, err := s.engine.Aggregate(ctx, records, now, s.window)
	if err != nil {
		return domain.AggregatedEstimate{}, fmt.Errorf("aggregate signals: %w", err)
	}

	observability.EstimateDataPoints.Set(float64(est.DataPoints))

	if est.EstimatedWaitMinutes != nil {
		observability.EstimateWaitMinutes.Set(float64(*est.EstimatedWaitMinutes))
	}

	return est, nil
}

// ClubStatus reports the current event phase.
func (s *Service) ClubStatus(now time.Time) ClubStatus {
	window, active, phase := s.calculator.CurrentOrNext(now)

	status := ClubStatus{
		IsOpen: active,
		Phase:  phase,
		Window: window,
	}

	if active {
		status.EventName = eventName
	}

	return status
}

// LogStatus writes one status snapshot to the log; the periodic status
// ticker uses this as its output.
func (s *Service) LogStatus(ctx context.Context, now time.Time) {
	est, err := s.QueueStatus(ctx, now)
	if err != nil {
		s.logger.Error().Err(err).Msg("queue status failed")
		return
	}

	club := s.ClubStatus(now)

	evt := s.logger.Info().
		Str("phase", club.Phase).
		Str("tier", est.ConfidenceTier).
		Int("data_points", est.DataPoints).
		Int("sources", est.SourceDiversity)

	if est.EstimatedWaitMinutes != nil {
		evt = evt.Int("wait_minutes", *est.EstimatedWaitMinutes)
	}

	evt.Msg("queue status")
}
