package estimate

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/alexey-nikolaev/bhqueue/internal/core/domain"
)

// DefaultWindow is the recency window for signals feeding one estimate.
const DefaultWindow = 30 * time.Minute

// Confidence tier thresholds over surviving data points and distinct sources.
const (
	highMinPoints    = 5
	highMinSources   = 2
	mediumMinPoints  = 3
	mediumAltPoints  = 2
	mediumAltSources = 2
)

// ErrInvalidWindow is returned for a non-positive aggregation window; that
// is a call-contract violation, not an expected data condition.
var ErrInvalidWindow = errors.New("aggregation window must be positive")

// Engine combines many low-confidence signals into one estimate. The caller
// supplies already-deduplicated, outlier-filtered records; the engine only
// applies the recency window.
type Engine struct {
	converter *Converter
}

func NewEngine(converter *Converter) *Engine {
	return &Engine{converter: converter}
}

// Aggregate builds the estimate from records within [now-window, now].
// With zero surviving records it returns the well-defined empty estimate:
// no wait value, tier low, zero data points.
func (e *Engine) Aggregate(ctx context.Context, records []domain.SignalRecord, now time.Time, window time.Duration) (domain.AggregatedEstimate, error) {
	if window <= 0 {
		return domain.AggregatedEstimate{}, ErrInvalidWindow
	}

	cutoff := now.Add(-window)

	surviving := make([]domain.SignalRecord, 0, len(records))

	for _, rec := range records {
		if rec.CreatedAt.Before(cutoff) || rec.CreatedAt.After(now) {
			continue
		}

		surviving = append(surviving, rec)
	}

	est := domain.AggregatedEstimate{
		ConfidenceTier: domain.TierLow,
		Sources:        map[string]int{},
	}

	if len(surviving) == 0 {
		return est, nil
	}

	var waits []int

	for _, rec := range surviving {
		if minutes, ok := e.deriveWait(ctx, rec.Signal); ok {
			waits = append(waits, minutes)
		}

		est.Sources[rec.Source]++
	}

	if len(waits) > 0 {
		mean := meanOf(waits)
		est.EstimatedWaitMinutes = &mean
	}

	latest := latestFields(surviving)
	est.LatestMarker = latest.marker
	est.LatestLength = latest.length
	est.LastUpdate = &latest.createdAt

	est.DataPoints = len(surviving)
	est.SourceDiversity = len(est.Sources)
	est.ConfidenceTier = tierFor(est.DataPoints, est.SourceDiversity)

	return est, nil
}

// deriveWait resolves one signal to minutes with the precedence: explicit
// wait, then marker position, then length bucket. Signals carrying none of
// these still count toward data points but not the mean.
func (e *Engine) deriveWait(ctx context.Context, signal domain.ParsedSignal) (int, bool) {
	if signal.WaitMinutes != nil {
		return *signal.WaitMinutes, true
	}

	if signal.SpatialMarker != "" {
		if minutes, ok := e.converter.FromMarker(ctx, signal.SpatialMarker, signal.MarkerModifierMeters); ok {
			return minutes, true
		}
	}

	if signal.QueueLength != "" {
		if minutes, ok := FromLengthBucket(signal.QueueLength); ok {
			return minutes, true
		}
	}

	return 0, false
}

type latestInfo struct {
	marker    string
	length    string
	createdAt time.Time
}

// latestFields picks the marker and length bucket from the most recently
// created records that carry them, and the newest timestamp overall. Ties on
// CreatedAt are broken by input order: a later item wins.
func latestFields(records []domain.SignalRecord) latestInfo {
	var (
		info       latestInfo
		markerTime time.Time
		lengthTime time.Time
	)

	for _, rec := range records {
		if !rec.CreatedAt.Before(info.createdAt) {
			info.createdAt = rec.CreatedAt
		}

		if rec.Signal.SpatialMarker != "" && !rec.CreatedAt.Before(markerTime) {
			info.marker = rec.Signal.SpatialMarker
			markerTime = rec.CreatedAt
		}

		if rec.Signal.QueueLength != "" && !rec.CreatedAt.Before(lengthTime) {
			info.length = rec.Signal.QueueLength
			lengthTime = rec.CreatedAt
		}
	}

	return info
}

func tierFor(points, sources int) string {
	switch {
	case points >= highMinPoints && sources >= highMinSources:
		return domain.TierHigh
	case points >= mediumMinPoints, points >= mediumAltPoints && sources >= mediumAltSources:
		return domain.TierMedium
	default:
		return domain.TierLow
	}
}

func meanOf(values []int) int {
	sum := 0
	for _, v := range values {
		sum += v
	}

	return int(math.Round(float64(sum) / float64(len(values))))
}
