// Package estimate converts parsed queue signals into minute estimates and
// aggregates many of them into the single public queue status.
package estimate

import (
	"context"
	"math"

	"github.com/alexey-nikolaev/bhqueue/internal/core/domain"
	"github.com/alexey-nikolaev/bhqueue/internal/markers"
)

// DefaultRateMinPerMeter converts a distance modifier into extra wait.
// Policy v1: rough queue movement of ~10 meters per 3 minutes. A heuristic
// constant, configurable, not a measured value.
const DefaultRateMinPerMeter = 0.3

// Converter turns landmark positions and length buckets into wait minutes.
type Converter struct {
	registry        *markers.Registry
	rateMinPerMeter float64
}

// NewConverter creates a converter over the marker registry. A non-positive
// rate falls back to DefaultRateMinPerMeter.
func NewConverter(registry *markers.Registry, rateMinPerMeter float64) *Converter {
	if rateMinPerMeter <= 0 {
		rateMinPerMeter = DefaultRateMinPerMeter
	}

	return &Converter{registry: registry, rateMinPerMeter: rateMinPerMeter}
}

// FromMarker estimates wait minutes for a canonical marker name, applying
// the optional distance modifier and clamping at zero. Returns false when
// the marker is unknown to the registry.
func (c *Converter) FromMarker(ctx context.Context, name string, modifierMeters *int) (int, bool) {
	base, ok := c.registry.WaitEstimate(ctx, name)
	if !ok {
		return 0, false
	}

	if modifierMeters != nil {
		base += int(math.Round(float64(*modifierMeters) * c.rateMinPerMeter))
	}

	if base < 0 {
		base = 0
	}

	return base, true
}

// lengthBucketMinutes is the fixed wait lookup per queue-length bucket.
var lengthBucketMinutes = map[string]int{
	domain.LengthNone:     0,
	domain.LengthShort:    15,
	domain.LengthMedium:   45,
	domain.LengthLong:     90,
	domain.LengthVeryLong: 150,
}

// FromLengthBucket estimates wait minutes for a queue-length bucket.
func FromLengthBucket(bucket string) (int, bool) {
	minutes, ok := lengthBucketMinutes[bucket]
	return minutes, ok
}
