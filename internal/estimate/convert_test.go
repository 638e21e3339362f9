package estimate

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexey-nikolaev/bhqueue/internal/core/domain"
	"github.com/alexey-nikolaev/bhqueue/internal/markers"
)

type staticSource struct {
	markers []domain.SpatialMarker
}

func (s staticSource) ListMarkers(context.Context) ([]domain.SpatialMarker, error) {
	return s.markers, nil
}

func newTestConverter() *Converter {
	logger := zerolog.Nop()
	source := staticSource{markers: []domain.SpatialMarker{
		{Name: "Kiosk", TypicalWaitMinutes: 55},
		{Name: "Door", TypicalWaitMinutes: 0},
	}}
	registry := markers.New(source, time.Minute, &logger)

	return NewConverter(registry, 0)
}

func TestFromMarker(t *testing.T) {
	converter := newTestConverter()

	tests := []struct {
		name     string
		marker   string
		modifier *int
		expected int
		ok       bool
	}{
		{name: "base wait", marker: "Kiosk", expected: 55, ok: true},
		{name: "past modifier adds time", marker: "Kiosk", modifier: intPtr(20), expected: 61, ok: true},
		{name: "before modifier subtracts time", marker: "Kiosk", modifier: intPtr(-15), expected: 50, ok: true},
		{name: "clamped at zero", marker: "Door", modifier: intPtr(-15), expected: 0, ok: true},
		{name: "unknown marker", marker: "Fernsehturm", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := converter.FromMarker(context.Background(), tt.marker, tt.modifier)
			if ok != tt.ok || got != tt.expected {
				t.Errorf("FromMarker(%q, %v) = (%d, %v), want (%d, %v)", tt.marker, tt.modifier, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestFromLengthBucket(t *testing.T) {
	tests := []struct {
		name     string
		bucket   string
		expected int
		ok       bool
	}{
		{name: "none", bucket: domain.LengthNone, expected: 0, ok: true},
		{name: "short", bucket: domain.LengthShort, expected: 15, ok: true},
		{name: "medium", bucket: domain.LengthMedium, expected: 45, ok: true},
		{name: "long", bucket: domain.LengthLong, expected: 90, ok: true},
		{name: "very long", bucket: domain.LengthVeryLong, expected: 150, ok: true},
		{name: "unknown", bucket: "colossal", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromLengthBucket(tt.bucket)
			if ok != tt.ok || got != tt.expected {
				t.Errorf("FromLengthBucket(%q) = (%d, %v), want (%d, %v)", tt.bucket, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func intPtr(v int) *int { return &v }
