package parse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexey-nikolaev/bhqueue/internal/core/domain"
	"github.com/alexey-nikolaev/bhqueue/internal/markers"
)

// fallbackOnlySource forces the registry onto its built-in gazetteer so
// tests run against a stable marker table.
type fallbackOnlySource struct{}

func (fallbackOnlySource) ListMarkers(context.Context) ([]domain.SpatialMarker, error) {
	return nil, errors.New("unavailable")
}

func newTestExtractor() *Extractor {
	logger := zerolog.Nop()
	registry := markers.New(fallbackOnlySource{}, time.Minute, &logger)

	return NewExtractor(registry, Options{})
}

func TestExtractWaitTime(t *testing.T) {
	extractor := newTestExtractor()

	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{name: "hours", text: "Queue is about 2h right now", expected: 120},
		{name: "minutes", text: "Just got in after 90 minutes wait", expected: 90},
		{name: "waited past tense", text: "we waited 3 hours", expected: 180},
		{name: "fractional hours", text: "roughly 1.5h to get to the front", expected: 90},
		{name: "labelled wait", text: "wait time: 45 min", expected: 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal := extractor.Extract(context.Background(), tt.text)
			if signal.WaitMinutes == nil {
				t.Fatalf("Extract(%q) found no wait time", tt.text)
			}

			if *signal.WaitMinutes != tt.expected {
				t.Errorf("Extract(%q) wait = %d, want %d", tt.text, *signal.WaitMinutes, tt.expected)
			}
		})
	}
}

func TestExtractSpatialMarker(t *testing.T) {
	extractor := newTestExtractor()

	tests := []struct {
		name           string
		text           string
		expectedMarker string
		expectedMod    *int
	}{
		{name: "longest alias wins", text: "Queue goes behind kiosk", expectedMarker: "Past Kiosk"},
		{name: "past qualifier", text: "queue is past the kiosk", expectedMarker: "Kiosk", expectedMod: intPtr(20)},
		{name: "before qualifier", text: "almost at the späti", expectedMarker: "Späti", expectedMod: intPtr(-15)},
		{name: "explicit plus meters", text: "kiosk +30m", expectedMarker: "Kiosk", expectedMod: intPtr(30)},
		{name: "explicit minus meters", text: "metro sign -10 m and moving", expectedMarker: "Metro sign", expectedMod: intPtr(-10)},
		{name: "case insensitive", text: "LINE IS AT THE BRIDGE", expectedMarker: "Bridge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal := extractor.Extract(context.Background(), tt.text)
			if signal.SpatialMarker != tt.expectedMarker {
				t.Errorf("Extract(%q) marker = %q, want %q", tt.text, signal.SpatialMarker, tt.expectedMarker)
			}

			if tt.expectedMod == nil {
				if signal.MarkerModifierMeters != nil {
					t.Errorf("Extract(%q) modifier = %d, want nil", tt.text, *signal.MarkerModifierMeters)
				}

				return
			}

			if signal.MarkerModifierMeters == nil || *signal.MarkerModifierMeters != *tt.expectedMod {
				t.Errorf("Extract(%q) modifier = %v, want %d", tt.text, signal.MarkerModifierMeters, *tt.expectedMod)
			}
		})
	}
}

func TestExtractQueueLengthAndEvents(t *testing.T) {
	extractor := newTestExtractor()

	t.Run("no queue bucket", func(t *testing.T) {
		signal := extractor.Extract(context.Background(), "no queue, walked straight in!")
		if signal.QueueLength != "none" {
			t.Errorf("queue length = %q, want %q", signal.QueueLength, "none")
		}

		if signal.WaitMinutes != nil {
			t.Errorf("wait = %d, want nil", *signal.WaitMinutes)
		}
	})

	t.Run("rejection", func(t *testing.T) {
		signal := extractor.Extract(context.Background(), "got rejected at the door")
		if !signal.RejectionMentioned {
			t.Error("expected RejectionMentioned")
		}

		if signal.SpatialMarker != "Door" {
			t.Errorf("marker = %q, want %q", signal.SpatialMarker, "Door")
		}
	})

	t.Run("entry", func(t *testing.T) {
		signal := extractor.Extract(context.Background(), "finally inside, took forever")
		if !signal.EntryMentioned {
			t.Error("expected EntryMentioned")
		}
	})
}

func TestExtractConfidence(t *testing.T) {
	extractor := newTestExtractor()

	tests := []struct {
		name     string
		text     string
		expected float64
	}{
		{name: "wait time only", text: "Queue is about 2h right now", expected: 0.9},
		{name: "marker with qualifier", text: "queue is past the kiosk", expected: 0.6},
		{name: "marker only", text: "we're behind kiosk", expected: 0.7},
		{name: "no signal", text: "hello friends, what a nice evening", expected: 0.1},
		{name: "empty text", text: "", expected: 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal := extractor.Extract(context.Background(), tt.text)
			if diff := signal.Confidence - tt.expected; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Extract(%q) confidence = %v, want %v", tt.text, signal.Confidence, tt.expected)
			}
		})
	}
}

func TestExtractConfidenceBounds(t *testing.T) {
	extractor := newTestExtractor()

	texts := []string{
		"",
		"2h wait, huge line past the kiosk, saw people get rejected, we got in though",
		"short queue at the door, 10 min, walked straight in",
		"random chatter with no information at all",
	}

	for _, text := range texts {
		signal := extractor.Extract(context.Background(), text)
		if signal.Confidence < 0.1 || signal.Confidence > 0.95 {
			t.Errorf("Extract(%q) confidence %v outside [0.1, 0.95]", text, signal.Confidence)
		}
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	extractor := newTestExtractor()

	text := "90 min wait, queue past the kiosk"

	first := extractor.Extract(context.Background(), text)
	second := extractor.Extract(context.Background(), text)

	if first.Confidence != second.Confidence || first.SpatialMarker != second.SpatialMarker {
		t.Errorf("repeated extraction differs: %+v vs %+v", first, second)
	}
}

func TestIsQueueQuestion(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{name: "how is the q", text: "How is the Q?", expected: true},
		{name: "queue with question mark", text: "Is the queue still past the kiosk?", expected: true},
		{name: "any update", text: "any update from the front?", expected: true},
		{name: "statement", text: "see you all tomorrow", expected: false},
		{name: "unrelated question", text: "does anyone have a phone charger?", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsQueueQuestion(tt.text); got != tt.expected {
				t.Errorf("IsQueueQuestion(%q) = %v, want %v", tt.text, got, tt.expected)
			}
		})
	}
}

func intPtr(v int) *int { return &v }
