package domain

import "time"

// RawMessage represents one crowd-sourced queue report from a chat source.
type RawMessage struct {
	Source     string
	SourceID   string
	Text       string
	ParentText string
	Author     string
	// Timestamp is the source-reported time as an opaque string; the ingest
	// layer parses it and falls back to ingestion time when it is malformed.
	Timestamp string
}

// Queue report sources.
const (
	SourceTelegram = "telegram"
	SourceReddit   = "reddit"
	SourceUser     = "user"
)

// Queue length buckets, ordered from empty to extreme.
const (
	LengthNone     = "none"
	LengthShort    = "short"
	LengthMedium   = "medium"
	LengthLong     = "long"
	LengthVeryLong = "very_long"
)

// ParsedSignal is the structured information extracted from a single message.
// It is produced fresh per message and never mutated after creation.
type ParsedSignal struct {
	// WaitMinutes is the explicitly stated wait time, nil when not mentioned.
	WaitMinutes *int
	// QueueLength is one of the Length* buckets, empty when not mentioned.
	QueueLength string
	// SpatialMarker is the canonical landmark name, empty when none matched.
	SpatialMarker string
	// MarkerModifierMeters is the distance past (+) or before (-) the marker.
	MarkerModifierMeters *int
	RejectionMentioned   bool
	EntryMentioned       bool
	// Confidence is in [0, 1]. 0.1 means "no information", not an error.
	Confidence float64
	// UsedContext is true when the parent message helped the extraction.
	UsedContext bool
}

// SpatialMarker is a named landmark along the queue path used as a proxy
// measurement when no explicit wait time is stated.
type SpatialMarker struct {
	ID                     string
	Name                   string
	Aliases                []string
	DistanceFromDoorMeters int
	TypicalWaitMinutes     int
	DisplayOrder           int
}

// SignalRecord is a stored ParsedSignal with its aggregation metadata.
type SignalRecord struct {
	Signal    ParsedSignal
	Source    string
	CreatedAt time.Time
}

// Confidence tiers for the aggregated estimate, derived from data volume and
// source diversity rather than any single message's confidence.
const (
	TierLow    = "low"
	TierMedium = "medium"
	TierHigh   = "high"
)

// AggregatedEstimate is the single public queue estimate built from many
// low-confidence signals over a time window.
type AggregatedEstimate struct {
	EstimatedWaitMinutes *int
	ConfidenceTier       string
	DataPoints           int
	SourceDiversity      int
	LastUpdate           *time.Time
	LatestMarker         string
	LatestLength         string
	Sources              map[string]int
}

// Event phases.
const (
	PhaseQueueOpen    = "queue_open"
	PhasePartyRunning = "party_running"
	PhaseClosed       = "closed"
)

// EventWindow describes one weekly event occurrence in UTC instants.
// Invariant: QueueOpensAt <= StartsAt <= EndsAt.
type EventWindow struct {
	QueueOpensAt time.Time
	StartsAt     time.Time
	EndsAt       time.Time
}

// Contains reports whether t falls inside [QueueOpensAt, EndsAt].
func (w EventWindow) Contains(t time.Time) bool {
	return !t.Before(w.QueueOpensAt) && !t.After(w.EndsAt)
}

// MinConfidenceToStore is the floor below which a parsed signal carries no
// usable queue information and is not persisted.
const MinConfidenceToStore = 0.2
