package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexey-nikolaev/bhqueue/internal/core/domain"
	"github.com/alexey-nikolaev/bhqueue/internal/markers"
	"github.com/alexey-nikolaev/bhqueue/internal/parse"
	"github.com/alexey-nikolaev/bhqueue/internal/storage"
)

type memoryStore struct {
	existing map[string]bool
	saved    []*storage.ParsedUpdate
	hasErr   error
}

func (m *memoryStore) HasUpdate(_ context.Context, source, sourceID string) (bool, error) {
	if m.hasErr != nil {
		return false, m.hasErr
	}

	return m.existing[source+"/"+sourceID], nil
}

func (m *memoryStore) SaveUpdate(_ context.Context, u *storage.ParsedUpdate) error {
	m.saved = append(m.saved, u)
	return nil
}

type fallbackOnlySource struct{}

func (fallbackOnlySource) ListMarkers(context.Context) ([]domain.SpatialMarker, error) {
	return nil, errors.New("unavailable")
}

func newTestProcessor(store *memoryStore) *Processor {
	logger := zerolog.Nop()
	registry := markers.New(fallbackOnlySource{}, time.Minute, &logger)
	resolver := parse.NewResolver(parse.NewExtractor(registry, parse.Options{}))

	return NewProcessor(store, resolver, nil, &logger)
}

func TestProcessStoresReport(t *testing.T) {
	store := &memoryStore{existing: map[string]bool{}}
	processor := newTestProcessor(store)

	msg := domain.RawMessage{
		Source:    domain.SourceTelegram,
		SourceID:  "1:42",
		Text:      "2h queue right now",
		Author:    "doorwatcher",
		Timestamp: "2026-08-29T22:00:00Z",
	}

	if err := processor.Process(context.Background(), msg); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(store.saved) != 1 {
		t.Fatalf("saved %d updates, want 1", len(store.saved))
	}

	update := store.saved[0]

	if update.Source != domain.SourceTelegram || update.SourceID != "1:42" {
		t.Errorf("stored identity = %s/%s, want telegram/1:42", update.Source, update.SourceID)
	}

	if update.Signal.WaitMinutes == nil || *update.Signal.WaitMinutes != 120 {
		t.Errorf("stored wait = %v, want 120", update.Signal.WaitMinutes)
	}

	expected := time.Date(2026, 8, 29, 22, 0, 0, 0, time.UTC)
	if !update.SourceTimestamp.Equal(expected) {
		t.Errorf("source timestamp = %v, want %v", update.SourceTimestamp, expected)
	}
}

func TestProcessSkipsDuplicates(t *testing.T) {
	store := &memoryStore{existing: map[string]bool{"telegram/1:42": true}}
	processor := newTestProcessor(store)

	msg := domain.RawMessage{
		Source:   domain.SourceTelegram,
		SourceID: "1:42",
		Text:     "2h queue right now",
	}

	if err := processor.Process(context.Background(), msg); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(store.saved) != 0 {
		t.Errorf("saved %d updates for a duplicate, want 0", len(store.saved))
	}
}

func TestProcessSkipsNoSignalMessages(t *testing.T) {
	store := &memoryStore{existing: map[string]bool{}}
	processor := newTestProcessor(store)

	msg := domain.RawMessage{
		Source:   domain.SourceReddit,
		SourceID: "t1_abc",
		Text:     "hello friends, what a nice evening",
	}

	if err := processor.Process(context.Background(), msg); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(store.saved) != 0 {
		t.Errorf("saved %d updates without queue information, want 0", len(store.saved))
	}
}

func TestProcessUsesParentContext(t *testing.T) {
	store := &memoryStore{existing: map[string]bool{}}
	processor := newTestProcessor(store)

	msg := domain.RawMessage{
		Source:     domain.SourceTelegram,
		SourceID:   "1:43",
		Text:       "same as before",
		ParentText: "Is the queue still past the kiosk?",
	}

	if err := processor.Process(context.Background(), msg); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(store.saved) != 1 {
		t.Fatalf("saved %d updates, want 1", len(store.saved))
	}

	signal := store.saved[0].Signal

	if !signal.UsedContext {
		t.Error("expected the stored signal to use parent context")
	}

	if signal.SpatialMarker != "Kiosk" {
		t.Errorf("marker = %q, want %q", signal.SpatialMarker, "Kiosk")
	}
}

func TestProcessTimestampFallback(t *testing.T) {
	store := &memoryStore{existing: map[string]bool{}}
	processor := newTestProcessor(store)

	before := time.Now().UTC()

	msg := domain.RawMessage{
		Source:    domain.SourceReddit,
		SourceID:  "t1_def",
		Text:      "90 min wait",
		Timestamp: "not a timestamp",
	}

	if err := processor.Process(context.Background(), msg); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(store.saved) != 1 {
		t.Fatalf("saved %d updates, want 1", len(store.saved))
	}

	got := store.saved[0].SourceTimestamp
	if got.Before(before) || got.After(time.Now().UTC().Add(time.Second)) {
		t.Errorf("fallback timestamp %v not near ingestion time", got)
	}
}

func TestProcessReturnsStoreErrors(t *testing.T) {
	store := &memoryStore{hasErr: errors.New("db down")}
	processor := newTestProcessor(store)

	msg := domain.RawMessage{Source: domain.SourceTelegram, SourceID: "1:44", Text: "2h queue"}

	if err := processor.Process(context.Background(), msg); err == nil {
		t.Error("expected the store error to propagate")
	}
}
