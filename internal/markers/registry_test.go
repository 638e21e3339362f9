package markers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexey-nikolaev/bhqueue/internal/core/domain"
)

type stubSource struct {
	markers []domain.SpatialMarker
	err     error
	calls   int
}

func (s *stubSource) ListMarkers(_ context.Context) ([]domain.SpatialMarker, error) {
	s.calls++

	if s.err != nil {
		return nil, s.err
	}

	return s.markers, nil
}

func testMarkers() []domain.SpatialMarker {
	return []domain.SpatialMarker{
		{Name: "Kiosk", Aliases: []string{"behind kiosk"}, TypicalWaitMinutes: 55},
		{Name: "Door", TypicalWaitMinutes: 0},
		{Name: "Metro sign", Aliases: []string{"metro"}, TypicalWaitMinutes: 180},
	}
}

func nopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func TestRegistryListSortsLongestFirst(t *testing.T) {
	source := &stubSource{markers: testMarkers()}
	registry := New(source, time.Minute, nopLogger())

	aliases := registry.List(context.Background())
	if len(aliases) == 0 {
		t.Fatal("expected a non-empty alias table")
	}

	for i := 1; i < len(aliases); i++ {
		if len(aliases[i].Alias) > len(aliases[i-1].Alias) {
			t.Errorf("alias %q (index %d) is longer than %q before it", aliases[i].Alias, i, aliases[i-1].Alias)
		}
	}

	if aliases[0].Alias != "behind kiosk" {
		t.Errorf("longest alias = %q, want %q", aliases[0].Alias, "behind kiosk")
	}
}

func TestRegistryWaitEstimate(t *testing.T) {
	source := &stubSource{markers: testMarkers()}
	registry := New(source, time.Minute, nopLogger())

	tests := []struct {
		name     string
		marker   string
		expected int
		ok       bool
	}{
		{name: "known marker", marker: "Kiosk", expected: 55, ok: true},
		{name: "zero wait marker", marker: "Door", expected: 0, ok: true},
		{name: "unknown marker", marker: "Fernsehturm", expected: 0, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := registry.WaitEstimate(context.Background(), tt.marker)
			if ok != tt.ok || got != tt.expected {
				t.Errorf("WaitEstimate(%q) = (%d, %v), want (%d, %v)", tt.marker, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestRegistryCachesWithinTTL(t *testing.T) {
	source := &stubSource{markers: testMarkers()}
	registry := New(source, time.Hour, nopLogger())

	registry.List(context.Background())
	registry.List(context.Background())
	registry.WaitEstimate(context.Background(), "Kiosk")

	if source.calls != 1 {
		t.Errorf("source loaded %d times within TTL, want 1", source.calls)
	}
}

func TestRegistryInvalidateForcesReload(t *testing.T) {
	source := &stubSource{markers: testMarkers()}
	registry := New(source, time.Hour, nopLogger())

	registry.List(context.Background())
	registry.Invalidate()
	registry.List(context.Background())

	if source.calls != 2 {
		t.Errorf("source loaded %d times after invalidation, want 2", source.calls)
	}
}

func TestRegistryServesFallbackBeforeFirstLoad(t *testing.T) {
	source := &stubSource{err: errors.New("db down")}
	registry := New(source, time.Minute, nopLogger())

	aliases := registry.List(context.Background())
	if len(aliases) == 0 {
		t.Fatal("expected the built-in gazetteer when the source has never loaded")
	}

	wait, ok := registry.WaitEstimate(context.Background(), "Kiosk")
	if !ok || wait != 55 {
		t.Errorf("fallback WaitEstimate(Kiosk) = (%d, %v), want (55, true)", wait, ok)
	}
}

func TestRegistryKeepsLastGoodTableOnFailure(t *testing.T) {
	source := &stubSource{markers: testMarkers()}
	registry := New(source, time.Hour, nopLogger())

	registry.List(context.Background())

	source.err = errors.New("db down")

	registry.Invalidate()

	wait, ok := registry.WaitEstimate(context.Background(), "Metro sign")
	if !ok || wait != 180 {
		t.Errorf("WaitEstimate(Metro sign) after failed reload = (%d, %v), want (180, true)", wait, ok)
	}
}
