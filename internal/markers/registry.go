// Package markers maintains the spatial-marker gazetteer used to translate
// landmark mentions ("queue is past the kiosk") into wait estimates.
//
// The registry caches the marker table with a TTL and keeps serving the last
// good table when a reload fails. Before the first successful load it falls
// back to a built-in gazetteer so parsing never stops working.
package markers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexey-nikolaev/bhqueue/internal/core/domain"
	"github.com/alexey-nikolaev/bhqueue/internal/platform/observability"
)

// DefaultTTL is how long a loaded marker table is served before a refresh.
const DefaultTTL = 5 * time.Minute

const (
	reloadStatusOK     = "ok"
	reloadStatusFailed = "failed"
)

// Source supplies the marker table, typically backed by the database.
type Source interface {
	ListMarkers(ctx context.Context) ([]domain.SpatialMarker, error)
}

// Alias is one gazetteer entry: a raw text alias mapped to its canonical
// marker name and typical wait.
type Alias struct {
	Alias       string
	Name        string
	WaitMinutes int
}

// Registry caches the marker table and exposes it in longest-alias-first
// order so that more specific aliases win over substrings they contain.
type Registry struct {
	source Source
	ttl    time.Duration
	logger *zerolog.Logger

	mu          sync.RWMutex
	aliases     []Alias
	waits       map[string]int
	lastRefresh time.Time
	loaded      bool
}

// New creates a registry backed by the given source. A non-positive ttl
// falls back to DefaultTTL.
func New(source Source, ttl time.Duration, logger *zerolog.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Registry{
		source: source,
		ttl:    ttl,
		logger: logger,
	}
}

// List returns the gazetteer sorted by alias length descending. The snapshot
// is safe to iterate without holding any lock.
func (r *Registry) List(ctx context.Context) []Alias {
	r.refreshIfStale(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.aliases
}

// WaitEstimate returns the typical wait for a canonical marker name.
func (r *Registry) WaitEstimate(ctx context.Context, name string) (int, bool) {
	r.refreshIfStale(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()

	wait, ok := r.waits[name]

	return wait, ok
}

// Invalidate forces the next read to reload from the source. Called after
// any admin edit to the marker table.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastRefresh = time.Time{}
}

// refreshIfStale reloads the table when the cache is stale or invalidated.
// Concurrent callers may each trigger a reload; reloads are idempotent and
// last-write-wins, so this is tolerated rather than serialized.
func (r *Registry) refreshIfStale(ctx context.Context) {
	r.mu.RLock()
	fresh := r.loaded && time.Since(r.lastRefresh) < r.ttl
	r.mu.RUnlock()

	if fresh {
		return
	}

	loaded, err := r.source.ListMarkers(ctx)
	if err != nil {
		observability.MarkerReloads.WithLabelValues(reloadStatusFailed).Inc()
		r.logger.Warn().Err(err).Msg("marker reload failed, serving previous table")
		r.ensureFallback()

		return
	}

	observability.MarkerReloads.WithLabelValues(reloadStatusOK).Inc()

	aliases, waits := buildTable(loaded)

	r.mu.Lock()
	r.aliases = aliases
	r.waits = waits
	r.lastRefresh = time.Now()
	r.loaded = true
	r.mu.Unlock()
}

// ensureFallback installs the built-in gazetteer if nothing has ever loaded.
func (r *Registry) ensureFallback() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded || r.aliases != nil {
		return
	}

	r.aliases = fallbackAliases()
	r.waits = fallbackWaits()
}

func buildTable(loaded []domain.SpatialMarker) ([]Alias, map[string]int) {
	aliases := make([]Alias, 0, len(loaded)*2)
	waits := make(map[string]int, len(loaded))

	for _, m := range loaded {
		waits[m.Name] = m.TypicalWaitMinutes
		aliases = append(aliases, Alias{Alias: fold(m.Name), Name: m.Name, WaitMinutes: m.TypicalWaitMinutes})

		for _, a := range m.Aliases {
			aliases = append(aliases, Alias{Alias: fold(a), Name: m.Name, WaitMinutes: m.TypicalWaitMinutes})
		}
	}

	sortLongestFirst(aliases)

	return aliases, waits
}

// sortLongestFirst orders aliases by length descending so that "behind kiosk"
// matches before "kiosk". Equal lengths keep a stable lexicographic order to
// make matching deterministic.
func sortLongestFirst(aliases []Alias) {
	sort.SliceStable(aliases, func(i, j int) bool {
		if len(aliases[i].Alias) != len(aliases[j].Alias) {
			return len(aliases[i].Alias) > len(aliases[j].Alias)
		}

		return aliases[i].Alias < aliases[j].Alias
	})
}
