// Package ingest processes raw queue reports from all sources: dedup,
// signal extraction, confidence gating, and persistence.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog"

	"github.com/alexey-nikolaev/bhqueue/internal/core/domain"
	"github.com/alexey-nikolaev/bhqueue/internal/llm"
	"github.com/alexey-nikolaev/bhqueue/internal/parse"
	"github.com/alexey-nikolaev/bhqueue/internal/platform/observability"
	"github.com/alexey-nikolaev/bhqueue/internal/storage"
)

// Handler consumes one raw message; source adapters call it for every
// report they see.
type Handler func(ctx context.Context, msg domain.RawMessage)

// Store is the persistence surface the processor needs.
type Store interface {
	HasUpdate(ctx context.Context, source, sourceID string) (bool, error)
	SaveUpdate(ctx context.Context, u *storage.ParsedUpdate) error
}

// Processor runs the per-message pipeline. The AI parser is optional; the
// heuristic resolver is always the fallback.
type Processor struct {
	store    Store
	resolver *parse.Resolver
	parser   llm.Parser
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewProcessor(store Store, resolver *parse.Resolver, parser llm.Parser, logger *zerolog.Logger) *Processor {
	return &Processor{
		store:    store,
		resolver: resolver,
		parser:   parser,
		logger:   logger,
		now:      time.Now,
	}
}

// Process parses and stores one report. Duplicates and no-signal messages
// are skipped silently; both are expected conditions, not errors.
func (p *Processor) Process(ctx context.Context, msg domain.RawMessage) error {
	observability.MessagesIngested.WithLabelValues(msg.Source).Inc()

	exists, err := p.store.HasUpdate(ctx, msg.Source, msg.SourceID)
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}

	if exists {
		observability.SignalsParsed.WithLabelValues(observability.OutcomeDuplicate).Inc()
		return nil
	}

	signal := p.extract(ctx, msg)

	if signal.UsedContext {
		observability.ContextCombinations.Inc()
	}

	if signal.Confidence < domain.MinConfidenceToStore {
		observability.SignalsParsed.WithLabelValues(observability.OutcomeNoSignal).Inc()
		p.logger.Debug().Str("source", msg.Source).Str("source_id", msg.SourceID).Msg("no queue information in message")

		return nil
	}

	update := &storage.ParsedUpdate{
		Source:          msg.Source,
		SourceID:        msg.SourceID,
		RawText:         msg.Text,
		AuthorName:      msg.Author,
		Signal:          signal,
		SourceTimestamp: p.sourceTimestamp(msg),
	}

	if err := p.store.SaveUpdate(ctx, update); err != nil {
		return fmt.Errorf("store update: %w", err)
	}

	observability.SignalsParsed.WithLabelValues(observability.OutcomeStored).Inc()
	p.logger.Info().
		Str("source", msg.Source).
		Float64("confidence", signal.Confidence).
		Str("marker", signal.SpatialMarker).
		Msg("queue report stored")

	return nil
}

// extract runs the AI parser when configured, falling back to the heuristic
// resolver on any error.
func (p *Processor) extract(ctx context.Context, msg domain.RawMessage) domain.ParsedSignal {
	if p.parser != nil {
		signal, err := p.parser.Parse(ctx, msg.Text, msg.ParentText)
		if err == nil {
			return signal
		}

		p.logger.Warn().Err(err).Msg("llm parse failed, using heuristic extraction")
	}

	return p.resolver.Resolve(ctx, msg.Text, msg.ParentText)
}

// sourceTimestamp parses the source-reported time, falling back to
// ingestion time on any malformed value. Timestamps are ordering keys here;
// a bad one is never an error.
func (p *Processor) sourceTimestamp(msg domain.RawMessage) time.Time {
	if msg.Timestamp == "" {
		return p.now().UTC()
	}

	ts, err := dateparse.ParseAny(msg.Timestamp)
	if err != nil {
		p.logger.Debug().Str("timestamp", msg.Timestamp).Msg("unparseable source timestamp, using ingestion time")
		return p.now().UTC()
	}

	return ts.UTC()
}
