// Package app wires the estimation core to its collaborators and exposes
// the service run modes:
//
//   - Monitor mode: ingests queue reports from Telegram and Reddit and
//     periodically logs the aggregated status
//   - Status mode: computes one status snapshot and exits
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexey-nikolaev/bhqueue/internal/core/domain"
	"github.com/alexey-nikolaev/bhqueue/internal/estimate"
	"github.com/alexey-nikolaev/bhqueue/internal/event"
	"github.com/alexey-nikolaev/bhqueue/internal/ingest"
	"github.com/alexey-nikolaev/bhqueue/internal/ingest/reddit"
	"github.com/alexey-nikolaev/bhqueue/internal/ingest/telegram"
	"github.com/alexey-nikolaev/bhqueue/internal/llm"
	"github.com/alexey-nikolaev/bhqueue/internal/markers"
	"github.com/alexey-nikolaev/bhqueue/internal/parse"
	"github.com/alexey-nikolaev/bhqueue/internal/platform/config"
	"github.com/alexey-nikolaev/bhqueue/internal/platform/observability"
	"github.com/alexey-nikolaev/bhqueue/internal/status"
	"github.com/alexey-nikolaev/bhqueue/internal/storage"
)

// App holds the application dependencies and provides methods to run
// different modes.
type App struct {
	cfg      *config.Config
	database *storage.DB
	logger   *zerolog.Logger

	registry  *markers.Registry
	processor *ingest.Processor
	statusSvc *status.Service
}

// New builds the dependency graph: registry over the marker table, the
// extractor and resolver over the registry, the converter and aggregation
// engine, the optional AI parser, and the status service.
func New(cfg *config.Config, database *storage.DB, logger *zerolog.Logger) (*App, error) {
	registry := markers.New(database, cfg.MarkerCacheTTL, logger)

	extractor := parse.NewExtractor(registry, parse.Options{
		PastMeters:   cfg.ModifierPastMeters,
		BeforeMeters: cfg.ModifierBeforeMeters,
	})
	resolver := parse.NewResolver(extractor)

	converter := estimate.NewConverter(registry, cfg.DistanceRateMinPerMeter)
	engine := estimate.NewEngine(converter)

	calculator, err := event.NewCalculator(cfg.ClubTimezone)
	if err != nil {
		return nil, fmt.Errorf("event calculator init: %w", err)
	}

	parser := llm.New(cfg, logger)
	processor := ingest.NewProcessor(database, resolver, parser, logger)
	statusSvc := status.NewService(database, engine, calculator, cfg.AggregationWindow, logger)

	return &App{
		cfg:       cfg,
		database:  database,
		logger:    logger,
		registry:  registry,
		processor: processor,
		statusSvc: statusSvc,
	}, nil
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	server := observability.NewServer(a.database, a.cfg.HealthPort, a.logger)
	return server.Start(ctx)
}

// InvalidateMarkers forces a gazetteer reload; called after marker edits.
func (a *App) InvalidateMarkers() {
	a.registry.Invalidate()
}

// RunMonitor runs the ingestion sources and the periodic status log until
// the context is cancelled.
func (a *App) RunMonitor(ctx context.Context) error {
	errCh := make(chan error, 3)
	started := 0

	handler := func(ctx context.Context, msg domain.RawMessage) {
		if err := a.processor.Process(ctx, msg); err != nil {
			a.logger.Error().Err(err).Str("source", msg.Source).Msg("failed to process queue report")
		}
	}

	if a.cfg.BotToken != "" {
		monitor, err := telegram.NewMonitor(a.cfg.BotToken, a.cfg.TelegramChatID, handler, a.logger)
		if err != nil {
			return fmt.Errorf("telegram monitor init: %w", err)
		}

		started++

		go func() { errCh <- monitor.Run(ctx) }()
	}

	if a.cfg.RedditFeedURL != "" {
		poller := reddit.NewPoller(a.cfg.RedditFeedURL, a.cfg.RedditPollInterval, a.cfg.RedditFetchRPS, handler, a.logger)

		started++

		go func() { errCh <- poller.Run(ctx) }()
	}

	if started == 0 {
		return errors.New("no ingestion source configured: set BOT_TOKEN or REDDIT_FEED_URL")
	}

	started++

	go func() { errCh <- a.runStatusTicker(ctx) }()

	// First failure stops the whole monitor; context cancellation arrives
	// here as context.Canceled from every source.
	return <-errCh
}

// RunStatus computes and logs one status snapshot.
func (a *App) RunStatus(ctx context.Context) error {
	a.statusSvc.LogStatus(ctx, time.Now().UTC())
	return nil
}

func (a *App) runStatusTicker(ctx context.Context) error {
	ticker := time.NewTicker(a.cfg.StatusTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.statusSvc.LogStatus(ctx, time.Now().UTC())
		}
	}
}
