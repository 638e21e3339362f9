// Package reddit polls the weekly queue thread's RSS feed for new comments
// and forwards them as raw queue reports.
package reddit

import (
	"context"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/alexey-nikolaev/bhqueue/internal/core/domain"
	"github.com/alexey-nikolaev/bhqueue/internal/ingest"
)

// Poller fetches the feed on an interval, rate-limited to stay well under
// Reddit's unauthenticated quota. Dedup happens downstream on entry IDs.
type Poller struct {
	feedURL  string
	interval time.Duration
	limiter  *rate.Limiter
	parser   *gofeed.Parser
	handler  ingest.Handler
	logger   *zerolog.Logger
}

func NewPoller(feedURL string, interval time.Duration, rps float64, handler ingest.Handler, logger *zerolog.Logger) *Poller {
	return &Poller{
		feedURL:  feedURL,
		interval: interval,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		parser:   gofeed.NewParser(),
		handler:  handler,
		logger:   logger,
	}
}

// Run polls until the context is cancelled. Fetch failures are logged and
// retried on the next tick.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info().Str("feed", p.feedURL).Msg("reddit poller started")

	p.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	if err := p.limiter.Wait(ctx); err != nil {
		return
	}

	feed, err := p.parser.ParseURLWithContext(p.feedURL, ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("reddit feed fetch failed")
		return
	}

	for _, item := range feed.Items {
		raw := toRawMessage(item)
		if raw.Text == "" {
			continue
		}

		p.handler(ctx, raw)
	}
}

func toRawMessage(item *gofeed.Item) domain.RawMessage {
	text := item.Content
	if text == "" {
		text = item.Description
	}

	if text == "" {
		text = item.Title
	}

	sourceID := item.GUID
	if sourceID == "" {
		sourceID = item.Link
	}

	raw := domain.RawMessage{
		Source:    domain.SourceReddit,
		SourceID:  sourceID,
		Text:      text,
		Timestamp: item.Published,
	}

	if item.Author != nil {
		raw.Author = item.Author.Name
	}

	return raw
}
