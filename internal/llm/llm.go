// Package llm is the optional AI-backed message parser. It sits behind a
// narrow Parser interface so the core never depends on a specific vendor;
// the heuristic extractor remains the fallback whenever it errors.
package llm

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/alexey-nikolaev/bhqueue/internal/core/domain"
	"github.com/alexey-nikolaev/bhqueue/internal/platform/config"
)

// Parser extracts a queue signal from one message, optionally using the
// parent message for context.
type Parser interface {
	Parse(ctx context.Context, text, parentText string) (domain.ParsedSignal, error)
}

// New returns the configured parser, or nil when no API key is set; a nil
// parser means callers rely on heuristic extraction only.
func New(cfg *config.Config, logger *zerolog.Logger) Parser {
	if cfg.LLMAPIKey == "" {
		return nil
	}

	return newOpenAI(cfg, logger)
}
