package parse

import (
	"context"
	"fmt"

	"github.com/alexey-nikolaev/bhqueue/internal/core/domain"
	"github.com/alexey-nikolaev/bhqueue/internal/platform/textutil"
)

const (
	// standaloneConfidenceThreshold is the confidence above which a reply is
	// trusted on its own and the parent message is ignored.
	standaloneConfidenceThreshold = 0.5

	// shortReplyMaxTokens caps how long a reply may be to still count as a
	// likely answer to its parent message.
	shortReplyMaxTokens = 5

	contextBoost = 0.1
)

// Resolver wraps the extractor with reply-context combination. Short or
// low-information replies are re-extracted together with their parent
// message, which often recovers information the reply only implies
// ("To the kiosk" as an answer to "How is the Q?").
type Resolver struct {
	extractor *Extractor
}

func NewResolver(extractor *Extractor) *Resolver {
	return &Resolver{extractor: extractor}
}

// Resolve extracts a signal from text, consulting parentText when the
// standalone extraction is weak. Combination is monotonic: the result never
// has lower confidence than the standalone extraction, and a combined result
// is only adopted when it is strictly better.
func (r *Resolver) Resolve(ctx context.Context, text, parentText string) domain.ParsedSignal {
	standalone := r.extractor.Extract(ctx, text)
	if standalone.Confidence >= standaloneConfidenceThreshold || parentText == "" {
		return standalone
	}

	// A reply to a queue question is likely an answer to it.
	if IsQueueQuestion(parentText) {
		combined := r.extractor.Extract(ctx, fmt.Sprintf("%s %s", parentText, text))
		if adopted, ok := adoptCombined(standalone, combined); ok {
			return adopted
		}
	}

	// Even without a question parent, a short reply may still be an answer.
	if textutil.TokenCount(text) <= shortReplyMaxTokens {
		combined := r.extractor.Extract(ctx, fmt.Sprintf("%s Answer: %s", parentText, text))
		if adopted, ok := adoptCombined(standalone, combined); ok {
			return adopted
		}
	}

	return standalone
}

// adoptCombined accepts the combined extraction only when it strictly beats
// the standalone one, marking it as context-derived and boosting its
// confidence for the corroborating parent.
func adoptCombined(standalone, combined domain.ParsedSignal) (domain.ParsedSignal, bool) {
	if combined.Confidence <= standalone.Confidence {
		return domain.ParsedSignal{}, false
	}

	combined.UsedContext = true
	if combined.Confidence+contextBoost < confidenceCap {
		combined.Confidence += contextBoost
	} else {
		combined.Confidence = confidenceCap
	}

	return combined, true
}
