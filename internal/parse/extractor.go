// Package parse turns one free-text queue report into a structured signal.
//
// Extraction is layered: ordered regex tables for explicit wait times and
// queue-length buckets, gazetteer lookup for landmark mentions, and keyword
// checks for rejection/entry. Each layer is independent; a single message
// may set several fields.
package parse

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/alexey-nikolaev/bhqueue/internal/core/domain"
	"github.com/alexey-nikolaev/bhqueue/internal/markers"
	"github.com/alexey-nikolaev/bhqueue/internal/platform/textutil"
)

// Confidence weights per detected field. Overall confidence is
// min(0.95, mean(weights) + 0.1*count), or 0.1 when nothing matched.
const (
	weightWaitTime  = 0.8
	weightMarker    = 0.6
	weightModifier  = 0.2
	weightLength    = 0.5
	weightRejection = 0.4
	weightEntry     = 0.4

	confidencePerField = 0.1
	confidenceCap      = 0.95
	confidenceFloor    = 0.1

	minutesPerHour = 60
)

// Defaults for qualitative distance modifiers. Heuristic guesses, tunable
// via Options, not derived from measured queue movement.
const (
	DefaultPastMeters   = 20
	DefaultBeforeMeters = -15
)

// Options tunes the qualitative modifier defaults.
type Options struct {
	PastMeters   int
	BeforeMeters int
}

// Extractor converts message text into ParsedSignals using the current
// marker gazetteer snapshot. It is stateless apart from the injected
// registry; extracting the same text twice yields identical signals.
type Extractor struct {
	registry *markers.Registry
	opts     Options
}

// NewExtractor creates an extractor over the given marker registry.
func NewExtractor(registry *markers.Registry, opts Options) *Extractor {
	if opts.PastMeters == 0 {
		opts.PastMeters = DefaultPastMeters
	}

	if opts.BeforeMeters == 0 {
		opts.BeforeMeters = DefaultBeforeMeters
	}

	return &Extractor{registry: registry, opts: opts}
}

// Extract parses one message. Empty or unparseable text yields a signal
// with confidence 0.1 and no fields set; that is a no-signal result, not an
// error.
func (e *Extractor) Extract(ctx context.Context, text string) domain.ParsedSignal {
	signal := domain.ParsedSignal{Confidence: confidenceFloor}
	if text == "" {
		return signal
	}

	folded := textutil.Fold(text)

	var weights []float64

	if minutes, ok := matchWaitTime(folded); ok {
		signal.WaitMinutes = &minutes
		weights = append(weights, weightWaitTime)
	}

	if name, modifier, ok := e.matchMarker(ctx, folded); ok {
		signal.SpatialMarker = name
		signal.MarkerModifierMeters = modifier
		weights = append(weights, weightMarker)

		if modifier != nil {
			weights = append(weights, weightModifier)
		}
	}

	if bucket, ok := firstValueMatch(queueLengthRules, folded); ok {
		signal.QueueLength = bucket
		weights = append(weights, weightLength)
	}

	if anyMatch(rejectionRules, folded) {
		signal.RejectionMentioned = true
		weights = append(weights, weightRejection)
	}

	if anyMatch(entryRules, folded) {
		signal.EntryMentioned = true
		weights = append(weights, weightEntry)
	}

	signal.Confidence = combineWeights(weights)

	return signal
}

// IsQueueQuestion reports whether text asks about queue status. Used to
// decide whether a reply should be combined with its parent.
func IsQueueQuestion(text string) bool {
	folded := textutil.Fold(text)

	for _, re := range queueQuestionRules {
		if re.MatchString(folded) {
			return true
		}
	}

	if !strings.ContainsRune(text, '?') {
		return false
	}

	for _, kw := range queueQuestionKeywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}

	return false
}

func matchWaitTime(folded string) (int, bool) {
	for _, rule := range waitTimeRules {
		m := rule.re.FindStringSubmatch(folded)
		if m == nil {
			continue
		}

		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}

		if rule.hours {
			return int(math.Round(value * minutesPerHour)), true
		}

		return int(math.Round(value)), true
	}

	return 0, false
}

// matchMarker finds the first gazetteer alias contained in the folded text,
// iterating longest-alias-first so specific aliases win over substrings.
// Once a marker is selected, it searches for a distance modifier in priority
// order: explicit signed meters, qualitative "past", qualitative "before".
func (e *Extractor) matchMarker(ctx context.Context, folded string) (string, *int, bool) {
	for _, alias := range e.registry.List(ctx) {
		if alias.Alias == "" || !strings.Contains(folded, alias.Alias) {
			continue
		}

		if modifier, ok := matchExplicitMeters(folded, alias.Alias); ok {
			return alias.Name, &modifier, true
		}

		if matchesQualifier(folded, alias.Alias, pastQualifierTemplates) {
			past := e.opts.PastMeters
			return alias.Name, &past, true
		}

		if matchesQualifier(folded, alias.Alias, beforeQualifierTemplates) {
			before := e.opts.BeforeMeters
			return alias.Name, &before, true
		}

		return alias.Name, nil, true
	}

	return "", nil, false
}

var (
	pastQualifierTemplates = []string{
		`(past|beyond|after)\s+(?:the\s+)?%s`,
		`%s\s+(?:and\s+)?(past|beyond|further)`,
	}
	beforeQualifierTemplates = []string{
		`(before|almost\s+at|approaching|nearly\s+at)\s+(?:the\s+)?%s`,
		`(almost|nearly|just\s+before)\s+%s`,
	}
)

// matchExplicitMeters handles "marker +10m" / "marker -10 m".
func matchExplicitMeters(folded, alias string) (int, bool) {
	quoted := regexp.QuoteMeta(alias)

	plus := regexp.MustCompile(quoted + `\s*\+\s*(\d+)\s*m\b`)
	if m := plus.FindStringSubmatch(folded); m != nil {
		meters, _ := strconv.Atoi(m[1])
		return meters, true
	}

	minus := regexp.MustCompile(quoted + `\s*-\s*(\d+)\s*m\b`)
	if m := minus.FindStringSubmatch(folded); m != nil {
		meters, _ := strconv.Atoi(m[1])
		return -meters, true
	}

	return 0, false
}

func matchesQualifier(folded, alias string, templates []string) bool {
	quoted := regexp.QuoteMeta(alias)

	for _, tmpl := range templates {
		re := regexp.MustCompile(fmt.Sprintf(tmpl, quoted))
		if re.MatchString(folded) {
			return true
		}
	}

	return false
}

func combineWeights(weights []float64) float64 {
	if len(weights) == 0 {
		return confidenceFloor
	}

	sum := 0.0
	for _, w := range weights {
		sum += w
	}

	mean := sum / float64(len(weights))
	confidence := mean + confidencePerField*float64(len(weights))

	return math.Min(confidenceCap, confidence)
}
