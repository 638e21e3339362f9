package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/alexey-nikolaev/bhqueue/internal/core/domain"
	"github.com/alexey-nikolaev/bhqueue/internal/platform/config"
	"github.com/alexey-nikolaev/bhqueue/internal/platform/observability"
)

const (
	requestTemperature = 0.1
	noSignalConfidence = 0.1
)

type openAIParser struct {
	client *openai.Client
	model  string
	logger *zerolog.Logger
}

func newOpenAI(cfg *config.Config, logger *zerolog.Logger) *openAIParser {
	return &openAIParser{
		client: openai.NewClient(cfg.LLMAPIKey),
		model:  cfg.LLMModel,
		logger: logger,
	}
}

// parseResponse is the JSON shape the model is instructed to return.
type parseResponse struct {
	WaitMinutes          *int     `json:"wait_minutes"`
	QueueLength          *string  `json:"queue_length"`
	SpatialMarker        *string  `json:"spatial_marker"`
	MarkerModifierMeters *int     `json:"marker_modifier_meters"`
	RejectionMentioned   bool     `json:"rejection_mentioned"`
	EntryMentioned       bool     `json:"entry_mentioned"`
	Confidence           *float64 `json:"confidence"`
}

func (p *openAIParser) Parse(ctx context.Context, text, parentText string) (domain.ParsedSignal, error) {
	userPrompt := text
	if parentText != "" {
		userPrompt = fmt.Sprintf(userPromptWithParent, parentText, text)
	}

	start := time.Now()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: requestTemperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})

	observability.LLMRequestDuration.WithLabelValues(p.model).Observe(time.Since(start).Seconds())

	if err != nil {
		return domain.ParsedSignal{}, fmt.Errorf("llm parse request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return domain.ParsedSignal{}, fmt.Errorf("llm parse: empty response")
	}

	var parsed parseResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return domain.ParsedSignal{}, fmt.Errorf("llm parse: decode response: %w", err)
	}

	return toSignal(parsed, parentText != ""), nil
}

func toSignal(parsed parseResponse, hadParent bool) domain.ParsedSignal {
	signal := domain.ParsedSignal{
		WaitMinutes:          parsed.WaitMinutes,
		MarkerModifierMeters: parsed.MarkerModifierMeters,
		RejectionMentioned:   parsed.RejectionMentioned,
		EntryMentioned:       parsed.EntryMentioned,
		Confidence:           noSignalConfidence,
		UsedContext:          hadParent,
	}

	if parsed.QueueLength != nil {
		signal.QueueLength = *parsed.QueueLength
	}

	if parsed.SpatialMarker != nil {
		signal.SpatialMarker = *parsed.SpatialMarker
	}

	if parsed.Confidence != nil {
		signal.Confidence = clamp01(*parsed.Confidence)
	}

	return signal
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}

	if v > 1 {
		return 1
	}

	return v
}
