// Package generate asks a chat model for an itinerary, either as marker text
// for the line parser or as a structured JSON plan.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gubarz/tripdoc/internal/itinerary"
	"github.com/gubarz/tripdoc/internal/llm"
)

// Format selects what the model is asked to produce
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text or json)", s)
	}
}

// Generator wraps a chat provider with the itinerary prompts
type Generator struct {
	provider    llm.Provider
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// New creates a generator on top of provider
func New(provider llm.Provider) *Generator {
	return &Generator{
		provider:    provider,
		temperature: 0.7,
		maxTokens:   4000,
		logger:      slog.Default(),
	}
}

// WithLogger sets the logger
func (g *Generator) WithLogger(l *slog.Logger) *Generator {
	g.logger = l
	return g
}

// Text returns marker text ready for the parser
func (g *Generator) Text(ctx context.Context, req itinerary.TripRequest) (string, error) {
	return g.chat(ctx, llm.ChatRequest{
		Messages:    []llm.Message{llm.User(TextPrompt(req))},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
}

// Plan returns a decoded structured plan. Facts the model did not supply are
// filled from the request.
func (g *Generator) Plan(ctx context.Context, req itinerary.TripRequest) (*itinerary.Plan, error) {
	content, err := g.chat(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			llm.System(PlanSystemPrompt),
			llm.User(PlanPrompt(req)),
		},
		Temperature:    g.temperature,
		MaxTokens:      g.maxTokens,
		ResponseFormat: "json_object",
	})
	if err != nil {
		return nil, err
	}

	plan, err := itinerary.DecodePlan([]byte(content))
	if err != nil {
		return nil, err
	}
	if len(plan.Facts) == 0 {
		plan.Facts = requestFacts(req)
	}
	return plan, nil
}

func (g *Generator) chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	resp, err := g.provider.Chat(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %w", itinerary.ErrUpstreamGeneration, err)
	}

	g.logger.Debug("generate: completion received",
		"model", resp.Model,
		"finish_reason", resp.FinishReason,
		"tokens", resp.TotalTokens,
	)
	if resp.FinishReason == "length" {
		g.logger.Warn("generate: completion was cut off at the token limit", "max_tokens", req.MaxTokens)
	}

	content := StripFences(resp.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty completion", itinerary.ErrUpstreamGeneration)
	}
	return content, nil
}

// StripFences removes a surrounding markdown code fence, with or without a
// language tag
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], " {[") {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func requestFacts(req itinerary.TripRequest) []itinerary.PlanFact {
	facts := []itinerary.PlanFact{
		{Label: "Destination", Value: strings.TrimSpace(req.Destination)},
		{Label: "Duration", Value: strconv.Itoa(req.Days) + " Days"},
	}
	if b := strings.TrimSpace(req.Budget); b != "" {
		facts = append(facts, itinerary.PlanFact{Label: "Budget", Value: b})
	}
	if req.Travelers > 0 {
		facts = append(facts, itinerary.PlanFact{Label: "Travelers", Value: strconv.Itoa(req.Travelers)})
	}
	return facts
}
