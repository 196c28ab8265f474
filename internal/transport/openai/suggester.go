// Package openai generates alternative-search suggestions with an
// OpenAI-compatible chat API.
package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/shopgrid/prodsearch/internal/domain"
)

// maxSuggestions caps how many generated lines are kept.
const maxSuggestions = 4

// Suggester rewrites the static no-results suggestions into ones tailored
// to the failed query and the store's stocked categories.
type Suggester struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// Config holds the provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewSuggester creates an OpenAI-compatible suggestion provider.
func NewSuggester(cfg *Config) *Suggester {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Suggester{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: logger,
	}
}

// Suggest asks the model for short alternative searches. Failures are
// returned to the caller, which falls back to static suggestions.
func (s *Suggester) Suggest(
	ctx context.Context, q string, categories []domain.Taxonomy,
) ([]string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You suggest alternative product searches for a shop. " +
					"Reply with one short suggestion per line, no numbering, at most four lines.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(q, categories),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}

	suggestions := parseLines(resp.Choices[0].Message.Content)
	s.logger.Debug("generated suggestions",
		zap.String("query", q), zap.Int("count", len(suggestions)))
	return suggestions, nil
}

func buildPrompt(q string, categories []domain.Taxonomy) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The search %q found no products.\n", q)
	if len(categories) > 0 {
		b.WriteString("The store stocks these categories: ")
		names := make([]string, len(categories))
		for i, c := range categories {
			names[i] = c.Name
		}
		b.WriteString(strings.Join(names, ", "))
		b.WriteString(".\n")
	}
	b.WriteString("Suggest what the shopper could search for instead.")
	return b.String()
}

func parseLines(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*• \t"))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
