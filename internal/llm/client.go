package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	"itsg33/internal/platform/config"
	"itsg33/pkg/circuit"
	dErrors "itsg33/pkg/domain-errors"
)

// Client wraps the OpenAI chat API for the two structured tasks the engine
// needs: applicability classification and evidence extraction. Both ask the
// model for a JSON document and parse it strictly. A circuit breaker guards
// the upstream so repeated outages fail fast instead of stacking timeouts.
type Client struct {
	api     *openai.Client
	model   string
	logger  *slog.Logger
	breaker *circuit.Breaker
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func NewClient(cfg config.OpenAIConfig, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	c := &Client{
		api:     openai.NewClientWithConfig(apiCfg),
		model:   model,
		logger:  slog.Default(),
		breaker: circuit.New("openai", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// complete runs one chat completion and returns the raw content of the first
// choice with any markdown code fencing stripped.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	if c.breaker.IsOpen() {
		return "", dErrors.New(dErrors.CodeUnavailable, "llm upstream unavailable")
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.WarnContext(ctx, "llm circuit opened", "breaker", c.breaker.Name())
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "llm circuit closed", "breaker", c.breaker.Name())
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return stripFences(resp.Choices[0].Message.Content), nil
}

// stripFences removes a surrounding ```json ... ``` block if present. Models
// occasionally fence output even when asked for raw JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func decodeStrict(raw string, v any) error {
	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}
