package llmservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"docchat/internal/config"
)

// ErrModelUnavailable wraps any failure of the language-model call. The
// call is not retried here; the caller decides whether to ask again.
var ErrModelUnavailable = errors.New("language model unavailable")

// Client issues synchronous completions against an OpenAI-compatible
// endpoint at the configured temperature.
type Client struct {
	cfg *config.LLMConfig
}

func NewClient(cfg *config.LLMConfig) *Client {
	return &Client{cfg: cfg}
}

// GenerateContent sends a full message sequence to the model and returns
// the first choice's text.
func (c *Client) GenerateContent(ctx context.Context, messages []llms.MessageContent) (string, error) {
	log.Debug().Str("model", c.cfg.Model).Int("messages", len(messages)).Msg("Generating content")

	llm, err := openai.New(
		openai.WithBaseURL(c.cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(c.cfg.Key, "Bearer ")),
		openai.WithModel(c.cfg.Model),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	res, err := llm.GenerateContent(ctx, messages, llms.WithTemperature(c.cfg.Temperature))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrModelUnavailable)
	}
	return res.Choices[0].Content, nil
}

// Complete sends a single human prompt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.GenerateContent(ctx, []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	})
}
