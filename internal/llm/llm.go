// Package llm is the text-generation collaborator used for tailoring and
// recruiter pitches, backed by langchaingo.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"

	"autoapply-engine/internal/config"
)

// ErrEmptyResponse is returned when the model answered with no text.
var ErrEmptyResponse = errors.New("llm: empty response")

type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

type Client struct {
	model   llms.Model
	name    string
	timeout time.Duration
}

// New builds a client for the configured provider.
func New(ctx context.Context, cfg config.LLMConfig) (*Client, error) {
	var (
		m   llms.Model
		err error
	)
	switch cfg.Provider {
	case "", "ollama":
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.OllamaHost != "" {
			opts = append(opts, ollama.WithServerURL(cfg.OllamaHost))
		}
		m, err = ollama.New(opts...)
	case "googleai":
		if cfg.GeminiAPIKey == "" {
			return nil, errors.New("llm: googleai provider needs GEMINI_API_KEY")
		}
		m, err = googleai.New(ctx,
			googleai.WithAPIKey(cfg.GeminiAPIKey),
			googleai.WithDefaultModel(cfg.Model),
		)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("llm: init %s: %w", cfg.Provider, err)
	}
	return NewWithModel(m, cfg.Provider+"/"+cfg.Model, time.Duration(cfg.TimeoutSeconds)*time.Second), nil
}

func NewWithModel(m llms.Model, name string, timeout time.Duration) *Client {
	return &Client{model: m, name: name, timeout: timeout}
}

func (c *Client) Name() string { return c.name }

// Generate sends one system + user exchange and returns the trimmed reply.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	msgs := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, user),
	}
	resp, err := c.model.GenerateContent(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("llm %s: %w", c.name, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	out := strings.TrimSpace(resp.Choices[0].Content)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
