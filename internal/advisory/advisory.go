// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package advisory calls a text model for decision support (interpretation,
// classification, verification, extraction, synthesis) and turns its
// free-form output into typed values. Every call site supplies a default, so
// a missing, slow or confused model never fails the pipeline.
package advisory

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"text/template"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/talent-scout/pkg/types"
)

// Model abstracts the text-generation API so tests can supply a stub.
// Each implementation sends one prompt and returns the raw text reply.
type Model interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f ModelFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Client wraps a Model with rate limiting, retries, a per-call timeout and
// a response-size bound. A nil *Client is valid and always fails, which
// makes every SafeStructured call return its default.
type Client struct {
	model      Model
	limiter    *rate.Limiter
	maxRetries int
	timeout    time.Duration
	maxBytes   int
	logger     *zap.Logger
}

// New wraps model with the limits from cfg.
func New(model Model, cfg types.AIConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	maxBytes := cfg.MaxResponseBytes
	if maxBytes <= 0 {
		maxBytes = 64 << 10
	}
	return &Client{
		model:      model,
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: cfg.MaxRetries,
		timeout:    cfg.Timeout,
		maxBytes:   maxBytes,
		logger:     logger,
	}
}

// NewFromConfig builds the backend named by cfg.Provider. It returns nil
// (rule-based fallbacks only) for ProviderNone or a missing API key on a
// hosted provider.
func NewFromConfig(cfg types.AIConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Provider {
	case types.ProviderAnthropic:
		if cfg.APIKey == "" {
			logger.Warn("no anthropic API key, advisory calls use rule-based defaults")
			return nil
		}
		return New(&ClaudeBackend{APIKey: cfg.APIKey, Model: cfg.Model, MaxTokens: cfg.MaxTokens, BaseURL: cfg.BaseURL}, cfg, logger)
	case types.ProviderOpenAI:
		if cfg.APIKey == "" && cfg.BaseURL == "" {
			logger.Warn("no openai API key or base URL, advisory calls use rule-based defaults")
			return nil
		}
		return New(&OpenAIBackend{APIKey: cfg.APIKey, Model: cfg.Model, MaxTokens: cfg.MaxTokens, BaseURL: cfg.BaseURL}, cfg, logger)
	default:
		return nil
	}
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// Raw sends prompt to the model with rate limiting, retry and timeout, and
// returns the reply truncated to the configured byte bound.
func (c *Client) Raw(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.model == nil {
		return "", ErrNoModel
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}

		text, err := c.once(ctx, prompt)
		if err == nil {
			if len(text) > c.maxBytes {
				text = text[:c.maxBytes]
			}
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) once(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.model.Complete(ctx, prompt)
}

// Render executes a prompt template with data.
func Render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
