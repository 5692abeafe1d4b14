// Package provider собирает llm.Client по конфигу.
package provider

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/careerlogy/careerlogy-ai/internal/config"
	"github.com/careerlogy/careerlogy-ai/internal/llm"
	"github.com/careerlogy/careerlogy-ai/internal/llm/anthropic"
	"github.com/careerlogy/careerlogy-ai/internal/llm/gemini"
	"github.com/careerlogy/careerlogy-ai/internal/llm/mistral"
	"github.com/careerlogy/careerlogy-ai/internal/llm/mock"
	"github.com/careerlogy/careerlogy-ai/internal/metrics"
)

// Client - выбранный клиент плюс освобождение ресурсов (gemini держит gRPC-соединение).
type Client struct {
	llm.Client
	Name  string
	close func() error
}

func (c *Client) Close() error {
	if c.close == nil {
		return nil
	}
	return c.close()
}

func New(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger, m *metrics.Metrics) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	p, err := cfg.Selected()
	if err != nil {
		return nil, err
	}

	var (
		client llm.Client
		closer func() error
	)

	switch cfg.Provider {
	case config.ProviderMistral:
		client = mistral.New(mistral.Config{
			APIKey:  p.APIKey,
			Model:   p.Model,
			BaseURL: p.BaseURL,
			Timeout: cfg.Timeout,
		}, logger)
	case config.ProviderGemini:
		gc, err := gemini.New(ctx, gemini.Config{APIKey: p.APIKey, Model: p.Model}, logger)
		if err != nil {
			return nil, fmt.Errorf("init gemini: %w", err)
		}
		client, closer = gc, gc.Close
	case config.ProviderAnthropic:
		client = anthropic.New(anthropic.Config{
			APIKey:  p.APIKey,
			Model:   p.Model,
			BaseURL: p.BaseURL,
			Timeout: cfg.Timeout,
		}, logger)
	case config.ProviderMock:
		client = mock.New()
	}

	logger.Info("llm provider initialized", zap.String("provider", cfg.Provider))

	return &Client{
		Client: llm.NewInstrumented(client, cfg.Provider, m),
		Name:   cfg.Provider,
		close:  closer,
	}, nil
}
