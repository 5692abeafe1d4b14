package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/careerlogy/careerlogy-ai/internal/llm"
)

const (
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 4096
)

type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int64
	Timeout   time.Duration
}

type Client struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	logger    *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// SDK по умолчанию ретраит 2 раза, нам нужна первая ошибка
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &Client{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}
}

func (c *Client) Model() string { return c.model }

func (c *Client) Complete(ctx context.Context, prompt string) (*llm.Completion, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, c.mapError(err)
	}

	if len(msg.Content) == 0 {
		return nil, llm.ErrEmptyResponse
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return &llm.Completion{
		Content:     sb.String(),
		TotalTokens: int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
	}, nil
}

func (c *Client) mapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return llm.ErrAuthFailed
		case http.StatusTooManyRequests:
			return llm.ErrRateLimit
		}
		c.logger.Error("anthropic request failed",
			zap.Int("status", apiErr.StatusCode),
			zap.String("model", c.model),
		)
		return fmt.Errorf("%w: status %d", llm.ErrRequestFailed, apiErr.StatusCode)
	}
	return fmt.Errorf("%w: %v", llm.ErrRequestFailed, err)
}

var _ llm.Client = (*Client)(nil)
