package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/careerlogy/careerlogy-ai/internal/llm"
)

const DefaultModel = "gemini-2.0-flash"

type Config struct {
	APIKey string
	Model  string
}

type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
	logger *zap.Logger
}

func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini api key is empty", llm.ErrAuthFailed)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{
		client: client,
		model:  client.GenerativeModel(cfg.Model),
		name:   cfg.Model,
		logger: logger,
	}, nil
}

func (c *Client) Model() string { return c.name }

func (c *Client) Complete(ctx context.Context, prompt string) (*llm.Completion, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, mapError(err, c.logger)
	}
	return extractCompletion(resp)
}

func (c *Client) Close() error {
	return c.client.Close()
}

// extractCompletion склеивает текстовые части первого кандидата.
// Кандидат без текста дает пустой ответ, а не ошибку.
func extractCompletion(resp *genai.GenerateContentResponse) (*llm.Completion, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, llm.ErrEmptyResponse
	}

	var sb strings.Builder
	if cand := resp.Candidates[0]; cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
	}

	out := &llm.Completion{Content: sb.String()}
	if resp.UsageMetadata != nil {
		out.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return out, nil
}

func mapError(err error, logger *zap.Logger) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403:
			return llm.ErrAuthFailed
		case 429:
			return llm.ErrRateLimit
		}
		logger.Error("gemini request failed",
			zap.Int("status", apiErr.Code),
			zap.String("message", apiErr.Message),
		)
	}
	return fmt.Errorf("%w: %v", llm.ErrRequestFailed, err)
}

var _ llm.Client = (*Client)(nil)
