package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/careerlogy/careerlogy-ai/internal/llm"
)

const (
	DefaultBaseURL = "https://api.mistral.ai/v1"
	DefaultModel   = "mistral-small-latest"
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// Timeout 0 - без таймаута, как в исходном клиенте; отмена только через ctx
	Timeout time.Duration
}

type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

type mistralResponse struct {
	llm.ChatResponse
	Object  string `json:"object"`
	Message string `json:"message,omitempty"`
	Detail  any    `json:"detail,omitempty"`
}

func (c *Client) Model() string { return c.model }

func (c *Client) Complete(ctx context.Context, prompt string) (*llm.Completion, error) {
	req := llm.NewChatRequest(c.model, prompt)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	respBody, statusCode, err := llm.DoRequest(c.client, httpReq)
	if err != nil {
		return nil, err
	}

	if statusCode != http.StatusOK {
		return nil, llm.HandleHTTPError(statusCode, respBody, c.logger, "mistral")
	}

	var chatResp mistralResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	// ошибки валидации приходят с 200 только через прокси, но на всякий случай
	if chatResp.Object == "error" {
		return nil, fmt.Errorf("%w: %s", llm.ErrRequestFailed, chatResp.Message)
	}

	return llm.ExtractCompletion(&chatResp.ChatResponse)
}

var _ llm.Client = (*Client)(nil)
