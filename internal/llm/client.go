package llm

import (
	"context"
	"errors"
)

var (
	ErrAuthFailed    = errors.New("authentication failed")
	ErrRequestFailed = errors.New("request failed")
	ErrEmptyResponse = errors.New("empty response")
	ErrRateLimit     = errors.New("rate limit exceeded")
)

// Completion - текст первого варианта ответа и сколько токенов ушло на запрос.
type Completion struct {
	Content     string
	TotalTokens int
}

// Client отправляет один user-промпт в модель и ждет ответ.
// Ретраев нет: первая ошибка возвращается как есть.
type Client interface {
	Complete(ctx context.Context, prompt string) (*Completion, error)
}
