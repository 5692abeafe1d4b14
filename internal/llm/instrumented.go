package llm

import (
	"context"
	"time"

	"github.com/careerlogy/careerlogy-ai/internal/metrics"
)

// Instrumented оборачивает Client и пишет метрики на каждый запрос.
type Instrumented struct {
	next     Client
	provider string
	metrics  *metrics.Metrics
}

func NewInstrumented(next Client, provider string, m *metrics.Metrics) Client {
	if m == nil {
		return next
	}
	return &Instrumented{next: next, provider: provider, metrics: m}
}

func (c *Instrumented) Complete(ctx context.Context, prompt string) (*Completion, error) {
	start := time.Now()
	resp, err := c.next.Complete(ctx, prompt)

	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordLLMRequest(c.provider, status, time.Since(start))

	return resp, err
}
