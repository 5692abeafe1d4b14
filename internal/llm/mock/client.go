package mock

import (
	"context"
	"sync"
	"time"

	"github.com/careerlogy/careerlogy-ai/internal/llm"
)

// Client - фейковый llm.Client для тестов и LLM_PROVIDER=mock.
// Ответы можно задать очередью (Responses), ошибку - на конкретный вызов (FailOn).
type Client struct {
	mu sync.Mutex

	Response    string
	Responses   []string
	TotalTokens int
	Error       error
	FailOn      map[int]error // номер вызова (с 0) -> ошибка
	Delay       time.Duration

	CallCount  int
	LastPrompt string
	AllCalls   []string
}

func New() *Client {
	return &Client{
		Response:    "This is a mock response.",
		TotalTokens: 42,
	}
}

func (c *Client) WithResponse(response string) *Client {
	c.Response = response
	return c
}

func (c *Client) WithResponses(responses ...string) *Client {
	c.Responses = responses
	return c
}

func (c *Client) WithTokens(total int) *Client {
	c.TotalTokens = total
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Error = err
	return c
}

func (c *Client) WithErrorOnCall(call int, err error) *Client {
	if c.FailOn == nil {
		c.FailOn = make(map[int]error)
	}
	c.FailOn[call] = err
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

func (c *Client) Complete(ctx context.Context, prompt string) (*llm.Completion, error) {
	c.mu.Lock()
	call := c.CallCount
	c.CallCount++
	c.LastPrompt = prompt
	c.AllCalls = append(c.AllCalls, prompt)
	delay := c.Delay
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err, ok := c.FailOn[call]; ok {
		return nil, err
	}
	if c.Error != nil {
		return nil, c.Error
	}

	resp := c.Response
	if call < len(c.Responses) {
		resp = c.Responses[call]
	}
	return &llm.Completion{Content: resp, TotalTokens: c.TotalTokens}, nil
}

func (c *Client) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.AllCalls))
	copy(out, c.AllCalls)
	return out
}

func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CallCount = 0
	c.LastPrompt = ""
	c.AllCalls = nil
}

var _ llm.Client = (*Client)(nil)
