package anthropic

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/careerlogy/careerlogy-ai/internal/llm"
)

func TestClient_Complete(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantText   string
		wantTokens int
		wantErr    error
	}{
		{
			name:       "success",
			statusCode: http.StatusOK,
			body: `{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-20250514",
				"content":[{"type":"text","text":"Product Manager"}],
				"stop_reason":"end_turn","usage":{"input_tokens":20,"output_tokens":7}}`,
			wantText:   "Product Manager",
			wantTokens: 27,
		},
		{
			name:       "empty text block",
			statusCode: http.StatusOK,
			body: `{"id":"msg_3","type":"message","role":"assistant","model":"claude-sonnet-4-20250514",
				"content":[{"type":"text","text":""}],"stop_reason":"end_turn","usage":{"input_tokens":4,"output_tokens":0}}`,
			wantText:   "",
			wantTokens: 4,
		},
		{
			name:       "no content blocks",
			statusCode: http.StatusOK,
			body: `{"id":"msg_2","type":"message","role":"assistant","model":"claude-sonnet-4-20250514",
				"content":[],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":0}}`,
			wantErr: llm.ErrEmptyResponse,
		},
		{
			name:       "unauthorized",
			statusCode: http.StatusUnauthorized,
			body:       `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`,
			wantErr:    llm.ErrAuthFailed,
		},
		{
			name:       "rate limited",
			statusCode: http.StatusTooManyRequests,
			body:       `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`,
			wantErr:    llm.ErrRateLimit,
		},
		{
			name:       "bad request",
			statusCode: http.StatusBadRequest,
			body:       `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`,
			wantErr:    llm.ErrRequestFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("X-Api-Key") != "test-key" {
					t.Errorf("missing api key header")
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := New(Config{
				APIKey:  "test-key",
				BaseURL: server.URL,
				Timeout: 5 * time.Second,
			}, zap.NewNop())

			got, err := client.Complete(context.Background(), "prompt")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Complete() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Complete() unexpected error = %v", err)
			}
			if got.Content != tt.wantText {
				t.Errorf("Content = %q, want %q", got.Content, tt.wantText)
			}
			if got.TotalTokens != tt.wantTokens {
				t.Errorf("TotalTokens = %d, want %d", got.TotalTokens, tt.wantTokens)
			}
		})
	}
}
