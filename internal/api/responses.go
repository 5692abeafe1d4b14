package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/careerlogy/careerlogy-ai/internal/domain"
	"github.com/careerlogy/careerlogy-ai/internal/llm"
	"github.com/careerlogy/careerlogy-ai/internal/queue"
)

var (
	ErrInvalidBody = errors.New("invalid request body")
	ErrRateLimited = errors.New("rate limit exceeded")
	ErrQueueOff    = errors.New("job queue is not configured")
)

type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	RequestID  string `json:"request_id,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	respondJSON(w, status, ErrorResponse{
		Error:      msg,
		StatusCode: status,
		RequestID:  RequestIDFrom(r.Context()),
	})
}

// handleError маппит ошибку в HTTP статус; 5xx логируются, текст наружу не уходит.
func handleError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := statusFor(err)

	msg := err.Error()
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msg = validationMessage(verrs)
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFrom(r.Context())),
		)
		msg = http.StatusText(status)
	}

	respondError(w, r, status, msg)
}

func validationMessage(verrs validator.ValidationErrors) string {
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(fields, "; ")
}

func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs),
		errors.Is(err, ErrInvalidBody),
		errors.Is(err, domain.ErrEmptyUserID),
		errors.Is(err, domain.ErrEmptyQualification),
		errors.Is(err, domain.ErrEmptyPersonalityTrait1),
		errors.Is(err, domain.ErrEmptyPersonalityTrait2),
		errors.Is(err, domain.ErrEmptyCareerInterest1),
		errors.Is(err, domain.ErrEmptyCareerInterest2),
		errors.Is(err, domain.ErrEmptyCareerTitle),
		errors.Is(err, domain.ErrEmptyQuestion),
		errors.Is(err, domain.ErrQuestionTooLong),
		errors.Is(err, queue.ErrBadJob):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrStepsNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrQueueOff):
		return http.StatusServiceUnavailable
	case errors.Is(err, llm.ErrRateLimit),
		errors.Is(err, llm.ErrAuthFailed),
		errors.Is(err, llm.ErrRequestFailed),
		errors.Is(err, llm.ErrEmptyResponse):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
