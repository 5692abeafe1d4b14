package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/careerlogy/careerlogy-ai/internal/domain"
	"github.com/careerlogy/careerlogy-ai/internal/metrics"
	"github.com/careerlogy/careerlogy-ai/internal/queue"
	"github.com/careerlogy/careerlogy-ai/internal/ratelimit"
	"github.com/careerlogy/careerlogy-ai/internal/service"
)

// maxBodyBytes - с запасом на MaxQuestionLength и профиль.
const maxBodyBytes = 64 << 10

type StepsEnqueuer interface {
	EnqueueSteps(ctx context.Context, req *domain.FindCareerStepsRequest) (*queue.StepsJob, error)
}

type JobAccepted struct {
	JobID      string `json:"job_id"`
	StatusCode int    `json:"status_code"`
}

type careerHandler struct {
	careers  service.CareerService
	jobs     StepsEnqueuer
	limiter  *ratelimit.Limiter
	metrics  *metrics.Metrics
	validate *validator.Validate
	logger   *zap.Logger
}

// decode читает тело, проверяет теги validate и подставляет userId из токена.
func (h *careerHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}, userID *string) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if sub, ok := UserIDFrom(r.Context()); ok {
		*userID = sub
	}
	return h.validate.Struct(dst)
}

func (h *careerHandler) findCareer(w http.ResponseWriter, r *http.Request) {
	var req domain.FindCareerRequest
	if err := h.decode(w, r, &req, &req.UserID); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	res, err := h.careers.FindCareer(r.Context(), &req)
	if err != nil {
		h.logger.Warn("find career failed", zap.Error(err), zap.String("user_id", req.UserID))
		handleError(w, r, h.logger, err)
		return
	}

	respondJSON(w, res.StatusCode, res)
}

func (h *careerHandler) findCareerSteps(w http.ResponseWriter, r *http.Request) {
	var req domain.FindCareerStepsRequest
	if err := h.decode(w, r, &req, &req.UserID); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	res, err := h.careers.FindCareerSteps(r.Context(), &req)
	if err != nil {
		h.logger.Warn("find career steps failed",
			zap.Error(err),
			zap.String("user_id", req.UserID),
			zap.String("career_title", req.CareerTitle),
		)
		handleError(w, r, h.logger, err)
		return
	}

	respondJSON(w, res.StatusCode, res)
}

func (h *careerHandler) enqueueSteps(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		handleError(w, r, h.logger, ErrQueueOff)
		return
	}

	var req domain.FindCareerStepsRequest
	if err := h.decode(w, r, &req, &req.UserID); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	job, err := h.jobs.EnqueueSteps(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusAccepted, JobAccepted{JobID: job.ID, StatusCode: http.StatusAccepted})
}

type stepView struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

type progressView struct {
	CareerTitle   string     `json:"careerTitle"`
	Qualification string     `json:"qualification"`
	Status        string     `json:"status,omitempty"`
	Steps         []stepView `json:"steps"`
	Complete      bool       `json:"complete"`
}

func (h *careerHandler) getSteps(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	progress, err := h.careers.GetCareerSteps(r.Context(), q.Get("careerTitle"), q.Get("qualification"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	view := progressView{
		CareerTitle:   progress.CareerTitle,
		Qualification: progress.Qualification,
		Status:        progress.Status.String(),
		Steps:         make([]stepView, 0, len(progress.Steps)),
		Complete:      progress.IsComplete(),
	}
	for _, s := range progress.Steps {
		view.Steps = append(view.Steps, stepView{Key: domain.StepKey(s.Index), Text: s.Text})
	}

	respondJSON(w, http.StatusOK, view)
}

func (h *careerHandler) chat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatAnswerRequest
	if err := h.decode(w, r, &req, &req.UserID); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	if h.limiter != nil && !h.limiter.Allow(req.UserID) {
		if h.metrics != nil {
			h.metrics.RecordRateLimitHit("http")
		}
		w.Header().Set("Retry-After", retryAfter(h.limiter, req.UserID))
		handleError(w, r, h.logger, ErrRateLimited)
		return
	}

	res, err := h.careers.ChatAnswer(r.Context(), &req)
	if err != nil {
		h.logger.Warn("chat answer failed", zap.Error(err), zap.String("user_id", req.UserID))
		handleError(w, r, h.logger, err)
		return
	}

	respondJSON(w, res.StatusCode, res)
}
