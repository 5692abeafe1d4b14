package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/careerlogy/careerlogy-ai/internal/domain"
	"github.com/careerlogy/careerlogy-ai/internal/llm"
	"github.com/careerlogy/careerlogy-ai/internal/metrics"
	"github.com/careerlogy/careerlogy-ai/internal/prompt"
	"github.com/careerlogy/careerlogy-ai/internal/repository"
)

// statusWriteTimeout ограничивает запись Failed после отмены ctx вызова.
const statusWriteTimeout = 5 * time.Second

type CareerService interface {
	FindCareer(ctx context.Context, req *domain.FindCareerRequest) (*domain.Result, error)
	FindCareerSteps(ctx context.Context, req *domain.FindCareerStepsRequest) (*domain.Result, error)
	ChatAnswer(ctx context.Context, req *domain.ChatAnswerRequest) (*domain.ChatResult, error)

	// GetCareerSteps - чтение прогресса для внешних клиентов, сам воркфлоу его не вызывает.
	GetCareerSteps(ctx context.Context, careerTitle, qualification string) (*domain.CareerProgress, error)
}

type CareerServiceDeps struct {
	Repo    repository.CareerRepository
	LLM     llm.Client
	Prompts *prompt.Catalog
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

type careerService struct {
	repo    repository.CareerRepository
	llm     llm.Client
	prompts *prompt.Catalog
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewCareerService(deps CareerServiceDeps) CareerService {
	if deps.Prompts == nil {
		deps.Prompts = prompt.MustDefault()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &careerService{
		repo:    deps.Repo,
		llm:     deps.LLM,
		prompts: deps.Prompts,
		logger:  deps.Logger,
		metrics: deps.Metrics,
	}
}

func (s *careerService) FindCareer(ctx context.Context, req *domain.FindCareerRequest) (*domain.Result, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		s.recordRequest("find_career", "validation_error", start)
		return nil, err
	}

	profile := req.CareerData

	text, err := s.prompts.CareerOptions(profile)
	if err != nil {
		s.recordRequest("find_career", "error", start)
		return nil, err
	}

	completion, err := s.llm.Complete(ctx, text)
	if err != nil {
		s.recordRequest("find_career", "error", start)
		return nil, err
	}

	// ответ модели сохраняем как есть, количество строк не проверяем
	options := completion.Content

	search := &domain.CareerSearch{
		UserID:  req.UserID,
		Profile: profile,
		Options: options,
	}
	if err := s.repo.AddCareers(ctx, search); err != nil {
		s.recordRequest("find_career", "error", start)
		return nil, err
	}

	record := domain.NewCareerRecord(req.UserID, profile.Qualification, options)
	if err := s.repo.InsertCareer(ctx, record.UserID, record.Text); err != nil {
		s.recordRequest("find_career", "error", start)
		return nil, err
	}

	s.logger.Debug("career options generated",
		zap.String("user_id", req.UserID),
		zap.String("qualification", profile.Qualification),
	)
	s.recordRequest("find_career", "success", start)

	return &domain.Result{Message: domain.MessageCareerSearched, StatusCode: http.StatusOK}, nil
}

func (s *careerService) FindCareerSteps(ctx context.Context, req *domain.FindCareerStepsRequest) (*domain.Result, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		s.recordRequest("find_career_steps", "validation_error", start)
		return nil, err
	}
	req.Sanitize()

	err := s.runSteps(ctx, req.CareerTitle, req.Qualification)
	if err == nil {
		err = s.repo.UpdateCareerStatus(ctx, req.CareerTitle, domain.StatusCompleted)
	}
	if err != nil {
		s.recordRun(domain.StatusFailed)
		s.recordRequest("find_career_steps", "error", start)

		// статус Failed пишется без защиты; если и он упал - отдаем обе ошибки
		if statusErr := s.markFailed(ctx, req.CareerTitle); statusErr != nil {
			return nil, errors.Join(err, statusErr)
		}
		return nil, err
	}

	s.recordRun(domain.StatusCompleted)
	s.recordRequest("find_career_steps", "success", start)

	return &domain.Result{Message: domain.MessageCareerSearched, StatusCode: http.StatusOK}, nil
}

// markFailed пишет Failed и тогда, когда ctx вызова уже отменен
// (клиент отключился, воркер останавливается).
func (s *careerService) markFailed(ctx context.Context, careerTitle string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusWriteTimeout)
	defer cancel()
	return s.repo.UpdateCareerStatus(ctx, careerTitle, domain.StatusFailed)
}

// runSteps генерирует шаги строго по порядку и сохраняет каждый сразу.
// Первая ошибка останавливает последовательность.
func (s *careerService) runSteps(ctx context.Context, careerTitle, qualification string) error {
	for i := 0; i < domain.StepCount; i++ {
		text, err := s.prompts.Step(i, qualification, careerTitle)
		if err != nil {
			return err
		}

		completion, err := s.llm.Complete(ctx, text)
		if err != nil {
			return err
		}

		if err := s.repo.UpdateStep(ctx, careerTitle, qualification, domain.StepKey(i), completion.Content); err != nil {
			return err
		}

		if s.metrics != nil {
			s.metrics.RecordStepGenerated()
		}
		s.logger.Debug("career step generated",
			zap.String("career_title", careerTitle),
			zap.Int("step", i),
			zap.String("name", s.prompts.StepName(i)),
		)
	}
	return nil
}

func (s *careerService) ChatAnswer(ctx context.Context, req *domain.ChatAnswerRequest) (*domain.ChatResult, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		s.recordRequest("chat_answer", "validation_error", start)
		return nil, err
	}

	completion, err := s.llm.Complete(ctx, req.Question)
	if err != nil {
		s.recordRequest("chat_answer", "error", start)
		return nil, err
	}

	if err := s.repo.UpdateTokenUsage(ctx, req.UserID, completion.TotalTokens); err != nil {
		s.recordRequest("chat_answer", "error", start)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordTokens(completion.TotalTokens)
	}
	s.recordRequest("chat_answer", "success", start)

	return &domain.ChatResult{
		Answer:      completion.Content,
		StatusCode:  http.StatusOK,
		TotalTokens: completion.TotalTokens,
	}, nil
}

func (s *careerService) GetCareerSteps(ctx context.Context, careerTitle, qualification string) (*domain.CareerProgress, error) {
	req := domain.FindCareerStepsRequest{UserID: "-", CareerTitle: careerTitle, Qualification: qualification}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Sanitize()

	steps, err := s.repo.GetSteps(ctx, req.CareerTitle, req.Qualification)
	if err != nil {
		return nil, fmt.Errorf("get steps: %w", err)
	}

	status, err := s.repo.GetCareerStatus(ctx, req.CareerTitle)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get status: %w", err)
	}

	if len(steps) == 0 && status == "" {
		return nil, domain.ErrStepsNotFound
	}

	return &domain.CareerProgress{
		CareerTitle:   req.CareerTitle,
		Qualification: req.Qualification,
		Steps:         steps,
		Status:        status,
	}, nil
}

func (s *careerService) recordRequest(op, status string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordRequest(op, status, time.Since(start))
	}
}

func (s *careerService) recordRun(status domain.CareerStatus) {
	if s.metrics != nil {
		s.metrics.RecordCareerRun(status.String())
	}
}
