package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careerlogy/careerlogy-ai/internal/domain"
)

const (
	RoutingKeyStepsRequested = "career.steps.requested"
	StepsQueue               = "careerlogy.steps"
)

type StepsJob struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	CareerTitle   string    `json:"careerTitle"`
	Qualification string    `json:"qualification"`
	EnqueuedAt    time.Time `json:"enqueuedAt"`
}

func (j *StepsJob) Request() *domain.FindCareerStepsRequest {
	return &domain.FindCareerStepsRequest{
		UserID:        j.UserID,
		CareerTitle:   j.CareerTitle,
		Qualification: j.Qualification,
	}
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// Producer ставит задачи генерации шагов в очередь.
type Producer struct {
	pub Publisher
	now func() time.Time
}

func NewProducer(pub Publisher) *Producer {
	return &Producer{pub: pub, now: time.Now}
}

// EnqueueSteps валидирует запрос до публикации, чтобы не гонять заведомо битые задачи.
func (p *Producer) EnqueueSteps(ctx context.Context, req *domain.FindCareerStepsRequest) (*StepsJob, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Sanitize()

	job := &StepsJob{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		CareerTitle:   req.CareerTitle,
		Qualification: req.Qualification,
		EnqueuedAt:    p.now().UTC(),
	}

	body, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal steps job: %w", err)
	}

	if err := p.pub.Publish(ctx, RoutingKeyStepsRequested, body); err != nil {
		return nil, fmt.Errorf("publish steps job: %w", err)
	}
	return job, nil
}
