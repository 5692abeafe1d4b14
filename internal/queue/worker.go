package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/careerlogy/careerlogy-ai/internal/domain"
	"github.com/careerlogy/careerlogy-ai/internal/service"
)

var ErrBadJob = errors.New("malformed steps job")

type Worker struct {
	careers service.CareerService
	logger  *zap.Logger
}

func NewWorker(careers service.CareerService, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{careers: careers, logger: logger}
}

// Handle декодирует задачу и прогоняет генерацию шагов.
// Статус Failed к этому моменту уже записан сервисом.
func (w *Worker) Handle(ctx context.Context, body []byte) (*domain.Result, error) {
	var job StepsJob
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadJob, err)
	}

	w.logger.Info("steps job started",
		zap.String("job_id", job.ID),
		zap.String("user_id", job.UserID),
		zap.String("career_title", job.CareerTitle),
	)

	res, err := w.careers.FindCareerSteps(ctx, job.Request())
	if err != nil {
		w.logger.Error("steps job failed",
			zap.Error(err),
			zap.String("job_id", job.ID),
			zap.String("user_id", job.UserID),
			zap.String("career_title", job.CareerTitle),
		)
		return nil, err
	}

	w.logger.Info("steps job completed", zap.String("job_id", job.ID))
	return res, nil
}

// Run обрабатывает доставки до отмены ctx или закрытия канала.
// Успех - ack, ошибка - nack без requeue: статус Failed уже записан.
// Задача, прерванная остановкой воркера, возвращается в очередь.
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			if _, err := w.Handle(ctx, d.Body); err != nil {
				requeue := ctx.Err() != nil || errors.Is(err, context.Canceled)
				if nackErr := d.Nack(false, requeue); nackErr != nil {
					w.logger.Warn("nack failed", zap.Error(nackErr))
				}
				continue
			}
			if ackErr := d.Ack(false); ackErr != nil {
				w.logger.Warn("ack failed", zap.Error(ackErr))
			}
		}
	}
}
