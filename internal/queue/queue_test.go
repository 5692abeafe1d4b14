package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/careerlogy/careerlogy-ai/internal/domain"
	"github.com/careerlogy/careerlogy-ai/internal/llm"
	llmMock "github.com/careerlogy/careerlogy-ai/internal/llm/mock"
	"github.com/careerlogy/careerlogy-ai/internal/repository"
	"github.com/careerlogy/careerlogy-ai/internal/service"
)

type fakePublisher struct {
	routingKey string
	body       []byte
	err        error
}

func (p *fakePublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	p.routingKey = routingKey
	p.body = body
	return p.err
}

type fakeAck struct {
	mu       sync.Mutex
	acked    []uint64
	nacked   []uint64
	requeued []uint64
}

func (a *fakeAck) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *fakeAck) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if requeue {
		a.requeued = append(a.requeued, tag)
		return nil
	}
	a.nacked = append(a.nacked, tag)
	return nil
}

func (a *fakeAck) Reject(tag uint64, requeue bool) error { return nil }

func TestProducer_EnqueueSteps(t *testing.T) {
	pub := &fakePublisher{}
	p := NewProducer(pub)
	p.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	job, err := p.EnqueueSteps(context.Background(), &domain.FindCareerStepsRequest{
		UserID: "u1", CareerTitle: " Doctor ", Qualification: "MBBS",
	})
	if err != nil {
		t.Fatalf("EnqueueSteps() error = %v", err)
	}
	if job.ID == "" {
		t.Error("job ID should be generated")
	}
	if pub.routingKey != RoutingKeyStepsRequested {
		t.Errorf("routing key = %q", pub.routingKey)
	}

	var decoded StepsJob
	if err := json.Unmarshal(pub.body, &decoded); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if decoded.CareerTitle != "Doctor" || decoded.ID != job.ID || !decoded.EnqueuedAt.Equal(p.now()) {
		t.Errorf("published job = %+v", decoded)
	}
}

func TestProducer_EnqueueSteps_Errors(t *testing.T) {
	pubErr := errors.New("channel closed")

	tests := []struct {
		name    string
		req     *domain.FindCareerStepsRequest
		pubErr  error
		wantErr error
	}{
		{"invalid request", &domain.FindCareerStepsRequest{UserID: "u"}, nil, domain.ErrEmptyCareerTitle},
		{"publish fails", &domain.FindCareerStepsRequest{UserID: "u", CareerTitle: "a", Qualification: "b"}, pubErr, pubErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{err: tt.pubErr}
			_, err := NewProducer(pub).EnqueueSteps(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func newWorker(client llm.Client) (*Worker, *repository.MockCareerRepository) {
	repo := repository.NewMockCareerRepository()
	svc := service.NewCareerService(service.CareerServiceDeps{
		Repo:   repo,
		LLM:    client,
		Logger: zap.NewNop(),
	})
	return NewWorker(svc, zap.NewNop()), repo
}

func jobBody(t *testing.T, title string) []byte {
	t.Helper()
	body, err := json.Marshal(StepsJob{ID: "job-1", UserID: "u", CareerTitle: title, Qualification: "B.Com"})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func TestWorker_Handle(t *testing.T) {
	w, repo := newWorker(llmMock.New())

	res, err := w.Handle(context.Background(), jobBody(t, "Auditor"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if res.Message != domain.MessageCareerSearched {
		t.Errorf("message = %q", res.Message)
	}
	if status, _ := repo.GetCareerStatus(context.Background(), "Auditor"); status != domain.StatusCompleted {
		t.Errorf("status = %q, want Completed", status)
	}
}

func TestWorker_Handle_BadJob(t *testing.T) {
	w, _ := newWorker(llmMock.New())

	if _, err := w.Handle(context.Background(), []byte("{not json")); !errors.Is(err, ErrBadJob) {
		t.Errorf("error = %v, want ErrBadJob", err)
	}
}

func TestWorker_Run_AckAndNack(t *testing.T) {
	client := llmMock.New().WithErrorOnCall(domain.StepCount+1, errors.New("llm down"))
	w, repo := newWorker(client)
	ack := &fakeAck{}

	deliveries := make(chan amqp.Delivery, 3)
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: jobBody(t, "Banker")}
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: jobBody(t, "Trader")}
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 3, Body: []byte("garbage")}
	close(deliveries)

	if err := w.Run(context.Background(), deliveries); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(ack.acked) != 1 || ack.acked[0] != 1 {
		t.Errorf("acked = %v, want [1]", ack.acked)
	}
	if len(ack.nacked) != 2 || ack.nacked[0] != 2 || ack.nacked[1] != 3 {
		t.Errorf("nacked = %v, want [2 3]", ack.nacked)
	}
	if status, _ := repo.GetCareerStatus(context.Background(), "Trader"); status != domain.StatusFailed {
		t.Errorf("Trader status = %q, want Failed", status)
	}
	if len(ack.requeued) != 0 {
		t.Errorf("requeued = %v, want none", ack.requeued)
	}
}

// stopAfterFirstCall останавливает воркер посреди задачи.
type stopAfterFirstCall struct {
	*llmMock.Client
	stop context.CancelFunc
}

func (c *stopAfterFirstCall) Complete(ctx context.Context, prompt string) (*llm.Completion, error) {
	res, err := c.Client.Complete(ctx, prompt)
	c.stop()
	return res, err
}

func TestWorker_Run_RequeuesOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, repo := newWorker(&stopAfterFirstCall{Client: llmMock.New(), stop: cancel})
	ack := &fakeAck{}

	deliveries := make(chan amqp.Delivery, 1)
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 7, Body: jobBody(t, "Surgeon")}

	if err := w.Run(ctx, deliveries); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(ack.requeued) != 1 || ack.requeued[0] != 7 {
		t.Errorf("requeued = %v, want [7]", ack.requeued)
	}
	if len(ack.acked) != 0 || len(ack.nacked) != 0 {
		t.Errorf("acked = %v, nacked = %v, want none", ack.acked, ack.nacked)
	}
	if status, _ := repo.GetCareerStatus(context.Background(), "Surgeon"); status != domain.StatusFailed {
		t.Errorf("status = %q, want Failed", status)
	}
}

func TestWorker_Run_StopsOnCancel(t *testing.T) {
	w, _ := newWorker(llmMock.New())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, make(chan amqp.Delivery)) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not stop after cancel")
	}
}
