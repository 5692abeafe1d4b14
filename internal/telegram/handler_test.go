package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/careerlogy/careerlogy-ai/internal/domain"
	"github.com/careerlogy/careerlogy-ai/internal/llm"
	llmMock "github.com/careerlogy/careerlogy-ai/internal/llm/mock"
	"github.com/careerlogy/careerlogy-ai/internal/ratelimit"
	"github.com/careerlogy/careerlogy-ai/internal/repository"
	"github.com/careerlogy/careerlogy-ai/internal/service"
)

type outbox struct {
	mu   sync.Mutex
	msgs []string
}

func (o *outbox) send(chatID int64, text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, text)
	return nil
}

func (o *outbox) last() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.msgs) == 0 {
		return ""
	}
	return o.msgs[len(o.msgs)-1]
}

func (o *outbox) all() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return strings.Join(o.msgs, "\n")
}

type testEnv struct {
	bot  *Bot
	h    *Handler
	out  *outbox
	repo *repository.MockCareerRepository
	llm  *llmMock.Client
}

func newTestEnv(t *testing.T, rpm int) *testEnv {
	t.Helper()

	repo := repository.NewMockCareerRepository()
	client := llmMock.New()
	out := &outbox{}

	limiter := ratelimit.New(ratelimit.Config{RequestsPerMinute: rpm})
	t.Cleanup(limiter.Stop)

	bot := &Bot{
		api: nil,
		careers: service.NewCareerService(service.CareerServiceDeps{
			Repo:   repo,
			LLM:    client,
			Logger: zap.NewNop(),
		}),
		logger:      zap.NewNop(),
		rateLimiter: limiter,
		sendHook:    out.send,
	}
	bot.handler = NewHandler(bot)

	return &testEnv{bot: bot, h: bot.handler, out: out, repo: repo, llm: client}
}

func createTestMessage(userID int64, text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, UserName: "student"},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}
	if strings.HasPrefix(text, "/") {
		cmdLen := len(text)
		if i := strings.Index(text, " "); i > 0 {
			cmdLen = i
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}}
	}
	return msg
}

func TestHandler_Ask(t *testing.T) {
	env := newTestEnv(t, 10)
	env.llm.WithResponse("Learn <Go> & SQL").WithTokens(77)

	env.h.HandleMessage(context.Background(), createTestMessage(123, "/ask how do I start in backend?"))

	if env.llm.LastPrompt != "how do I start in backend?" {
		t.Errorf("prompt = %q", env.llm.LastPrompt)
	}
	if got := env.out.last(); got != "Learn &lt;Go&gt; &amp; SQL" {
		t.Errorf("reply = %q, want escaped answer", got)
	}
	usage, err := env.repo.GetTokenUsage(context.Background(), "123")
	if err != nil || usage.TotalTokens != 77 {
		t.Errorf("token usage = %+v, %v", usage, err)
	}
}

func TestHandler_PlainTextIsQuestion(t *testing.T) {
	env := newTestEnv(t, 10)

	env.h.HandleMessage(context.Background(), createTestMessage(5, "what does a data analyst do?"))

	if env.llm.CallCount != 1 || env.llm.LastPrompt != "what does a data analyst do?" {
		t.Errorf("LLM calls = %d, prompt = %q", env.llm.CallCount, env.llm.LastPrompt)
	}
}

func TestHandler_AskEmpty(t *testing.T) {
	env := newTestEnv(t, 10)

	env.h.HandleMessage(context.Background(), createTestMessage(5, "/ask"))

	if env.llm.CallCount != 0 {
		t.Error("LLM must not be called for empty question")
	}
	if env.out.last() != "Please type your question." {
		t.Errorf("reply = %q", env.out.last())
	}
}

func TestHandler_Careers(t *testing.T) {
	env := newTestEnv(t, 10)
	env.llm.WithResponse("1. Engineer\n2. Analyst")

	env.h.HandleMessage(context.Background(),
		createTestMessage(9, "/careers B.E. Computer Science;Openness;Agreeableness;Social;Conventional"))

	careers := env.repo.Careers()
	if len(careers) != 1 {
		t.Fatalf("careers = %d, want 1", len(careers))
	}
	if careers[0].Text != "B.E. Computer Science====1. Engineer\n2. Analyst" {
		t.Errorf("career text = %q", careers[0].Text)
	}
	if !strings.HasPrefix(env.out.last(), "Career searched") {
		t.Errorf("reply = %q", env.out.last())
	}
}

func TestHandler_CareersBadArgs(t *testing.T) {
	env := newTestEnv(t, 10)

	env.h.HandleMessage(context.Background(), createTestMessage(9, "/careers only;three;parts"))

	if env.llm.CallCount != 0 {
		t.Error("LLM must not be called")
	}
	if !strings.Contains(env.out.last(), "Wrong arguments") {
		t.Errorf("reply = %q", env.out.last())
	}
}

func TestHandler_Steps(t *testing.T) {
	env := newTestEnv(t, 10)
	responses := make([]string, domain.StepCount)
	for i := range responses {
		responses[i] = fmt.Sprintf("advice %d", i)
	}
	env.llm.WithResponses(responses...)

	env.h.HandleMessage(context.Background(), createTestMessage(9, "/steps Data Scientist ; B.Sc Statistics"))

	if env.llm.CallCount != domain.StepCount {
		t.Errorf("LLM calls = %d, want %d", env.llm.CallCount, domain.StepCount)
	}
	status, _ := env.repo.GetCareerStatus(context.Background(), "Data Scientist")
	if status != domain.StatusCompleted {
		t.Errorf("status = %q, want Completed", status)
	}

	all := env.out.all()
	if !strings.Contains(all, "advice 0") || !strings.Contains(all, "advice 8") {
		t.Errorf("roadmap reply missing steps: %q", all)
	}
}

func TestHandler_StepsFailure(t *testing.T) {
	env := newTestEnv(t, 10)
	env.llm.WithErrorOnCall(2, fmt.Errorf("%w: 503", llm.ErrRequestFailed))

	env.h.HandleMessage(context.Background(), createTestMessage(9, "/steps Nurse;B.Sc Nursing"))

	if env.out.last() != "Could not generate an answer. Please try again later." {
		t.Errorf("reply = %q", env.out.last())
	}
	status, _ := env.repo.GetCareerStatus(context.Background(), "Nurse")
	if status != domain.StatusFailed {
		t.Errorf("status = %q, want Failed", status)
	}
}

func TestHandler_AskMultibyteAtLimit(t *testing.T) {
	env := newTestEnv(t, 10)
	question := strings.Repeat("ж", domain.MaxQuestionLength)

	env.h.HandleMessage(context.Background(), createTestMessage(5, "/ask "+question))

	if env.llm.CallCount != 1 {
		t.Fatalf("LLM calls = %d, want 1 for %d-character question", env.llm.CallCount, domain.MaxQuestionLength)
	}
	if env.llm.LastPrompt != question {
		t.Error("question must reach the LLM unchanged")
	}
}

func TestHandler_StepsKeepsQualificationAsGiven(t *testing.T) {
	env := newTestEnv(t, 10)

	env.h.HandleMessage(context.Background(), createTestMessage(9, "/steps Data Scientist; B.Sc  Statistics "))

	steps, err := env.repo.GetSteps(context.Background(), "Data Scientist", "B.Sc  Statistics")
	if err != nil {
		t.Fatalf("GetSteps() error = %v", err)
	}
	if len(steps) != domain.StepCount {
		t.Errorf("steps under untouched qualification = %d, want %d", len(steps), domain.StepCount)
	}
}

func TestHandler_RateLimit(t *testing.T) {
	env := newTestEnv(t, 1)

	env.h.HandleMessage(context.Background(), createTestMessage(1, "/ask first"))
	env.h.HandleMessage(context.Background(), createTestMessage(1, "/ask second"))

	if env.llm.CallCount != 1 {
		t.Errorf("LLM calls = %d, want 1", env.llm.CallCount)
	}
	if env.out.last() != "Too many requests. Please wait a minute." {
		t.Errorf("reply = %q", env.out.last())
	}

	// другой пользователь проходит
	env.h.HandleMessage(context.Background(), createTestMessage(2, "/ask hello"))
	if env.llm.CallCount != 2 {
		t.Errorf("LLM calls = %d, want 2", env.llm.CallCount)
	}
}

func TestHandler_HelpAndUnknown(t *testing.T) {
	env := newTestEnv(t, 10)

	env.h.HandleMessage(context.Background(), createTestMessage(1, "/help"))
	if !strings.Contains(env.out.last(), "/steps") {
		t.Errorf("help = %q", env.out.last())
	}

	env.h.HandleMessage(context.Background(), createTestMessage(1, "/jobs"))
	if !strings.HasPrefix(env.out.last(), "Unknown command") {
		t.Errorf("reply = %q", env.out.last())
	}
	if env.llm.CallCount != 0 {
		t.Error("help/unknown must not call LLM")
	}
}

func TestMapErrorToMessage(t *testing.T) {
	defaultMsg := "Something went wrong. Please try again later."

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"bad args", ErrBadArgs, "Wrong arguments. Use /help for the command format."},
		{"empty question", domain.ErrEmptyQuestion, "Please type your question."},
		{"too long", domain.ErrQuestionTooLong, "Question is too long. Maximum is 4000 characters."},
		{"missing field", domain.ErrEmptyCareerTitle, "Missing value: careerTitle is required."},
		{"llm busy", fmt.Errorf("%w: 429", llm.ErrRateLimit), "The AI service is busy. Please try again in a minute."},
		{"joined", errors.Join(errors.New("status write"), llm.ErrEmptyResponse), "Could not generate an answer. Please try again later."},
		{"unknown", errors.New("pg down"), defaultMsg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapErrorToMessage(tt.err); got != tt.want {
				t.Errorf("mapErrorToMessage() = %v, want %v", got, tt.want)
			}
		})
	}
}
