package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/careerlogy/careerlogy-ai/internal/domain"
	"github.com/careerlogy/careerlogy-ai/internal/llm"
	"github.com/careerlogy/careerlogy-ai/internal/prompt"
)

const helpText = `<b>Careerlogy commands:</b>

/ask question - Ask anything about careers
/careers qualification;trait1;trait2;interest1;interest2 - Find career options
/steps career title;qualification - Build a 9-step roadmap
/help - Show this help

<b>Examples:</b>
/careers B.E. Computer Science;Openness;Agreeableness;Social;Conventional
/steps Data Scientist;B.E. Computer Science`

type Handler struct {
	bot     *Bot
	catalog *prompt.Catalog
}

func NewHandler(bot *Bot) *Handler {
	return &Handler{bot: bot, catalog: prompt.MustDefault()}
}

func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}

	h.bot.logger.Info("received message",
		zap.Int64("user_id", msg.From.ID),
		zap.String("username", msg.From.UserName),
		zap.Bool("is_command", msg.IsCommand()),
	)

	if !msg.IsCommand() {
		// обычный текст считаем вопросом
		h.handleAsk(ctx, msg, msg.Text)
		return
	}

	switch msg.Command() {
	case "start", "help":
		h.bot.Send(msg.Chat.ID, helpText)
	case "ask":
		h.handleAsk(ctx, msg, msg.CommandArguments())
	case "careers":
		h.handleCareers(ctx, msg)
	case "steps":
		h.handleSteps(ctx, msg)
	default:
		h.bot.Send(msg.Chat.ID, "Unknown command. Use /help to see what I can do.")
	}
}

func userID(msg *tgbotapi.Message) string {
	return strconv.FormatInt(msg.From.ID, 10)
}

// allow - общий лимит на все команды, которые ходят в LLM.
func (h *Handler) allow(msg *tgbotapi.Message) bool {
	uid := userID(msg)
	if h.bot.rateLimiter.Allow(uid) {
		return true
	}

	h.bot.logger.Warn("rate limit exceeded",
		zap.String("user_id", uid),
		zap.Time("reset_at", h.bot.rateLimiter.ResetTime(uid)),
	)
	h.bot.RecordRateLimitHit()
	h.bot.Send(msg.Chat.ID, "Too many requests. Please wait a minute.")
	return false
}

func (h *Handler) handleAsk(ctx context.Context, msg *tgbotapi.Message, question string) {
	if !h.allow(msg) {
		return
	}

	h.bot.SendTyping(msg.Chat.ID)

	res, err := h.bot.careers.ChatAnswer(ctx, &domain.ChatAnswerRequest{
		UserID:   userID(msg),
		Question: question,
	})
	if err != nil {
		h.bot.logger.Error("chat answer failed", zap.Error(err), zap.String("user_id", userID(msg)))
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.SendLong(msg.Chat.ID, FormatAnswer(res))
}

func (h *Handler) handleCareers(ctx context.Context, msg *tgbotapi.Message) {
	profile, err := ParseCareersArgs(msg.CommandArguments())
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}
	if !h.allow(msg) {
		return
	}

	h.bot.SendTyping(msg.Chat.ID)

	res, err := h.bot.careers.FindCareer(ctx, &domain.FindCareerRequest{
		UserID:     userID(msg),
		CareerData: profile,
	})
	if err != nil {
		h.bot.logger.Error("find career failed", zap.Error(err), zap.String("user_id", userID(msg)))
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.Send(msg.Chat.ID, res.Message+". Pick a career and use /steps to build your roadmap.")
}

func (h *Handler) handleSteps(ctx context.Context, msg *tgbotapi.Message) {
	title, qualification, err := ParseStepsArgs(msg.CommandArguments())
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}
	if !h.allow(msg) {
		return
	}

	h.bot.Send(msg.Chat.ID, "Building your 9-step roadmap, this takes a while...")
	h.bot.SendTyping(msg.Chat.ID)

	_, err = h.bot.careers.FindCareerSteps(ctx, &domain.FindCareerStepsRequest{
		UserID:        userID(msg),
		CareerTitle:   title,
		Qualification: qualification,
	})
	if err != nil {
		h.bot.logger.Error("find career steps failed",
			zap.Error(err),
			zap.String("user_id", userID(msg)),
			zap.String("career_title", title),
		)
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	progress, err := h.bot.careers.GetCareerSteps(ctx, title, qualification)
	if err != nil {
		h.bot.logger.Error("read career steps failed", zap.Error(err))
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.SendLong(msg.Chat.ID, FormatProgress(progress, h.catalog))
}

func mapErrorToMessage(err error) string {
	switch {
	case errors.Is(err, ErrBadArgs):
		return "Wrong arguments. Use /help for the command format."
	case errors.Is(err, domain.ErrEmptyQuestion):
		return "Please type your question."
	case errors.Is(err, domain.ErrQuestionTooLong):
		return fmt.Sprintf("Question is too long. Maximum is %d characters.", domain.MaxQuestionLength)
	case errors.Is(err, domain.ErrEmptyQualification),
		errors.Is(err, domain.ErrEmptyPersonalityTrait1),
		errors.Is(err, domain.ErrEmptyPersonalityTrait2),
		errors.Is(err, domain.ErrEmptyCareerInterest1),
		errors.Is(err, domain.ErrEmptyCareerInterest2),
		errors.Is(err, domain.ErrEmptyCareerTitle):
		return "Missing value: " + err.Error() + "."
	case errors.Is(err, domain.ErrStepsNotFound):
		return "No roadmap found for this career yet."
	case errors.Is(err, llm.ErrRateLimit):
		return "The AI service is busy. Please try again in a minute."
	case errors.Is(err, llm.ErrAuthFailed),
		errors.Is(err, llm.ErrRequestFailed),
		errors.Is(err, llm.ErrEmptyResponse):
		return "Could not generate an answer. Please try again later."
	default:
		return "Something went wrong. Please try again later."
	}
}
