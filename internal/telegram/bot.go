package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/careerlogy/careerlogy-ai/internal/metrics"
	"github.com/careerlogy/careerlogy-ai/internal/ratelimit"
	"github.com/careerlogy/careerlogy-ai/internal/service"
)

// MaxMessageLength - лимит телеграма на одно сообщение
const MaxMessageLength = 4096

type BotConfig struct {
	Token             string
	Debug             bool
	RequestsPerMinute int
}

type Bot struct {
	api         *tgbotapi.BotAPI
	careers     service.CareerService
	logger      *zap.Logger
	metrics     *metrics.Metrics
	handler     *Handler
	rateLimiter *ratelimit.Limiter
	wg          sync.WaitGroup

	// sendHook подменяет отправку в тестах
	sendHook func(chatID int64, text string) error
}

func New(cfg BotConfig, careers service.CareerService, logger *zap.Logger, m *metrics.Metrics) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	api.Debug = cfg.Debug

	bot := &Bot{
		api:         api,
		careers:     careers,
		logger:      logger,
		metrics:     m,
		rateLimiter: ratelimit.New(ratelimit.Config{RequestsPerMinute: cfg.RequestsPerMinute}),
	}
	bot.handler = NewHandler(bot)

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
	)

	return bot, nil
}

func (b *Bot) Run(ctx context.Context) error {
	defer b.rateLimiter.Stop()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("bot started, waiting for updates")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bot stopping, waiting for handlers to finish")
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			b.wg.Add(1)
			go func(upd tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	startTime := time.Now()

	defer func() {
		if r := recover(); r != nil {
			chatID := int64(0)
			if update.Message != nil && update.Message.Chat != nil {
				chatID = update.Message.Chat.ID
			}
			b.logger.Error("panic in update handler",
				zap.Any("panic", r),
				zap.Int64("chat_id", chatID),
			)
			if b.metrics != nil {
				b.metrics.RecordRequest("telegram", "panic", time.Since(startTime))
			}
		}
	}()

	b.handler.HandleMessage(ctx, update.Message)

	if b.metrics != nil {
		b.metrics.RecordRequest("telegram", "processed", time.Since(startTime))
	}
}

func (b *Bot) Send(chatID int64, text string) error {
	if b.sendHook != nil {
		return b.sendHook(chatID, text)
	}
	if b.api == nil {
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := b.api.Send(msg)
	return err
}

// SendLong режет текст по лимиту телеграма и шлет частями.
func (b *Bot) SendLong(chatID int64, text string) {
	for _, part := range SplitMessage(text, MaxMessageLength) {
		if err := b.Send(chatID, part); err != nil {
			b.logger.Error("failed to send message", zap.Error(err), zap.Int64("chat_id", chatID))
			return
		}
	}
}

func (b *Bot) SendTyping(chatID int64) {
	if b.api == nil {
		return
	}
	b.api.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
}

func (b *Bot) RecordRateLimitHit() {
	if b.metrics != nil {
		b.metrics.RecordRateLimitHit("telegram")
	}
}
