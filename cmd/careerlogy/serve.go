package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/careerlogy/careerlogy-ai/internal/api"
	"github.com/careerlogy/careerlogy-ai/internal/queue"
	"github.com/careerlogy/careerlogy-ai/internal/ratelimit"
	"github.com/careerlogy/careerlogy-ai/internal/telegram"
)

const shutdownTimeout = 10 * time.Second

var withWorker bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (and the bot / queue worker when configured)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&withWorker, "with-worker", true, "consume steps jobs in-process when AMQP_URL is set")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	limiter := ratelimit.New(ratelimit.Config{RequestsPerMinute: a.cfg.RateLimit.RequestsPerMinute})
	defer limiter.Stop()

	deps := api.Deps{
		Careers:   a.careers,
		Limiter:   limiter,
		Metrics:   a.metrics,
		Gatherer:  a.registry,
		DB:        a.db,
		Logger:    a.logger,
		JWTSecret: a.cfg.Auth.JWTSecret,
		Dev:       a.cfg.IsDev(),
	}

	var broker *queue.Broker
	if a.cfg.Queue.Enabled() {
		broker, err = queue.NewBroker(a.cfg.Queue.URL, a.logger)
		if err != nil {
			return fmt.Errorf("connect broker: %w", err)
		}
		defer broker.Close()
		deps.Jobs = queue.NewProducer(broker)
	}

	g, ctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		a.logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down http server")
		return srv.Shutdown(shutCtx)
	})

	if broker != nil && withWorker {
		deliveries, err := broker.Subscribe(queue.StepsQueue, queue.RoutingKeyStepsRequested)
		if err != nil {
			return fmt.Errorf("subscribe: %w", err)
		}
		worker := queue.NewWorker(a.careers, a.logger)
		g.Go(func() error {
			return worker.Run(ctx, deliveries)
		})
	}

	if a.cfg.Telegram.Enabled() {
		bot, err := telegram.New(telegram.BotConfig{
			Token:             a.cfg.Telegram.Token,
			Debug:             a.cfg.IsDev(),
			RequestsPerMinute: a.cfg.RateLimit.RequestsPerMinute,
		}, a.careers, a.logger, a.metrics)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.logger.Error("serve stopped with error", zap.Error(err))
		return err
	}
	a.logger.Info("serve stopped")
	return nil
}
