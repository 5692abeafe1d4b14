package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/careerlogy/careerlogy-ai/internal/queue"
)

var errQueueDisabled = errors.New("AMQP_URL is not set")

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume steps jobs from RabbitMQ",
	Args:  cobra.NoArgs,
	RunE:  runWorker,
}

func runWorker(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if !a.cfg.Queue.Enabled() {
		return errQueueDisabled
	}

	broker, err := queue.NewBroker(a.cfg.Queue.URL, a.logger)
	if err != nil {
		return fmt.Errorf("connect broker: %w", err)
	}
	defer broker.Close()

	deliveries, err := broker.Subscribe(queue.StepsQueue, queue.RoutingKeyStepsRequested)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	a.logger.Info("worker started", zap.String("queue", queue.StepsQueue))
	return queue.NewWorker(a.careers, a.logger).Run(ctx, deliveries)
}
