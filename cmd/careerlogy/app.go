package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/careerlogy/careerlogy-ai/internal/config"
	"github.com/careerlogy/careerlogy-ai/internal/llm/provider"
	"github.com/careerlogy/careerlogy-ai/internal/metrics"
	"github.com/careerlogy/careerlogy-ai/internal/repository/postgres"
	"github.com/careerlogy/careerlogy-ai/internal/service"
)

// app - общие зависимости всех команд.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	db       *postgres.DB
	llm      *provider.Client
	careers  service.CareerService
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.New(a.registry)

	a.db, err = postgres.New(ctx, cfg.Database.URL)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	a.llm, err = provider.New(ctx, cfg.LLM, logger, a.metrics)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("create llm client: %w", err)
	}

	a.careers = service.NewCareerService(service.CareerServiceDeps{
		Repo:    postgres.NewCareerRepo(a.db),
		LLM:     a.llm,
		Logger:  logger,
		Metrics: a.metrics,
	})

	logger.Info("application initialized",
		zap.String("env", cfg.Env),
		zap.String("llm_provider", a.llm.Name),
	)
	return a, nil
}

func (a *app) close() {
	if a.llm != nil {
		if err := a.llm.Close(); err != nil {
			a.logger.Warn("close llm client", zap.Error(err))
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	_ = a.logger.Sync()
}
