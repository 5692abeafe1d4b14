package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	LLMRequestsTotal   *prometheus.CounterVec
	LLMRequestDuration *prometheus.HistogramVec

	StepsGeneratedTotal prometheus.Counter
	CareerRunsTotal     *prometheus.CounterVec
	TokensUsedTotal     prometheus.Counter

	RateLimitHitsTotal *prometheus.CounterVec
}

// New регистрирует метрики в reg. nil - глобальный DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	m := &Metrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "careerlogy_requests_total",
				Help: "Total number of workflow requests processed",
			},
			[]string{"type", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "careerlogy_request_duration_seconds",
				Help:    "Workflow request duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
			[]string{"type"},
		),
		RequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "careerlogy_requests_in_flight",
				Help: "Number of workflow requests currently being processed",
			},
		),

		LLMRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "careerlogy_llm_requests_total",
				Help: "Total number of LLM API requests",
			},
			[]string{"provider", "status"},
		),
		LLMRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "careerlogy_llm_request_duration_seconds",
				Help:    "LLM request duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),

		StepsGeneratedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "careerlogy_steps_generated_total",
				Help: "Total number of career steps generated and persisted",
			},
		),
		CareerRunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "careerlogy_career_step_runs_total",
				Help: "Career steps runs by final status",
			},
			[]string{"status"},
		),
		TokensUsedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "careerlogy_chat_tokens_total",
				Help: "Total tokens reported by chat answers",
			},
		),

		RateLimitHitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "careerlogy_rate_limit_hits_total",
				Help: "Total number of rate limit hits",
			},
			[]string{"surface"},
		),
	}

	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor отдает метрики конкретного реестра (тесты, отдельный registry).
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordRequest(reqType, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(reqType, status).Inc()
	m.RequestDuration.WithLabelValues(reqType).Observe(duration.Seconds())
}

func (m *Metrics) RecordLLMRequest(provider, status string, duration time.Duration) {
	m.LLMRequestsTotal.WithLabelValues(provider, status).Inc()
	m.LLMRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (m *Metrics) RecordStepGenerated() {
	m.StepsGeneratedTotal.Inc()
}

func (m *Metrics) RecordCareerRun(status string) {
	m.CareerRunsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordTokens(n int) {
	if n > 0 {
		m.TokensUsedTotal.Add(float64(n))
	}
}

func (m *Metrics) RecordRateLimitHit(surface string) {
	m.RateLimitHitsTotal.WithLabelValues(surface).Inc()
}

func (m *Metrics) IncRequestsInFlight() {
	m.RequestsInFlight.Inc()
}

func (m *Metrics) DecRequestsInFlight() {
	m.RequestsInFlight.Dec()
}
