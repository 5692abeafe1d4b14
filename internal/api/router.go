package api

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/careerlogy/careerlogy-ai/internal/metrics"
	"github.com/careerlogy/careerlogy-ai/internal/ratelimit"
	"github.com/careerlogy/careerlogy-ai/internal/service"
)

const APIPrefix = "/api/v1"

// Pinger - проверка БД для /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Careers service.CareerService
	Jobs    StepsEnqueuer
	Limiter *ratelimit.Limiter
	Metrics *metrics.Metrics
	// Gatherer для /metrics; nil - глобальный реестр.
	Gatherer  prometheus.Gatherer
	DB        Pinger
	Logger    *zap.Logger
	JWTSecret string
	Dev       bool
}

func NewRouter(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	h := &careerHandler{
		careers:  deps.Careers,
		jobs:     deps.Jobs,
		limiter:  deps.Limiter,
		metrics:  deps.Metrics,
		validate: newValidator(),
		logger:   deps.Logger,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	if deps.Dev {
		r.Use(devCORS())
	}
	r.Use(requestLogger(deps.Logger, deps.Metrics))

	r.Get("/health", health(deps.DB))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.HandlerFor(deps.Gatherer))
	} else {
		r.Handle("/metrics", metrics.Handler())
	}

	r.Route(APIPrefix, func(r chi.Router) {
		if deps.JWTSecret != "" {
			r.Use(authenticate([]byte(deps.JWTSecret)))
		}

		r.Post("/careers", h.findCareer)
		r.Post("/careers/steps", h.findCareerSteps)
		r.Get("/careers/steps", h.getSteps)
		r.Post("/careers/steps/jobs", h.enqueueSteps)
		r.Post("/chat", h.chat)
	})

	return r
}

// newValidator - в ошибках имена полей как в JSON.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "db unavailable"})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func retryAfter(l *ratelimit.Limiter, key string) string {
	secs := math.Ceil(time.Until(l.ResetTime(key)).Seconds())
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf("%.0f", secs)
}
