// Package rest - HTTP API клиентов поверх chi.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"client_registry/internal/config"
	"client_registry/internal/dto"
	"client_registry/internal/metrics"
	"client_registry/internal/model"
	"client_registry/internal/query"
)

// ClientService - сценарии, которые вызывает HTTP-слой.
type ClientService interface {
	Create(ctx context.Context, in dto.CreateClient) (model.PublicClient, error)
	FindByID(ctx context.Context, id string) (*model.Client, error)
	FindByEmail(ctx context.Context, email string) (*model.Client, error)
	FindByCnpj(ctx context.Context, cnpj string) (*model.Client, error)
	FindByPhone(ctx context.Context, phone string) (*model.Client, error)
	FindMany(ctx context.Context, opts query.Options) (*dto.Page, error)
	Update(ctx context.Context, id string, in dto.UpdateClient) (model.PublicClient, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	service ClientService
	logger  *zap.Logger
}

// NewHandler создает обработчики HTTP для сервиса клиентов.
func NewHandler(service ClientService, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("ClientHandler")}
}

// RouterConfig - зависимости роутера. Metrics и Gatherer необязательны.
type RouterConfig struct {
	HTTP     config.HTTPConfig
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// NewRouter собирает роутер chi со всеми middleware и маршрутами.
func NewRouter(service ClientService, cfg RouterConfig) http.Handler {
	h := NewHandler(service, cfg.Logger)

	timeout := cfg.HTTP.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		RequestLogger(cfg.Logger),
		middleware.Recoverer,
		middleware.Timeout(timeout),
		SecureHeaders(cfg.Logger),
	)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/clients", func(r chi.Router) {
		if cfg.HTTP.RateLimit > 0 {
			r.Use(httprate.Limit(cfg.HTTP.RateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		}

		r.Post("/", h.Create)
		r.Get("/", h.FindMany)
		r.Get("/email/{email}", h.FindByEmail)
		r.Get("/cnpj/{cnpj}", h.FindByCnpj)
		r.Get("/phone/{phone}", h.FindByPhone)
		r.Get("/{id}", h.FindByID)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	return r
}
