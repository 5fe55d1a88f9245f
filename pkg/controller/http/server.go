package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/themepreview/pkg/domain/interfaces"
)

const (
	defaultAddr = "localhost:8080"

	// GitHub caps webhook payloads at 25MB
	defaultMaxBodySize = 25 << 20
)

type config struct {
	addr          string
	webhookSecret string
	maxBodySize   int64
	inFlight      func() int64
	metrics       http.Handler
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithWebhookSecret sets the secret webhook signatures are verified with
func WithWebhookSecret(secret string) Option {
	return func(c *config) {
		c.webhookSecret = secret
	}
}

// WithMaxBodySize limits the accepted webhook payload size
func WithMaxBodySize(n int64) Option {
	return func(c *config) {
		c.maxBodySize = n
	}
}

// WithInFlight reports the number of running preview refreshes in the health response
func WithInFlight(fn func() int64) Option {
	return func(c *config) {
		c.inFlight = fn
	}
}

// WithMetrics exposes h at /metrics
func WithMetrics(h http.Handler) Option {
	return func(c *config) {
		c.metrics = h
	}
}

// Server is the webhook receiver of the GitHub App
type Server struct {
	*http.Server
}

// NewServer creates the HTTP server. The logger in ctx is the base of request loggers.
func NewServer(ctx context.Context, webhookUC interfaces.WebhookUseCase, opts ...Option) (*Server, error) {
	cfg := &config{
		addr:        defaultAddr,
		maxBodySize: defaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(ctxlog.From(ctx)))
	router.Use(middleware.Recoverer)

	router.Get("/health", healthHandler(cfg.inFlight))
	if cfg.metrics != nil {
		router.Method(http.MethodGet, "/metrics", cfg.metrics)
	}

	webhook := NewWebhookHandler(cfg.webhookSecret, webhookUC)
	router.Route("/hooks/github", func(r chi.Router) {
		r.Use(middleware.RequestSize(cfg.maxBodySize))
		r.Post("/app", webhook.Handle)
	})

	return &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
	}, nil
}
