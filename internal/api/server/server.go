package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xela07ax/brandpulse/internal/api/handler"
	"github.com/xela07ax/brandpulse/internal/infra"
	"github.com/xela07ax/brandpulse/internal/infra/auth"
	"go.uber.org/zap"
)

type APIServer struct {
	router *chi.Mux
	logger *zap.Logger
	cfg    *infra.Config

	// Резолвер опциональной идентичности (анонимы проходят)
	identityResolver auth.IdentityResolver

	auditHandler *handler.AuditHandler // /audit, /v1/audits
	metricsReg   *prometheus.Registry  // /metrics
}

// NewAPIServer инициализирует HTTP-сервер платформы со всеми зависимостями
func NewAPIServer(
	cfg *infra.Config,
	logger *zap.Logger,
	resolver auth.IdentityResolver,
	auditH *handler.AuditHandler,
	metricsReg *prometheus.Registry,
) *APIServer {
	s := &APIServer{
		router:           chi.NewRouter(),
		logger:           logger.Named("api"),
		cfg:              cfg,
		identityResolver: resolver,
		auditHandler:     auditH,
		metricsReg:       metricsReg,
	}

	s.routes()
	return s
}

func (s *APIServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS максимально открытый: дашборд ходит с любых origin,
	// preflight OPTIONS обрабатывается здесь же
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Client-Info"},
		MaxAge:         300,
	}))

	// Идентичность опциональна: без токена — анонимный sentinel.
	// 401 только на синтаксически сломанный Authorization.
	r.Use(auth.NewMiddleware(s.identityResolver, s.logger))

	// Healthcheck для мониторинга
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if s.metricsReg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metricsReg, promhttp.HandlerOpts{}))
	}

	// Легаси-путь serverless-обработчика и полноценный REST-ресурс
	r.Post("/audit", s.auditHandler.Create)
	r.Mount("/v1/audits", s.auditHandler.Routes())
}

// ServeHTTP позволяет использовать APIServer как стандартный http.Handler
func (s *APIServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
