package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/xela07ax/brandpulse/internal/api/handler"
	"github.com/xela07ax/brandpulse/internal/api/server"
	"github.com/xela07ax/brandpulse/internal/api/service"
	"github.com/xela07ax/brandpulse/internal/completion"
	"github.com/xela07ax/brandpulse/internal/infra"
	"github.com/xela07ax/brandpulse/internal/infra/auth"
	"github.com/xela07ax/brandpulse/internal/journal"
	"github.com/xela07ax/brandpulse/internal/repository/postgres"
	"github.com/xela07ax/brandpulse/internal/urlmeta"
	"github.com/xela07ax/brandpulse/internal/usage"
)

func main() {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	// Контекст приложения: от него наследуются пайплайны аудитов,
	// чтобы уход HTTP-клиента не бросал отчеты в processing
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Инфраструктура и ресурсы
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if cfg.Database.URL == "" {
		logger.Fatal("database.url (or DATABASE_URL env) is required")
	}
	pool, err := postgres.Connect(appCtx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	reportRepo := postgres.NewReportRepo(pool)
	defer reportRepo.Close()

	// Проверяем соединение с таймаутом
	pingCtx, pingCancel := context.WithTimeout(appCtx, 5*time.Second)
	if err := reportRepo.Ping(pingCtx); err != nil {
		logger.Fatal("Database unreachable", zap.Error(err))
	}
	pingCancel()

	// 3. Инициализация слоев (Dependency Injection)
	reg := prometheus.NewRegistry()
	metrics := service.NewMetrics(reg)

	resolver := urlmeta.NewResolver(cfg.Screenshot.APIKey, logger)

	ledger := usage.NewRedisLedger(rdb, usage.PlanLimits{
		Free: cfg.Limits.Free,
		Pro:  cfg.Limits.Pro,
		Team: cfg.Limits.Team,
	}, logger)

	completer := completion.NewClient(completion.Options{
		BaseURL:     cfg.Completion.BaseURL,
		APIKey:      cfg.Completion.APIKey,
		Model:       cfg.Completion.Model,
		Temperature: cfg.Completion.Temperature,
		MaxTokens:   cfg.Completion.MaxTokens,
		Timeout:     cfg.Completion.Timeout,
	}, logger)
	// Оборачиваем в Guard (Circuit Breaker + Rate Limiter)
	guard := completion.NewGuard(completer, completion.GuardSettings{
		CBMaxRequests: cfg.Completion.CBMaxRequests,
		CBInterval:    cfg.Completion.CBInterval,
		CBTimeout:     cfg.Completion.CBTimeout,
		RateLimit:     cfg.Completion.RateLimit,
		RateBurst:     cfg.Completion.RateBurst,
	})

	// Состояние предохранителя в Prometheus
	go func() {
		t := time.NewTicker(15 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-appCtx.Done():
				return
			case <-t.C:
				if guard.State() == gobreaker.StateOpen {
					metrics.BreakerState.Set(1)
				} else {
					metrics.BreakerState.Set(0)
				}
			}
		}
	}()

	// Журнал пайплайна: неблокирующий, пишет батчами в Postgres
	eventJournal := journal.New(postgres.NewEventRepo(pool), logger)
	eventJournal.Start()

	auditService := service.NewAuditService(appCtx, resolver, guard, reportRepo, ledger, eventJournal, metrics, logger)
	auditHandler := handler.NewAuditHandler(auditService, logger)

	validator := auth.NewHSValidator(cfg.Auth.JWTSecret, cfg.Auth.SuperuserEmails)

	apiServer := server.NewAPIServer(cfg, logger, validator, auditHandler, reg)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      apiServer,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 4. Запуск и Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("BrandPulse API started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-stop // Ждем сигнал
	logger.Info("BrandPulse API stopping...")

	// Даем 10 секунд на завершение HTTP-запросов
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	// Дрен асинхронных пайплайнов: учтенные горутины доводят отчеты
	// до completed/failed, только потом гасим appCtx и журнал
	auditService.Stop()
	eventJournal.Stop()
	cancel()

	logger.Info("BrandPulse API exited properly")
}
