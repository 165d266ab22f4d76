package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/google/uuid"
	"github.com/xela07ax/brandpulse/internal/completion"
	"github.com/xela07ax/brandpulse/internal/domain"
	"github.com/xela07ax/brandpulse/internal/extract"
	"github.com/xela07ax/brandpulse/internal/journal"
	"github.com/xela07ax/brandpulse/internal/normalize"
	"github.com/xela07ax/brandpulse/internal/prompt"
	"github.com/xela07ax/brandpulse/internal/urlmeta"
	"github.com/xela07ax/brandpulse/internal/usage"
	"go.uber.org/zap"
)

const (
	// completionAttempts = 1 вызов + 2 ретрая на транзиентные сбои апстрима
	completionAttempts = 3

	// pipelineTimeout ограничивает «осиротевший» пайплайн: клиент мог уйти,
	// но отчет все равно доводится до completed/failed за конечное время
	pipelineTimeout = 3 * time.Minute

	// discoverTimeout — бюджет best-effort скрейпа соцссылок
	discoverTimeout = 8 * time.Second

	// persistTimeout — бюджет записи терминального статуса. Отдельный от
	// бюджета пайплайна: истекший pipelineTimeout не должен мешать
	// зафиксировать исход
	persistTimeout = 10 * time.Second
)

// ReportStore — контракт хранилища отчетов (Postgres в проде, фейк в тестах).
type ReportStore interface {
	Create(ctx context.Context, report *domain.AuditReport) (*domain.AuditReport, error)
	GetByID(ctx context.Context, id string) (*domain.AuditReport, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.AuditReport, error)
	Update(ctx context.Context, id string, patch domain.ReportPatch) error
	Delete(ctx context.Context, id, ownerID string) error
}

// AuditService — оркестратор пайплайна:
// resolver -> prompt -> completion -> extract -> normalize -> store.
// Этапы строго последовательны, fan-out/fan-in нет. Единственный
// долгий suspension point — сетевой вызов completion.
type AuditService struct {
	resolver  *urlmeta.Resolver
	completer completion.Completer
	store     ReportStore
	ledger    usage.Ledger
	journal   journal.Recorder // nil допустим: журнал — обогащение, не зависимость
	metrics   *Metrics
	logger    *zap.Logger

	// baseCtx — контекст приложения: пайплайны отвязаны от request context,
	// чтобы уход клиента не бросал отчеты в processing навсегда
	baseCtx context.Context
	wg      sync.WaitGroup
}

func NewAuditService(
	baseCtx context.Context,
	resolver *urlmeta.Resolver,
	completer completion.Completer,
	store ReportStore,
	ledger usage.Ledger,
	jrn journal.Recorder,
	metrics *Metrics,
	logger *zap.Logger,
) *AuditService {
	return &AuditService{
		resolver:  resolver,
		completer: completer,
		store:     store,
		ledger:    ledger,
		journal:   jrn,
		metrics:   metrics,
		logger:    logger.Named("audit"),
		baseCtx:   baseCtx,
	}
}

func (s *AuditService) record(event journal.Event) {
	if s.journal == nil {
		return
	}
	event.ID = uuid.New().String()
	s.journal.Log(event)
}

// Stop дожидается in-flight асинхронных пайплайнов (drain при shutdown).
func (s *AuditService) Stop() {
	s.wg.Wait()
}

// Run выполняет аудит синхронно и возвращает готовый отчет.
func (s *AuditService) Run(ctx context.Context, req domain.AuditRequest, ident domain.Identity) (*domain.AuditReport, error) {
	report, meta, err := s.accept(ctx, req, ident)
	if err != nil {
		return nil, err
	}

	pctx, cancel := context.WithTimeout(s.baseCtx, pipelineTimeout)
	defer cancel()

	if err := s.finish(pctx, report, meta, req.AdditionalInfo, ident); err != nil {
		return nil, err
	}

	// Чтение готовой строки не зависит от остатка бюджета пайплайна
	rctx, rcancel := context.WithTimeout(context.Background(), persistTimeout)
	defer rcancel()
	return s.store.GetByID(rctx, report.ID)
}

// RunAsync принимает запрос, создает отчет в processing и доводит пайплайн
// в отслеживаемой горутине. Клиент поллит статус по ID. Никаких голых
// таймеров: горутина учитывается в WaitGroup и дренится при остановке.
func (s *AuditService) RunAsync(ctx context.Context, req domain.AuditRequest, ident domain.Identity) (*domain.AuditReport, error) {
	report, meta, err := s.accept(ctx, req, ident)
	if err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		pctx, cancel := context.WithTimeout(s.baseCtx, pipelineTimeout)
		defer cancel()

		if err := s.finish(pctx, report, meta, req.AdditionalInfo, ident); err != nil {
			s.logger.Error("async audit failed",
				zap.String("report_id", report.ID),
				zap.Error(err),
			)
		}
	}()

	return report, nil
}

// Get возвращает отчет по его opaque ID.
func (s *AuditService) Get(ctx context.Context, id string) (*domain.AuditReport, error) {
	return s.store.GetByID(ctx, id)
}

// List возвращает отчеты владельца, новые сверху.
func (s *AuditService) List(ctx context.Context, ident domain.Identity) ([]domain.AuditReport, error) {
	return s.store.ListByOwner(ctx, ident.UserID)
}

// Delete удаляет отчет, только если он принадлежит вызывающему.
func (s *AuditService) Delete(ctx context.Context, id string, ident domain.Identity) error {
	return s.store.Delete(ctx, id, ident.UserID)
}

// accept — быстрая фаза: валидация, квота, строка в processing.
func (s *AuditService) accept(ctx context.Context, req domain.AuditRequest, ident domain.Identity) (*domain.AuditReport, *urlmeta.Metadata, error) {
	meta, err := s.resolver.Resolve(req.URL)
	if err != nil {
		return nil, nil, err
	}

	// Атомарный резерв квоты; при сбое пайплайна finish вернет резерв
	if err := s.ledger.Allow(ctx, ident); err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) {
			s.metrics.QuotaDeniedTotal.Inc()
		}
		return nil, nil, err
	}

	report, err := s.store.Create(ctx, &domain.AuditReport{
		UserID:           ident.UserID,
		Title:            "Brand Audit: " + meta.Domain,
		URL:              meta.NormalizedURL,
		ScreenshotURL:    meta.ScreenshotURL,
		ScoreBreakdown:   map[string]int{},
		DetailedAnalysis: map[string]interface{}{},
		Status:           domain.StatusProcessing,
	})
	if err != nil {
		return nil, nil, err
	}

	s.record(journal.Event{
		ReportID: report.ID,
		UserID:   ident.UserID,
		Domain:   meta.Domain,
		Action:   journal.ActionAccepted,
		Payload:  map[string]interface{}{"plan": string(ident.Plan)},
	})
	return report, meta, nil
}

// finish — медленная фаза: completion, разбор, нормализация, персист.
// Ровно одна мутация строки: completed с полной нагрузкой либо failed
// с кратким описанием сбоя.
func (s *AuditService) finish(ctx context.Context, report *domain.AuditReport, meta *urlmeta.Metadata, additionalInfo string, ident domain.Identity) error {
	traceID := uuid.New().String()
	log := s.logger.With(
		zap.String("trace_id", traceID),
		zap.String("report_id", report.ID),
		zap.String("domain", meta.Domain),
	)
	start := time.Now()

	res, err := s.analyze(ctx, meta, additionalInfo, log)

	// Терминальный статус пишется свежим контекстом: ctx пайплайна к этому
	// моменту мог истечь — и чаще всего именно его смерть и есть причина
	// сбоя. Строка не имеет права остаться в processing.
	uctx, ucancel := context.WithTimeout(context.Background(), persistTimeout)
	defer ucancel()

	if err != nil {
		s.metrics.AuditsTotal.WithLabelValues("failed").Inc()
		s.metrics.AuditDuration.WithLabelValues("failed").Observe(time.Since(start).Seconds())

		if uerr := s.store.Update(uctx, report.ID, domain.ReportPatch{
			ScoreBreakdown:   map[string]int{},
			DetailedAnalysis: map[string]interface{}{},
			Status:           domain.StatusFailed,
			Error:            "audit generation failed",
		}); uerr != nil {
			log.Error("failed to persist failed status", zap.Error(uerr))
		}
		// Возвращаем резерв квоты: неудачный аудит не тратит лимит
		if rerr := s.ledger.Release(uctx, ident); rerr != nil {
			log.Warn("failed to release usage reservation", zap.Error(rerr))
		}
		s.record(journal.Event{
			TraceID:    traceID,
			ReportID:   report.ID,
			UserID:     ident.UserID,
			Domain:     meta.Domain,
			Action:     journal.ActionFailed,
			DurationMs: time.Since(start).Milliseconds(),
			Error:      err.Error(),
		})
		return err
	}

	if err := s.store.Update(uctx, report.ID, domain.ReportPatch{
		Score:            res.Score,
		ScoreBreakdown:   res.ScoreBreakdown,
		Summary:          res.Summary,
		DetailedAnalysis: res.DetailedAnalysis,
		ScreenshotURL:    meta.ScreenshotURL,
		Status:           domain.StatusCompleted,
	}); err != nil {
		return err
	}

	s.metrics.AuditsTotal.WithLabelValues("completed").Inc()
	s.metrics.AuditDuration.WithLabelValues("completed").Observe(time.Since(start).Seconds())
	s.record(journal.Event{
		TraceID:    traceID,
		ReportID:   report.ID,
		UserID:     ident.UserID,
		Domain:     meta.Domain,
		Action:     journal.ActionCompleted,
		Payload:    map[string]interface{}{"score": res.Score},
		DurationMs: time.Since(start).Milliseconds(),
	})
	log.Info("audit completed",
		zap.Int("score", res.Score),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// analyze гоняет completion с ограниченным ретраем и собирает
// нормализованный результат. Непарсибельный ответ — деградация, не сбой:
// пользователь всегда получает какой-то отчет.
func (s *AuditService) analyze(ctx context.Context, meta *urlmeta.Metadata, additionalInfo string, log *zap.Logger) (normalize.Result, error) {
	systemPrompt := prompt.Build(meta.NormalizedURL, additionalInfo)
	userPrompt := prompt.UserMessage(meta.NormalizedURL)

	var rawText string
	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(completionAttempts),
		// Линейный бэкофф: 1s, 2s
		retry.DelayType(func(n uint, err error, config retry.DelayContext) time.Duration {
			return time.Duration(n+1) * time.Second
		}),
	)
	err := r.Do(func() error {
		var callErr error
		rawText, callErr = s.completer.Complete(ctx, systemPrompt, userPrompt)
		return callErr
	})
	if err != nil {
		return normalize.Result{}, fmt.Errorf("audit: completion stage failed: %w", err)
	}

	obj, repaired, exErr := extract.Extract(rawText)
	if repaired {
		s.metrics.RepairsTotal.Inc()
		log.Warn("completion JSON required textual repair")
	}
	if exErr != nil {
		// Деградируем до полностью синтезированного отчета
		s.metrics.DegradedTotal.Inc()
		log.Warn("completion unparsable, falling back to defaults", zap.Error(exErr))
		obj = nil
	}

	res := normalize.Apply(obj, meta.Domain)
	s.enrichSocialProfiles(ctx, meta, res.DetailedAnalysis, log)
	return res, nil
}

// enrichSocialProfiles подставляет найденные (или угаданные) профили,
// только если модель не вернула собственный список.
func (s *AuditService) enrichSocialProfiles(ctx context.Context, meta *urlmeta.Metadata, analysis map[string]interface{}, log *zap.Logger) {
	sec, ok := analysis[domain.SectionSocialMedia].(map[string]interface{})
	if !ok {
		return
	}
	if existing, ok := sec["social_profiles"].([]interface{}); ok && len(existing) > 0 {
		return
	}

	profiles := meta.SocialProfiles
	dctx, cancel := context.WithTimeout(ctx, discoverTimeout)
	defer cancel()
	if discovered, err := s.resolver.DiscoverProfiles(dctx, meta.NormalizedURL); err == nil && len(discovered) > 0 {
		profiles = discovered
	} else if err != nil {
		log.Debug("social profile discovery failed, using guesses", zap.Error(err))
	}
	if len(profiles) == 0 {
		return
	}

	list := make([]interface{}, 0, len(profiles))
	for _, p := range profiles {
		entry := map[string]interface{}{
			"platform": p.Platform,
			"username": p.Username,
			"url":      p.URL,
		}
		if p.ProfilePicURL != "" {
			entry["profile_pic_url"] = p.ProfilePicURL
		}
		list = append(list, entry)
	}
	sec["social_profiles"] = list
}
