// Package usage реализует явный Usage Ledger — месячные счетчики аудитов
// по владельцам. Аудит резервируется атомарно на входе (Allow) и
// возвращается (Release), если пайплайн не довел его до конца. Лимиты
// тарифов приходят из конфига; безлимит — это capability-флаг в Identity,
// а не знание этого пакета о конкретных email.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/brandpulse/internal/domain"
	"github.com/xela07ax/brandpulse/internal/infra"
	"go.uber.org/zap"
)

// keyTTL перекрывает календарный месяц с запасом: ключ умирает сам,
// ручная чистка не нужна.
const keyTTL = 40 * 24 * time.Hour

// Ledger — контракт для сервисного слоя (в тестах подменяется фейком).
type Ledger interface {
	Get(ctx context.Context, ownerID string) (int, error)
	Allow(ctx context.Context, ident domain.Identity) error
	Release(ctx context.Context, ident domain.Identity) error
}

type PlanLimits struct {
	Free int
	Pro  int
	Team int
}

func (p PlanLimits) For(plan domain.Plan) int {
	switch plan {
	case domain.PlanPro:
		return p.Pro
	case domain.PlanTeam:
		return p.Team
	default:
		return p.Free
	}
}

type RedisLedger struct {
	rdb    *redis.Client
	limits PlanLimits
	logger *zap.Logger

	// now подменяется в тестах для контроля периода
	now func() time.Time
}

func NewRedisLedger(rdb *redis.Client, limits PlanLimits, logger *zap.Logger) *RedisLedger {
	return &RedisLedger{
		rdb:    rdb,
		limits: limits,
		logger: logger.Named("usage"),
		now:    time.Now,
	}
}

func (l *RedisLedger) key(ownerID string) string {
	return infra.GetUsageKey(ownerID, l.now().UTC().Format("2006-01"))
}

// Get возвращает число аудитов владельца за текущий месяц.
func (l *RedisLedger) Get(ctx context.Context, ownerID string) (int, error) {
	n, err := l.rdb.Get(ctx, l.key(ownerID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("usage: failed to read counter: %w", err)
	}
	return n, nil
}

// Allow атомарно резервирует один аудит: INCR и сравнение с лимитом,
// без отдельного чтения (никакого check-then-act). Перебор тут же
// откатывается DECR'ом, поэтому конкурентные запросы у границы лимита
// не перерасходуют квоту. Unlimited проходит без обращения к Redis.
func (l *RedisLedger) Allow(ctx context.Context, ident domain.Identity) error {
	if ident.Unlimited {
		return nil
	}

	key := l.key(ident.UserID)
	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, keyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("usage: failed to reserve audit: %w", err)
	}

	limit := l.limits.For(ident.Plan)
	if int(incr.Val()) > limit {
		// Снимаем собственный перебор; неудачный откат не критичен —
		// ключ умрет со сменой месяца
		if err := l.rdb.Decr(ctx, key).Err(); err != nil {
			l.logger.Warn("failed to roll back overlimit reservation", zap.Error(err))
		}
		l.logger.Info("audit quota exhausted",
			zap.String("owner_id", ident.UserID),
			zap.String("plan", string(ident.Plan)),
			zap.Int("limit", limit),
		)
		return domain.ErrQuotaExceeded
	}
	return nil
}

// Release возвращает зарезервированный аудит, если пайплайн не довел
// его до конца: неудачный аудит не тратит лимит.
func (l *RedisLedger) Release(ctx context.Context, ident domain.Identity) error {
	if ident.Unlimited {
		return nil
	}
	if err := l.rdb.Decr(ctx, l.key(ident.UserID)).Err(); err != nil {
		return fmt.Errorf("usage: failed to release reservation: %w", err)
	}
	return nil
}
