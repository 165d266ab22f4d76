package completion

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

type GuardSettings struct {
	CBMaxRequests uint32
	CBInterval    time.Duration
	CBTimeout     time.Duration
	RateLimit     float64
	RateBurst     int
}

// Guard оборачивает Completer в предохранитель и лимитер исходящих вызовов.
// Ретраев здесь нет: Guard либо пропускает ровно один вызов, либо
// отказывает сразу (открытый CB, исчерпанный лимит).
type Guard struct {
	next    Completer
	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

func NewGuard(next Completer, s GuardSettings) *Guard {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "completion-upstream",
		MaxRequests: s.CBMaxRequests,
		Interval:    s.CBInterval,
		Timeout:     s.CBTimeout, // Время, через которое CB попробует "закрыться"
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Более 5 ошибок подряд — открываемся (блокируем трафик)
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Guard{
		next:    next,
		cb:      cb,
		limiter: rate.NewLimiter(rate.Limit(s.RateLimit), s.RateBurst),
	}
}

func (g *Guard) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	// 1. Rate Limiter
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("completion: rate limit exceeded: %w", err)
	}

	// 2. Circuit Breaker
	result, err := g.cb.Execute(func() (interface{}, error) {
		return g.next.Complete(ctx, systemPrompt, userPrompt)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// State отдает текущее состояние предохранителя (для метрик).
func (g *Guard) State() gobreaker.State {
	return g.cb.State()
}
