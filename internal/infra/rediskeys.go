package infra

import "fmt"

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "brandpulse"
)

// GetUsageKey — ключ месячного счетчика аудитов владельца.
// Период входит в ключ, поэтому счетчик "обнуляется" сменой месяца.
func GetUsageKey(ownerID, period string) string {
	return fmt.Sprintf("%s:usage:%s:%s", RedisNamespace, ownerID, period)
}
