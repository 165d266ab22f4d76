package journal

import "time"

// Действия жизненного цикла аудита, попадающие в журнал.
const (
	ActionAccepted  = "audit_accepted"  // Запрос принят, строка в processing
	ActionCompleted = "audit_completed" // Пайплайн довел отчет до completed
	ActionFailed    = "audit_failed"    // Пайплайн завершился сбоем
)

type Event struct {
	ID       string `json:"id"`        // UUID события
	TraceID  string `json:"trace_id"`  // Сквозной ID пайплайна
	ReportID string `json:"report_id"` // К какому отчету относится
	UserID   string `json:"user_id"`   // Владелец (anonymous sentinel для гостей)
	Domain   string `json:"domain"`    // Домен проверяемого бренда

	Action  string                 `json:"action"`
	Payload map[string]interface{} `json:"payload"` // Доп. контекст (score, degraded, ...)

	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"` // Длительность этапа
	Error      string    `json:"error"`
}
