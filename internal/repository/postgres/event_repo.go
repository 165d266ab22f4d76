package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xela07ax/brandpulse/internal/journal"
)

// EventRepo — приемник журнала пайплайна. Только пакетная вставка:
// события пишутся батчами из воркера, поштучного API нет намеренно.
type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

func (r *EventRepo) WriteBatch(ctx context.Context, events []journal.Event) error {
	if len(events) == 0 {
		return nil
	}

	// Количество колонок в таблице audit_events
	const numFields = 10
	var sb strings.Builder
	vals := make([]interface{}, 0, len(events)*numFields)

	// Динамически строим запрос для пакетной вставки
	for i, e := range events {
		p := i * numFields
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			p+1, p+2, p+3, p+4, p+5, p+6, p+7, p+8, p+9, p+10)

		payload, _ := json.Marshal(e.Payload)
		vals = append(vals,
			e.ID, e.TraceID, e.ReportID, e.UserID, e.Domain,
			e.Action, payload, e.DurationMs, e.Error, e.Timestamp,
		)
	}

	query := fmt.Sprintf(
		"INSERT INTO audit_events (id, trace_id, report_id, user_id, domain, action, payload, duration_ms, error, timestamp) VALUES %s",
		sb.String(),
	)

	if _, err := r.pool.Exec(ctx, query, vals...); err != nil {
		return fmt.Errorf("postgres: failed to write event batch: %w", err)
	}
	return nil
}
