package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xela07ax/brandpulse/internal/domain"
)

// ReportRepo — хранилище отчетов. score_breakdown и detailed_analysis
// лежат вложенными JSONB-документами, без нормализации в отдельные таблицы.
// ID генерирует сама база (gen_random_uuid) — схему идентификаторов
// этот слой не придумывает.
type ReportRepo struct {
	pool *pgxpool.Pool
}

func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

// Ping проверяет доступность базы при старте
func (r *ReportRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *ReportRepo) Close() {
	r.pool.Close()
}

// Create вставляет отчет и возвращает его с присвоенным ID и таймстемпами.
func (r *ReportRepo) Create(ctx context.Context, report *domain.AuditReport) (*domain.AuditReport, error) {
	breakdown, _ := json.Marshal(report.ScoreBreakdown)
	analysis, _ := json.Marshal(report.DetailedAnalysis)

	query := `
		INSERT INTO audit_reports
			(user_id, title, url, screenshot_url, score, score_breakdown, summary, detailed_analysis, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	created := *report
	err := r.pool.QueryRow(ctx, query,
		report.UserID, report.Title, report.URL, report.ScreenshotURL,
		report.Score, breakdown, report.Summary, analysis, report.Status,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to insert report: %v", domain.ErrStoreUnavailable, err)
	}
	return &created, nil
}

// GetByID отличает "нет такого отчета" от недоступности базы:
// это разные пользовательские сценарии.
func (r *ReportRepo) GetByID(ctx context.Context, id string) (*domain.AuditReport, error) {
	query := `
		SELECT id, user_id, title, url, COALESCE(screenshot_url, ''),
		       score, score_breakdown, summary, detailed_analysis,
		       status, COALESCE(error, ''), created_at, updated_at
		FROM audit_reports WHERE id = $1`

	report, err := scanReport(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to fetch report: %v", domain.ErrStoreUnavailable, err)
	}
	return report, nil
}

// ListByOwner возвращает отчеты владельца, новые сверху.
func (r *ReportRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.AuditReport, error) {
	query := `
		SELECT id, user_id, title, url, COALESCE(screenshot_url, ''),
		       score, score_breakdown, summary, detailed_analysis,
		       status, COALESCE(error, ''), created_at, updated_at
		FROM audit_reports
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list reports: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var reports []domain.AuditReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan report row: %v", domain.ErrStoreUnavailable, err)
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate reports: %v", domain.ErrStoreUnavailable, err)
	}
	return reports, nil
}

// Update — единственная мутация: processing -> completed|failed.
func (r *ReportRepo) Update(ctx context.Context, id string, patch domain.ReportPatch) error {
	breakdown, _ := json.Marshal(patch.ScoreBreakdown)
	analysis, _ := json.Marshal(patch.DetailedAnalysis)

	query := `
		UPDATE audit_reports SET
			score = $1,
			score_breakdown = $2,
			summary = $3,
			detailed_analysis = $4,
			status = $5,
			error = NULLIF($6, ''),
			screenshot_url = COALESCE(NULLIF($7, ''), screenshot_url),
			updated_at = NOW()
		WHERE id = $8`

	tag, err := r.pool.Exec(ctx, query,
		patch.Score, breakdown, patch.Summary, analysis,
		patch.Status, patch.Error, patch.ScreenshotURL, id,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update report: %v", domain.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete удаляет отчет владельца. Чужой или несуществующий ID — NotFound.
func (r *ReportRepo) Delete(ctx context.Context, id, ownerID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM audit_reports WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete report: %v", domain.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*domain.AuditReport, error) {
	var (
		report    domain.AuditReport
		breakdown []byte
		analysis  []byte
	)
	err := row.Scan(
		&report.ID, &report.UserID, &report.Title, &report.URL, &report.ScreenshotURL,
		&report.Score, &breakdown, &report.Summary, &analysis,
		&report.Status, &report.Error, &report.CreatedAt, &report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &report.ScoreBreakdown); err != nil {
			return nil, fmt.Errorf("corrupt score_breakdown document: %w", err)
		}
	}
	if len(analysis) > 0 {
		if err := json.Unmarshal(analysis, &report.DetailedAnalysis); err != nil {
			return nil, fmt.Errorf("corrupt detailed_analysis document: %w", err)
		}
	}
	return &report, nil
}
