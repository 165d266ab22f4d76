package domain

import "time"

type ReportStatus string

const (
	StatusPending    ReportStatus = "pending"    // Создан, пайплайн еще не стартовал
	StatusProcessing ReportStatus = "processing" // Пайплайн выполняется (ждем completion)
	StatusCompleted  ReportStatus = "completed"  // Полный отчет готов (неизменяем)
	StatusFailed     ReportStatus = "failed"     // Пайплайн упал, сохранено описание ошибки
)

// Пять фиксированных категорий score_breakdown. Нормализатор гарантирует,
// что в готовом отчете присутствует каждая из них.
const (
	CategoryVisualConsistency = "visual_consistency"
	CategoryMessaging         = "messaging"
	CategoryPositioning       = "positioning"
	CategorySocialMedia       = "social_media"
	CategoryWebsite           = "website"
)

// ScoreCategories — канонический порядок категорий для нормализации и UI.
var ScoreCategories = []string{
	CategoryVisualConsistency,
	CategoryMessaging,
	CategoryPositioning,
	CategorySocialMedia,
	CategoryWebsite,
}

// Секции detailed_analysis. website_analysis обязательна в готовом отчете,
// остальные четыре — опциональные (UI рендерит их только при наличии).
const (
	SectionVisual      = "visual_analysis"
	SectionMessaging   = "messaging_analysis"
	SectionPositioning = "positioning_analysis"
	SectionSocialMedia = "social_media_analysis"
	SectionWebsite     = "website_analysis"
)

// OptionalSections — секции, которые передаются как есть (passthrough).
var OptionalSections = []string{
	SectionVisual,
	SectionMessaging,
	SectionPositioning,
	SectionSocialMedia,
}

// AuditRequest — входные данные одного аудита.
type AuditRequest struct {
	URL            string `json:"url"`
	AdditionalInfo string `json:"additionalInfo,omitempty"`
}

// AuditReport — персистентная единица результата. После перехода в
// completed/failed запись больше не мутируется (конкурентные чтения безопасны).
type AuditReport struct {
	ID     string `json:"id"`      // Opaque ID, генерируется базой
	UserID string `json:"user_id"` // Владелец (anonymous sentinel для гостей)
	Title  string `json:"title"`   // Человекочитаемый заголовок по домену
	URL    string `json:"url"`     // Нормализованный исходный URL

	ScreenshotURL string `json:"screenshot_url,omitempty"`

	Score            int                    `json:"score"` // 0..100
	ScoreBreakdown   map[string]int         `json:"score_breakdown"`
	Summary          string                 `json:"summary"`
	DetailedAnalysis map[string]interface{} `json:"detailed_analysis"`

	Status ReportStatus `json:"status"`
	Error  string       `json:"error,omitempty"` // Краткое описание сбоя при status=failed

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReportPatch — единственная мутация отчета: processing -> completed|failed.
type ReportPatch struct {
	Score            int
	ScoreBreakdown   map[string]int
	Summary          string
	DetailedAnalysis map[string]interface{}
	ScreenshotURL    string
	Status           ReportStatus
	Error            string
}
