package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/brandpulse/internal/api/service"
	"github.com/xela07ax/brandpulse/internal/domain"
	"github.com/xela07ax/brandpulse/internal/infra/auth"
	"go.uber.org/zap"
)

type AuditHandler struct {
	service *service.AuditService
	logger  *zap.Logger
}

func NewAuditHandler(s *service.AuditService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{service: s, logger: logger.Named("handler")}
}

// Routes Маршруты для Chi
func (h *AuditHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
	return r
}

// Create запускает аудит. POST /audit
// По умолчанию — синхронно (200 + полный отчет); ?mode=async создает
// отчет в processing и сразу отвечает 202, клиент поллит по ID.
func (h *AuditHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.AuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: must be valid JSON", err.Error())
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "URL is required", "")
		return
	}

	ident := auth.IdentityFromContext(r.Context())

	if r.URL.Query().Get("mode") == "async" {
		report, err := h.service.RunAsync(r.Context(), req, ident)
		if err != nil {
			h.respondPipelineError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{
			"id":     report.ID,
			"status": string(report.Status),
		})
		return
	}

	report, err := h.service.Run(r.Context(), req, ident)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Get возвращает отчет по ID. GET /v1/audits/{id}
func (h *AuditHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "report id is required", "")
		return
	}

	report, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Отдельный кейс: UI уводит на создание отчета, а не на retry
			writeError(w, http.StatusNotFound, "report not found", "")
			return
		}
		h.logger.Error("report fetch failed", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch report", "store unavailable, please retry")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// List возвращает отчеты владельца, новые сверху. GET /v1/audits
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())

	reports, err := h.service.List(r.Context(), ident)
	if err != nil {
		h.logger.Error("report list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list reports", "store unavailable, please retry")
		return
	}
	if reports == nil {
		reports = []domain.AuditReport{}
	}
	writeJSON(w, http.StatusOK, reports)
}

// Delete удаляет отчет владельца. DELETE /v1/audits/{id}
func (h *AuditHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ident := auth.IdentityFromContext(r.Context())

	if err := h.service.Delete(r.Context(), id, ident); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "report not found", "")
			return
		}
		h.logger.Error("report delete failed", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete report", "store unavailable, please retry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondPipelineError маппит доменные ошибки на HTTP-статусы.
// Диагностика апстрима остается в логах — клиенту уходит общий текст.
func (h *AuditHandler) respondPipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidURL):
		writeError(w, http.StatusBadRequest, "Invalid URL: must be a valid URL (e.g., https://example.com)", "")
	case errors.Is(err, domain.ErrQuotaExceeded):
		writeError(w, http.StatusTooManyRequests, "Audit quota exceeded for your plan", "upgrade the plan or wait for the next period")
	case errors.Is(err, domain.ErrStoreUnavailable):
		h.logger.Error("store failure", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to persist report", "store unavailable, please retry")
	default:
		h.logger.Error("audit pipeline failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "audit failed, please retry", "upstream analysis service error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	body := map[string]string{"error": message}
	if details != "" {
		body["details"] = details
	}
	writeJSON(w, status, body)
}
