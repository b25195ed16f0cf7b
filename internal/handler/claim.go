package handler

import (
	"net/http"
	"strconv"

	"codecrew/internal/domain"
	"codecrew/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ClaimHandler обрабатывает HTTP запросы для работы с заявками на issue
type ClaimHandler struct {
	claimService *service.ClaimService
	logger       *zap.Logger
}

// NewClaimHandler создаёт новый экземпляр ClaimHandler
func NewClaimHandler(claimService *service.ClaimService, logger *zap.Logger) *ClaimHandler {
	return &ClaimHandler{
		claimService: claimService,
		logger:       logger,
	}
}

// List обрабатывает GET /api/claims: заявки текущего пользователя
func (h *ClaimHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	claims, err := h.claimService.ListByUser(r.Context(), userID)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, claims)
}

// Recent обрабатывает GET /api/claims/recent
func (h *ClaimHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	claims, err := h.claimService.ListRecent(r.Context(), limit)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, claims)
}

// LinkPR обрабатывает POST /api/claims/{id}/link-pr
func (h *ClaimHandler) LinkPR(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req struct {
		PRURL string `json:"prUrl"`
	}

	if err := decodeJSON(r, &req); err != nil || req.PRURL == "" {
		writeError(w, h.logger, http.StatusBadRequest, "prUrl is required", domain.CodeInvalidInput)
		return
	}

	claim, err := h.claimService.LinkPR(r.Context(), userID, chi.URLParam(r, "id"), req.PRURL)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, claim)
}
