package handler

import (
	"net/http"

	"codecrew/internal/service"

	"go.uber.org/zap"
)

// StatsHandler обрабатывает HTTP запросы для дашборда и статистики
type StatsHandler struct {
	statsService *service.StatsService
	logger       *zap.Logger
}

// NewStatsHandler создаёт новый экземпляр StatsHandler
func NewStatsHandler(statsService *service.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		logger:       logger,
	}
}

// Dashboard обрабатывает GET /api/dashboard
func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	dashboard, err := h.statsService.GetDashboard(r.Context(), userID)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}

// RewardsChart обрабатывает GET /api/charts/rewards
func (h *StatsHandler) RewardsChart(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	rewards, err := h.statsService.GetRewardsChart(r.Context(), userID)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, rewards)
}

// History обрабатывает GET /api/history
func (h *StatsHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	history, err := h.statsService.GetHistory(r.Context(), userID)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, history)
}

// PopularLabels обрабатывает GET /api/labels/popular
func (h *StatsHandler) PopularLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := h.statsService.GetPopularLabels(r.Context())
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, labels)
}
