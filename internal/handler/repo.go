package handler

import (
	"net/http"

	"codecrew/internal/domain"
	"codecrew/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RepoHandler обрабатывает HTTP запросы для работы с репозиториями и их пулами
type RepoHandler struct {
	repoService   *service.RepoService
	bountyService *service.BountyService
	authService   *service.AuthService
	logger        *zap.Logger
}

// NewRepoHandler создаёт новый экземпляр RepoHandler
func NewRepoHandler(
	repoService *service.RepoService,
	bountyService *service.BountyService,
	authService *service.AuthService,
	logger *zap.Logger,
) *RepoHandler {
	return &RepoHandler{
		repoService:   repoService,
		bountyService: bountyService,
		authService:   authService,
		logger:        logger,
	}
}

// List обрабатывает GET /api/repositories
func (h *RepoHandler) List(w http.ResponseWriter, r *http.Request) {
	repos, err := h.repoService.List(r.Context())
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, repos)
}

// Get обрабатывает GET /api/repositories/{id}
func (h *RepoHandler) Get(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repoService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, repo)
}

// GetPool обрабатывает GET /api/repositories/{id}/pool
func (h *RepoHandler) GetPool(w http.ResponseWriter, r *http.Request) {
	summary, err := h.bountyService.GetPool(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// FundPool обрабатывает POST /api/repositories/{id}/fund
func (h *RepoHandler) FundPool(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req struct {
		Amount int `json:"amount"`
	}

	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body", domain.CodeInvalidInput)
		return
	}

	pool, err := h.bountyService.FundPool(r.Context(), userID, chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, pool)
}

// ListIssues обрабатывает GET /api/repositories/{id}/issues
func (h *RepoHandler) ListIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := h.repoService.ListIssues(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, issues)
}

// IsOwner обрабатывает GET /api/repositories/{id}/is-owner
func (h *RepoHandler) IsOwner(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessionUser(w, r)
	if !ok {
		return
	}

	isOwner, err := h.repoService.IsOwner(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"isOwner": isOwner})
}

// Add обрабатывает POST /api/repositories:
// подключение GitHub репозитория к платформе с синхронизацией issue
func (h *RepoHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessionUser(w, r)
	if !ok {
		return
	}

	var req struct {
		FullName string `json:"fullName"`
	}

	if err := decodeJSON(r, &req); err != nil || req.FullName == "" {
		writeError(w, h.logger, http.StatusBadRequest, "fullName is required", domain.CodeInvalidInput)
		return
	}

	repo, err := h.repoService.AddFromGitHub(r.Context(), user, req.FullName)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, repo)
}

// SyncIssues обрабатывает POST /api/repositories/{id}/sync
func (h *RepoHandler) SyncIssues(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessionUser(w, r)
	if !ok {
		return
	}

	if err := h.repoService.SyncIssues(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Issues synced"})
}

// sessionUser загружает пользователя текущей сессии
func (h *RepoHandler) sessionUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthorized(w)
		return nil, false
	}

	user, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return nil, false
	}

	return user, true
}
