package handler

import (
	"net/http"

	ghclient "codecrew/internal/github"
	"codecrew/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// GitHubHandler обрабатывает HTTP запросы прямого доступа к GitHub API
type GitHubHandler struct {
	github      *ghclient.Client
	authService *service.AuthService
	logger      *zap.Logger
}

// NewGitHubHandler создаёт новый экземпляр GitHubHandler
func NewGitHubHandler(github *ghclient.Client, authService *service.AuthService, logger *zap.Logger) *GitHubHandler {
	return &GitHubHandler{
		github:      github,
		authService: authService,
		logger:      logger,
	}
}

// Repositories обрабатывает GET /api/github/repositories:
// репозитории текущего пользователя на GitHub
func (h *GitHubHandler) Repositories(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	user, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	repos, err := h.github.ListUserRepositories(r.Context(), user.AccessToken)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, repos)
}

// AppDetails обрабатывает GET /api/github/app-details
func (h *GitHubHandler) AppDetails(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.github.AppDetails())
}

// CheckAppInstalled обрабатывает GET /api/github/check-app-installed/{owner}/{repo}
func (h *GitHubHandler) CheckAppInstalled(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")

	installed, err := h.github.CheckAppInstalled(r.Context(), owner, repo)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"installed": installed})
}
