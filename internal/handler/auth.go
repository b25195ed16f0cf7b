package handler

import (
	"net/http"

	"codecrew/internal/auth"
	"codecrew/internal/domain"
	"codecrew/internal/service"

	"go.uber.org/zap"
)

// AuthHandler обрабатывает HTTP запросы аутентификации
type AuthHandler struct {
	authService *service.AuthService
	sessions    *auth.Sessions
	oauth       *auth.GitHubOAuth
	devMode     bool
	secure      bool
	logger      *zap.Logger
}

// NewAuthHandler создаёт новый экземпляр AuthHandler
func NewAuthHandler(
	authService *service.AuthService,
	sessions *auth.Sessions,
	oauth *auth.GitHubOAuth,
	devMode bool,
	secure bool,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		oauth:       oauth,
		devMode:     devMode,
		secure:      secure,
		logger:      logger,
	}
}

// GitHubLogin обрабатывает GET /api/auth/github:
// редирект на страницу авторизации GitHub с anti-CSRF state
func (h *AuthHandler) GitHubLogin(w http.ResponseWriter, r *http.Request) {
	if !h.oauth.Enabled() {
		writeError(w, h.logger, http.StatusServiceUnavailable,
			"github oauth is not configured", domain.CodeInternal)
		return
	}

	state, err := auth.GenerateState()
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	auth.SetStateCookie(w, state, h.secure)
	http.Redirect(w, r, h.oauth.AuthURL(state), http.StatusTemporaryRedirect)
}

// GitHubCallback обрабатывает GET /api/auth/github/callback
func (h *AuthHandler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if !auth.VerifyStateCookie(w, r, state) {
		writeError(w, h.logger, http.StatusBadRequest, "invalid oauth state", domain.CodeInvalidInput)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, h.logger, http.StatusBadRequest, "missing authorization code", domain.CodeInvalidInput)
		return
	}

	accessToken, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth code exchange failed", zap.Error(err))
		writeError(w, h.logger, http.StatusBadGateway, "github authorization failed", domain.CodeInternal)
		return
	}

	user, err := h.authService.LoginWithGitHub(r.Context(), accessToken)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	token, err := h.sessions.Issue(user.ID)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	h.sessions.SetCookie(w, token)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Me обрабатывает GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Message: "Not authenticated", Code: domain.CodeUnauthorized})
		return
	}

	user, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Logout обрабатывает POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// DevLogin обрабатывает POST /api/auth/login.
// Резервный вход по имени пользователя, доступен только в окружении разработки.
func (h *AuthHandler) DevLogin(w http.ResponseWriter, r *http.Request) {
	if !h.devMode {
		writeError(w, h.logger, http.StatusNotFound, "not found", domain.CodeNotFound)
		return
	}

	var req struct {
		Username string `json:"username"`
	}

	if err := decodeJSON(r, &req); err != nil || req.Username == "" {
		writeError(w, h.logger, http.StatusBadRequest, "username is required", domain.CodeInvalidInput)
		return
	}

	user, err := h.authService.DevLogin(r.Context(), req.Username)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	token, err := h.sessions.Issue(user.ID)
	if err != nil {
		handleDomainError(w, h.logger, err)
		return
	}

	h.sessions.SetCookie(w, token)
	writeJSON(w, http.StatusOK, user)
}
