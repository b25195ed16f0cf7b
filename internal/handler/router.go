package handler

import (
	"net/http"
	"time"

	"codecrew/internal/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// serveOpenAPISpec отдаёт OpenAPI спецификацию
func serveOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	// Спецификация находится в корне проекта
	http.ServeFile(w, r, "openapi.yml")
}

// Router создаёт и настраивает HTTP роутер
func Router(
	authHandler *AuthHandler,
	repoHandler *RepoHandler,
	issueHandler *IssueHandler,
	claimHandler *ClaimHandler,
	statsHandler *StatsHandler,
	githubHandler *GitHubHandler,
	webhookHandler *WebhookHandler,
	sessions *auth.Sessions,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// OpenAPI спецификация
	r.Get("/openapi.yml", serveOpenAPISpec)

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/openapi.yml"),
	))

	r.Route("/api", func(r chi.Router) {
		// Аутентификация
		r.Get("/auth/github", authHandler.GitHubLogin)
		r.Get("/auth/github/callback", authHandler.GitHubCallback)
		r.Post("/auth/login", authHandler.DevLogin)
		r.Post("/auth/logout", authHandler.Logout)

		// Webhook подписывается секретом GitHub App, сессия не нужна
		r.Post("/github/webhook", webhookHandler.Handle)

		// Публичные endpoints каталога
		r.Get("/repositories", repoHandler.List)
		r.Get("/repositories/{id}", repoHandler.Get)
		r.Get("/repositories/{id}/pool", repoHandler.GetPool)
		r.Get("/repositories/{id}/issues", repoHandler.ListIssues)
		r.Get("/issues", issueHandler.List)
		r.Get("/issues/featured", issueHandler.Featured)
		r.Get("/claims/recent", claimHandler.Recent)
		r.Get("/labels/popular", statsHandler.PopularLabels)
		r.Get("/github/app-details", githubHandler.AppDetails)

		// Endpoints, требующие сессии
		r.Group(func(r chi.Router) {
			r.Use(requireAuth(sessions))

			r.Get("/auth/me", authHandler.Me)

			r.Post("/repositories", repoHandler.Add)
			r.Post("/repositories/{id}/fund", repoHandler.FundPool)
			r.Post("/repositories/{id}/sync", repoHandler.SyncIssues)
			r.Get("/repositories/{id}/is-owner", repoHandler.IsOwner)

			r.Post("/issues/{id}/claim", issueHandler.Claim)
			r.Post("/issues/{id}/set-bounty", issueHandler.SetBounty)

			r.Get("/claims", claimHandler.List)
			r.Post("/claims/{id}/link-pr", claimHandler.LinkPR)

			r.Get("/dashboard", statsHandler.Dashboard)
			r.Get("/charts/rewards", statsHandler.RewardsChart)
			r.Get("/history", statsHandler.History)

			r.Get("/github/repositories", githubHandler.Repositories)
			r.Get("/github/check-app-installed/{owner}/{repo}", githubHandler.CheckAppInstalled)
		})
	})

	return r
}
