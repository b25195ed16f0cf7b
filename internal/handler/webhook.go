package handler

import (
	"net/http"

	ghclient "codecrew/internal/github"
	"codecrew/internal/service"

	"github.com/google/go-github/v80/github"
	"go.uber.org/zap"
)

// WebhookHandler обрабатывает входящие webhook от GitHub App
type WebhookHandler struct {
	github       *ghclient.Client
	claimService *service.ClaimService
	logger       *zap.Logger
}

// NewWebhookHandler создаёт новый экземпляр WebhookHandler
func NewWebhookHandler(github *ghclient.Client, claimService *service.ClaimService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		github:       github,
		claimService: claimService,
		logger:       logger,
	}
}

// Handle обрабатывает POST /api/github/webhook.
// Подпись запроса проверяется до разбора payload; неподписанные
// запросы отклоняются.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	event, err := h.github.ValidateWebhook(r)
	if err != nil {
		h.logger.Warn("webhook rejected", zap.Error(err))
		http.Error(w, "invalid webhook payload", http.StatusBadRequest)
		return
	}

	switch e := event.(type) {
	case *github.PullRequestEvent:
		h.handlePullRequest(w, r, e)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *WebhookHandler) handlePullRequest(w http.ResponseWriter, r *http.Request, event *github.PullRequestEvent) {
	repoFullName := event.GetRepo().GetFullName()
	prNumber := event.GetPullRequest().GetNumber()
	merged := event.GetAction() == "closed" && event.GetPullRequest().GetMerged()

	h.logger.Info("pull request webhook",
		zap.String("repository", repoFullName),
		zap.Int("pr_number", prNumber),
		zap.String("action", event.GetAction()),
		zap.Bool("merged", merged))

	if err := h.claimService.HandlePullRequestEvent(r.Context(), repoFullName, prNumber, event.GetAction(), merged); err != nil {
		h.logger.Error("pull request event processing failed",
			zap.String("repository", repoFullName),
			zap.Int("pr_number", prNumber),
			zap.Error(err))
		http.Error(w, "event processing failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
