package github

import (
	"fmt"
	"net/http"

	"github.com/google/go-github/v80/github"
)

// ValidateWebhook проверяет подпись входящего вебхука (HMAC-SHA256 со
// сравнением за константное время) и возвращает разобранное событие
func (c *Client) ValidateWebhook(r *http.Request) (any, error) {
	payload, err := github.ValidatePayload(r, []byte(c.cfg.WebhookSecret))
	if err != nil {
		return nil, fmt.Errorf("webhook signature validation failed: %w", err)
	}

	event, err := github.ParseWebHook(github.WebHookType(r), payload)
	if err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	return event, nil
}
