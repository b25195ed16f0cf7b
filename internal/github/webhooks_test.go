package github

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"codecrew/internal/config"

	gh "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const webhookSecret = "test-webhook-secret"

func testLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func signedWebhookRequest(t *testing.T, event string, payload []byte, secret string) *http.Request {
	t.Helper()

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	signature := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/github/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", event)
	req.Header.Set("X-Hub-Signature-256", signature)

	return req
}

// TestClient_ValidateWebhook tests webhook signature validation and parsing
func TestClient_ValidateWebhook(t *testing.T) {
	client, err := NewClient(config.GitHubConfig{WebhookSecret: webhookSecret}, testLogger())
	require.NoError(t, err)

	payload := []byte(`{
		"action": "closed",
		"number": 42,
		"pull_request": {"number": 42, "merged": true},
		"repository": {"full_name": "alice/app"}
	}`)

	t.Run("valid signature", func(t *testing.T) {
		req := signedWebhookRequest(t, "pull_request", payload, webhookSecret)

		event, err := client.ValidateWebhook(req)
		require.NoError(t, err)

		pr, ok := event.(*gh.PullRequestEvent)
		require.True(t, ok, "expected a pull request event")
		assert.Equal(t, "closed", pr.GetAction())
		assert.Equal(t, 42, pr.GetPullRequest().GetNumber())
		assert.True(t, pr.GetPullRequest().GetMerged())
		assert.Equal(t, "alice/app", pr.GetRepo().GetFullName())
	})

	t.Run("wrong secret", func(t *testing.T) {
		req := signedWebhookRequest(t, "pull_request", payload, "wrong-secret")

		_, err := client.ValidateWebhook(req)
		assert.Error(t, err)
	})

	t.Run("missing signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/github/webhook", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-GitHub-Event", "pull_request")

		_, err := client.ValidateWebhook(req)
		assert.Error(t, err)
	})
}

// TestClient_AppJWT_NotConfigured tests App operations without credentials
func TestClient_AppJWT_NotConfigured(t *testing.T) {
	client, err := NewClient(config.GitHubConfig{}, testLogger())
	require.NoError(t, err)

	_, err = client.AppJWT()
	assert.ErrorIs(t, err, ErrAppNotConfigured)
}
