package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-16-chars"

// TestSessions_IssueVerify tests the token round trip
func TestSessions_IssueVerify(t *testing.T) {
	sessions, err := NewSessions(testSecret, time.Hour, false)
	require.NoError(t, err)

	token, err := sessions.Issue("u1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := sessions.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

// TestSessions_VerifyFailures tests rejected tokens
func TestSessions_VerifyFailures(t *testing.T) {
	sessions, err := NewSessions(testSecret, time.Hour, false)
	require.NoError(t, err)

	t.Run("garbage token", func(t *testing.T) {
		_, err := sessions.Verify("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewSessions("another-secret-16-chars!", time.Hour, false)
		require.NoError(t, err)

		token, err := other.Issue("u1")
		require.NoError(t, err)

		_, err = sessions.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := NewSessions(testSecret, -time.Minute, false)
		require.NoError(t, err)

		token, err := expired.Issue("u1")
		require.NoError(t, err)

		_, err = sessions.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})
}

// TestNewSessions_ShortSecret tests the secret length check
func TestNewSessions_ShortSecret(t *testing.T) {
	_, err := NewSessions("short", time.Hour, false)
	assert.Error(t, err)
}

// TestSessions_Cookie tests the cookie round trip through a request
func TestSessions_Cookie(t *testing.T) {
	sessions, err := NewSessions(testSecret, time.Hour, false)
	require.NoError(t, err)

	token, err := sessions.Issue("u1")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	sessions.SetCookie(rec, token)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookies[0])

	userID, err := sessions.UserFromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	// Запрос без cookie отклоняется
	bare := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	_, err = sessions.UserFromRequest(bare)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

// TestUserIDContext tests the request context helpers
func TestUserIDContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := UserIDFromContext(req.Context())
	assert.False(t, ok)

	ctx := WithUserID(req.Context(), "u1")
	userID, ok := UserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", userID)
}

// TestVerifyStateCookie tests the OAuth anti-CSRF state check
func TestVerifyStateCookie(t *testing.T) {
	state, err := GenerateState()
	require.NoError(t, err)
	require.Len(t, state, 32)

	rec := httptest.NewRecorder()
	SetStateCookie(rec, state, false)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/github/callback", nil)
	req.AddCookie(cookies[0])
	assert.True(t, VerifyStateCookie(httptest.NewRecorder(), req, state))

	// Несовпадающий state отклоняется
	req = httptest.NewRequest(http.MethodGet, "/api/auth/github/callback", nil)
	req.AddCookie(cookies[0])
	assert.False(t, VerifyStateCookie(httptest.NewRecorder(), req, "tampered"))

	// Запрос без cookie отклоняется
	bare := httptest.NewRequest(http.MethodGet, "/api/auth/github/callback", nil)
	assert.False(t, VerifyStateCookie(httptest.NewRecorder(), bare, state))
}
