package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// StateCookie - имя cookie с anti-CSRF state параметром OAuth
const StateCookie = "codecrew_oauth_state"

// GitHubOAuth реализует authorization code flow GitHub OAuth
type GitHubOAuth struct {
	config *oauth2.Config
}

// NewGitHubOAuth создаёт провайдер GitHub OAuth
func NewGitHubOAuth(clientID, clientSecret, callbackURL string) *GitHubOAuth {
	return &GitHubOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email", "repo"},
			Endpoint:     github.Endpoint,
		},
	}
}

// Enabled сообщает, настроены ли учётные данные OAuth приложения
func (o *GitHubOAuth) Enabled() bool {
	return o.config.ClientID != "" && o.config.ClientSecret != ""
}

// AuthURL возвращает адрес авторизации GitHub с anti-CSRF state
func (o *GitHubOAuth) AuthURL(state string) string {
	return o.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange обменивает authorization code на access token пользователя
func (o *GitHubOAuth) Exchange(ctx context.Context, code string) (string, error) {
	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange OAuth code: %w", err)
	}

	return token.AccessToken, nil
}

// GenerateState возвращает случайный state параметр
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// SetStateCookie выставляет короткоживущую cookie со state параметром
func SetStateCookie(w http.ResponseWriter, state string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// VerifyStateCookie сверяет state из запроса с cookie и удаляет её
func VerifyStateCookie(w http.ResponseWriter, r *http.Request, state string) bool {
	cookie, err := r.Cookie(StateCookie)
	if err != nil || state == "" || cookie.Value != state {
		return false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     StateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	return true
}
