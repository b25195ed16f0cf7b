// Package auth отвечает за сессии пользователей и GitHub OAuth.
//
// Сессия - подписанный HS256 JWT в HttpOnly cookie. Идентификатор
// аутентифицированного пользователя передаётся обработчикам явно, через
// контекст запроса, а не через серверное хранилище сессий.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie - имя cookie с сессионным токеном
const SessionCookie = "codecrew_session"

// ErrInvalidSession - сессионный токен отсутствует или не прошёл проверку
var ErrInvalidSession = errors.New("invalid session token")

// userIDKey - ключ контекста для ID аутентифицированного пользователя
type userIDKey struct{}

// Sessions выпускает и проверяет сессионные токены
type Sessions struct {
	secret       []byte
	ttl          time.Duration
	cookieSecure bool
}

// NewSessions создаёт сервис сессий с указанным секретом и временем жизни
func NewSessions(secret string, ttl time.Duration, cookieSecure bool) (*Sessions, error) {
	if len(secret) < 16 {
		return nil, errors.New("session secret must be at least 16 characters")
	}

	return &Sessions{
		secret:       []byte(secret),
		ttl:          ttl,
		cookieSecure: cookieSecure,
	}, nil
}

// Issue выпускает сессионный токен для пользователя
func (s *Sessions) Issue(userID string) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return token, nil
}

// Verify проверяет токен и возвращает ID пользователя
func (s *Sessions) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidSession
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidSession
	}

	return claims.Subject, nil
}

// SetCookie выставляет сессионную cookie в ответ
func (s *Sessions) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie удаляет сессионную cookie
func (s *Sessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// UserFromRequest извлекает ID пользователя из сессионной cookie запроса
func (s *Sessions) UserFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", ErrInvalidSession
	}

	return s.Verify(cookie.Value)
}

// WithUserID кладёт ID аутентифицированного пользователя в контекст
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext возвращает ID аутентифицированного пользователя
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}
