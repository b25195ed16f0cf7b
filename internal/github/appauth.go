package github

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-github/v80/github"
)

// ErrAppNotConfigured - GitHub App не настроен (нет app ID или приватного ключа)
var ErrAppNotConfigured = errors.New("github app is not configured")

// App JWT живёт 10 минут; iat сдвинут на 60 секунд назад
// на случай рассинхронизации часов с GitHub.
const (
	appJWTLifetime  = 10 * time.Minute
	appJWTClockSkew = 60 * time.Second
)

// AppJWT подписывает RS256 JWT от имени GitHub App
func (c *Client) AppJWT() (string, error) {
	if c.appKey == nil || c.cfg.AppID == 0 {
		return "", ErrAppNotConfigured
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    strconv.FormatInt(c.cfg.AppID, 10),
		IssuedAt:  jwt.NewNumericDate(now.Add(-appJWTClockSkew)),
		ExpiresAt: jwt.NewNumericDate(now.Add(appJWTLifetime)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.appKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign app JWT: %w", err)
	}

	return token, nil
}

// appClient возвращает клиент GitHub API, аутентифицированный как App
func (c *Client) appClient() (*github.Client, error) {
	appJWT, err := c.AppJWT()
	if err != nil {
		return nil, err
	}

	return github.NewClient(nil).WithAuthToken(appJWT), nil
}

// InstallationToken обменивает App JWT на короткоживущий installation-токен
func (c *Client) InstallationToken(ctx context.Context, installationID int64) (string, error) {
	client, err := c.appClient()
	if err != nil {
		return "", err
	}

	token, _, err := client.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create installation token: %w", err)
	}

	return token.GetToken(), nil
}

// installationClient возвращает клиент GitHub API с installation-токеном
// для репозитория owner/repo
func (c *Client) installationClient(ctx context.Context, owner, repo string) (*github.Client, error) {
	appClient, err := c.appClient()
	if err != nil {
		return nil, err
	}

	installation, _, err := appClient.Apps.FindRepositoryInstallation(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to find repository installation: %w", err)
	}

	token, err := c.InstallationToken(ctx, installation.GetID())
	if err != nil {
		return nil, err
	}

	return github.NewClient(nil).WithAuthToken(token), nil
}
