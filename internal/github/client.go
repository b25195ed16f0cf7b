// Package github оборачивает GitHub REST/App API для нужд платформы:
// профиль пользователя, списки репозиториев и issue, installation-токены
// GitHub App, комментарии/метки от имени App и проверка подписи вебхуков.
package github

import (
	"context"
	"crypto/rsa"
	"fmt"
	"os"

	"codecrew/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-github/v80/github"
	"go.uber.org/zap"
)

// Profile представляет профиль аутентифицированного GitHub пользователя
type Profile struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

// RemoteRepo представляет репозиторий из GitHub API
type RemoteRepo struct {
	Owner       string `json:"owner"`
	Name        string `json:"name"`
	FullName    string `json:"fullName"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	OpenIssues  int    `json:"openIssues"`
	Private     bool   `json:"private"`
}

// RemoteIssue представляет issue из GitHub API
type RemoteIssue struct {
	Number int      `json:"number"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	URL    string   `json:"url"`
	State  string   `json:"state"`
	Labels []string `json:"labels"`
}

// AppDetails представляет публичные данные GitHub App платформы
type AppDetails struct {
	Slug       string `json:"slug"`
	AppID      int64  `json:"appId"`
	InstallURL string `json:"installUrl"`
}

// Client - клиент GitHub REST/App API.
//
// При отсутствии учётных данных или ошибке сети методы списков подставляют
// сфабрикованные демо-данные (см. sample.go); подстановка всегда логируется
// на уровне WARN, чтобы отказ интеграции не оставался незамеченным.
type Client struct {
	cfg    config.GitHubConfig
	logger *zap.Logger
	appKey *rsa.PrivateKey
}

// NewClient создаёт клиент GitHub. Приватный ключ GitHub App загружается,
// только если задан путь; без ключа App-операции возвращают ошибку.
func NewClient(cfg config.GitHubConfig, logger *zap.Logger) (*Client, error) {
	c := &Client{cfg: cfg, logger: logger}

	if cfg.PrivateKeyPath != "" {
		pem, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read GitHub App private key: %w", err)
		}

		key, err := jwt.ParseRSAPrivateKeyFromPEM(pem)
		if err != nil {
			return nil, fmt.Errorf("failed to parse GitHub App private key: %w", err)
		}
		c.appKey = key
	}

	return c, nil
}

// userClient возвращает клиент GitHub API с токеном пользователя
func (c *Client) userClient(accessToken string) *github.Client {
	return github.NewClient(nil).WithAuthToken(accessToken)
}

// FetchUser получает профиль аутентифицированного пользователя
func (c *Client) FetchUser(ctx context.Context, accessToken string) (*Profile, error) {
	user, _, err := c.userClient(accessToken).Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch GitHub user: %w", err)
	}

	if user.GetID() == 0 {
		return nil, fmt.Errorf("github returned an invalid user")
	}

	return &Profile{
		ID:        user.GetID(),
		Login:     user.GetLogin(),
		Email:     user.GetEmail(),
		AvatarURL: user.GetAvatarURL(),
	}, nil
}

// ListUserRepositories возвращает репозитории пользователя.
// При ошибке API подставляет демо-данные.
func (c *Client) ListUserRepositories(ctx context.Context, accessToken string) ([]RemoteRepo, error) {
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: 50},
	}

	repos, _, err := c.userClient(accessToken).Repositories.ListByAuthenticatedUser(ctx, opts)
	if err != nil {
		c.logger.Warn("github API failed, substituting sample repositories",
			zap.Error(err),
			zap.Bool("fallback", true))
		return sampleRepositories(), nil
	}

	result := make([]RemoteRepo, 0, len(repos))
	for _, repo := range repos {
		result = append(result, RemoteRepo{
			Owner:       repo.GetOwner().GetLogin(),
			Name:        repo.GetName(),
			FullName:    repo.GetFullName(),
			Description: repo.GetDescription(),
			URL:         repo.GetHTMLURL(),
			Stars:       repo.GetStargazersCount(),
			Forks:       repo.GetForksCount(),
			OpenIssues:  repo.GetOpenIssuesCount(),
			Private:     repo.GetPrivate(),
		})
	}

	return result, nil
}

// ListRepoIssues возвращает открытые issue репозитория.
// Без токена идёт в публичное API; при ошибке подставляет демо-данные.
func (c *Client) ListRepoIssues(ctx context.Context, accessToken, owner, repo string) ([]RemoteIssue, error) {
	client := github.NewClient(nil)
	if accessToken != "" {
		client = c.userClient(accessToken)
	}

	opts := &github.IssueListByRepoOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: 50},
	}

	issues, _, err := client.Issues.ListByRepo(ctx, owner, repo, opts)
	if err != nil {
		c.logger.Warn("github API failed, substituting sample issues",
			zap.Error(err),
			zap.String("repository", owner+"/"+repo),
			zap.Bool("fallback", true))
		return sampleIssues(owner, repo), nil
	}

	result := make([]RemoteIssue, 0, len(issues))
	for _, issue := range issues {
		// Pull request-ы приходят тем же списком, пропускаем
		if issue.IsPullRequest() {
			continue
		}

		labels := make([]string, 0, len(issue.Labels))
		for _, label := range issue.Labels {
			labels = append(labels, label.GetName())
		}

		result = append(result, RemoteIssue{
			Number: issue.GetNumber(),
			Title:  issue.GetTitle(),
			Body:   issue.GetBody(),
			URL:    issue.GetHTMLURL(),
			State:  issue.GetState(),
			Labels: labels,
		})
	}

	return result, nil
}

// CheckAppInstalled проверяет, установлено ли GitHub App на репозиторий
func (c *Client) CheckAppInstalled(ctx context.Context, owner, repo string) (bool, error) {
	client, err := c.appClient()
	if err != nil {
		return false, err
	}

	_, resp, err := client.Apps.FindRepositoryInstallation(ctx, owner, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return false, nil
		}
		return false, fmt.Errorf("failed to check app installation: %w", err)
	}

	return true, nil
}

// AppDetails возвращает публичные данные GitHub App платформы
func (c *Client) AppDetails() AppDetails {
	return AppDetails{
		Slug:       c.cfg.AppSlug,
		AppID:      c.cfg.AppID,
		InstallURL: "https://github.com/apps/" + c.cfg.AppSlug + "/installations/new",
	}
}

// PostIssueComment публикует комментарий к issue от имени GitHub App
func (c *Client) PostIssueComment(ctx context.Context, owner, repo string, issueNumber int, body string) error {
	client, err := c.installationClient(ctx, owner, repo)
	if err != nil {
		return err
	}

	comment := &github.IssueComment{Body: &body}
	if _, _, err := client.Issues.CreateComment(ctx, owner, repo, issueNumber, comment); err != nil {
		return fmt.Errorf("failed to post issue comment: %w", err)
	}

	return nil
}

// AddIssueLabels добавляет метки к issue от имени GitHub App
func (c *Client) AddIssueLabels(ctx context.Context, owner, repo string, issueNumber int, labels []string) error {
	client, err := c.installationClient(ctx, owner, repo)
	if err != nil {
		return err
	}

	if _, _, err := client.Issues.AddLabelsToIssue(ctx, owner, repo, issueNumber, labels); err != nil {
		return fmt.Errorf("failed to add issue labels: %w", err)
	}

	return nil
}
