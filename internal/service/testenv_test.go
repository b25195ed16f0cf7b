package service

import (
	"context"
	"testing"
	"time"

	"codecrew/internal/config"
	"codecrew/internal/domain"
	ghclient "codecrew/internal/github"
	"codecrew/internal/repository/memory"
	"codecrew/internal/testutil"

	"go.uber.org/zap"
)

// testEnv bundles an in-memory store with the services under test
type testEnv struct {
	store  *memory.Store
	escrow *testutil.FakeEscrow
	github *ghclient.Client
	logger *zap.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger, _ := zap.NewDevelopment()

	gh, err := ghclient.NewClient(config.GitHubConfig{}, logger)
	if err != nil {
		t.Fatalf("failed to create github client: %v", err)
	}

	return &testEnv{
		store:  memory.NewStore(),
		escrow: testutil.NewFakeEscrow(),
		github: gh,
		logger: logger,
	}
}

func (e *testEnv) authService() *AuthService {
	return NewAuthService(e.store.Users(), e.github, e.logger)
}

func (e *testEnv) repoService() *RepoService {
	return NewRepoService(e.store.Repos(), e.store.Issues(), e.github, e.logger)
}

func (e *testEnv) bountyService() *BountyService {
	return NewBountyService(e.store.Pools(), e.store.Issues(), e.store.Repos(), e.store.TxManager(), e.escrow, e.github, e.logger)
}

func (e *testEnv) claimService() *ClaimService {
	return NewClaimService(
		e.store.Claims(), e.store.Issues(), e.store.Users(), e.store.Repos(),
		e.store.Pools(), e.store.TxManager(), e.escrow, e.github, e.logger)
}

func (e *testEnv) statsService() *StatsService {
	return NewStatsService(e.store.Claims(), e.store.Issues(), e.store.Users(), e.logger)
}

var nextGitHubID int64 = 5000

func (e *testEnv) seedUser(t *testing.T, id, username string) *domain.User {
	t.Helper()

	nextGitHubID++
	now := time.Now()
	user := &domain.User{
		ID:        id,
		Username:  username,
		GitHubID:  nextGitHubID,
		Role:      "contributor",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := e.store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	return user
}

func (e *testEnv) seedRepo(t *testing.T, id, owner, name string) *domain.Repository {
	t.Helper()

	now := time.Now()
	repo := &domain.Repository{
		ID:        id,
		Owner:     owner,
		Name:      name,
		FullName:  owner + "/" + name,
		URL:       "https://github.com/" + owner + "/" + name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := e.store.Repos().Create(context.Background(), repo); err != nil {
		t.Fatalf("failed to seed repository: %v", err)
	}

	return repo
}

func (e *testEnv) seedIssue(t *testing.T, id, repositoryID string, number int) *domain.Issue {
	t.Helper()

	now := time.Now()
	issue := &domain.Issue{
		ID:           id,
		RepositoryID: repositoryID,
		IssueNumber:  number,
		Title:        "test issue",
		State:        domain.IssueStateOpen,
		Type:         domain.IssueTypeBug,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := e.store.Issues().Create(context.Background(), issue); err != nil {
		t.Fatalf("failed to seed issue: %v", err)
	}

	return issue
}
