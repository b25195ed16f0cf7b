package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codecrew/internal/auth"
	"codecrew/internal/config"
	"codecrew/internal/domain"
	ghclient "codecrew/internal/github"
	"codecrew/internal/repository/memory"
	"codecrew/internal/service"
	"codecrew/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testServer wires the full router over the in-memory store
type testServer struct {
	srv   *httptest.Server
	store *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger, _ := zap.NewDevelopment()
	store := memory.NewStore()
	escrow := testutil.NewFakeEscrow()

	gh, err := ghclient.NewClient(config.GitHubConfig{}, logger)
	require.NoError(t, err)

	sessions, err := auth.NewSessions("test-secret-at-least-16-chars", time.Hour, false)
	require.NoError(t, err)

	oauth := auth.NewGitHubOAuth("", "", "")

	authService := service.NewAuthService(store.Users(), gh, logger)
	repoService := service.NewRepoService(store.Repos(), store.Issues(), gh, logger)
	bountyService := service.NewBountyService(store.Pools(), store.Issues(), store.Repos(), store.TxManager(), escrow, gh, logger)
	claimService := service.NewClaimService(
		store.Claims(), store.Issues(), store.Users(), store.Repos(),
		store.Pools(), store.TxManager(), escrow, gh, logger)
	statsService := service.NewStatsService(store.Claims(), store.Issues(), store.Users(), logger)

	router := Router(
		NewAuthHandler(authService, sessions, oauth, true, false, logger),
		NewRepoHandler(repoService, bountyService, authService, logger),
		NewIssueHandler(repoService, bountyService, claimService, logger),
		NewClaimHandler(claimService, logger),
		NewStatsHandler(statsService, logger),
		NewGitHubHandler(gh, authService, logger),
		NewWebhookHandler(gh, claimService, logger),
		sessions,
		logger,
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, store: store}
}

// login performs a development login and returns the session cookie
func (s *testServer) login(t *testing.T, username string) *http.Cookie {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"username": username})
	resp, err := http.Post(s.srv.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, cookie := range resp.Cookies() {
		if cookie.Name == auth.SessionCookie {
			return cookie
		}
	}

	t.Fatal("session cookie not set")
	return nil
}

func (s *testServer) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

// TestRouter_Health tests the health endpoint
func TestRouter_Health(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestRouter_Unauthorized tests the 401 body on protected routes
func TestRouter_Unauthorized(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/claims", "/api/dashboard", "/api/auth/me"} {
		resp, err := http.Get(ts.srv.URL + path)
		require.NoError(t, err)

		var body ErrorResponse
		decodeBody(t, resp, &body)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, "Unauthorized", body.Message, path)
	}
}

// TestRouter_DevLoginAndMe tests the dev login session round trip
func TestRouter_DevLoginAndMe(t *testing.T) {
	ts := newTestServer(t)

	cookie := ts.login(t, "bob")

	resp := ts.do(t, http.MethodGet, "/api/auth/me", nil, cookie)

	var user domain.User
	decodeBody(t, resp, &user)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "bob", user.Username)
	assert.NotEmpty(t, user.ID)
}

// TestRouter_BountyFlow tests funding, bounties and claims over HTTP
func TestRouter_BountyFlow(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	maintainer := ts.login(t, "alice")
	contributor := ts.login(t, "bob")

	// Репозиторий и issue попадают в хранилище как после синхронизации с GitHub
	now := time.Now()
	repo := &domain.Repository{
		ID: "r1", Owner: "alice", Name: "app", FullName: "alice/app",
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, ts.store.Repos().Create(ctx, repo))

	issue := &domain.Issue{
		ID: "i1", RepositoryID: "r1", IssueNumber: 7, Title: "bug",
		State: domain.IssueStateOpen, Type: domain.IssueTypeBug,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, ts.store.Issues().Create(ctx, issue))

	// Пополнение пула
	resp := ts.do(t, http.MethodPost, "/api/repositories/r1/fund", map[string]int{"amount": 500}, maintainer)
	var pool domain.Pool
	decodeBody(t, resp, &pool)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 500, pool.Balance)

	// Превышение суточного лимита
	resp = ts.do(t, http.MethodPost, "/api/repositories/r1/fund", map[string]int{"amount": 600}, maintainer)
	var errBody ErrorResponse
	decodeBody(t, resp, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, domain.CodeDepositLimit, errBody.Code)

	// Назначение bounty
	resp = ts.do(t, http.MethodPost, "/api/issues/i1/set-bounty", map[string]int{"amount": 300}, maintainer)
	var bountied domain.Issue
	decodeBody(t, resp, &bountied)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, bountied.HasBounty)
	assert.Equal(t, 300, bountied.Reward)

	// Заявка исполнителя
	resp = ts.do(t, http.MethodPost, "/api/issues/i1/claim", nil, contributor)
	var claim domain.Claim
	decodeBody(t, resp, &claim)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, domain.ClaimStatusClaimed, claim.Status)

	// Повторная заявка конфликтует
	resp = ts.do(t, http.MethodPost, "/api/issues/i1/claim", nil, contributor)
	decodeBody(t, resp, &errBody)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, domain.CodeClaimExists, errBody.Code)

	// Привязка pull request
	resp = ts.do(t, http.MethodPost, "/api/claims/"+claim.ID+"/link-pr",
		map[string]string{"prUrl": "https://github.com/alice/app/pull/11"}, contributor)
	var linked domain.Claim
	decodeBody(t, resp, &linked)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.ClaimStatusSubmitted, linked.Status)
	assert.Equal(t, 11, linked.PRNumber)

	// Чужая заявка недоступна
	resp = ts.do(t, http.MethodPost, "/api/claims/"+claim.ID+"/link-pr",
		map[string]string{"prUrl": "https://github.com/alice/app/pull/12"}, maintainer)
	decodeBody(t, resp, &errBody)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Пул с доступным остатком
	resp = ts.do(t, http.MethodGet, "/api/repositories/r1/pool", nil, nil)
	var summary service.PoolSummary
	decodeBody(t, resp, &summary)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 200, summary.AvailableBalance)
}

// TestRouter_IssueFilters tests issue list query parameters
func TestRouter_IssueFilters(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, ts.store.Repos().Create(ctx, &domain.Repository{
		ID: "r1", Owner: "alice", Name: "app", FullName: "alice/app", CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, ts.store.Issues().Create(ctx, &domain.Issue{
		ID: "i1", RepositoryID: "r1", IssueNumber: 1,
		State: domain.IssueStateOpen, Type: domain.IssueTypeBug, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, ts.store.Issues().Create(ctx, &domain.Issue{
		ID: "i2", RepositoryID: "r1", IssueNumber: 2,
		State: domain.IssueStateClosed, Type: domain.IssueTypeDocs, CreatedAt: now, UpdatedAt: now,
	}))

	resp, err := http.Get(ts.srv.URL + "/api/issues?state=open&type=bug")
	require.NoError(t, err)

	var issues []domain.Issue
	decodeBody(t, resp, &issues)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, issues, 1)
	assert.Equal(t, "i1", issues[0].ID)

	// Неизвестное значение фильтра отклоняется
	resp, err = http.Get(ts.srv.URL + "/api/issues?state=bogus")
	require.NoError(t, err)

	var errBody ErrorResponse
	decodeBody(t, resp, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, domain.CodeInvalidInput, errBody.Code)
}
