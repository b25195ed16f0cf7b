package service

import (
	"context"
	"testing"

	"codecrew/internal/domain"
	ghclient "codecrew/internal/github"
	"codecrew/internal/testutil"
)

// TestAuthService_UpsertFromProfile tests user creation and refresh on login
func TestAuthService_UpsertFromProfile(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	ctx := context.Background()

	profile := &ghclient.Profile{
		ID:        42424242,
		Login:     "octocat",
		Email:     "octocat@example.com",
		AvatarURL: "https://avatars.githubusercontent.com/u/42424242",
	}

	created, err := svc.upsertFromProfile(ctx, profile, "token-one")
	testutil.AssertNoError(t, err, "first login")
	testutil.AssertEqual(t, created.Username, "octocat", "username")
	testutil.AssertEqual(t, created.GitHubID, int64(42424242), "github id")
	testutil.AssertEqual(t, created.Role, "contributor", "default role")
	testutil.AssertEqual(t, created.AccessToken, "token-one", "access token")

	// Повторный вход с новым логином и токеном обновляет ту же запись
	profile.Login = "octocat-renamed"
	refreshed, err := svc.upsertFromProfile(ctx, profile, "token-two")
	testutil.AssertNoError(t, err, "second login")
	testutil.AssertEqual(t, refreshed.ID, created.ID, "same user id")
	testutil.AssertEqual(t, refreshed.Username, "octocat-renamed", "refreshed username")
	testutil.AssertEqual(t, refreshed.AccessToken, "token-two", "refreshed token")

	// Старого имени больше нет, второй записи не появилось
	_, err = env.store.Users().GetByUsername(ctx, "octocat")
	testutil.AssertErrorIs(t, err, domain.ErrNotFound, "old username gone")
}

// TestAuthService_DevLogin tests the development login fallback
func TestAuthService_DevLogin(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	ctx := context.Background()

	user, err := svc.DevLogin(ctx, "local-dev")
	testutil.AssertNoError(t, err, "create dev user")
	testutil.AssertEqual(t, user.Username, "local-dev", "username")
	testutil.AssertTrue(t, user.GitHubID < 0, "dev user gets a fake negative github id")

	again, err := svc.DevLogin(ctx, "local-dev")
	testutil.AssertNoError(t, err, "repeat dev login")
	testutil.AssertEqual(t, again.ID, user.ID, "same user returned")

	_, err = svc.DevLogin(ctx, "")
	testutil.AssertErrorIs(t, err, domain.ErrInvalidInput, "empty username")
}
