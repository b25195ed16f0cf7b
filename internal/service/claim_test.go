package service

import (
	"context"
	"testing"

	"codecrew/internal/domain"
	"codecrew/internal/testutil"
)

// claimFixture seeds a funded repository with one bountied issue
func claimFixture(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()

	env.seedUser(t, "maintainer", "alice")
	env.seedUser(t, "contributor", "bob")
	env.seedRepo(t, "r1", "alice", "app")
	env.seedIssue(t, "i1", "r1", 7)

	if _, err := env.bountyService().FundPool(ctx, "maintainer", "r1", 500); err != nil {
		t.Fatalf("failed to fund pool: %v", err)
	}
	if _, err := env.bountyService().SetBounty(ctx, "maintainer", "i1", 300); err != nil {
		t.Fatalf("failed to set bounty: %v", err)
	}
}

// TestClaimService_ClaimIssue tests claiming a bountied issue
func TestClaimService_ClaimIssue(t *testing.T) {
	env := newTestEnv(t)
	claimFixture(t, env)
	svc := env.claimService()
	ctx := context.Background()

	claim, err := svc.ClaimIssue(ctx, "contributor", "i1")
	testutil.AssertNoError(t, err, "claim issue")
	testutil.AssertEqual(t, claim.Status, domain.ClaimStatusClaimed, "status")
	testutil.AssertEqual(t, claim.IssueID, "i1", "issue id")

	// Вторая неконечная заявка той же пары отклоняется без новой записи
	_, err = svc.ClaimIssue(ctx, "contributor", "i1")
	testutil.AssertErrorIs(t, err, domain.ErrClaimExists, "duplicate claim")

	claims, err := svc.ListByUser(ctx, "contributor")
	testutil.AssertNoError(t, err, "list claims")
	testutil.AssertLen(t, claims, 1, "single claim row")
}

// TestClaimService_ClaimIssue_NoBounty tests claiming an issue without a bounty
func TestClaimService_ClaimIssue_NoBounty(t *testing.T) {
	env := newTestEnv(t)
	claimFixture(t, env)
	env.seedIssue(t, "i2", "r1", 8)

	_, err := env.claimService().ClaimIssue(context.Background(), "contributor", "i2")
	testutil.AssertErrorIs(t, err, domain.ErrNoBounty, "issue without bounty")

	_, err = env.claimService().ClaimIssue(context.Background(), "contributor", "i999")
	testutil.AssertErrorIs(t, err, domain.ErrNotFound, "unknown issue")
}

// TestClaimService_LinkPR tests linking a pull request to a claim
func TestClaimService_LinkPR(t *testing.T) {
	env := newTestEnv(t)
	claimFixture(t, env)
	svc := env.claimService()
	ctx := context.Background()

	claim, err := svc.ClaimIssue(ctx, "contributor", "i1")
	testutil.AssertNoError(t, err, "claim issue")

	// Некорректный URL отклоняется до каких-либо изменений
	_, err = svc.LinkPR(ctx, "contributor", claim.ID, "https://example.com/pull/1")
	testutil.AssertErrorIs(t, err, domain.ErrMalformedPRURL, "malformed url")

	// Чужая заявка недоступна
	_, err = svc.LinkPR(ctx, "maintainer", claim.ID, "https://github.com/alice/app/pull/123")
	testutil.AssertErrorIs(t, err, domain.ErrForbidden, "foreign claim")

	untouched, err := env.store.Claims().Get(ctx, claim.ID)
	testutil.AssertNoError(t, err, "get claim")
	testutil.AssertEqual(t, untouched.Status, domain.ClaimStatusClaimed, "claim untouched")

	linked, err := svc.LinkPR(ctx, "contributor", claim.ID, "https://github.com/alice/app/pull/123")
	testutil.AssertNoError(t, err, "link pr")
	testutil.AssertEqual(t, linked.Status, domain.ClaimStatusSubmitted, "status")
	testutil.AssertEqual(t, linked.PRNumber, 123, "pr number")

	// Повторная привязка к уже отправленной заявке отклоняется
	_, err = svc.LinkPR(ctx, "contributor", claim.ID, "https://github.com/alice/app/pull/124")
	testutil.AssertErrorIs(t, err, domain.ErrClaimState, "wrong status")
}

// TestParsePRNumber tests pull request URL parsing
func TestParsePRNumber(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    int
		wantErr bool
	}{
		{
			name: "plain pull url",
			url:  "https://github.com/owner/repo/pull/123",
			want: 123,
		},
		{
			name: "trailing slash",
			url:  "https://github.com/owner/repo/pull/7/",
			want: 7,
		},
		{
			name: "surrounding whitespace",
			url:  "  https://github.com/owner/repo/pull/42  ",
			want: 42,
		},
		{
			name:    "issue url",
			url:     "https://github.com/owner/repo/issues/123",
			wantErr: true,
		},
		{
			name:    "not github",
			url:     "https://gitlab.com/owner/repo/pull/123",
			wantErr: true,
		},
		{
			name:    "missing number",
			url:     "https://github.com/owner/repo/pull/",
			wantErr: true,
		},
		{
			name:    "empty",
			url:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePRNumber(tt.url)

			if tt.wantErr {
				testutil.AssertErrorIs(t, err, domain.ErrMalformedPRURL, "expected parse error")
				return
			}

			testutil.AssertNoError(t, err, "parse")
			testutil.AssertEqual(t, got, tt.want, "pr number")
		})
	}
}

// TestClaimService_HandlePullRequestEvent tests webhook-driven transitions
func TestClaimService_HandlePullRequestEvent(t *testing.T) {
	env := newTestEnv(t)
	claimFixture(t, env)
	svc := env.claimService()
	ctx := context.Background()

	claim, err := svc.ClaimIssue(ctx, "contributor", "i1")
	testutil.AssertNoError(t, err, "claim issue")

	_, err = svc.LinkPR(ctx, "contributor", claim.ID, "https://github.com/alice/app/pull/42")
	testutil.AssertNoError(t, err, "link pr")

	// Событие по чужому репозиторию игнорируется
	testutil.AssertNoError(t, svc.HandlePullRequestEvent(ctx, "someone/else", 42, "closed", true), "foreign repo")

	// Закрытие PR без merge статус не меняет
	testutil.AssertNoError(t, svc.HandlePullRequestEvent(ctx, "alice/app", 42, "closed", false), "pr closed unmerged")

	current, err := env.store.Claims().Get(ctx, claim.ID)
	testutil.AssertNoError(t, err, "get claim")
	testutil.AssertEqual(t, current.Status, domain.ClaimStatusSubmitted, "still submitted")

	// Открытие и обновление PR переводит заявку в review
	testutil.AssertNoError(t, svc.HandlePullRequestEvent(ctx, "alice/app", 42, "synchronize", false), "pr activity")

	current, err = env.store.Claims().Get(ctx, claim.ID)
	testutil.AssertNoError(t, err, "get claim")
	testutil.AssertEqual(t, current.Status, domain.ClaimStatusReview, "moved to review")

	// Merge закрывает цикл: выплата, списание из пула, закрытие issue
	testutil.AssertNoError(t, svc.HandlePullRequestEvent(ctx, "alice/app", 42, "closed", true), "pr merged")

	settled, err := env.store.Claims().Get(ctx, claim.ID)
	testutil.AssertNoError(t, err, "get settled claim")
	testutil.AssertEqual(t, settled.Status, domain.ClaimStatusApproved, "approved")
	testutil.AssertNotNil(t, settled.CompletedAt, "completion timestamp")
	testutil.AssertNotEqual(t, settled.TransactionHash, "", "transaction hash recorded")

	user, err := env.store.Users().Get(ctx, "contributor")
	testutil.AssertNoError(t, err, "get user")
	testutil.AssertEqual(t, user.TokenBalance, 300, "reward credited")

	pool, err := env.store.Pools().GetByRepository(ctx, "r1")
	testutil.AssertNoError(t, err, "get pool")
	testutil.AssertEqual(t, pool.Balance, 200, "pool debited")

	issue, err := env.store.Issues().Get(ctx, "i1")
	testutil.AssertNoError(t, err, "get issue")
	testutil.AssertFalse(t, issue.HasBounty, "bounty removed")
	testutil.AssertEqual(t, issue.State, domain.IssueStateClosed, "issue closed")

	testutil.AssertLen(t, env.escrow.CallsTo("CompleteBounty"), 1, "escrow payout")
}

// TestClaimService_ListRecent tests the limit clamp
func TestClaimService_ListRecent(t *testing.T) {
	env := newTestEnv(t)
	claimFixture(t, env)
	svc := env.claimService()
	ctx := context.Background()

	if _, err := svc.ClaimIssue(ctx, "contributor", "i1"); err != nil {
		t.Fatalf("failed to claim issue: %v", err)
	}

	for _, limit := range []int{-1, 0, 51, 10} {
		claims, err := svc.ListRecent(ctx, limit)
		testutil.AssertNoError(t, err, "list recent")
		testutil.AssertLen(t, claims, 1, "claims listed")
	}
}
