package memory

import (
	"context"
	"testing"
	"time"

	"codecrew/internal/domain"
	"codecrew/internal/testutil"
)

// TestPoolRepository_OnePerRepo tests the one pool per repository constraint
func TestPoolRepository_OnePerRepo(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	pool := &domain.Pool{ID: "p1", RepositoryID: "r1", Balance: 100}
	testutil.AssertNoError(t, store.Pools().Create(ctx, pool), "create pool")

	dupe := &domain.Pool{ID: "p2", RepositoryID: "r1", Balance: 50}
	err := store.Pools().Create(ctx, dupe)
	testutil.AssertErrorIs(t, err, domain.ErrPoolExists, "second pool for same repo")
}

// TestClaimRepository_ActiveUniqueness tests the non-terminal claim constraint
func TestClaimRepository_ActiveUniqueness(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	first := &domain.Claim{ID: "c1", UserID: "u1", IssueID: "i1", Status: domain.ClaimStatusClaimed}
	testutil.AssertNoError(t, store.Claims().Create(ctx, first), "create claim")

	// Вторая неконечная заявка той же пары отклоняется
	dupe := &domain.Claim{ID: "c2", UserID: "u1", IssueID: "i1", Status: domain.ClaimStatusClaimed}
	err := store.Claims().Create(ctx, dupe)
	testutil.AssertErrorIs(t, err, domain.ErrClaimExists, "duplicate active claim")

	// После завершения первой заявки новая допустима
	first.Status = domain.ClaimStatusRejected
	testutil.AssertNoError(t, store.Claims().Update(ctx, first), "reject first claim")
	testutil.AssertNoError(t, store.Claims().Create(ctx, dupe), "claim after terminal state")

	// Другая пара (user, issue) не конфликтует
	other := &domain.Claim{ID: "c3", UserID: "u2", IssueID: "i1", Status: domain.ClaimStatusClaimed}
	testutil.AssertNoError(t, store.Claims().Create(ctx, other), "claim by another user")
}

// TestClaimRepository_GetActiveByUserAndIssue tests active claim lookup
func TestClaimRepository_GetActiveByUserAndIssue(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	done := &domain.Claim{ID: "c1", UserID: "u1", IssueID: "i1", Status: domain.ClaimStatusApproved}
	testutil.AssertNoError(t, store.Claims().Create(ctx, done), "create terminal claim")

	// Конечная заявка не считается активной
	_, err := store.Claims().GetActiveByUserAndIssue(ctx, "u1", "i1")
	testutil.AssertErrorIs(t, err, domain.ErrNotFound, "terminal claim is not active")

	active := &domain.Claim{ID: "c2", UserID: "u1", IssueID: "i1", Status: domain.ClaimStatusSubmitted}
	testutil.AssertNoError(t, store.Claims().Create(ctx, active), "create active claim")

	found, err := store.Claims().GetActiveByUserAndIssue(ctx, "u1", "i1")
	testutil.AssertNoError(t, err, "find active claim")
	testutil.AssertEqual(t, found.ID, "c2", "active claim id")
}

// TestIssueRepository_List tests filtering and ordering
func TestIssueRepository_List(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Now()

	seed := []*domain.Issue{
		{ID: "i1", RepositoryID: "r1", IssueNumber: 1, State: domain.IssueStateOpen, Type: domain.IssueTypeBug, HasBounty: true, Reward: 100, CreatedAt: now},
		{ID: "i2", RepositoryID: "r1", IssueNumber: 2, State: domain.IssueStateOpen, Type: domain.IssueTypeFeature, HasBounty: true, Reward: 400, CreatedAt: now.Add(time.Second)},
		{ID: "i3", RepositoryID: "r1", IssueNumber: 3, State: domain.IssueStateClosed, Type: domain.IssueTypeBug, CreatedAt: now.Add(2 * time.Second)},
		{ID: "i4", RepositoryID: "r2", IssueNumber: 1, State: domain.IssueStateOpen, Type: domain.IssueTypeDocs, CreatedAt: now.Add(3 * time.Second)},
	}
	for _, issue := range seed {
		testutil.AssertNoError(t, store.Issues().Create(ctx, issue), "seed issue")
	}

	hasBounty := true

	tests := []struct {
		name    string
		filter  domain.IssueFilter
		wantIDs []string
	}{
		{
			name:    "by repository",
			filter:  domain.IssueFilter{RepositoryID: "r2"},
			wantIDs: []string{"i4"},
		},
		{
			name:    "open bugs",
			filter:  domain.IssueFilter{State: domain.IssueStateOpen, Type: domain.IssueTypeBug},
			wantIDs: []string{"i1"},
		},
		{
			name:    "bountied by reward",
			filter:  domain.IssueFilter{HasBounty: &hasBounty, OrderByReward: true},
			wantIDs: []string{"i2", "i1"},
		},
		{
			name:    "with limit",
			filter:  domain.IssueFilter{RepositoryID: "r1", Limit: 2},
			wantIDs: []string{"i3", "i2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues, err := store.Issues().List(ctx, tt.filter)
			testutil.AssertNoError(t, err, "list issues")

			ids := make([]string, len(issues))
			for i, issue := range issues {
				ids[i] = issue.ID
			}
			testutil.AssertEqual(t, ids, tt.wantIDs, "issue order")
		})
	}
}

// TestUserRepository_CreditTokens tests balance crediting
func TestUserRepository_CreditTokens(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	user := &domain.User{ID: "u1", Username: "alice", TokenBalance: 50}
	testutil.AssertNoError(t, store.Users().Create(ctx, user), "create user")

	testutil.AssertNoError(t, store.Users().CreditTokens(ctx, "u1", 300), "credit tokens")

	got, err := store.Users().Get(ctx, "u1")
	testutil.AssertNoError(t, err, "get user")
	testutil.AssertEqual(t, got.TokenBalance, 350, "balance")

	err = store.Users().CreditTokens(ctx, "u999", 10)
	testutil.AssertErrorIs(t, err, domain.ErrNotFound, "unknown user")
}

// TestStore_CopySemantics tests that reads return detached copies
func TestStore_CopySemantics(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	repo := &domain.Repository{ID: "r1", Owner: "alice", Name: "app", FullName: "alice/app"}
	testutil.AssertNoError(t, store.Repos().Create(ctx, repo), "create repo")

	got, err := store.Repos().Get(ctx, "r1")
	testutil.AssertNoError(t, err, "get repo")

	got.Owner = "mutated"

	again, err := store.Repos().Get(ctx, "r1")
	testutil.AssertNoError(t, err, "get repo again")
	testutil.AssertEqual(t, again.Owner, "alice", "stored value untouched")
}
