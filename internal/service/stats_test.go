package service

import (
	"context"
	"testing"

	"codecrew/internal/domain"
	"codecrew/internal/testutil"
)

// TestStatsService_GetDashboard tests the dashboard aggregation
func TestStatsService_GetDashboard(t *testing.T) {
	env := newTestEnv(t)
	claimFixture(t, env)
	svc := env.statsService()
	ctx := context.Background()

	claim, err := env.claimService().ClaimIssue(ctx, "contributor", "i1")
	testutil.AssertNoError(t, err, "claim issue")

	_, err = env.claimService().LinkPR(ctx, "contributor", claim.ID, "https://github.com/alice/app/pull/5")
	testutil.AssertNoError(t, err, "link pr")

	dashboard, err := svc.GetDashboard(ctx, "contributor")
	testutil.AssertNoError(t, err, "get dashboard")
	testutil.AssertEqual(t, dashboard.User.Username, "bob", "user")
	testutil.AssertEqual(t, dashboard.Stats.Active, 1, "active claims")
	testutil.AssertEqual(t, dashboard.Stats.Completed, 0, "completed claims")

	// После merge заявка переходит в завершённые с заработком
	testutil.AssertNoError(t, env.claimService().HandlePullRequestEvent(ctx, "alice/app", 5, "closed", true), "merge")

	dashboard, err = svc.GetDashboard(ctx, "contributor")
	testutil.AssertNoError(t, err, "get dashboard after merge")
	testutil.AssertEqual(t, dashboard.Stats.Active, 0, "active claims")
	testutil.AssertEqual(t, dashboard.Stats.Completed, 1, "completed claims")
	testutil.AssertEqual(t, dashboard.Stats.TotalEarned, 300, "total earned")

	_, err = svc.GetDashboard(ctx, "nobody")
	testutil.AssertErrorIs(t, err, domain.ErrNotFound, "unknown user")
}

// TestStatsService_GetRewardsChart tests the monthly rewards series
func TestStatsService_GetRewardsChart(t *testing.T) {
	env := newTestEnv(t)
	claimFixture(t, env)
	svc := env.statsService()
	ctx := context.Background()

	claim, err := env.claimService().ClaimIssue(ctx, "contributor", "i1")
	testutil.AssertNoError(t, err, "claim issue")
	_, err = env.claimService().LinkPR(ctx, "contributor", claim.ID, "https://github.com/alice/app/pull/5")
	testutil.AssertNoError(t, err, "link pr")
	testutil.AssertNoError(t, env.claimService().HandlePullRequestEvent(ctx, "alice/app", 5, "closed", true), "merge")

	rewards, err := svc.GetRewardsChart(ctx, "contributor")
	testutil.AssertNoError(t, err, "get chart")
	testutil.AssertLen(t, rewards, 1, "one month")
	testutil.AssertEqual(t, rewards[0].Total, 300, "month total")
}

// TestStatsService_GetPopularLabels tests issue type popularity ordering
func TestStatsService_GetPopularLabels(t *testing.T) {
	env := newTestEnv(t)
	svc := env.statsService()
	ctx := context.Background()

	env.seedRepo(t, "r1", "alice", "app")
	for i, issueType := range []domain.IssueType{
		domain.IssueTypeBug, domain.IssueTypeBug, domain.IssueTypeDocs,
		domain.IssueTypeFeature, domain.IssueTypeFeature, domain.IssueTypeFeature,
	} {
		issue := env.seedIssue(t, string(rune('a'+i)), "r1", i+1)
		issue.Type = issueType
		testutil.AssertNoError(t, env.store.Issues().Update(ctx, issue), "set issue type")
	}

	labels, err := svc.GetPopularLabels(ctx)
	testutil.AssertNoError(t, err, "get labels")
	testutil.AssertLen(t, labels, 3, "distinct types")
	testutil.AssertEqual(t, labels[0], LabelCount{Label: "feature", Count: 3}, "most popular")
	testutil.AssertEqual(t, labels[1], LabelCount{Label: "bug", Count: 2}, "second")
	testutil.AssertEqual(t, labels[2], LabelCount{Label: "docs", Count: 1}, "third")
}
