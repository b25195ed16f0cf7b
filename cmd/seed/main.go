// Команда seed наполняет базу демонстрационными данными.
// Единственное место в проекте, где данные удаляются: перед вставкой
// все таблицы очищаются.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"codecrew/internal/config"
	"codecrew/internal/domain"
	"codecrew/internal/repository/postgres"

	"github.com/rs/xid"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(postgres.Config{
		DSN:             cfg.Database.DSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if err := wipe(ctx, db); err != nil {
		return fmt.Errorf("failed to wipe tables: %w", err)
	}

	if err := seed(ctx, db); err != nil {
		return fmt.Errorf("failed to seed data: %w", err)
	}

	fmt.Println("demo data seeded")
	return nil
}

// wipe очищает все таблицы перед вставкой демо-данных
func wipe(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx,
		`TRUNCATE claims, issues, pools, repositories, users CASCADE`)
	return err
}

func seed(ctx context.Context, db *sql.DB) error {
	users := postgres.NewUserRepository(db)
	repos := postgres.NewRepoRepository(db)
	pools := postgres.NewPoolRepository(db)
	issues := postgres.NewIssueRepository(db)
	claims := postgres.NewClaimRepository(db)

	now := time.Now()

	maintainer := &domain.User{
		ID:           xid.New().String(),
		Username:     "demo-maintainer",
		GitHubID:     1000001,
		Email:        "maintainer@example.com",
		AvatarURL:    "https://avatars.githubusercontent.com/u/1000001",
		TokenBalance: 0,
		Role:         "maintainer",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	contributor := &domain.User{
		ID:           xid.New().String(),
		Username:     "demo-contributor",
		GitHubID:     1000002,
		Email:        "contributor@example.com",
		AvatarURL:    "https://avatars.githubusercontent.com/u/1000002",
		TokenBalance: 350,
		Role:         "contributor",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for _, u := range []*domain.User{maintainer, contributor} {
		if err := users.Create(ctx, u); err != nil {
			return err
		}
	}

	repo := &domain.Repository{
		ID:          xid.New().String(),
		Owner:       "demo-maintainer",
		Name:        "awesome-app",
		FullName:    "demo-maintainer/awesome-app",
		Description: "Demo repository with funded bounties",
		URL:         "https://github.com/demo-maintainer/awesome-app",
		Stars:       128,
		Forks:       17,
		OpenIssues:  3,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := repos.Create(ctx, repo); err != nil {
		return err
	}

	pool := &domain.Pool{
		ID:              xid.New().String(),
		RepositoryID:    repo.ID,
		ManagerID:       maintainer.ID,
		Balance:         800,
		DailyDeposited:  800,
		LastDepositTime: now,
		IsActive:        true,
		ContractAddress: "0x0000000000000000000000000000000000c0de",
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := pools.Create(ctx, pool); err != nil {
		return err
	}

	bountyAt := now.Add(-24 * time.Hour)

	seedIssues := []*domain.Issue{
		{
			ID:            xid.New().String(),
			RepositoryID:  repo.ID,
			IssueNumber:   1,
			Title:         "Fix login redirect loop",
			Description:   "Users get stuck in a redirect loop after OAuth login",
			URL:           repo.URL + "/issues/1",
			State:         domain.IssueStateOpen,
			Type:          domain.IssueTypeBug,
			HasBounty:     true,
			Reward:        300,
			BountyAddedAt: &bountyAt,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:           xid.New().String(),
			RepositoryID: repo.ID,
			IssueNumber:  2,
			Title:        "Add dark theme",
			Description:  "Support a dark color scheme in the settings page",
			URL:          repo.URL + "/issues/2",
			State:        domain.IssueStateOpen,
			Type:         domain.IssueTypeEnhancement,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           xid.New().String(),
			RepositoryID: repo.ID,
			IssueNumber:  3,
			Title:        "Document webhook setup",
			Description:  "The README does not explain how to configure the GitHub App",
			URL:          repo.URL + "/issues/3",
			State:        domain.IssueStateOpen,
			Type:         domain.IssueTypeDocs,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}

	for _, issue := range seedIssues {
		if err := issues.Create(ctx, issue); err != nil {
			return err
		}
	}

	claim := &domain.Claim{
		ID:        xid.New().String(),
		UserID:    contributor.ID,
		IssueID:   seedIssues[0].ID,
		Status:    domain.ClaimStatusClaimed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return claims.Create(ctx, claim)
}
