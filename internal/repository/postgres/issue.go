package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"codecrew/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

// IssueRepository реализует domain.IssueRepository для PostgreSQL
type IssueRepository struct {
	db *sql.DB
}

// NewIssueRepository создаёт новый экземпляр IssueRepository
func NewIssueRepository(db *sql.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

const issueColumns = `id, repository_id, issue_number, title, description, url,
	state, type, has_bounty, reward, bounty_added_at, created_at, updated_at`

// Create создаёт новую issue
func (r *IssueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	query := `
		INSERT INTO issues (id, repository_id, issue_number, title, description, url,
			state, type, has_bounty, reward, bounty_added_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := queryerFrom(ctx, r.db).ExecContext(ctx, query,
		issue.ID, issue.RepositoryID, issue.IssueNumber, issue.Title,
		issue.Description, issue.URL, issue.State, issue.Type,
		issue.HasBounty, issue.Reward, issue.BountyAddedAt,
		issue.CreatedAt, issue.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return fmt.Errorf("issue already exists: %w", err)
			}
			if pgErr.Code == "23503" { // foreign_key_violation
				return domain.ErrNotFound
			}
		}
		return fmt.Errorf("failed to create issue: %w", err)
	}

	return nil
}

// Update обновляет существующую issue
func (r *IssueRepository) Update(ctx context.Context, issue *domain.Issue) error {
	query := `
		UPDATE issues
		SET title = $2, description = $3, url = $4, state = $5, type = $6,
			has_bounty = $7, reward = $8, bounty_added_at = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := queryerFrom(ctx, r.db).ExecContext(ctx, query,
		issue.ID, issue.Title, issue.Description, issue.URL, issue.State,
		issue.Type, issue.HasBounty, issue.Reward, issue.BountyAddedAt,
		issue.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update issue: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Get получает issue по ID
func (r *IssueRepository) Get(ctx context.Context, id string) (*domain.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id = $1`
	return r.scanOne(queryerFrom(ctx, r.db).QueryRowContext(ctx, query, id))
}

// GetByRepoAndNumber получает issue по репозиторию и номеру
func (r *IssueRepository) GetByRepoAndNumber(ctx context.Context, repositoryID string, issueNumber int) (*domain.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE repository_id = $1 AND issue_number = $2`
	return r.scanOne(queryerFrom(ctx, r.db).QueryRowContext(ctx, query, repositoryID, issueNumber))
}

// List возвращает issue по фильтру
func (r *IssueRepository) List(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	var (
		conditions []string
		args       []any
	)

	addCondition := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.RepositoryID != "" {
		addCondition("repository_id = $%d", filter.RepositoryID)
	}
	if filter.State != "" {
		addCondition("state = $%d", filter.State)
	}
	if filter.Type != "" {
		addCondition("type = $%d", filter.Type)
	}
	if filter.HasBounty != nil {
		addCondition("has_bounty = $%d", *filter.HasBounty)
	}

	query := `SELECT ` + issueColumns + ` FROM issues`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	if filter.OrderByReward {
		query += ` ORDER BY reward DESC, created_at DESC`
	} else {
		query += ` ORDER BY created_at DESC`
	}
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := queryerFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	issues := make([]domain.Issue, 0)
	for rows.Next() {
		var issue domain.Issue
		if err := rows.Scan(
			&issue.ID, &issue.RepositoryID, &issue.IssueNumber, &issue.Title,
			&issue.Description, &issue.URL, &issue.State, &issue.Type,
			&issue.HasBounty, &issue.Reward, &issue.BountyAddedAt,
			&issue.CreatedAt, &issue.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		issues = append(issues, issue)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating issues: %w", err)
	}

	return issues, nil
}

// SumBountyRewards возвращает сумму наград bounty-issue репозитория,
// исключая issue с ID excludeIssueID
func (r *IssueRepository) SumBountyRewards(ctx context.Context, repositoryID, excludeIssueID string) (int, error) {
	query := `
		SELECT COALESCE(SUM(reward), 0)
		FROM issues
		WHERE repository_id = $1 AND has_bounty = true AND id <> $2
	`

	var total int
	if err := queryerFrom(ctx, r.db).QueryRowContext(ctx, query, repositoryID, excludeIssueID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum bounty rewards: %w", err)
	}

	return total, nil
}

// CountByType возвращает количество issue по типам
func (r *IssueRepository) CountByType(ctx context.Context) (map[domain.IssueType]int, error) {
	query := `SELECT type, COUNT(*) FROM issues GROUP BY type`

	rows, err := queryerFrom(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count issues by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.IssueType]int)
	for rows.Next() {
		var (
			issueType domain.IssueType
			count     int
		)
		if err := rows.Scan(&issueType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan issue type count: %w", err)
		}
		counts[issueType] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating issue type counts: %w", err)
	}

	return counts, nil
}

// scanOne читает одну строку issue
func (r *IssueRepository) scanOne(row *sql.Row) (*domain.Issue, error) {
	var issue domain.Issue
	err := row.Scan(
		&issue.ID,
		&issue.RepositoryID,
		&issue.IssueNumber,
		&issue.Title,
		&issue.Description,
		&issue.URL,
		&issue.State,
		&issue.Type,
		&issue.HasBounty,
		&issue.Reward,
		&issue.BountyAddedAt,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}

	return &issue, nil
}
