package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codecrew/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

// ClaimRepository реализует domain.ClaimRepository для PostgreSQL
type ClaimRepository struct {
	db *sql.DB
}

// NewClaimRepository создаёт новый экземпляр ClaimRepository
func NewClaimRepository(db *sql.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

const claimColumns = `id, user_id, issue_id, status, pr_url, pr_number,
	transaction_hash, completed_at, created_at, updated_at`

// Create создаёт новую заявку.
// Частичный уникальный индекс по (user_id, issue_id) для неконечных статусов
// превращает гонку двух одновременных заявок в domain.ErrClaimExists.
func (r *ClaimRepository) Create(ctx context.Context, claim *domain.Claim) error {
	query := `
		INSERT INTO claims (id, user_id, issue_id, status, pr_url, pr_number,
			transaction_hash, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := queryerFrom(ctx, r.db).ExecContext(ctx, query,
		claim.ID, claim.UserID, claim.IssueID, claim.Status, claim.PRURL,
		claim.PRNumber, claim.TransactionHash, claim.CompletedAt,
		claim.CreatedAt, claim.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return domain.ErrClaimExists
			}
			if pgErr.Code == "23503" { // foreign_key_violation
				return domain.ErrNotFound
			}
		}
		return fmt.Errorf("failed to create claim: %w", err)
	}

	return nil
}

// Update обновляет существующую заявку
func (r *ClaimRepository) Update(ctx context.Context, claim *domain.Claim) error {
	query := `
		UPDATE claims
		SET status = $2, pr_url = $3, pr_number = $4, transaction_hash = $5,
			completed_at = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := queryerFrom(ctx, r.db).ExecContext(ctx, query,
		claim.ID, claim.Status, claim.PRURL, claim.PRNumber,
		claim.TransactionHash, claim.CompletedAt, claim.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update claim: %w", err)
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

// Get получает заявку по ID
func (r *ClaimRepository) Get(ctx context.Context, id string) (*domain.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = $1`
	return r.scanOne(queryerFrom(ctx, r.db).QueryRowContext(ctx, query, id))
}

// GetActiveByUserAndIssue получает неконечную заявку пары (user, issue)
func (r *ClaimRepository) GetActiveByUserAndIssue(ctx context.Context, userID, issueID string) (*domain.Claim, error) {
	query := `
		SELECT ` + claimColumns + `
		FROM claims
		WHERE user_id = $1 AND issue_id = $2
			AND status NOT IN ('approved', 'rejected', 'expired')
	`
	return r.scanOne(queryerFrom(ctx, r.db).QueryRowContext(ctx, query, userID, issueID))
}

// ListByUser возвращает заявки пользователя вместе с issue
func (r *ClaimRepository) ListByUser(ctx context.Context, userID string) ([]domain.ClaimWithIssue, error) {
	query := `
		SELECT c.id, c.user_id, c.issue_id, c.status, c.pr_url, c.pr_number,
			c.transaction_hash, c.completed_at, c.created_at, c.updated_at,
			` + prefixedIssueColumns("i") + `
		FROM claims c
		JOIN issues i ON i.id = c.issue_id
		WHERE c.user_id = $1
		ORDER BY c.created_at DESC
	`

	rows, err := queryerFrom(ctx, r.db).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims by user: %w", err)
	}
	defer rows.Close()

	return scanClaimsWithIssues(rows)
}

// ListRecent возвращает последние заявки платформы
func (r *ClaimRepository) ListRecent(ctx context.Context, limit int) ([]domain.ClaimWithIssue, error) {
	query := `
		SELECT c.id, c.user_id, c.issue_id, c.status, c.pr_url, c.pr_number,
			c.transaction_hash, c.completed_at, c.created_at, c.updated_at,
			` + prefixedIssueColumns("i") + `
		FROM claims c
		JOIN issues i ON i.id = c.issue_id
		ORDER BY c.created_at DESC
		LIMIT $1
	`

	rows, err := queryerFrom(ctx, r.db).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent claims: %w", err)
	}
	defer rows.Close()

	return scanClaimsWithIssues(rows)
}

// ListByPRNumber возвращает заявки репозитория с указанным номером PR
func (r *ClaimRepository) ListByPRNumber(ctx context.Context, repositoryID string, prNumber int) ([]domain.Claim, error) {
	query := `
		SELECT c.id, c.user_id, c.issue_id, c.status, c.pr_url, c.pr_number,
			c.transaction_hash, c.completed_at, c.created_at, c.updated_at
		FROM claims c
		JOIN issues i ON i.id = c.issue_id
		WHERE i.repository_id = $1 AND c.pr_number = $2
	`

	rows, err := queryerFrom(ctx, r.db).QueryContext(ctx, query, repositoryID, prNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims by PR number: %w", err)
	}
	defer rows.Close()

	claims := make([]domain.Claim, 0)
	for rows.Next() {
		var claim domain.Claim
		if err := scanClaim(rows, &claim); err != nil {
			return nil, err
		}
		claims = append(claims, claim)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating claims: %w", err)
	}

	return claims, nil
}

// UserStats возвращает сводку по заявкам пользователя
func (r *ClaimRepository) UserStats(ctx context.Context, userID string) (*domain.UserClaimStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE c.status NOT IN ('approved', 'rejected', 'expired')),
			COUNT(*) FILTER (WHERE c.status = 'approved'),
			COALESCE(SUM(i.reward) FILTER (WHERE c.status = 'approved'), 0)
		FROM claims c
		JOIN issues i ON i.id = c.issue_id
		WHERE c.user_id = $1
	`

	var stats domain.UserClaimStats
	err := queryerFrom(ctx, r.db).QueryRowContext(ctx, query, userID).Scan(
		&stats.Active, &stats.Completed, &stats.TotalEarned)
	if err != nil {
		return nil, fmt.Errorf("failed to get user claim stats: %w", err)
	}

	return &stats, nil
}

// MonthlyRewards возвращает суммы наград пользователя по месяцам
func (r *ClaimRepository) MonthlyRewards(ctx context.Context, userID string) ([]domain.MonthlyReward, error) {
	query := `
		SELECT to_char(c.completed_at, 'YYYY-MM') AS month, SUM(i.reward)
		FROM claims c
		JOIN issues i ON i.id = c.issue_id
		WHERE c.user_id = $1 AND c.status = 'approved' AND c.completed_at IS NOT NULL
		GROUP BY month
		ORDER BY month
	`

	rows, err := queryerFrom(ctx, r.db).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly rewards: %w", err)
	}
	defer rows.Close()

	rewards := make([]domain.MonthlyReward, 0)
	for rows.Next() {
		var reward domain.MonthlyReward
		if err := rows.Scan(&reward.Month, &reward.Total); err != nil {
			return nil, fmt.Errorf("failed to scan monthly reward: %w", err)
		}
		rewards = append(rewards, reward)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly rewards: %w", err)
	}

	return rewards, nil
}

// scanOne читает одну строку заявки
func (r *ClaimRepository) scanOne(row *sql.Row) (*domain.Claim, error) {
	var claim domain.Claim
	err := row.Scan(
		&claim.ID,
		&claim.UserID,
		&claim.IssueID,
		&claim.Status,
		&claim.PRURL,
		&claim.PRNumber,
		&claim.TransactionHash,
		&claim.CompletedAt,
		&claim.CreatedAt,
		&claim.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	return &claim, nil
}

// scanClaim читает поля заявки из rows
func scanClaim(rows *sql.Rows, claim *domain.Claim) error {
	if err := rows.Scan(
		&claim.ID, &claim.UserID, &claim.IssueID, &claim.Status,
		&claim.PRURL, &claim.PRNumber, &claim.TransactionHash,
		&claim.CompletedAt, &claim.CreatedAt, &claim.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to scan claim: %w", err)
	}
	return nil
}

// scanClaimsWithIssues читает строки вида claim + issue
func scanClaimsWithIssues(rows *sql.Rows) ([]domain.ClaimWithIssue, error) {
	result := make([]domain.ClaimWithIssue, 0)
	for rows.Next() {
		var item domain.ClaimWithIssue
		if err := rows.Scan(
			&item.Claim.ID, &item.Claim.UserID, &item.Claim.IssueID, &item.Claim.Status,
			&item.Claim.PRURL, &item.Claim.PRNumber, &item.Claim.TransactionHash,
			&item.Claim.CompletedAt, &item.Claim.CreatedAt, &item.Claim.UpdatedAt,
			&item.Issue.ID, &item.Issue.RepositoryID, &item.Issue.IssueNumber,
			&item.Issue.Title, &item.Issue.Description, &item.Issue.URL,
			&item.Issue.State, &item.Issue.Type, &item.Issue.HasBounty,
			&item.Issue.Reward, &item.Issue.BountyAddedAt,
			&item.Issue.CreatedAt, &item.Issue.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan claim with issue: %w", err)
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating claims: %w", err)
	}

	return result, nil
}

// prefixedIssueColumns возвращает список колонок issue с алиасом таблицы
func prefixedIssueColumns(alias string) string {
	return alias + `.id, ` + alias + `.repository_id, ` + alias + `.issue_number, ` +
		alias + `.title, ` + alias + `.description, ` + alias + `.url, ` +
		alias + `.state, ` + alias + `.type, ` + alias + `.has_bounty, ` +
		alias + `.reward, ` + alias + `.bounty_added_at, ` +
		alias + `.created_at, ` + alias + `.updated_at`
}
