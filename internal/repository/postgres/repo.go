package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codecrew/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

// RepoRepository реализует domain.RepoRepository для PostgreSQL
type RepoRepository struct {
	db *sql.DB
}

// NewRepoRepository создаёт новый экземпляр RepoRepository
func NewRepoRepository(db *sql.DB) *RepoRepository {
	return &RepoRepository{db: db}
}

const repoColumns = `id, owner, name, full_name, description, url,
	stars, forks, open_issues, is_private, created_at, updated_at`

// Create создаёт новый репозиторий
func (r *RepoRepository) Create(ctx context.Context, repo *domain.Repository) error {
	query := `
		INSERT INTO repositories (id, owner, name, full_name, description, url,
			stars, forks, open_issues, is_private, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := queryerFrom(ctx, r.db).ExecContext(ctx, query,
		repo.ID, repo.Owner, repo.Name, repo.FullName, repo.Description, repo.URL,
		repo.Stars, repo.Forks, repo.OpenIssues, repo.IsPrivate,
		repo.CreatedAt, repo.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("repository already exists: %w", err)
		}
		return fmt.Errorf("failed to create repository: %w", err)
	}

	return nil
}

// Update обновляет существующий репозиторий
func (r *RepoRepository) Update(ctx context.Context, repo *domain.Repository) error {
	query := `
		UPDATE repositories
		SET description = $2, url = $3, stars = $4, forks = $5,
			open_issues = $6, is_private = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := queryerFrom(ctx, r.db).ExecContext(ctx, query,
		repo.ID, repo.Description, repo.URL, repo.Stars, repo.Forks,
		repo.OpenIssues, repo.IsPrivate, repo.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update repository: %w", err)
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

// Get получает репозиторий по ID
func (r *RepoRepository) Get(ctx context.Context, id string) (*domain.Repository, error) {
	query := `SELECT ` + repoColumns + ` FROM repositories WHERE id = $1`
	return r.scanOne(queryerFrom(ctx, r.db).QueryRowContext(ctx, query, id))
}

// GetByFullName получает репозиторий по полному имени "owner/name"
func (r *RepoRepository) GetByFullName(ctx context.Context, fullName string) (*domain.Repository, error) {
	query := `SELECT ` + repoColumns + ` FROM repositories WHERE full_name = $1`
	return r.scanOne(queryerFrom(ctx, r.db).QueryRowContext(ctx, query, fullName))
}

// List возвращает все репозитории платформы
func (r *RepoRepository) List(ctx context.Context) ([]domain.Repository, error) {
	query := `SELECT ` + repoColumns + ` FROM repositories ORDER BY full_name`

	rows, err := queryerFrom(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	defer rows.Close()

	repos := make([]domain.Repository, 0)
	for rows.Next() {
		var repo domain.Repository
		if err := rows.Scan(
			&repo.ID, &repo.Owner, &repo.Name, &repo.FullName, &repo.Description,
			&repo.URL, &repo.Stars, &repo.Forks, &repo.OpenIssues, &repo.IsPrivate,
			&repo.CreatedAt, &repo.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan repository: %w", err)
		}
		repos = append(repos, repo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating repositories: %w", err)
	}

	return repos, nil
}

// scanOne читает одну строку репозитория
func (r *RepoRepository) scanOne(row *sql.Row) (*domain.Repository, error) {
	var repo domain.Repository
	err := row.Scan(
		&repo.ID,
		&repo.Owner,
		&repo.Name,
		&repo.FullName,
		&repo.Description,
		&repo.URL,
		&repo.Stars,
		&repo.Forks,
		&repo.OpenIssues,
		&repo.IsPrivate,
		&repo.CreatedAt,
		&repo.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}

	return &repo, nil
}
