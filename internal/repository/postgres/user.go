package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codecrew/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

// UserRepository реализует domain.UserRepository для PostgreSQL
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository создаёт новый экземпляр UserRepository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, github_id, email, avatar_url, access_token,
	wallet_address, token_balance, role, created_at, updated_at`

// Create создаёт нового пользователя
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, github_id, email, avatar_url, access_token,
			wallet_address, token_balance, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := queryerFrom(ctx, r.db).ExecContext(ctx, query,
		user.ID, user.Username, user.GitHubID, user.Email, user.AvatarURL,
		user.AccessToken, user.WalletAddress, user.TokenBalance, user.Role,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("user already exists: %w", err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// Update обновляет существующего пользователя
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET username = $2, email = $3, avatar_url = $4, access_token = $5,
			wallet_address = $6, token_balance = $7, role = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := queryerFrom(ctx, r.db).ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.AvatarURL, user.AccessToken,
		user.WalletAddress, user.TokenBalance, user.Role, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
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

// Get получает пользователя по ID
func (r *UserRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(queryerFrom(ctx, r.db).QueryRowContext(ctx, query, id))
}

// GetByGitHubID получает пользователя по GitHub ID
func (r *UserRepository) GetByGitHubID(ctx context.Context, githubID int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE github_id = $1`
	return r.scanOne(queryerFrom(ctx, r.db).QueryRowContext(ctx, query, githubID))
}

// GetByUsername получает пользователя по имени
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanOne(queryerFrom(ctx, r.db).QueryRowContext(ctx, query, username))
}

// CreditTokens увеличивает баланс пользователя на amount
func (r *UserRepository) CreditTokens(ctx context.Context, id string, amount int) error {
	query := `UPDATE users SET token_balance = token_balance + $2, updated_at = now() WHERE id = $1`

	result, err := queryerFrom(ctx, r.db).ExecContext(ctx, query, id, amount)
	if err != nil {
		return fmt.Errorf("failed to credit tokens: %w", err)
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

// scanOne читает одну строку пользователя
func (r *UserRepository) scanOne(row *sql.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.GitHubID,
		&user.Email,
		&user.AvatarURL,
		&user.AccessToken,
		&user.WalletAddress,
		&user.TokenBalance,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}
