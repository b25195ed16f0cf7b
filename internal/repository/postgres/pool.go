package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codecrew/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

// PoolRepository реализует domain.PoolRepository для PostgreSQL
type PoolRepository struct {
	db *sql.DB
}

// NewPoolRepository создаёт новый экземпляр PoolRepository
func NewPoolRepository(db *sql.DB) *PoolRepository {
	return &PoolRepository{db: db}
}

const poolColumns = `id, repository_id, manager_id, balance, daily_deposited,
	last_deposit_time, is_active, contract_address, created_at, updated_at`

// Create создаёт новый пул
func (r *PoolRepository) Create(ctx context.Context, pool *domain.Pool) error {
	query := `
		INSERT INTO pools (id, repository_id, manager_id, balance, daily_deposited,
			last_deposit_time, is_active, contract_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := queryerFrom(ctx, r.db).ExecContext(ctx, query,
		pool.ID, pool.RepositoryID, pool.ManagerID, pool.Balance, pool.DailyDeposited,
		pool.LastDepositTime, pool.IsActive, pool.ContractAddress,
		pool.CreatedAt, pool.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return domain.ErrPoolExists
			}
			if pgErr.Code == "23503" { // foreign_key_violation
				return domain.ErrNotFound
			}
		}
		return fmt.Errorf("failed to create pool: %w", err)
	}

	return nil
}

// Update обновляет существующий пул
func (r *PoolRepository) Update(ctx context.Context, pool *domain.Pool) error {
	query := `
		UPDATE pools
		SET balance = $2, daily_deposited = $3, last_deposit_time = $4,
			is_active = $5, contract_address = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := queryerFrom(ctx, r.db).ExecContext(ctx, query,
		pool.ID, pool.Balance, pool.DailyDeposited, pool.LastDepositTime,
		pool.IsActive, pool.ContractAddress, pool.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update pool: %w", err)
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

// Get получает пул по ID
func (r *PoolRepository) Get(ctx context.Context, id string) (*domain.Pool, error) {
	query := `SELECT ` + poolColumns + ` FROM pools WHERE id = $1`
	return r.scanOne(queryerFrom(ctx, r.db).QueryRowContext(ctx, query, id))
}

// GetByRepository получает пул репозитория
func (r *PoolRepository) GetByRepository(ctx context.Context, repositoryID string) (*domain.Pool, error) {
	query := `SELECT ` + poolColumns + ` FROM pools WHERE repository_id = $1`
	return r.scanOne(queryerFrom(ctx, r.db).QueryRowContext(ctx, query, repositoryID))
}

// GetByRepositoryForUpdate получает пул репозитория с блокировкой строки.
// Должен вызываться внутри транзакции TxManager.
func (r *PoolRepository) GetByRepositoryForUpdate(ctx context.Context, repositoryID string) (*domain.Pool, error) {
	query := `SELECT ` + poolColumns + ` FROM pools WHERE repository_id = $1 FOR UPDATE`
	return r.scanOne(queryerFrom(ctx, r.db).QueryRowContext(ctx, query, repositoryID))
}

// scanOne читает одну строку пула
func (r *PoolRepository) scanOne(row *sql.Row) (*domain.Pool, error) {
	var pool domain.Pool
	err := row.Scan(
		&pool.ID,
		&pool.RepositoryID,
		&pool.ManagerID,
		&pool.Balance,
		&pool.DailyDeposited,
		&pool.LastDepositTime,
		&pool.IsActive,
		&pool.ContractAddress,
		&pool.CreatedAt,
		&pool.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}

	return &pool, nil
}
