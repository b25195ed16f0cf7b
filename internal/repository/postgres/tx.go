package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// txKey - ключ контекста для активной транзакции
type txKey struct{}

// TxManager управляет транзакциями базы данных.
// Активная транзакция передаётся репозиториям через контекст, поэтому
// одни и те же методы репозиториев работают и внутри, и вне транзакций.
type TxManager struct {
	db *sql.DB
}

// NewTxManager создаёт новый менеджер транзакций
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTransaction выполняет функцию внутри транзакции
func (tm *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := tm.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// querier - общий интерфейс *sql.DB и *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queryerFrom возвращает транзакцию из контекста либо соединение с БД
func queryerFrom(ctx context.Context, db *sql.DB) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}
