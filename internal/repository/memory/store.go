// Package memory реализует интерфейсы хранилища domain поверх map в памяти.
// Используется в тестах и в демо-режиме без PostgreSQL (STORAGE_DRIVER=memory).
package memory

import (
	"context"
	"sync"

	"codecrew/internal/domain"
)

// Store держит все сущности платформы в памяти
type Store struct {
	mu sync.RWMutex

	users  map[string]*domain.User
	repos  map[string]*domain.Repository
	pools  map[string]*domain.Pool
	issues map[string]*domain.Issue
	claims map[string]*domain.Claim

	// txMu сериализует транзакции TxManager
	txMu sync.Mutex
}

// NewStore создаёт пустое хранилище в памяти
func NewStore() *Store {
	return &Store{
		users:  make(map[string]*domain.User),
		repos:  make(map[string]*domain.Repository),
		pools:  make(map[string]*domain.Pool),
		issues: make(map[string]*domain.Issue),
		claims: make(map[string]*domain.Claim),
	}
}

// Users возвращает репозиторий пользователей
func (s *Store) Users() *UserRepository { return &UserRepository{store: s} }

// Repos возвращает репозиторий репозиториев
func (s *Store) Repos() *RepoRepository { return &RepoRepository{store: s} }

// Pools возвращает репозиторий пулов
func (s *Store) Pools() *PoolRepository { return &PoolRepository{store: s} }

// Issues возвращает репозиторий issue
func (s *Store) Issues() *IssueRepository { return &IssueRepository{store: s} }

// Claims возвращает репозиторий заявок
func (s *Store) Claims() *ClaimRepository { return &ClaimRepository{store: s} }

// TxManager возвращает менеджер транзакций хранилища
func (s *Store) TxManager() *TxManager { return &TxManager{store: s} }

// TxManager реализует domain.TxManager для хранилища в памяти.
// Транзакции выполняются последовательно под общим мьютексом, что даёт
// атомарность check-and-write последовательностей в одном процессе.
// Откат изменений не поддерживается: вызывающий код не должен полагаться
// на rollback-семантику в памяти.
type TxManager struct {
	store *Store
}

// WithinTransaction выполняет функцию под транзакционным мьютексом
func (tm *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	return fn(ctx)
}
