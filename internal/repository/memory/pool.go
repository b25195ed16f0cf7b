package memory

import (
	"context"

	"codecrew/internal/domain"
)

// PoolRepository реализует domain.PoolRepository в памяти
type PoolRepository struct {
	store *Store
}

// Create создаёт новый пул
func (r *PoolRepository) Create(ctx context.Context, pool *domain.Pool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.pools {
		if existing.RepositoryID == pool.RepositoryID {
			return domain.ErrPoolExists
		}
	}

	copied := *pool
	r.store.pools[pool.ID] = &copied
	return nil
}

// Update обновляет существующий пул
func (r *PoolRepository) Update(ctx context.Context, pool *domain.Pool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.pools[pool.ID]; !ok {
		return domain.ErrNotFound
	}

	copied := *pool
	r.store.pools[pool.ID] = &copied
	return nil
}

// Get получает пул по ID
func (r *PoolRepository) Get(ctx context.Context, id string) (*domain.Pool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	pool, ok := r.store.pools[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	copied := *pool
	return &copied, nil
}

// GetByRepository получает пул репозитория
func (r *PoolRepository) GetByRepository(ctx context.Context, repositoryID string) (*domain.Pool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, pool := range r.store.pools {
		if pool.RepositoryID == repositoryID {
			copied := *pool
			return &copied, nil
		}
	}

	return nil, domain.ErrNotFound
}

// GetByRepositoryForUpdate получает пул репозитория. Блокировка строки
// не нужна: атомарность обеспечивает транзакционный мьютекс TxManager.
func (r *PoolRepository) GetByRepositoryForUpdate(ctx context.Context, repositoryID string) (*domain.Pool, error) {
	return r.GetByRepository(ctx, repositoryID)
}
