package memory

import (
	"context"

	"codecrew/internal/domain"
)

// UserRepository реализует domain.UserRepository в памяти
type UserRepository struct {
	store *Store
}

// Create создаёт нового пользователя
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	copied := *user
	r.store.users[user.ID] = &copied
	return nil
}

// Update обновляет существующего пользователя
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[user.ID]; !ok {
		return domain.ErrNotFound
	}

	copied := *user
	r.store.users[user.ID] = &copied
	return nil
}

// Get получает пользователя по ID
func (r *UserRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	copied := *user
	return &copied, nil
}

// GetByGitHubID получает пользователя по GitHub ID
func (r *UserRepository) GetByGitHubID(ctx context.Context, githubID int64) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, user := range r.store.users {
		if user.GitHubID == githubID {
			copied := *user
			return &copied, nil
		}
	}

	return nil, domain.ErrNotFound
}

// GetByUsername получает пользователя по имени
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, user := range r.store.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}

	return nil, domain.ErrNotFound
}

// CreditTokens увеличивает баланс пользователя на amount
func (r *UserRepository) CreditTokens(ctx context.Context, id string, amount int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return domain.ErrNotFound
	}

	user.TokenBalance += amount
	return nil
}
