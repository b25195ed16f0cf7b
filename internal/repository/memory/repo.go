package memory

import (
	"context"
	"sort"

	"codecrew/internal/domain"
)

// RepoRepository реализует domain.RepoRepository в памяти
type RepoRepository struct {
	store *Store
}

// Create создаёт новый репозиторий
func (r *RepoRepository) Create(ctx context.Context, repo *domain.Repository) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	copied := *repo
	r.store.repos[repo.ID] = &copied
	return nil
}

// Update обновляет существующий репозиторий
func (r *RepoRepository) Update(ctx context.Context, repo *domain.Repository) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.repos[repo.ID]; !ok {
		return domain.ErrNotFound
	}

	copied := *repo
	r.store.repos[repo.ID] = &copied
	return nil
}

// Get получает репозиторий по ID
func (r *RepoRepository) Get(ctx context.Context, id string) (*domain.Repository, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	repo, ok := r.store.repos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	copied := *repo
	return &copied, nil
}

// GetByFullName получает репозиторий по полному имени "owner/name"
func (r *RepoRepository) GetByFullName(ctx context.Context, fullName string) (*domain.Repository, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, repo := range r.store.repos {
		if repo.FullName == fullName {
			copied := *repo
			return &copied, nil
		}
	}

	return nil, domain.ErrNotFound
}

// List возвращает все репозитории платформы
func (r *RepoRepository) List(ctx context.Context) ([]domain.Repository, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	repos := make([]domain.Repository, 0, len(r.store.repos))
	for _, repo := range r.store.repos {
		repos = append(repos, *repo)
	}

	sort.Slice(repos, func(i, j int) bool {
		return repos[i].FullName < repos[j].FullName
	})

	return repos, nil
}
