package memory

import (
	"context"
	"sort"

	"codecrew/internal/domain"
)

// IssueRepository реализует domain.IssueRepository в памяти
type IssueRepository struct {
	store *Store
}

// Create создаёт новую issue
func (r *IssueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	copied := *issue
	r.store.issues[issue.ID] = &copied
	return nil
}

// Update обновляет существующую issue
func (r *IssueRepository) Update(ctx context.Context, issue *domain.Issue) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.issues[issue.ID]; !ok {
		return domain.ErrNotFound
	}

	copied := *issue
	r.store.issues[issue.ID] = &copied
	return nil
}

// Get получает issue по ID
func (r *IssueRepository) Get(ctx context.Context, id string) (*domain.Issue, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	issue, ok := r.store.issues[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	copied := *issue
	return &copied, nil
}

// GetByRepoAndNumber получает issue по репозиторию и номеру
func (r *IssueRepository) GetByRepoAndNumber(ctx context.Context, repositoryID string, issueNumber int) (*domain.Issue, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, issue := range r.store.issues {
		if issue.RepositoryID == repositoryID && issue.IssueNumber == issueNumber {
			copied := *issue
			return &copied, nil
		}
	}

	return nil, domain.ErrNotFound
}

// List возвращает issue по фильтру
func (r *IssueRepository) List(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	issues := make([]domain.Issue, 0)
	for _, issue := range r.store.issues {
		if filter.RepositoryID != "" && issue.RepositoryID != filter.RepositoryID {
			continue
		}
		if filter.State != "" && issue.State != filter.State {
			continue
		}
		if filter.Type != "" && issue.Type != filter.Type {
			continue
		}
		if filter.HasBounty != nil && issue.HasBounty != *filter.HasBounty {
			continue
		}
		issues = append(issues, *issue)
	}

	if filter.OrderByReward {
		sort.Slice(issues, func(i, j int) bool {
			if issues[i].Reward != issues[j].Reward {
				return issues[i].Reward > issues[j].Reward
			}
			return issues[i].CreatedAt.After(issues[j].CreatedAt)
		})
	} else {
		sort.Slice(issues, func(i, j int) bool {
			return issues[i].CreatedAt.After(issues[j].CreatedAt)
		})
	}

	if filter.Limit > 0 && len(issues) > filter.Limit {
		issues = issues[:filter.Limit]
	}

	return issues, nil
}

// SumBountyRewards возвращает сумму наград bounty-issue репозитория,
// исключая issue с ID excludeIssueID
func (r *IssueRepository) SumBountyRewards(ctx context.Context, repositoryID, excludeIssueID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	total := 0
	for _, issue := range r.store.issues {
		if issue.RepositoryID != repositoryID || !issue.HasBounty || issue.ID == excludeIssueID {
			continue
		}
		total += issue.Reward
	}

	return total, nil
}

// CountByType возвращает количество issue по типам
func (r *IssueRepository) CountByType(ctx context.Context) (map[domain.IssueType]int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	counts := make(map[domain.IssueType]int)
	for _, issue := range r.store.issues {
		counts[issue.Type]++
	}

	return counts, nil
}
