package memory

import (
	"context"
	"sort"

	"codecrew/internal/domain"
)

// ClaimRepository реализует domain.ClaimRepository в памяти
type ClaimRepository struct {
	store *Store
}

// Create создаёт новую заявку. Как и частичный уникальный индекс в PostgreSQL,
// запрещает вторую неконечную заявку на пару (user, issue).
func (r *ClaimRepository) Create(ctx context.Context, claim *domain.Claim) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.claims {
		if existing.UserID == claim.UserID && existing.IssueID == claim.IssueID &&
			!existing.Status.IsTerminal() {
			return domain.ErrClaimExists
		}
	}

	copied := *claim
	r.store.claims[claim.ID] = &copied
	return nil
}

// Update обновляет существующую заявку
func (r *ClaimRepository) Update(ctx context.Context, claim *domain.Claim) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.claims[claim.ID]; !ok {
		return domain.ErrNotFound
	}

	copied := *claim
	r.store.claims[claim.ID] = &copied
	return nil
}

// Get получает заявку по ID
func (r *ClaimRepository) Get(ctx context.Context, id string) (*domain.Claim, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	claim, ok := r.store.claims[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	copied := *claim
	return &copied, nil
}

// GetActiveByUserAndIssue получает неконечную заявку пары (user, issue)
func (r *ClaimRepository) GetActiveByUserAndIssue(ctx context.Context, userID, issueID string) (*domain.Claim, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, claim := range r.store.claims {
		if claim.UserID == userID && claim.IssueID == issueID && !claim.Status.IsTerminal() {
			copied := *claim
			return &copied, nil
		}
	}

	return nil, domain.ErrNotFound
}

// ListByUser возвращает заявки пользователя вместе с issue
func (r *ClaimRepository) ListByUser(ctx context.Context, userID string) ([]domain.ClaimWithIssue, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.ClaimWithIssue, 0)
	for _, claim := range r.store.claims {
		if claim.UserID != userID {
			continue
		}
		issue, ok := r.store.issues[claim.IssueID]
		if !ok {
			continue
		}
		result = append(result, domain.ClaimWithIssue{Claim: *claim, Issue: *issue})
	}

	sortClaimsWithIssues(result)
	return result, nil
}

// ListRecent возвращает последние заявки платформы
func (r *ClaimRepository) ListRecent(ctx context.Context, limit int) ([]domain.ClaimWithIssue, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.ClaimWithIssue, 0)
	for _, claim := range r.store.claims {
		issue, ok := r.store.issues[claim.IssueID]
		if !ok {
			continue
		}
		result = append(result, domain.ClaimWithIssue{Claim: *claim, Issue: *issue})
	}

	sortClaimsWithIssues(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// ListByPRNumber возвращает заявки репозитория с указанным номером PR
func (r *ClaimRepository) ListByPRNumber(ctx context.Context, repositoryID string, prNumber int) ([]domain.Claim, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	claims := make([]domain.Claim, 0)
	for _, claim := range r.store.claims {
		if claim.PRNumber != prNumber {
			continue
		}
		issue, ok := r.store.issues[claim.IssueID]
		if !ok || issue.RepositoryID != repositoryID {
			continue
		}
		claims = append(claims, *claim)
	}

	return claims, nil
}

// UserStats возвращает сводку по заявкам пользователя
func (r *ClaimRepository) UserStats(ctx context.Context, userID string) (*domain.UserClaimStats, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	stats := &domain.UserClaimStats{}
	for _, claim := range r.store.claims {
		if claim.UserID != userID {
			continue
		}
		if !claim.Status.IsTerminal() {
			stats.Active++
		}
		if claim.Status == domain.ClaimStatusApproved {
			stats.Completed++
			if issue, ok := r.store.issues[claim.IssueID]; ok {
				stats.TotalEarned += issue.Reward
			}
		}
	}

	return stats, nil
}

// MonthlyRewards возвращает суммы наград пользователя по месяцам
func (r *ClaimRepository) MonthlyRewards(ctx context.Context, userID string) ([]domain.MonthlyReward, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	totals := make(map[string]int)
	for _, claim := range r.store.claims {
		if claim.UserID != userID || claim.Status != domain.ClaimStatusApproved || claim.CompletedAt == nil {
			continue
		}
		issue, ok := r.store.issues[claim.IssueID]
		if !ok {
			continue
		}
		totals[claim.CompletedAt.Format("2006-01")] += issue.Reward
	}

	rewards := make([]domain.MonthlyReward, 0, len(totals))
	for month, total := range totals {
		rewards = append(rewards, domain.MonthlyReward{Month: month, Total: total})
	}

	sort.Slice(rewards, func(i, j int) bool {
		return rewards[i].Month < rewards[j].Month
	})

	return rewards, nil
}

// sortClaimsWithIssues сортирует заявки от новых к старым
func sortClaimsWithIssues(items []domain.ClaimWithIssue) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].Claim.CreatedAt.After(items[j].Claim.CreatedAt)
	})
}
