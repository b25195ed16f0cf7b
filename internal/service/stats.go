package service

import (
	"context"
	"sort"

	"codecrew/internal/domain"

	"go.uber.org/zap"
)

// Dashboard представляет сводку личного кабинета пользователя
type Dashboard struct {
	User  *domain.User           `json:"user"`
	Stats *domain.UserClaimStats `json:"stats"`
}

// LabelCount представляет популярность типа issue
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// StatsService реализует агрегированные выборки для кабинета и графиков
type StatsService struct {
	claimRepo domain.ClaimRepository
	issueRepo domain.IssueRepository
	userRepo  domain.UserRepository
	logger    *zap.Logger
}

// NewStatsService создаёт новый экземпляр StatsService
func NewStatsService(
	claimRepo domain.ClaimRepository,
	issueRepo domain.IssueRepository,
	userRepo domain.UserRepository,
	logger *zap.Logger,
) *StatsService {
	return &StatsService{
		claimRepo: claimRepo,
		issueRepo: issueRepo,
		userRepo:  userRepo,
		logger:    logger,
	}
}

// GetDashboard возвращает сводку личного кабинета
func (s *StatsService) GetDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.claimRepo.UserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{User: user, Stats: stats}, nil
}

// GetRewardsChart возвращает суммы наград пользователя по месяцам
func (s *StatsService) GetRewardsChart(ctx context.Context, userID string) ([]domain.MonthlyReward, error) {
	return s.claimRepo.MonthlyRewards(ctx, userID)
}

// GetHistory возвращает историю заявок пользователя
func (s *StatsService) GetHistory(ctx context.Context, userID string) ([]domain.ClaimWithIssue, error) {
	return s.claimRepo.ListByUser(ctx, userID)
}

// GetPopularLabels возвращает типы issue по убыванию популярности
func (s *StatsService) GetPopularLabels(ctx context.Context) ([]LabelCount, error) {
	counts, err := s.issueRepo.CountByType(ctx)
	if err != nil {
		return nil, err
	}

	labels := make([]LabelCount, 0, len(counts))
	for label, count := range counts {
		labels = append(labels, LabelCount{Label: string(label), Count: count})
	}

	sort.Slice(labels, func(i, j int) bool {
		if labels[i].Count != labels[j].Count {
			return labels[i].Count > labels[j].Count
		}
		return labels[i].Label < labels[j].Label
	})

	return labels, nil
}
