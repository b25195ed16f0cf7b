package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codecrew/internal/chain"
	"codecrew/internal/domain"
	ghclient "codecrew/internal/github"

	"github.com/rs/xid"
	"go.uber.org/zap"
)

// PoolSummary представляет пул вместе с доступным остатком
type PoolSummary struct {
	Pool             *domain.Pool `json:"pool"`
	AvailableBalance int          `json:"availableBalance"`
}

// BountyService реализует бизнес-логику пулов и bounty.
// Все check-and-write последовательности (суточный лимит, доступный остаток)
// выполняются внутри транзакций с блокировкой строки пула.
type BountyService struct {
	poolRepo  domain.PoolRepository
	issueRepo domain.IssueRepository
	repoRepo  domain.RepoRepository
	txManager domain.TxManager
	escrow    chain.EscrowClient
	github    *ghclient.Client
	logger    *zap.Logger
}

// NewBountyService создаёт новый экземпляр BountyService
func NewBountyService(
	poolRepo domain.PoolRepository,
	issueRepo domain.IssueRepository,
	repoRepo domain.RepoRepository,
	txManager domain.TxManager,
	escrow chain.EscrowClient,
	github *ghclient.Client,
	logger *zap.Logger,
) *BountyService {
	return &BountyService{
		poolRepo:  poolRepo,
		issueRepo: issueRepo,
		repoRepo:  repoRepo,
		txManager: txManager,
		escrow:    escrow,
		github:    github,
		logger:    logger,
	}
}

// FundPool пополняет пул репозитория на amount токенов.
// Пул создаётся лениво при первом пополнении, его менеджером становится
// первый вкладчик. Сумма пополнений за календарные сутки ограничена
// domain.MaxDailyDeposit; счётчик сбрасывается при смене даты.
func (s *BountyService) FundPool(ctx context.Context, userID, repositoryID string, amount int) (*domain.Pool, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidInput
	}

	repo, err := s.repoRepo.Get(ctx, repositoryID)
	if err != nil {
		return nil, err
	}

	var pool *domain.Pool

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		now := time.Now()

		existing, err := s.poolRepo.GetByRepositoryForUpdate(ctx, repositoryID)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			return s.createPool(ctx, userID, repositoryID, amount, now, &pool)
		}

		deposited := existing.DailyDeposited
		if !sameDay(existing.LastDepositTime, now) {
			deposited = 0
		}

		if deposited+amount > domain.MaxDailyDeposit {
			remaining := domain.MaxDailyDeposit - deposited
			if remaining < 0 {
				remaining = 0
			}
			return fmt.Errorf("%w: %d tokens remaining today", domain.ErrDepositLimit, remaining)
		}

		existing.Balance += amount
		existing.DailyDeposited = deposited + amount
		existing.LastDepositTime = now
		existing.UpdatedAt = now

		if err := s.poolRepo.Update(ctx, existing); err != nil {
			return err
		}

		pool = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Зачисление в escrow симулируется, отказ не откатывает пополнение
	if txHash, err := s.escrow.FundPool(ctx, repo.FullName, amount); err != nil {
		s.logger.Warn("escrow fund call failed", zap.Error(err), zap.String("repository", repo.FullName))
	} else {
		s.logger.Info("pool funded",
			zap.String("pool_id", pool.ID),
			zap.String("repository_id", repositoryID),
			zap.Int("amount", amount),
			zap.Int("balance", pool.Balance),
			zap.String("tx_hash", txHash))
	}

	return pool, nil
}

// createPool создаёт пул при первом пополнении
func (s *BountyService) createPool(ctx context.Context, userID, repositoryID string, amount int, now time.Time, out **domain.Pool) error {
	if amount > domain.MaxDailyDeposit {
		return fmt.Errorf("%w: %d tokens remaining today", domain.ErrDepositLimit, domain.MaxDailyDeposit)
	}

	pool := &domain.Pool{
		ID:              xid.New().String(),
		RepositoryID:    repositoryID,
		ManagerID:       userID,
		Balance:         amount,
		DailyDeposited:  amount,
		LastDepositTime: now,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.poolRepo.Create(ctx, pool); err != nil {
		return err
	}

	*out = pool
	return nil
}

// GetPool возвращает пул репозитория вместе с доступным остатком.
// Доступный остаток вычисляется на чтении: баланс минус сумма наград
// всех bounty-issue репозитория.
func (s *BountyService) GetPool(ctx context.Context, repositoryID string) (*PoolSummary, error) {
	pool, err := s.poolRepo.GetByRepository(ctx, repositoryID)
	if err != nil {
		return nil, err
	}

	reserved, err := s.issueRepo.SumBountyRewards(ctx, repositoryID, "")
	if err != nil {
		return nil, err
	}

	return &PoolSummary{
		Pool:             pool,
		AvailableBalance: pool.Balance - reserved,
	}, nil
}

// SetBounty привязывает награду amount к issue.
// Запрос отклоняется, когда amount превышает доступный остаток пула.
func (s *BountyService) SetBounty(ctx context.Context, userID, issueID string, amount int) (*domain.Issue, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidInput
	}

	var issue *domain.Issue

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		issue, err = s.issueRepo.Get(ctx, issueID)
		if err != nil {
			return err
		}

		pool, err := s.poolRepo.GetByRepositoryForUpdate(ctx, issue.RepositoryID)
		if err != nil {
			return err
		}

		reserved, err := s.issueRepo.SumBountyRewards(ctx, issue.RepositoryID, issueID)
		if err != nil {
			return err
		}

		available := pool.Balance - reserved
		if amount > available {
			return fmt.Errorf("%w: %d tokens available", domain.ErrInsufficientBalance, available)
		}

		now := time.Now()
		issue.HasBounty = true
		issue.Reward = amount
		issue.BountyAddedAt = &now
		issue.UpdatedAt = now

		return s.issueRepo.Update(ctx, issue)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bounty set",
		zap.String("issue_id", issue.ID),
		zap.Int("reward", amount),
		zap.String("user_id", userID))

	// Резервирование в escrow симулируется
	if repo, err := s.repoRepo.Get(ctx, issue.RepositoryID); err == nil {
		if _, err := s.escrow.CreateBounty(ctx, repo.FullName, issue.IssueNumber, amount); err != nil {
			s.logger.Warn("escrow bounty call failed", zap.Error(err), zap.String("issue_id", issue.ID))
		}
		s.labelBounty(ctx, repo, issue)
	}

	return issue, nil
}

// labelBounty помечает issue меткой от имени GitHub App. Ошибка не фатальна.
func (s *BountyService) labelBounty(ctx context.Context, repo *domain.Repository, issue *domain.Issue) {
	if err := s.github.AddIssueLabels(ctx, repo.Owner, repo.Name, issue.IssueNumber, []string{"bounty"}); err != nil {
		s.logger.Warn("failed to add bounty label",
			zap.Error(err),
			zap.String("issue_id", issue.ID))
	}
}

// sameDay проверяет, что два момента приходятся на одну календарную дату
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
