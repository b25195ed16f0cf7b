package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"codecrew/internal/chain"
	"codecrew/internal/domain"
	ghclient "codecrew/internal/github"

	"github.com/rs/xid"
	"go.uber.org/zap"
)

// prURLPattern - путь pull request на github.com
var prURLPattern = regexp.MustCompile(`^https://github\.com/[^/]+/[^/]+/pull/(\d+)/?$`)

// ClaimService реализует жизненный цикл заявок:
// claimed → submitted → review → approved|rejected
type ClaimService struct {
	claimRepo domain.ClaimRepository
	issueRepo domain.IssueRepository
	userRepo  domain.UserRepository
	repoRepo  domain.RepoRepository
	poolRepo  domain.PoolRepository
	txManager domain.TxManager
	escrow    chain.EscrowClient
	github    *ghclient.Client
	logger    *zap.Logger
}

// NewClaimService создаёт новый экземпляр ClaimService
func NewClaimService(
	claimRepo domain.ClaimRepository,
	issueRepo domain.IssueRepository,
	userRepo domain.UserRepository,
	repoRepo domain.RepoRepository,
	poolRepo domain.PoolRepository,
	txManager domain.TxManager,
	escrow chain.EscrowClient,
	github *ghclient.Client,
	logger *zap.Logger,
) *ClaimService {
	return &ClaimService{
		claimRepo: claimRepo,
		issueRepo: issueRepo,
		userRepo:  userRepo,
		repoRepo:  repoRepo,
		poolRepo:  poolRepo,
		txManager: txManager,
		escrow:    escrow,
		github:    github,
		logger:    logger,
	}
}

// ClaimIssue создаёт заявку пользователя на bounty-issue.
// Issue должна иметь bounty; вторая неконечная заявка той же пары
// (user, issue) отклоняется.
func (s *ClaimService) ClaimIssue(ctx context.Context, userID, issueID string) (*domain.Claim, error) {
	var claim *domain.Claim

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		issue, err := s.issueRepo.Get(ctx, issueID)
		if err != nil {
			return err
		}

		if !issue.HasBounty {
			return domain.ErrNoBounty
		}

		if _, err := s.claimRepo.GetActiveByUserAndIssue(ctx, userID, issueID); err == nil {
			return domain.ErrClaimExists
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		now := time.Now()
		claim = &domain.Claim{
			ID:        xid.New().String(),
			UserID:    userID,
			IssueID:   issueID,
			Status:    domain.ClaimStatusClaimed,
			CreatedAt: now,
			UpdatedAt: now,
		}

		return s.claimRepo.Create(ctx, claim)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("issue claimed",
		zap.String("claim_id", claim.ID),
		zap.String("issue_id", issueID),
		zap.String("user_id", userID))

	s.notifyClaimed(ctx, claim)

	return claim, nil
}

// notifyClaimed комментирует issue от имени GitHub App. Ошибка не фатальна.
func (s *ClaimService) notifyClaimed(ctx context.Context, claim *domain.Claim) {
	issue, err := s.issueRepo.Get(ctx, claim.IssueID)
	if err != nil {
		return
	}
	repo, err := s.repoRepo.Get(ctx, issue.RepositoryID)
	if err != nil {
		return
	}
	user, err := s.userRepo.Get(ctx, claim.UserID)
	if err != nil {
		return
	}

	body := fmt.Sprintf("@%s is working on this issue for a %d token bounty.", user.Username, issue.Reward)
	if err := s.github.PostIssueComment(ctx, repo.Owner, repo.Name, issue.IssueNumber, body); err != nil {
		s.logger.Warn("failed to post claim comment",
			zap.Error(err),
			zap.String("claim_id", claim.ID))
	}
}

// LinkPR привязывает pull request к заявке и переводит её в submitted.
// Заявку может изменять только её владелец; статус должен быть ровно claimed.
func (s *ClaimService) LinkPR(ctx context.Context, userID, claimID, prURL string) (*domain.Claim, error) {
	prNumber, err := ParsePRNumber(prURL)
	if err != nil {
		return nil, err
	}

	claim, err := s.claimRepo.Get(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if claim.UserID != userID {
		return nil, domain.ErrForbidden
	}

	if claim.Status != domain.ClaimStatusClaimed {
		return nil, fmt.Errorf("%w: status is %s", domain.ErrClaimState, claim.Status)
	}

	claim.Status = domain.ClaimStatusSubmitted
	claim.PRURL = prURL
	claim.PRNumber = prNumber
	claim.UpdatedAt = time.Now()

	if err := s.claimRepo.Update(ctx, claim); err != nil {
		return nil, err
	}

	s.logger.Info("pull request linked",
		zap.String("claim_id", claim.ID),
		zap.Int("pr_number", prNumber))

	return claim, nil
}

// ListByUser возвращает заявки пользователя вместе с issue
func (s *ClaimService) ListByUser(ctx context.Context, userID string) ([]domain.ClaimWithIssue, error) {
	return s.claimRepo.ListByUser(ctx, userID)
}

// ListRecent возвращает последние заявки платформы
func (s *ClaimService) ListRecent(ctx context.Context, limit int) ([]domain.ClaimWithIssue, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.claimRepo.ListRecent(ctx, limit)
}

// HandlePullRequestEvent обрабатывает событие pull_request вебхука.
// Merge закрывает цикл заявки: submitted|review → approved с выплатой награды;
// открытие и обновление PR переводит submitted → review. Закрытие PR без
// merge статус не меняет.
func (s *ClaimService) HandlePullRequestEvent(ctx context.Context, repoFullName string, prNumber int, action string, merged bool) error {
	repo, err := s.repoRepo.GetByFullName(ctx, repoFullName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Репозиторий не на платформе, событие не для нас
			return nil
		}
		return err
	}

	claims, err := s.claimRepo.ListByPRNumber(ctx, repo.ID, prNumber)
	if err != nil {
		return err
	}

	for i := range claims {
		claim := &claims[i]

		if merged {
			if claim.Status != domain.ClaimStatusSubmitted && claim.Status != domain.ClaimStatusReview {
				continue
			}
			if err := s.settleClaim(ctx, claim, repo); err != nil {
				s.logger.Error("failed to settle claim",
					zap.Error(err),
					zap.String("claim_id", claim.ID))
				return err
			}
			continue
		}

		if action == "closed" {
			continue
		}

		if claim.Status == domain.ClaimStatusSubmitted {
			claim.Status = domain.ClaimStatusReview
			claim.UpdatedAt = time.Now()
			if err := s.claimRepo.Update(ctx, claim); err != nil {
				return err
			}
			s.logger.Info("claim moved to review",
				zap.String("claim_id", claim.ID),
				zap.Int("pr_number", prNumber))
		}
	}

	return nil
}

// settleClaim завершает заявку: approved, выплата награды пользователю,
// списание из пула и фиксация хэша симулированной транзакции
func (s *ClaimService) settleClaim(ctx context.Context, claim *domain.Claim, repo *domain.Repository) error {
	issue, err := s.issueRepo.Get(ctx, claim.IssueID)
	if err != nil {
		return err
	}

	user, err := s.userRepo.Get(ctx, claim.UserID)
	if err != nil {
		return err
	}

	wallet := ""
	if user.WalletAddress != nil {
		wallet = *user.WalletAddress
	}

	txHash, err := s.escrow.CompleteBounty(ctx, repo.FullName, issue.IssueNumber, wallet)
	if err != nil {
		return err
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		pool, err := s.poolRepo.GetByRepositoryForUpdate(ctx, issue.RepositoryID)
		if err != nil {
			return err
		}

		pool.Balance -= issue.Reward
		pool.UpdatedAt = time.Now()
		if err := s.poolRepo.Update(ctx, pool); err != nil {
			return err
		}

		issue.HasBounty = false
		issue.State = domain.IssueStateClosed
		issue.UpdatedAt = time.Now()
		if err := s.issueRepo.Update(ctx, issue); err != nil {
			return err
		}

		if err := s.userRepo.CreditTokens(ctx, claim.UserID, issue.Reward); err != nil {
			return err
		}

		now := time.Now()
		claim.Status = domain.ClaimStatusApproved
		claim.TransactionHash = txHash
		claim.CompletedAt = &now
		claim.UpdatedAt = now

		return s.claimRepo.Update(ctx, claim)
	})
	if err != nil {
		return err
	}

	s.logger.Info("claim settled",
		zap.String("claim_id", claim.ID),
		zap.String("user_id", claim.UserID),
		zap.Int("reward", issue.Reward),
		zap.String("tx_hash", txHash))

	return nil
}

// ParsePRNumber извлекает номер pull request из URL вида
// https://github.com/owner/repo/pull/123
func ParsePRNumber(prURL string) (int, error) {
	matches := prURLPattern.FindStringSubmatch(strings.TrimSpace(prURL))
	if matches == nil {
		return 0, domain.ErrMalformedPRURL
	}

	number, err := strconv.Atoi(matches[1])
	if err != nil || number <= 0 {
		return 0, domain.ErrMalformedPRURL
	}

	return number, nil
}
