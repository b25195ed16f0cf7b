package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"codecrew/internal/domain"
	ghclient "codecrew/internal/github"

	"github.com/rs/xid"
	"go.uber.org/zap"
)

// RepoService реализует бизнес-логику для работы с репозиториями платформы
type RepoService struct {
	repoRepo  domain.RepoRepository
	issueRepo domain.IssueRepository
	github    *ghclient.Client
	logger    *zap.Logger
}

// NewRepoService создаёт новый экземпляр RepoService
func NewRepoService(
	repoRepo domain.RepoRepository,
	issueRepo domain.IssueRepository,
	github *ghclient.Client,
	logger *zap.Logger,
) *RepoService {
	return &RepoService{
		repoRepo:  repoRepo,
		issueRepo: issueRepo,
		github:    github,
		logger:    logger,
	}
}

// List возвращает все репозитории платформы
func (s *RepoService) List(ctx context.Context) ([]domain.Repository, error) {
	return s.repoRepo.List(ctx)
}

// Get получает репозиторий по ID
func (s *RepoService) Get(ctx context.Context, id string) (*domain.Repository, error) {
	return s.repoRepo.Get(ctx, id)
}

// ListIssues возвращает issue репозитория
func (s *RepoService) ListIssues(ctx context.Context, repositoryID string) ([]domain.Issue, error) {
	if _, err := s.repoRepo.Get(ctx, repositoryID); err != nil {
		return nil, err
	}

	return s.issueRepo.List(ctx, domain.IssueFilter{RepositoryID: repositoryID})
}

// SearchIssues возвращает issue по произвольному фильтру
func (s *RepoService) SearchIssues(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	return s.issueRepo.List(ctx, filter)
}

// FeaturedIssues возвращает открытые issue с наибольшими наградами
func (s *RepoService) FeaturedIssues(ctx context.Context) ([]domain.Issue, error) {
	hasBounty := true

	return s.issueRepo.List(ctx, domain.IssueFilter{
		State:         domain.IssueStateOpen,
		HasBounty:     &hasBounty,
		OrderByReward: true,
		Limit:         6,
	})
}

// IsOwner сообщает, является ли пользователь владельцем репозитория
func (s *RepoService) IsOwner(ctx context.Context, user *domain.User, repositoryID string) (bool, error) {
	repo, err := s.repoRepo.Get(ctx, repositoryID)
	if err != nil {
		return false, err
	}

	return strings.EqualFold(repo.Owner, user.Username), nil
}

// AddFromGitHub добавляет GitHub репозиторий на платформу и синхронизирует
// его открытые issue. Повторное добавление обновляет кэшированные метаданные.
func (s *RepoService) AddFromGitHub(ctx context.Context, user *domain.User, fullName string) (*domain.Repository, error) {
	owner, name, ok := splitFullName(fullName)
	if !ok {
		return nil, domain.ErrInvalidInput
	}

	remoteRepos, err := s.github.ListUserRepositories(ctx, user.AccessToken)
	if err != nil {
		return nil, err
	}

	var remote *ghclient.RemoteRepo
	for i := range remoteRepos {
		if strings.EqualFold(remoteRepos[i].FullName, fullName) {
			remote = &remoteRepos[i]
			break
		}
	}
	if remote == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()

	repo, err := s.repoRepo.GetByFullName(ctx, remote.FullName)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}

		repo = &domain.Repository{
			ID:          xid.New().String(),
			Owner:       remote.Owner,
			Name:        remote.Name,
			FullName:    remote.FullName,
			Description: remote.Description,
			URL:         remote.URL,
			Stars:       remote.Stars,
			Forks:       remote.Forks,
			OpenIssues:  remote.OpenIssues,
			IsPrivate:   remote.Private,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := s.repoRepo.Create(ctx, repo); err != nil {
			s.logger.Error("failed to create repository", zap.Error(err), zap.String("full_name", fullName))
			return nil, err
		}

		s.logger.Info("repository added", zap.String("repository_id", repo.ID), zap.String("full_name", repo.FullName))
	} else {
		repo.Description = remote.Description
		repo.URL = remote.URL
		repo.Stars = remote.Stars
		repo.Forks = remote.Forks
		repo.OpenIssues = remote.OpenIssues
		repo.IsPrivate = remote.Private
		repo.UpdatedAt = now

		if err := s.repoRepo.Update(ctx, repo); err != nil {
			return nil, err
		}
	}

	if err := s.syncIssues(ctx, user, repo, owner, name); err != nil {
		// Репозиторий уже добавлен, отказ синхронизации не фатален
		s.logger.Warn("failed to sync repository issues", zap.Error(err), zap.String("repository_id", repo.ID))
	}

	return repo, nil
}

// SyncIssues синхронизирует открытые issue репозитория с GitHub
func (s *RepoService) SyncIssues(ctx context.Context, user *domain.User, repositoryID string) error {
	repo, err := s.repoRepo.Get(ctx, repositoryID)
	if err != nil {
		return err
	}

	return s.syncIssues(ctx, user, repo, repo.Owner, repo.Name)
}

// syncIssues загружает issue из GitHub и создаёт отсутствующие записи
func (s *RepoService) syncIssues(ctx context.Context, user *domain.User, repo *domain.Repository, owner, name string) error {
	remoteIssues, err := s.github.ListRepoIssues(ctx, user.AccessToken, owner, name)
	if err != nil {
		return err
	}

	now := time.Now()
	created := 0

	for _, remote := range remoteIssues {
		existing, err := s.issueRepo.GetByRepoAndNumber(ctx, repo.ID, remote.Number)
		if err == nil {
			existing.Title = remote.Title
			existing.Description = remote.Body
			existing.State = domain.IssueState(remote.State)
			existing.UpdatedAt = now
			if err := s.issueRepo.Update(ctx, existing); err != nil {
				return err
			}
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		issue := &domain.Issue{
			ID:           xid.New().String(),
			RepositoryID: repo.ID,
			IssueNumber:  remote.Number,
			Title:        remote.Title,
			Description:  remote.Body,
			URL:          remote.URL,
			State:        domain.IssueState(remote.State),
			Type:         issueTypeFromLabels(remote.Labels),
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := s.issueRepo.Create(ctx, issue); err != nil {
			return err
		}
		created++
	}

	if created > 0 {
		s.logger.Info("issues synced",
			zap.String("repository_id", repo.ID),
			zap.Int("created", created))
	}

	return nil
}

// issueTypeFromLabels выводит тип issue из GitHub меток
func issueTypeFromLabels(labels []string) domain.IssueType {
	for _, label := range labels {
		switch strings.ToLower(label) {
		case "bug":
			return domain.IssueTypeBug
		case "documentation", "docs":
			return domain.IssueTypeDocs
		case "enhancement":
			return domain.IssueTypeEnhancement
		}
	}
	return domain.IssueTypeFeature
}

// splitFullName разбирает полное имя "owner/name"
func splitFullName(fullName string) (owner, name string, ok bool) {
	parts := strings.Split(fullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
