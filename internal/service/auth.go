package service

import (
	"context"
	"errors"
	"time"

	"codecrew/internal/domain"
	ghclient "codecrew/internal/github"

	"github.com/rs/xid"
	"go.uber.org/zap"
)

// AuthService реализует бизнес-логику аутентификации пользователей
type AuthService struct {
	userRepo domain.UserRepository
	github   *ghclient.Client
	logger   *zap.Logger
}

// NewAuthService создаёт новый экземпляр AuthService
func NewAuthService(
	userRepo domain.UserRepository,
	github *ghclient.Client,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		github:   github,
		logger:   logger,
	}
}

// LoginWithGitHub создаёт или обновляет пользователя по профилю GitHub.
// Пользователь ищется по GitHub ID: при первом входе создаётся запись,
// при последующих обновляются токен, почта и аватар.
func (s *AuthService) LoginWithGitHub(ctx context.Context, accessToken string) (*domain.User, error) {
	profile, err := s.github.FetchUser(ctx, accessToken)
	if err != nil {
		s.logger.Error("failed to fetch GitHub profile", zap.Error(err))
		return nil, err
	}

	return s.upsertFromProfile(ctx, profile, accessToken)
}

// upsertFromProfile создаёт или обновляет пользователя по профилю GitHub
func (s *AuthService) upsertFromProfile(ctx context.Context, profile *ghclient.Profile, accessToken string) (*domain.User, error) {
	now := time.Now()

	user, err := s.userRepo.GetByGitHubID(ctx, profile.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}

		user = &domain.User{
			ID:          xid.New().String(),
			Username:    profile.Login,
			GitHubID:    profile.ID,
			Email:       profile.Email,
			AvatarURL:   profile.AvatarURL,
			AccessToken: accessToken,
			Role:        "contributor",
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := s.userRepo.Create(ctx, user); err != nil {
			s.logger.Error("failed to create user", zap.Error(err), zap.Int64("github_id", profile.ID))
			return nil, err
		}

		s.logger.Info("user registered",
			zap.String("user_id", user.ID),
			zap.String("username", user.Username))

		return user, nil
	}

	user.Username = profile.Login
	user.Email = profile.Email
	user.AvatarURL = profile.AvatarURL
	user.AccessToken = accessToken
	user.UpdatedAt = now

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("failed to refresh user", zap.Error(err), zap.String("user_id", user.ID))
		return nil, err
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username))

	return user, nil
}

// DevLogin создаёт или возвращает пользователя по имени.
// Доступен только в окружении разработки, без обращения к GitHub.
func (s *AuthService) DevLogin(ctx context.Context, username string) (*domain.User, error) {
	if username == "" {
		return nil, domain.ErrInvalidInput
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	user = &domain.User{
		ID:        xid.New().String(),
		Username:  username,
		GitHubID:  -now.UnixNano(), // фиктивный отрицательный ID вне диапазона GitHub
		AvatarURL: "https://avatars.githubusercontent.com/u/0",
		Role:      "contributor",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("failed to create dev user", zap.Error(err), zap.String("username", username))
		return nil, err
	}

	s.logger.Info("dev user created", zap.String("user_id", user.ID), zap.String("username", username))

	return user, nil
}

// GetUser получает пользователя по ID
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.Get(ctx, userID)
}
