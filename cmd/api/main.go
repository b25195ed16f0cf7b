package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codecrew/internal/auth"
	"codecrew/internal/chain"
	"codecrew/internal/config"
	"codecrew/internal/domain"
	ghclient "codecrew/internal/github"
	"codecrew/internal/handler"
	"codecrew/internal/repository/memory"
	"codecrew/internal/repository/postgres"
	"codecrew/internal/service"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "application error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Инициализация логгера
	logger, err := initLogger(cfg.App.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting application",
		zap.String("env", cfg.App.Env),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("log_level", cfg.App.LogLevel))

	// Подключение хранилища
	storage, cleanup, err := initStorage(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize storage", zap.Error(err))
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer cleanup()

	// Инициализация зависимостей
	app, err := initApp(cfg, storage, logger)
	if err != nil {
		logger.Error("failed to initialize application", zap.Error(err))
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	// Создание HTTP сервера
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("starting HTTP server", zap.String("address", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			if err := srv.Close(); err != nil {
				return fmt.Errorf("could not stop server gracefully: %w", err)
			}
		}

		logger.Info("server stopped gracefully")
	}

	return nil
}

// App содержит все зависимости приложения
type App struct {
	router http.Handler
}

// storageSet объединяет репозитории выбранного драйвера хранилища
type storageSet struct {
	users     domain.UserRepository
	repos     domain.RepoRepository
	pools     domain.PoolRepository
	issues    domain.IssueRepository
	claims    domain.ClaimRepository
	txManager domain.TxManager
}

// initStorage подключает драйвер хранилища по STORAGE_DRIVER.
// Драйвер memory пропускает миграции и подключение к БД.
func initStorage(cfg *config.Config, logger *zap.Logger) (*storageSet, func(), error) {
	switch cfg.Storage.Driver {
	case "memory":
		store := memory.NewStore()

		return &storageSet{
			users:     store.Users(),
			repos:     store.Repos(),
			pools:     store.Pools(),
			issues:    store.Issues(),
			claims:    store.Claims(),
			txManager: store.TxManager(),
		}, func() {}, nil

	case "postgres":
		if err := runMigrations(cfg.Database, logger); err != nil {
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		db, err := postgres.NewDB(postgres.Config{
			DSN:             cfg.Database.DSN(),
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		logger.Info("connected to database")

		return &storageSet{
			users:     postgres.NewUserRepository(db),
			repos:     postgres.NewRepoRepository(db),
			pools:     postgres.NewPoolRepository(db),
			issues:    postgres.NewIssueRepository(db),
			claims:    postgres.NewClaimRepository(db),
			txManager: postgres.NewTxManager(db),
		}, func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
	}
}

// initApp инициализирует приложение
func initApp(cfg *config.Config, storage *storageSet, logger *zap.Logger) (*App, error) {
	// GitHub клиент
	github, err := ghclient.NewClient(cfg.GitHub, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create github client: %w", err)
	}

	// Escrow клиент (симуляция)
	escrow := chain.NewSimulatedClient(cfg.Chain.ContractAddress, cfg.Chain.SimulatedDelay)

	// Сессии и OAuth
	sessions, err := auth.NewSessions(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL, cfg.Auth.CookieSecure)
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	oauth := auth.NewGitHubOAuth(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret, cfg.GitHub.CallbackURL)

	// Services
	authService := service.NewAuthService(storage.users, github, logger)
	repoService := service.NewRepoService(storage.repos, storage.issues, github, logger)
	bountyService := service.NewBountyService(storage.pools, storage.issues, storage.repos, storage.txManager, escrow, github, logger)
	claimService := service.NewClaimService(storage.claims, storage.issues, storage.users, storage.repos, storage.pools, storage.txManager, escrow, github, logger)
	statsService := service.NewStatsService(storage.claims, storage.issues, storage.users, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, sessions, oauth, cfg.App.IsDevelopment(), cfg.Auth.CookieSecure, logger)
	repoHandler := handler.NewRepoHandler(repoService, bountyService, authService, logger)
	issueHandler := handler.NewIssueHandler(repoService, bountyService, claimService, logger)
	claimHandler := handler.NewClaimHandler(claimService, logger)
	statsHandler := handler.NewStatsHandler(statsService, logger)
	githubHandler := handler.NewGitHubHandler(github, authService, logger)
	webhookHandler := handler.NewWebhookHandler(github, claimService, logger)

	// Router
	router := handler.Router(
		authHandler,
		repoHandler,
		issueHandler,
		claimHandler,
		statsHandler,
		githubHandler,
		webhookHandler,
		sessions,
		logger,
	)

	return &App{
		router: router,
	}, nil
}

// initLogger инициализирует структурированный логгер
func initLogger(level string) (*zap.Logger, error) {
	var zapConfig zap.Config

	if level == "debug" {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	// Парсим уровень логирования
	if err := zapConfig.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger, nil
}

// runMigrations выполняет миграции БД
func runMigrations(cfg config.DatabaseConfig, logger *zap.Logger) error {
	logger.Info("running database migrations", zap.String("path", cfg.MigrationsPath))

	m, err := migrate.New(cfg.MigrationsPath, cfg.MigrateURL())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logger.Info("database migrations completed successfully")
	return nil
}
