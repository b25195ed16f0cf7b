package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию приложения
type Config struct {
	// Server конфигурация HTTP сервера
	Server ServerConfig

	// Database конфигурация PostgreSQL
	Database DatabaseConfig

	// Storage выбор драйвера хранилища
	Storage StorageConfig

	// GitHub учётные данные OAuth приложения и GitHub App
	GitHub GitHubConfig

	// Auth конфигурация сессионных токенов
	Auth AuthConfig

	// Chain конфигурация мок-клиента escrow контракта
	Chain ChainConfig

	// App конфигурация приложения
	App AppConfig
}

// ServerConfig конфигурация HTTP сервера
type ServerConfig struct {
	Host         string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	BaseURL      string        `envconfig:"SERVER_BASE_URL" default:"http://localhost:8080"`
}

// DatabaseConfig конфигурация PostgreSQL
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"postgres"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"codecrew"`
	Password        string        `envconfig:"DB_PASSWORD" default:"password"`
	Name            string        `envconfig:"DB_NAME" default:"codecrew"`
	SSLMode         string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	MigrationsPath  string        `envconfig:"DB_MIGRATIONS_PATH" default:"file://migrations"`
}

// StorageConfig выбор драйвера хранилища: postgres или memory
type StorageConfig struct {
	Driver string `envconfig:"STORAGE_DRIVER" default:"postgres"`
}

// GitHubConfig учётные данные GitHub OAuth приложения и GitHub App
type GitHubConfig struct {
	ClientID       string `envconfig:"GITHUB_CLIENT_ID"`
	ClientSecret   string `envconfig:"GITHUB_CLIENT_SECRET"`
	CallbackURL    string `envconfig:"GITHUB_CALLBACK_URL"`
	WebhookSecret  string `envconfig:"GITHUB_WEBHOOK_SECRET"`
	AppID          int64  `envconfig:"GITHUB_APP_ID"`
	AppSlug        string `envconfig:"GITHUB_APP_SLUG" default:"codecrew-bounties"`
	PrivateKeyPath string `envconfig:"GITHUB_APP_PRIVATE_KEY_PATH"`
}

// AuthConfig конфигурация сессионных токенов
type AuthConfig struct {
	SessionSecret string        `envconfig:"SESSION_SECRET" default:"dev-session-secret-change-me"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"168h"`
	CookieSecure  bool          `envconfig:"SESSION_COOKIE_SECURE" default:"false"`
}

// ChainConfig конфигурация мок-клиента escrow контракта
type ChainConfig struct {
	ContractAddress string        `envconfig:"CHAIN_CONTRACT_ADDRESS" default:"0x0000000000000000000000000000000000c0de"`
	SimulatedDelay  time.Duration `envconfig:"CHAIN_SIMULATED_DELAY" default:"150ms"`
}

// AppConfig конфигурация приложения
type AppConfig struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Env      string `envconfig:"APP_ENV" default:"development"`
}

// Address возвращает адрес для прослушивания HTTP сервера
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DSN возвращает строку подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// MigrateURL возвращает URL подключения для golang-migrate
func (d DatabaseConfig) MigrateURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// IsDevelopment сообщает, запущено ли приложение в окружении разработки
func (a AppConfig) IsDevelopment() bool {
	return a.Env == "development"
}

// Load загружает конфигурацию из .env файла и переменных окружения
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return cfg, nil
}
