package domain

import "context"

// IssueFilter задаёт фильтры для выборки issue
type IssueFilter struct {
	RepositoryID  string
	State         IssueState
	Type          IssueType
	HasBounty     *bool
	OrderByReward bool
	Limit         int
}

// UserClaimStats представляет сводку по заявкам пользователя
type UserClaimStats struct {
	Active      int `json:"active"`
	Completed   int `json:"completed"`
	TotalEarned int `json:"totalEarned"`
}

// MonthlyReward представляет сумму наград за календарный месяц
type MonthlyReward struct {
	Month string `json:"month"` // формат "2006-01"
	Total int    `json:"total"`
}

// ClaimWithIssue представляет заявку вместе с данными issue
type ClaimWithIssue struct {
	Claim Claim `json:"claim"`
	Issue Issue `json:"issue"`
}

// TxManager выполняет функцию внутри транзакции хранилища.
// Postgres-реализация кладёт *sql.Tx в контекст, in-memory сериализует
// транзакции глобальным мьютексом.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository определяет интерфейс для работы с пользователями
type UserRepository interface {
	// Create создаёт нового пользователя
	Create(ctx context.Context, user *User) error

	// Update обновляет существующего пользователя
	Update(ctx context.Context, user *User) error

	// Get получает пользователя по ID
	Get(ctx context.Context, id string) (*User, error)

	// GetByGitHubID получает пользователя по GitHub ID
	GetByGitHubID(ctx context.Context, githubID int64) (*User, error)

	// GetByUsername получает пользователя по имени
	GetByUsername(ctx context.Context, username string) (*User, error)

	// CreditTokens увеличивает баланс пользователя на amount
	CreditTokens(ctx context.Context, id string, amount int) error
}

// RepoRepository определяет интерфейс для работы с репозиториями
type RepoRepository interface {
	// Create создаёт новый репозиторий
	Create(ctx context.Context, repo *Repository) error

	// Update обновляет существующий репозиторий
	Update(ctx context.Context, repo *Repository) error

	// Get получает репозиторий по ID
	Get(ctx context.Context, id string) (*Repository, error)

	// GetByFullName получает репозиторий по полному имени "owner/name"
	GetByFullName(ctx context.Context, fullName string) (*Repository, error)

	// List возвращает все репозитории платформы
	List(ctx context.Context) ([]Repository, error)
}

// PoolRepository определяет интерфейс для работы с пулами
type PoolRepository interface {
	// Create создаёт новый пул
	Create(ctx context.Context, pool *Pool) error

	// Update обновляет существующий пул
	Update(ctx context.Context, pool *Pool) error

	// Get получает пул по ID
	Get(ctx context.Context, id string) (*Pool, error)

	// GetByRepository получает пул репозитория
	GetByRepository(ctx context.Context, repositoryID string) (*Pool, error)

	// GetByRepositoryForUpdate получает пул репозитория с блокировкой строки.
	// Используется внутри транзакции для атомарных check-and-write операций.
	GetByRepositoryForUpdate(ctx context.Context, repositoryID string) (*Pool, error)
}

// IssueRepository определяет интерфейс для работы с issue
type IssueRepository interface {
	// Create создаёт новую issue
	Create(ctx context.Context, issue *Issue) error

	// Update обновляет существующую issue
	Update(ctx context.Context, issue *Issue) error

	// Get получает issue по ID
	Get(ctx context.Context, id string) (*Issue, error)

	// GetByRepoAndNumber получает issue по репозиторию и номеру
	GetByRepoAndNumber(ctx context.Context, repositoryID string, issueNumber int) (*Issue, error)

	// List возвращает issue по фильтру
	List(ctx context.Context, filter IssueFilter) ([]Issue, error)

	// SumBountyRewards возвращает сумму наград bounty-issue репозитория,
	// исключая issue с ID excludeIssueID (пустая строка - без исключений)
	SumBountyRewards(ctx context.Context, repositoryID, excludeIssueID string) (int, error)

	// CountByType возвращает количество issue по типам
	CountByType(ctx context.Context) (map[IssueType]int, error)
}

// ClaimRepository определяет интерфейс для работы с заявками
type ClaimRepository interface {
	// Create создаёт новую заявку
	Create(ctx context.Context, claim *Claim) error

	// Update обновляет существующую заявку
	Update(ctx context.Context, claim *Claim) error

	// Get получает заявку по ID
	Get(ctx context.Context, id string) (*Claim, error)

	// GetActiveByUserAndIssue получает неконечную заявку пары (user, issue)
	GetActiveByUserAndIssue(ctx context.Context, userID, issueID string) (*Claim, error)

	// ListByUser возвращает заявки пользователя вместе с issue
	ListByUser(ctx context.Context, userID string) ([]ClaimWithIssue, error)

	// ListRecent возвращает последние заявки платформы
	ListRecent(ctx context.Context, limit int) ([]ClaimWithIssue, error)

	// ListByPRNumber возвращает заявки репозитория с указанным номером PR
	ListByPRNumber(ctx context.Context, repositoryID string, prNumber int) ([]Claim, error)

	// UserStats возвращает сводку по заявкам пользователя
	UserStats(ctx context.Context, userID string) (*UserClaimStats, error)

	// MonthlyRewards возвращает суммы наград пользователя по месяцам
	MonthlyRewards(ctx context.Context, userID string) ([]MonthlyReward, error)
}
