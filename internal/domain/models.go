package domain

import "time"

// ClaimStatus представляет статус заявки на выполнение issue
type ClaimStatus string

const (
	ClaimStatusClaimed   ClaimStatus = "claimed"
	ClaimStatusSubmitted ClaimStatus = "submitted"
	ClaimStatusReview    ClaimStatus = "review"
	ClaimStatusApproved  ClaimStatus = "approved"
	ClaimStatusRejected  ClaimStatus = "rejected"
	ClaimStatusExpired   ClaimStatus = "expired"
)

// IsValid проверяет валидность статуса заявки
func (s ClaimStatus) IsValid() bool {
	switch s {
	case ClaimStatusClaimed, ClaimStatusSubmitted, ClaimStatusReview,
		ClaimStatusApproved, ClaimStatusRejected, ClaimStatusExpired:
		return true
	}
	return false
}

// IsTerminal проверяет, является ли статус конечным
func (s ClaimStatus) IsTerminal() bool {
	return s == ClaimStatusApproved || s == ClaimStatusRejected || s == ClaimStatusExpired
}

// CanTransitionTo проверяет допустимость перехода в новый статус.
// Жизненный цикл: claimed → submitted → review → approved|rejected,
// expired достижим из любого неконечного статуса.
func (s ClaimStatus) CanTransitionTo(next ClaimStatus) bool {
	if next == ClaimStatusExpired {
		return !s.IsTerminal()
	}

	switch s {
	case ClaimStatusClaimed:
		return next == ClaimStatusSubmitted
	case ClaimStatusSubmitted:
		return next == ClaimStatusReview || next == ClaimStatusApproved || next == ClaimStatusRejected
	case ClaimStatusReview:
		return next == ClaimStatusApproved || next == ClaimStatusRejected
	default:
		return false
	}
}

// IssueState представляет состояние GitHub issue
type IssueState string

const (
	IssueStateOpen   IssueState = "open"
	IssueStateClosed IssueState = "closed"
)

// IssueType представляет тип issue
type IssueType string

const (
	IssueTypeBug         IssueType = "bug"
	IssueTypeFeature     IssueType = "feature"
	IssueTypeDocs        IssueType = "docs"
	IssueTypeEnhancement IssueType = "enhancement"
)

// IsValid проверяет валидность типа issue
func (t IssueType) IsValid() bool {
	return t == IssueTypeBug || t == IssueTypeFeature || t == IssueTypeDocs || t == IssueTypeEnhancement
}

// MaxDailyDeposit - суточный лимит пополнения одного пула в токенах
const MaxDailyDeposit = 1000

// User представляет пользователя платформы.
// Создаётся при первом входе через GitHub OAuth, при последующих входах
// обновляются токен и аватар. Жёсткое удаление не предусмотрено.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	GitHubID      int64     `json:"githubId"`
	Email         string    `json:"email"`
	AvatarURL     string    `json:"avatarUrl"`
	AccessToken   string    `json:"-"`
	WalletAddress *string   `json:"walletAddress,omitempty"`
	TokenBalance  int       `json:"tokenBalance"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Repository представляет GitHub репозиторий, добавленный на платформу
type Repository struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	Name        string    `json:"name"`
	FullName    string    `json:"fullName"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	OpenIssues  int       `json:"openIssues"`
	IsPrivate   bool      `json:"isPrivate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Pool представляет токен-пул репозитория, из которого оплачиваются bounty.
// Создаётся лениво при первом пополнении; один пул на репозиторий.
type Pool struct {
	ID              string    `json:"id"`
	RepositoryID    string    `json:"repositoryId"`
	ManagerID       string    `json:"managerId"`
	Balance         int       `json:"balance"`
	DailyDeposited  int       `json:"dailyDeposited"`
	LastDepositTime time.Time `json:"lastDepositTime"`
	IsActive        bool      `json:"isActive"`
	ContractAddress string    `json:"contractAddress"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Issue представляет GitHub issue с опциональным bounty
type Issue struct {
	ID            string     `json:"id"`
	RepositoryID  string     `json:"repositoryId"`
	IssueNumber   int        `json:"issueNumber"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	URL           string     `json:"url"`
	State         IssueState `json:"state"`
	Type          IssueType  `json:"type"`
	HasBounty     bool       `json:"hasBounty"`
	Reward        int        `json:"reward"`
	BountyAddedAt *time.Time `json:"bountyAddedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Claim представляет заявку пользователя на выполнение bounty-issue,
// проходящую через жизненный цикл статусов ClaimStatus
type Claim struct {
	ID              string      `json:"id"`
	UserID          string      `json:"userId"`
	IssueID         string      `json:"issueId"`
	Status          ClaimStatus `json:"status"`
	PRURL           string      `json:"prUrl,omitempty"`
	PRNumber        int         `json:"prNumber,omitempty"`
	TransactionHash string      `json:"transactionHash,omitempty"`
	CompletedAt     *time.Time  `json:"completedAt,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}
