// Package chain описывает интерфейс escrow-контракта bounty-платформы.
//
// Реальной интеграции с блокчейном нет: SimulatedClient - явная заглушка,
// возвращающая фиксированные значения и случайные хэши транзакций.
// Настоящая интеграция должна реализовать EscrowClient, не трогая вызывающий код.
package chain

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// PoolState представляет состояние пула на контракте
type PoolState struct {
	ContractAddress string `json:"contractAddress"`
	Balance         int    `json:"balance"`
	Active          bool   `json:"active"`
}

// BountyState представляет состояние bounty на контракте
type BountyState struct {
	IssueNumber int    `json:"issueNumber"`
	Amount      int    `json:"amount"`
	Claimed     bool   `json:"claimed"`
	Completed   bool   `json:"completed"`
}

// EscrowClient определяет операции escrow-контракта bounty-платформы
type EscrowClient interface {
	// CreatePool создаёт пул репозитория на контракте
	CreatePool(ctx context.Context, repositoryFullName string) (txHash string, err error)

	// FundPool пополняет пул репозитория
	FundPool(ctx context.Context, repositoryFullName string, amount int) (txHash string, err error)

	// CreateBounty резервирует награду за issue
	CreateBounty(ctx context.Context, repositoryFullName string, issueNumber, amount int) (txHash string, err error)

	// ClaimBounty фиксирует заявку исполнителя на bounty
	ClaimBounty(ctx context.Context, repositoryFullName string, issueNumber int, wallet string) (txHash string, err error)

	// CompleteBounty выплачивает награду исполнителю
	CompleteBounty(ctx context.Context, repositoryFullName string, issueNumber int, wallet string) (txHash string, err error)

	// CancelBounty снимает награду с issue
	CancelBounty(ctx context.Context, repositoryFullName string, issueNumber int) (txHash string, err error)

	// PoolState читает состояние пула с контракта
	PoolState(ctx context.Context, repositoryFullName string) (*PoolState, error)

	// BountyState читает состояние bounty с контракта
	BountyState(ctx context.Context, repositoryFullName string, issueNumber int) (*BountyState, error)
}

// SimulatedClient - заглушка EscrowClient без какого-либо леджера.
// Каждый вызов ждёт искусственную задержку и возвращает сфабрикованный результат.
type SimulatedClient struct {
	contractAddress string
	delay           time.Duration
}

// NewSimulatedClient создаёт мок-клиент escrow контракта
func NewSimulatedClient(contractAddress string, delay time.Duration) *SimulatedClient {
	return &SimulatedClient{
		contractAddress: contractAddress,
		delay:           delay,
	}
}

// CreatePool имитирует создание пула на контракте
func (c *SimulatedClient) CreatePool(ctx context.Context, repositoryFullName string) (string, error) {
	return c.simulateTx(ctx)
}

// FundPool имитирует пополнение пула
func (c *SimulatedClient) FundPool(ctx context.Context, repositoryFullName string, amount int) (string, error) {
	return c.simulateTx(ctx)
}

// CreateBounty имитирует резервирование награды
func (c *SimulatedClient) CreateBounty(ctx context.Context, repositoryFullName string, issueNumber, amount int) (string, error) {
	return c.simulateTx(ctx)
}

// ClaimBounty имитирует заявку исполнителя
func (c *SimulatedClient) ClaimBounty(ctx context.Context, repositoryFullName string, issueNumber int, wallet string) (string, error) {
	return c.simulateTx(ctx)
}

// CompleteBounty имитирует выплату награды
func (c *SimulatedClient) CompleteBounty(ctx context.Context, repositoryFullName string, issueNumber int, wallet string) (string, error) {
	return c.simulateTx(ctx)
}

// CancelBounty имитирует снятие награды
func (c *SimulatedClient) CancelBounty(ctx context.Context, repositoryFullName string, issueNumber int) (string, error) {
	return c.simulateTx(ctx)
}

// PoolState возвращает сфабрикованное состояние пула
func (c *SimulatedClient) PoolState(ctx context.Context, repositoryFullName string) (*PoolState, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	return &PoolState{
		ContractAddress: c.contractAddress,
		Balance:         0,
		Active:          true,
	}, nil
}

// BountyState возвращает сфабрикованное состояние bounty
func (c *SimulatedClient) BountyState(ctx context.Context, repositoryFullName string, issueNumber int) (*BountyState, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	return &BountyState{IssueNumber: issueNumber}, nil
}

// simulateTx ждёт задержку и возвращает случайный хэш транзакции
func (c *SimulatedClient) simulateTx(ctx context.Context) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	hash := make([]byte, 32)
	if _, err := rand.Read(hash); err != nil {
		return "", fmt.Errorf("failed to generate transaction hash: %w", err)
	}

	return "0x" + hex.EncodeToString(hash), nil
}

// wait имитирует время подтверждения транзакции с учётом отмены контекста
func (c *SimulatedClient) wait(ctx context.Context) error {
	if c.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(c.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
