package domain

import "errors"

// Доменные ошибки для бизнес-логики
var (
	// ErrNotFound - ресурс не найден
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput - некорректные входные данные
	ErrInvalidInput = errors.New("invalid input data")

	// ErrUnauthorized - запрос без действующей сессии
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden - операция над чужим ресурсом
	ErrForbidden = errors.New("forbidden")

	// ErrClaimExists - заявка пользователя на этот issue уже существует
	ErrClaimExists = errors.New("issue already claimed by this user")

	// ErrClaimState - недопустимый переход статуса заявки
	ErrClaimState = errors.New("claim is not in a valid state for this operation")

	// ErrNoBounty - у issue нет bounty
	ErrNoBounty = errors.New("issue has no bounty attached")

	// ErrDepositLimit - превышен суточный лимит пополнения пула
	ErrDepositLimit = errors.New("daily deposit limit exceeded")

	// ErrInsufficientBalance - в пуле недостаточно свободных токенов
	ErrInsufficientBalance = errors.New("insufficient available pool balance")

	// ErrPoolExists - пул для репозитория уже существует
	ErrPoolExists = errors.New("pool already exists for repository")

	// ErrMalformedPRURL - ссылка на pull request не соответствует формату
	ErrMalformedPRURL = errors.New("malformed pull request URL")
)

// ErrorCode представляет код ошибки API
type ErrorCode string

const (
	CodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	CodeForbidden           ErrorCode = "FORBIDDEN"
	CodeInvalidInput        ErrorCode = "INVALID_INPUT"
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeClaimExists         ErrorCode = "CLAIM_EXISTS"
	CodeClaimState          ErrorCode = "CLAIM_STATE"
	CodeNoBounty            ErrorCode = "NO_BOUNTY"
	CodeDepositLimit        ErrorCode = "DEPOSIT_LIMIT"
	CodeInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"
	CodePoolExists          ErrorCode = "POOL_EXISTS"
	CodeInternal            ErrorCode = "INTERNAL"
)

// MapErrorToCode преобразует доменную ошибку в код API
func MapErrorToCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrMalformedPRURL):
		return CodeInvalidInput
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrClaimExists):
		return CodeClaimExists
	case errors.Is(err, ErrClaimState):
		return CodeClaimState
	case errors.Is(err, ErrNoBounty):
		return CodeNoBounty
	case errors.Is(err, ErrDepositLimit):
		return CodeDepositLimit
	case errors.Is(err, ErrInsufficientBalance):
		return CodeInsufficientBalance
	case errors.Is(err, ErrPoolExists):
		return CodePoolExists
	default:
		return CodeInternal
	}
}
