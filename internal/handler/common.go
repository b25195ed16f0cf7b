package handler

import (
	"encoding/json"
	"net/http"

	"codecrew/internal/domain"
	"go.uber.org/zap"
)

// ErrorResponse представляет структуру ошибки API
type ErrorResponse struct {
	Message string           `json:"message"`
	Code    domain.ErrorCode `json:"code,omitempty"`
}

// writeJSON записывает JSON ответ
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError записывает ошибку в формате API
func writeError(w http.ResponseWriter, logger *zap.Logger, statusCode int, message string, code domain.ErrorCode) {
	logger.Warn("request error",
		zap.Int("status_code", statusCode),
		zap.String("error_code", string(code)),
		zap.String("message", message))

	writeJSON(w, statusCode, ErrorResponse{Message: message, Code: code})
}

// writeUnauthorized записывает ответ 401 в формате, который ожидает фронтенд
func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized", Code: domain.CodeUnauthorized})
}

// handleDomainError обрабатывает доменные ошибки и возвращает соответствующий HTTP статус.
// Неклассифицированные ошибки логируются с полной детализацией, клиенту
// уходит общий текст без подробностей.
func handleDomainError(w http.ResponseWriter, logger *zap.Logger, err error) {
	code := domain.MapErrorToCode(err)

	switch code {
	case domain.CodeUnauthorized:
		writeUnauthorized(w)
	case domain.CodeForbidden:
		writeError(w, logger, http.StatusForbidden, err.Error(), code)
	case domain.CodeInvalidInput:
		writeError(w, logger, http.StatusBadRequest, err.Error(), code)
	case domain.CodeNotFound:
		writeError(w, logger, http.StatusNotFound, err.Error(), code)
	case domain.CodeClaimExists, domain.CodePoolExists:
		writeError(w, logger, http.StatusConflict, err.Error(), code)
	case domain.CodeClaimState, domain.CodeNoBounty, domain.CodeDepositLimit, domain.CodeInsufficientBalance:
		writeError(w, logger, http.StatusBadRequest, err.Error(), code)
	default:
		logger.Error("internal error", zap.Error(err))
		writeError(w, logger, http.StatusInternalServerError, "internal server error", domain.CodeInternal)
	}
}

// decodeJSON декодирует JSON из request body
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
