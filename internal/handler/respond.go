package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/ShopTrack/internal/domain"
)

const msgInternalError = "Internal server error"

// respondWithJSON: отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError: отправляет JSON-ответ с ошибкой.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"error": message}, logger)
}

// statusByKind: единая таблица соответствия вида ошибки и HTTP-статуса.
var statusByKind = map[domain.ErrorKind]int{
	domain.KindValidation:         http.StatusBadRequest,
	domain.KindConflict:           http.StatusBadRequest,
	domain.KindInvalidCredentials: http.StatusUnauthorized,
	domain.KindUnauthorized:       http.StatusUnauthorized,
	domain.KindNotFound:           http.StatusNotFound,
	domain.KindInsufficientStock:  http.StatusBadRequest,
	domain.KindInternal:           http.StatusInternalServerError,
}

// respondWithDomainError выбирает статус по виду ошибки. overrides переопределяет
// статус для отдельных видов в конкретном обработчике.
// Внутренние ошибки логируются целиком, клиент получает общее сообщение.
func respondWithDomainError(w http.ResponseWriter, err error, logger *slog.Logger, overrides map[domain.ErrorKind]int) {
	kind := domain.KindOf(err)

	status, ok := overrides[kind]
	if !ok {
		status = statusByKind[kind]
	}

	message := domain.MessageOf(err)
	if kind == domain.KindInternal || message == "" {
		logger.Error("request failed", "error", err)
		respondWithError(w, status, msgInternalError, logger)
		return
	}

	logger.Debug("request rejected", "kind", kind, "status", status, "error", err)
	respondWithError(w, status, message, logger)
}
