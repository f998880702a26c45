package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/GoArmGo/ShopTrack/internal/domain"
	"github.com/GoArmGo/ShopTrack/internal/logger"
	"github.com/GoArmGo/ShopTrack/internal/metrics"
	"github.com/GoArmGo/ShopTrack/internal/usecase"
)

// AuthHandler: обработчик регистрации, входа и выхода.
type AuthHandler struct {
	authUseCase usecase.AuthUseCase
	logger      *slog.Logger
}

// NewAuthHandler создаёт новый экземпляр AuthHandler.
func NewAuthHandler(uc usecase.AuthUseCase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authUseCase: uc, logger: logger}
}

type userResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type loginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    userResponse `json:"user"`
}

// Register: POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), h.logger)

	data, err := decodeObject(w, r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), log)
		return
	}
	username, password := credentialsFrom(data)

	if _, err := h.authUseCase.Register(r.Context(), username, password); err != nil {
		respondWithDomainError(w, err, log, nil)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully."}, log)
}

// Login: POST /auth/login, выдаёт новый bearer-токен.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), h.logger)

	data, err := decodeObject(w, r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), log)
		return
	}
	username, password := credentialsFrom(data)

	user, token, err := h.authUseCase.Authenticate(r.Context(), username, password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			metrics.RecordAuthFailure("unknown_user")
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.RecordAuthFailure("wrong_password")
		}
		// неизвестное имя: это тоже неверные учётные данные
		respondWithDomainError(w, err, log, map[domain.ErrorKind]int{domain.KindNotFound: http.StatusUnauthorized})
		return
	}

	respondWithJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   token,
		User:    userResponse{ID: user.ID, Username: user.Username},
	}, log)
}

// Logout: POST /auth/logout, отзывает токен текущего запроса.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), h.logger)

	token, ok := TokenFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, msgUnauthorized, log)
		return
	}

	if err := h.authUseCase.Revoke(r.Context(), token); err != nil {
		respondWithDomainError(w, err, log, nil)
		return
	}

	log.Info("user logged out")
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"}, log)
}
