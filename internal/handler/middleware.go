package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/GoArmGo/ShopTrack/internal/logger"
	"github.com/GoArmGo/ShopTrack/internal/metrics"
	"github.com/GoArmGo/ShopTrack/internal/usecase"
)

// RequestLogger: middleware для логирования HTTP-запросов.
// Логгер с request_id кладётся в контекст, обработчики берут его через logger.FromContext.
func RequestLogger(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLogger := log
			if id := middleware.GetReqID(r.Context()); id != "" {
				reqLogger = log.With("request_id", id)
			}
			r = r.WithContext(logger.IntoContext(r.Context(), reqLogger))

			// Оборачиваем ResponseWriter, чтобы знать статус
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			reqLogger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// responseWriter нужен, чтобы перехватывать код ответа
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type (
	userIDKey struct{}
	tokenKey  struct{}
)

const (
	msgInvalidAuthHeader = "Invalid authorization header"
	msgUnauthorized      = "Unauthorized"
)

// AuthMiddleware пропускает запрос дальше только с действующим bearer-токеном.
// Идентификатор пользователя и сам токен попадают в контекст запроса.
func AuthMiddleware(auth usecase.AuthUseCase, log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := logger.FromContext(r.Context(), log)

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				metrics.RecordAuthFailure("malformed_header")
				reqLogger.Debug("rejected request without bearer token", "path", r.URL.Path)
				respondWithError(w, http.StatusUnauthorized, msgInvalidAuthHeader, reqLogger)
				return
			}

			userID, err := auth.Resolve(r.Context(), token)
			if err != nil {
				metrics.RecordAuthFailure("invalid_token")
				respondWithDomainError(w, err, reqLogger, nil)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey{}, userID)
			ctx = context.WithValue(ctx, tokenKey{}, token)
			ctx = logger.IntoContext(ctx, reqLogger.With("user_id", userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken разбирает заголовок вида "Bearer <token>".
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || token == "" || strings.Contains(token, " ") {
		return "", false
	}
	return token, true
}

// UserIDFromContext возвращает пользователя, установленного AuthMiddleware.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	return id, ok
}

// TokenFromContext возвращает bearer-токен текущего запроса.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok
}
