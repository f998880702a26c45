package handler

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/GoArmGo/ShopTrack/internal/logger"
)

// Index: GET /, проверка, что API запущен.
func Index(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"message": "ShopTrack API is running"}, logger.FromContext(r.Context(), log))
	}
}

// Hello: GET /hello.
func Hello(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Hello, World!"))
}

// NotFound отвечает на неизвестные маршруты.
func NotFound(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "Not found", logger.FromContext(r.Context(), log))
	}
}

// MethodNotAllowed отвечает на известный путь с неподдерживаемым методом.
func MethodNotAllowed(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed", logger.FromContext(r.Context(), log))
	}
}

// Recoverer перехватывает панику обработчика и отвечает 500 в JSON,
// в отличие от middleware.Recoverer из chi, который отдаёт пустое тело.
func Recoverer(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				reqLogger := logger.FromContext(r.Context(), log)
				reqLogger.Error("panic recovered", "panic", rvr, "stack", string(debug.Stack()))
				respondWithError(w, http.StatusInternalServerError, msgInternalError, reqLogger)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
