package handler

import (
	"net/http"
	"time"

	"codecrew/internal/auth"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// loggerMiddleware добавляет структурированное логирование HTTP запросов
func loggerMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("user_agent", r.UserAgent()),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// requireAuth проверяет сессионную cookie и кладёт ID пользователя в контекст.
// Запросы без действующей сессии получают 401.
func requireAuth(sessions *auth.Sessions) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := sessions.UserFromRequest(r)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

// currentUserID возвращает ID аутентифицированного пользователя запроса
func currentUserID(r *http.Request) (string, bool) {
	return auth.UserIDFromContext(r.Context())
}
