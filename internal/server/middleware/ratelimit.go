package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/iudanet/securenotes/internal/server/handlers"
	"github.com/iudanet/securenotes/internal/server/ratelimit"
)

// RateLimitMiddleware создает middleware для общего ограничения частоты запросов.
// Ключ — IP адрес клиента, на отказ возвращается 429.
func RateLimitMiddleware(logger *slog.Logger, limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r)

			if !limiter.Allow(key) {
				logger.Warn("Rate limit exceeded",
					"ip", key,
					"method", r.Method,
					"path", r.URL.Path,
				)
				handlers.WriteError(logger, w, r, http.StatusTooManyRequests,
					"Rate limit exceeded, please try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoginRateLimitMiddleware создает middleware для ограничения попыток логина.
// Стоит ДО обработчика: отклоненный запрос не доходит до проверки пароля.
// На отказ возвращается 400, как и на прочие невалидные запросы логина,
// чтобы не давать перебирающему отдельный сигнал.
func LoginRateLimitMiddleware(logger *slog.Logger, limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r)

			if !limiter.Allow(key) {
				logger.Warn("Login rate limit exceeded", "ip", key)
				handlers.WriteError(logger, w, r, http.StatusBadRequest,
					"Too many login attempts. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP извлекает IP адрес клиента из запроса.
// За прокси берется первый адрес из X-Forwarded-For, иначе host из RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Первый адрес в списке — исходный клиент
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
