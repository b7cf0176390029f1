package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/securenotes/internal/models"
	"github.com/iudanet/securenotes/internal/server/handlers"
	"github.com/iudanet/securenotes/internal/server/token"
)

// AuthMiddleware создает middleware для проверки access token.
// Валидный Bearer токен кладет user_id, email и роли в контекст запроса.
// Причина отказа логируется, но наружу всегда уходит одинаковый 401.
func AuthMiddleware(logger *slog.Logger, codec *token.Codec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("Missing Authorization header", "path", r.URL.Path)
				handlers.WriteError(logger, w, r, http.StatusUnauthorized, "Authentication required")
				return
			}

			// Ожидаем формат: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("Invalid Authorization header format", "path", r.URL.Path)
				handlers.WriteError(logger, w, r, http.StatusUnauthorized, "Authentication required")
				return
			}

			// Валидируем токен: подпись, срок действия, вид (access)
			claims, err := codec.Parse(parts[1], token.KindAccess)
			if err != nil {
				logger.Warn("Invalid access token", "path", r.URL.Path, "error", err)
				handlers.WriteError(logger, w, r, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), handlers.UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, handlers.EmailKey, claims.Subject)
			ctx = context.WithValue(ctx, handlers.RolesKey, models.RoleSetFromStrings(claims.Roles))

			logger.Debug("User authenticated", "user_id", claims.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole создает middleware, пропускающее только пользователей с ролью.
// Должно стоять после AuthMiddleware: роли берутся из контекста.
func RequireRole(logger *slog.Logger, role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roles, ok := handlers.GetRoles(r.Context())
			if !ok || !roles.Has(role) {
				userID, _ := handlers.GetUserID(r.Context())
				logger.Warn("Access denied: missing role",
					"user_id", userID,
					"required_role", string(role),
					"path", r.URL.Path)
				handlers.WriteError(logger, w, r, http.StatusForbidden, "Access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
