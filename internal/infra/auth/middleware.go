package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/xela07ax/brandpulse/internal/domain"
	"go.uber.org/zap"
)

// Тип для ключа в контексте (избегаем коллизий)
type ctxKey string

const identityKey ctxKey = "identity"

// NewMiddleware резолвит опциональную идентичность запроса.
// Правила:
//   - заголовка нет — анонимный sentinel, запрос проходит;
//   - заголовок есть, но не вида "Bearer <token>" — 401;
//   - токен есть, но не проверяется — тоже анонимный (не отклоняем).
func NewMiddleware(resolver IdentityResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), domain.Anonymous())))
				return
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("malformed authorization header")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ident, err := resolver.Resolve(parts[1])
			if err != nil {
				// Непроверяемый токен приравнивается к его отсутствию
				logger.Debug("token rejected, falling back to anonymous", zap.Error(err))
				ident = domain.Anonymous()
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
		})
	}
}

func WithIdentity(ctx context.Context, ident domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// IdentityFromContext достает идентичность в любом месте кода.
func IdentityFromContext(ctx context.Context) domain.Identity {
	if ident, ok := ctx.Value(identityKey).(domain.Identity); ok {
		return ident
	}
	return domain.Anonymous()
}
