// auth - пакет, который реализует middleware для аутентификации сотрудника.
package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/abezemskiy/eguard/internal/common/identity/tools/header"
	"github.com/abezemskiy/eguard/internal/common/identity/tools/token"
	"github.com/abezemskiy/eguard/internal/server/logger"

	"go.uber.org/zap"
)

type contextKey string

// IdentityKey - ключ для установки данных сотрудника в контекст.
const IdentityKey = contextKey("identity")

// Middleware - проверяет JWT входящих запросов к серверу.
// Данные сотрудника из проверенного токена устанавливаются в контекст.
func Middleware(secretKey string) func(http.Handler) http.HandlerFunc {
	return func(h http.Handler) http.HandlerFunc {
		return func(res http.ResponseWriter, req *http.Request) {
			getToken, err := header.GetTokenFromHeader(req)
			// В случае ошибки получения токена возвращаю статус 401 - пользователь не аутентифицирован.
			if err != nil {
				logger.ServerLog.Error("failed to get token from request", zap.String("address", req.URL.String()), zap.String("error", err.Error()))
				http.Error(res, fmt.Errorf("failed to get token from request, %w", err).Error(), http.StatusUnauthorized)
				return
			}
			ident, err := token.Verify(getToken, secretKey)
			if err != nil {
				logger.ServerLog.Info("access token rejected", zap.String("address", req.URL.String()), zap.String("error", err.Error()))
				http.Error(res, fmt.Errorf("access token rejected, %w", err).Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(req.Context(), IdentityKey, ident)
			// вызываю основной обработчик
			h.ServeHTTP(res, req.WithContext(ctx))
		}
	}
}

// IdentityFromContext - возвращает данные сотрудника, установленные Middleware.
func IdentityFromContext(ctx context.Context) (token.SessionIdentity, bool) {
	ident, ok := ctx.Value(IdentityKey).(token.SessionIdentity)
	return ident, ok
}
