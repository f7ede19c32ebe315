package forbider

import (
	"net/http"

	"github.com/abezemskiy/eguard/internal/server/identity/auth"
	"github.com/abezemskiy/eguard/internal/server/logger"

	"go.uber.org/zap"
)

// MenuForbider - meddleware, которая запрещает запрос, если меню menuID недоступно сотруднику.
// Должна вызываться после auth.Middleware.
func MenuForbider(menuID int64) func(http.Handler) http.HandlerFunc {
	return func(h http.Handler) http.HandlerFunc {
		return func(res http.ResponseWriter, req *http.Request) {
			// Получаю данные сотрудника из контекста
			ident, ok := auth.IdentityFromContext(req.Context())
			if !ok {
				logger.ServerLog.Error("identity not found in context", zap.String("address", req.URL.String()))
				http.Error(res, "identity not found in context", http.StatusInternalServerError)
				return
			}

			if !ident.CanAccessMenu(menuID) {
				logger.ServerLog.Info("menu is not accessible", zap.String("address", req.URL.String()),
					zap.String("email", ident.EmployeeEmail), zap.Int64("menu", menuID))
				http.Error(res, "menu is not accessible", http.StatusForbidden)
				return
			}
			// продолжаю выполнение запроса
			h.ServeHTTP(res, req)
		}
	}
}
