// id - идентификаторы, которые выдает тестовый сервер eGuard.
package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// refreshPrefix - префикс токенов обновления, отличает их от токенов доступа в логах и запросах.
const refreshPrefix = "rt_"

// NewRefreshToken - выдает непрозрачный токен обновления: префикс и случайный UUID без дефисов.
func NewRefreshToken() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate refresh token, %w", err)
	}
	return refreshPrefix + strings.ReplaceAll(u.String(), "-", ""), nil
}

// IsRefreshToken - проверяет формат токена обновления без обращения к хранилищу.
func IsRefreshToken(s string) bool {
	raw, ok := strings.CutPrefix(s, refreshPrefix)
	if !ok || len(raw) != 32 {
		return false
	}
	u, err := uuid.Parse(raw)
	return err == nil && u.Version() == 4
}
