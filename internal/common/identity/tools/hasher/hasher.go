// hasher - пакет со вспомогательными функция для хэширования паролей.
package hasher

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// CalkHash - функция, которая хэширует пароль и возвращает хэш в виде строки.
func CalkHash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password, %w", err)
	}
	return string(hash), nil
}

// Compare - проверяет, что пароль соответствует хэшу.
func Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
