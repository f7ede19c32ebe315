// token - пакет для работы с JWT сессии eGuard.
// Клиент только читает утверждения токена (Decode), подпись проверяет бэкенд.
// Build и Verify используются тестовым бэкендом.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed - токен не удалось разобрать.
var ErrMalformed = errors.New("malformed access token")

// Роли сотрудника.
const (
	RoleWorker  = "WORKER"
	RoleManager = "MANAGER"
	RoleAdmin   = "ADMIN"
)

// SessionIdentity - данные текущего пользователя, извлеченные из токена доступа.
// Используются только для отображения и подсказок интерфейсу, сервер перепроверяет каждый запрос.
type SessionIdentity struct {
	EmployeeID            int64   `json:"employeeId"`
	CompanyID             int64   `json:"companyId"`
	CompanyName           string  `json:"companyName"`
	CompanyAddress        string  `json:"companyAddress"`
	CompanyBusinessNumber string  `json:"companyBusinessNumber"`
	FactoryID             int64   `json:"factoryId"`
	FactoryName           string  `json:"factoryName"`
	EmployeeName          string  `json:"employeeName"`
	EmployeeEmail         string  `json:"employeeEmail"`
	EmployeePhoneNumber   string  `json:"employeePhoneNumber"`
	Role                  string  `json:"role"`
	HealthStatus          string  `json:"healthStatus"`
	AuthenticationStatus  string  `json:"authenticationStatus"`
	AccessibleMenuIDs     []int64 `json:"accessibleMenuIds"`
}

// CanAccessMenu - проверяет, доступно ли пользователю меню с указанным идентификатором.
func (s SessionIdentity) CanAccessMenu(menuID int64) bool {
	for _, id := range s.AccessibleMenuIDs {
		if id == menuID {
			return true
		}
	}
	return false
}

// Claims - структура утверждений, которая включает стандартные утверждения
// и данные сотрудника.
type Claims struct {
	jwt.RegisteredClaims
	SessionIdentity
}

// Decode - извлекает данные пользователя из токена доступа без проверки подписи.
// Ошибка означает, что пользователь не аутентифицирован.
func Decode(tokenStr string) (SessionIdentity, error) {
	if tokenStr == "" {
		return SessionIdentity{}, fmt.Errorf("%w: empty token", ErrMalformed)
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return SessionIdentity{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return claims.SessionIdentity, nil
}

// ExpiresAt - возвращает время истечения токена без проверки подписи.
// ok == false, если токен не содержит утверждения exp.
func ExpiresAt(tokenStr string) (expires time.Time, ok bool, err error) {
	claims := &Claims{}
	if _, _, err = jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false, nil
	}
	return claims.ExpiresAt.Time, true, nil
}

// Build - создает токен доступа, подписанный алгоритмом HS256, и возвращает его в виде строки.
func Build(identity SessionIdentity, secretKey string, ttl time.Duration) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(identity.EmployeeID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		SessionIdentity: identity,
	})

	tokenString, err := tok.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to signed JWT to string, %w", err)
	}
	return tokenString, nil
}

// Verify - проверяет подпись и срок действия токена и возвращает данные пользователя.
// Алгоритм подписи должен совпадать с тем, который используется в Build.
func Verify(tokenStr, secretKey string) (SessionIdentity, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secretKey), nil
		})
	if err != nil {
		return SessionIdentity{}, err
	}

	if !tok.Valid {
		return SessionIdentity{}, fmt.Errorf("token is not valid")
	}
	return claims.SessionIdentity, nil
}
