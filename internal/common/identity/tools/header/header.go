package header

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Authorization - имя заголовка с токеном доступа.
const Authorization = "Authorization"

const bearerScheme = "Bearer"

// Bearer - формирует значение заголовка Authorization для токена.
func Bearer(token string) string {
	return bearerScheme + " " + token
}

// GetToken - функция для получения токена из набора заголовков.
func GetToken(h http.Header) (string, error) {
	authHeader := h.Get(Authorization)
	if authHeader == "" {
		return "", fmt.Errorf("missing authorization header")
	}

	// Проверяю, что заголовок начинается с "Bearer "
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != bearerScheme || parts[1] == "" {
		return "", fmt.Errorf("invalid authorization header format")
	}
	return parts[1], nil
}

// GetTokenFromHeader - функция для получения токена из заголовка запроса.
func GetTokenFromHeader(req *http.Request) (string, error) {
	return GetToken(req.Header)
}

// GetTokenFromRestyRequest - функция для получения токена, с которым был отправлен запрос resty клиента.
// Пустая строка без ошибки означает, что запрос был отправлен без токена.
func GetTokenFromRestyRequest(req *resty.Request) (string, error) {
	if req == nil || req.Header.Get(Authorization) == "" {
		return "", nil
	}
	return GetToken(req.Header)
}
