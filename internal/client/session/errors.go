package session

import "errors"

var (
	// ErrSessionTerminated - сессия принудительно завершена, пользователь должен войти заново.
	ErrSessionTerminated = errors.New("session terminated")
	// ErrNoRefreshToken - в хранилище нет токена обновления.
	ErrNoRefreshToken = errors.New("no refresh token")
	// ErrRenewalFailed - не удалось обновить токен доступа.
	ErrRenewalFailed = errors.New("access token renewal failed")
	// ErrRenewRejected - сервер отклонил токен обновления.
	ErrRenewRejected = errors.New("refresh token rejected")
	// ErrRetryRejected - повторный запрос с новым токеном снова получил 401.
	ErrRetryRejected = errors.New("request rejected after token renewal")
)
