package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/abezemskiy/eguard/internal/client/identity"
	"github.com/go-resty/resty/v2"
)

// Envelope - обертка тела ответа сервера вида {"data": ...}.
type Envelope[T any] struct {
	Data T `json:"data"`
}

// Renewer - обменивает токен обновления на новый токен доступа.
// Если сервер выдал новый токен обновления, он возвращается в RefreshToken.
type Renewer interface {
	Renew(ctx context.Context, refreshToken string) (identity.Credential, error)
}

// RenewerFunc - адаптер функции к интерфейсу Renewer.
type RenewerFunc func(ctx context.Context, refreshToken string) (identity.Credential, error)

// Renew - вызывает f.
func (f RenewerFunc) Renew(ctx context.Context, refreshToken string) (identity.Credential, error) {
	return f(ctx, refreshToken)
}

// Notifier - уведомляет сервер о завершении сессии.
type Notifier interface {
	Logout(ctx context.Context) error
}

// NotifierFunc - адаптер функции к интерфейсу Notifier.
type NotifierFunc func(ctx context.Context) error

// Logout - вызывает f.
func (f NotifierFunc) Logout(ctx context.Context) error {
	return f(ctx)
}

// RestyRenewer - обновление токена доступа через API сервера.
type RestyRenewer struct {
	client *resty.Client
	path   string
}

// NewRenewer - создает RestyRenewer. Запросы идут через тот же клиент, что и остальные запросы сессии.
func NewRenewer(client *resty.Client, path string) *RestyRenewer {
	return &RestyRenewer{client: client, path: path}
}

// Renew - отправляет POST <path>?refreshToken=<token>.
func (r *RestyRenewer) Renew(ctx context.Context, refreshToken string) (identity.Credential, error) {
	resp, err := r.client.R().
		SetContext(WithoutRenewal(ctx)).
		SetQueryParam("refreshToken", refreshToken).
		Post(r.path)
	if err != nil {
		return identity.Credential{}, fmt.Errorf("failed to send renew request, %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return identity.Credential{}, fmt.Errorf("%w: status %d", ErrRenewRejected, resp.StatusCode())
	}

	var payload Envelope[identity.Credential]
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return identity.Credential{}, fmt.Errorf("failed to decode renew response, %w", err)
	}
	if payload.Data.AccessToken == "" {
		return identity.Credential{}, fmt.Errorf("%w: empty access token", ErrRenewRejected)
	}
	return payload.Data, nil
}

// RestyNotifier - уведомление сервера о выходе.
type RestyNotifier struct {
	client *resty.Client
	path   string
}

// NewNotifier - создает RestyNotifier.
func NewNotifier(client *resty.Client, path string) *RestyNotifier {
	return &RestyNotifier{client: client, path: path}
}

// Logout - отправляет POST <path> с текущим токеном доступа.
func (n *RestyNotifier) Logout(ctx context.Context) error {
	resp, err := n.client.R().
		SetContext(WithoutRenewal(ctx)).
		Post(n.path)
	if err != nil {
		return fmt.Errorf("failed to send logout request, %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("logout rejected with status %d", resp.StatusCode())
	}
	return nil
}
