// session - сессия клиента API eGuard: resty клиент, который сам подставляет токен доступа,
// обновляет его при ответе 401 и завершает сессию, если обновить токен не удалось.
package session

import (
	"context"
	"time"

	"github.com/abezemskiy/eguard/internal/client/identity"
	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Config - параметры сессии.
type Config struct {
	BaseURL      string        // базовый адрес API, например http://localhost:8080/eguard
	Timeout      time.Duration // ограничение времени одного HTTP запроса, 0 - без ограничения
	RenewTimeout time.Duration // ограничение времени обновления токена и уведомления о выходе
	Routes       *Routes       // nil - DefaultRoutes()
	Registerer   prometheus.Registerer
}

// Session - клиент API с управлением токенами.
type Session struct {
	Client  *resty.Client
	Store   identity.CredentialStore
	Metrics *Metrics

	coordinator *Coordinator
}

// New - создает сессию. Все запросы через Session.Client проходят через мидлвари сессии.
func New(cfg Config, store identity.CredentialStore, navigator identity.Navigator) *Session {
	routes := DefaultRoutes()
	if cfg.Routes != nil {
		routes = *cfg.Routes
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	metrics := NewMetrics(cfg.Registerer)
	term := NewTerminator(NewNotifier(client, routes.Logout), store, navigator, routes.LoginView, cfg.RenewTimeout, metrics)
	coordinator := NewCoordinator(store, NewRenewer(client, routes.Renew), term, cfg.RenewTimeout, metrics)

	client.OnBeforeRequest(OnBeforeMiddleware(store, routes))
	client.OnAfterResponse(OnAfterMiddleware(coordinator, routes, metrics))

	return &Session{
		Client:      client,
		Store:       store,
		Metrics:     metrics,
		coordinator: coordinator,
	}
}

// Coordinator - возвращает координатор обновления токена сессии.
func (s *Session) Coordinator() *Coordinator {
	return s.coordinator
}

// Establish - сохраняет токены после успешного входа и снимает признак завершенной сессии.
// Ошибка долговременного хранилища возвращается, но токены в памяти уже установлены.
func (s *Session) Establish(ctx context.Context, cred identity.Credential) error {
	return s.coordinator.Establish(ctx, cred)
}

// Logout - завершает сессию по инициативе пользователя.
func (s *Session) Logout(ctx context.Context) error {
	return s.coordinator.Terminate(ctx)
}
