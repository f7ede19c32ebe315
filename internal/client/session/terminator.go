package session

import (
	"context"
	"time"

	"github.com/abezemskiy/eguard/internal/client/identity"
	"github.com/abezemskiy/eguard/internal/client/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const terminateKey = "terminate"

// Terminator - принудительное завершение сессии.
type Terminator struct {
	notifier  Notifier
	store     identity.CredentialStore
	navigator identity.Navigator
	loginView string
	timeout   time.Duration
	metrics   *Metrics

	group singleflight.Group
}

// NewTerminator - создает Terminator. timeout ограничивает уведомление сервера о выходе.
func NewTerminator(notifier Notifier, store identity.CredentialStore, navigator identity.Navigator,
	loginView string, timeout time.Duration, metrics *Metrics) *Terminator {
	if timeout <= 0 {
		timeout = DefaultRenewTimeout
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Terminator{
		notifier:  notifier,
		store:     store,
		navigator: navigator,
		loginView: loginView,
		timeout:   timeout,
		metrics:   metrics,
	}
}

// Terminate - уведомляет сервер о выходе, очищает хранилище токенов и переводит интерфейс на страницу входа.
// Одновременные вызовы объединяются в одно завершение.
// Ошибка уведомления сервера только логируется, возвращается ошибка очистки хранилища.
func (t *Terminator) Terminate(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	_, err, shared := t.group.Do(terminateKey, func() (interface{}, error) {
		return nil, t.terminate(ctx)
	})
	if shared {
		logger.ClientLog.Debug("session termination shared between callers")
	}
	return err
}

func (t *Terminator) terminate(ctx context.Context) error {
	logger.ClientLog.Info("terminating session")

	nctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	if err := t.notifier.Logout(nctx); err != nil {
		logger.ClientLog.Warn("failed to notify server about logout", zap.String("error", err.Error()))
	}

	err := t.store.Clear(ctx)
	if err != nil {
		logger.ClientLog.Error("failed to clear credentials", zap.String("error", err.Error()))
	}

	t.metrics.Terminations.Inc()
	t.navigator.Navigate(t.loginView)
	return err
}
