package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/abezemskiy/eguard/internal/client/identity"
	"github.com/abezemskiy/eguard/internal/client/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultRenewTimeout - ограничение времени обновления токена по умолчанию.
const DefaultRenewTimeout = 10 * time.Second

const renewKey = "renew"

// State - состояние координатора обновления токена.
type State int32

const (
	// StateIdle - обновление не выполняется.
	StateIdle State = iota
	// StateRenewing - выполняется обновление, новые запросы с ошибкой 401 ожидают его результата.
	StateRenewing
	// StateTerminating - сессия завершена, запросы с ошибкой 401 отклоняются до следующего входа.
	StateTerminating
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRenewing:
		return "RENEWING"
	case StateTerminating:
		return "TERMINATING"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// SessionTerminator - завершение сессии после неудачного обновления.
type SessionTerminator interface {
	Terminate(ctx context.Context) error
}

// Coordinator - обеспечивает не более одного обновления токена доступа в каждый момент времени.
// Все запросы, получившие 401 во время обновления, ожидают его результат.
type Coordinator struct {
	store   identity.CredentialStore
	renewer Renewer
	term    SessionTerminator
	timeout time.Duration
	metrics *Metrics

	// mu защищает state, episode и членство в полете group: ключ flightKey(episode) существует
	// тогда и только тогда, когда state равен StateRenewing.
	mu      sync.Mutex
	state   State
	episode uint64 // номер сессии, увеличивается при входе и при завершении
	group   singleflight.Group
}

// NewCoordinator - создает Coordinator. timeout ограничивает запрос обновления токена.
func NewCoordinator(store identity.CredentialStore, renewer Renewer, term SessionTerminator,
	timeout time.Duration, metrics *Metrics) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultRenewTimeout
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Coordinator{
		store:   store,
		renewer: renewer,
		term:    term,
		timeout: timeout,
		metrics: metrics,
	}
}

func flightKey(episode uint64) string {
	return fmt.Sprintf("%s-%d", renewKey, episode)
}

// State - возвращает текущее состояние.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Renew - возвращает токен доступа, которым нужно заменить отклоненный failedToken.
//
// Если токен уже был заменен другим запросом, новый токен возвращается без обращения к серверу.
// Если обновление уже выполняется, вызов ожидает его результат.
// Отмена ctx прекращает ожидание, но не прерывает общее обновление.
func (c *Coordinator) Renew(ctx context.Context, failedToken string) (string, error) {
	c.mu.Lock()
	switch c.state {
	case StateTerminating:
		c.mu.Unlock()
		return "", ErrSessionTerminated
	case StateIdle:
		cred := c.store.Get()
		if cred.AccessToken != "" && cred.AccessToken != failedToken {
			c.mu.Unlock()
			return cred.AccessToken, nil
		}
		if cred.RefreshToken == "" {
			c.state = StateTerminating
			c.episode++
			c.mu.Unlock()

			logger.ClientLog.Warn("no refresh token, session will be terminated")
			if err := c.term.Terminate(ctx); err != nil {
				logger.ClientLog.Error("failed to terminate session", zap.String("error", err.Error()))
			}
			return "", fmt.Errorf("%w: %w", ErrSessionTerminated, ErrNoRefreshToken)
		}
		c.state = StateRenewing
	}
	episode := c.episode
	refreshToken := c.store.Get().RefreshToken
	// В состоянии StateRenewing полет уже существует и функция не запускается, вызов только присоединяется к нему.
	ch := c.group.DoChan(flightKey(episode), func() (interface{}, error) {
		return c.renew(ctx, episode, refreshToken)
	})
	c.mu.Unlock()

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Establish - сохраняет токены нового входа и начинает новую сессию.
// Результат обновления, начатого в предыдущей сессии, будет отброшен.
// Ошибка долговременного хранилища возвращается, но токены в памяти уже установлены.
func (c *Coordinator) Establish(ctx context.Context, cred identity.Credential) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdle
	c.episode++
	return c.store.Set(ctx, cred)
}

// Reset - возвращает координатор в исходное состояние без изменения токенов.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		c.state = StateIdle
		c.episode++
	}
}

// Terminate - завершает сессию по инициативе пользователя.
// Повторный вызов в уже завершенной сессии ничего не делает.
func (c *Coordinator) Terminate(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateTerminating {
		c.mu.Unlock()
		return nil
	}
	c.state = StateTerminating
	c.episode++
	c.mu.Unlock()
	return c.term.Terminate(ctx)
}

// current - сессия episode не завершена и не заменена новым входом. Вызывается под c.mu.
func (c *Coordinator) current(episode uint64) bool {
	return c.state == StateRenewing && c.episode == episode
}

func (c *Coordinator) renew(ctx context.Context, episode uint64, refreshToken string) (accessToken string, err error) {
	defer func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.group.Forget(flightKey(episode))
		if c.current(episode) {
			c.state = StateIdle
		}
	}()

	ctx = context.WithoutCancel(ctx)
	rctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	logger.ClientLog.Debug("renewing access token")
	cred, err := c.renewer.Renew(rctx, refreshToken)
	if err != nil {
		c.metrics.RenewalFailures.Inc()
		logger.ClientLog.Error("failed to renew access token", zap.String("error", err.Error()))

		c.mu.Lock()
		terminate := c.current(episode)
		if terminate {
			c.state = StateTerminating
			c.episode++
		}
		c.mu.Unlock()

		// сессию, уже завершенную или замененную новым входом, повторно не завершаю
		if terminate {
			if terr := c.term.Terminate(ctx); terr != nil {
				logger.ClientLog.Error("failed to terminate session", zap.String("error", terr.Error()))
			}
		}
		return "", fmt.Errorf("%w: %w: %w", ErrSessionTerminated, ErrRenewalFailed, err)
	}

	// Запись выполняется под c.mu, чтобы выход или новый вход не могли произойти между проверкой и записью.
	c.mu.Lock()
	if !c.current(episode) {
		c.mu.Unlock()
		logger.ClientLog.Info("renewed access token discarded, session was terminated or replaced")
		return "", ErrSessionTerminated
	}
	wctx, wcancel := context.WithTimeout(ctx, c.timeout)
	var serr error
	if cred.RefreshToken != "" {
		serr = c.store.Set(wctx, cred)
	} else {
		serr = c.store.SetAccessToken(wctx, cred.AccessToken)
	}
	wcancel()
	c.mu.Unlock()

	// Ошибка долговременного хранилища не прерывает сессию, токены в памяти уже обновлены.
	if serr != nil {
		logger.ClientLog.Warn("failed to persist renewed credentials", zap.String("error", serr.Error()))
	}

	c.metrics.Renewals.Inc()
	logger.ClientLog.Info("access token renewed", zap.Bool("refresh token rotated", cred.RefreshToken != ""))
	return cred.AccessToken, nil
}
