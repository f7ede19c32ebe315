package main

import (
	"context"
	"fmt"
	"io"

	"github.com/abezemskiy/eguard/internal/client/identity"
	"github.com/abezemskiy/eguard/internal/client/logger"
	"github.com/abezemskiy/eguard/internal/client/session"
	"github.com/abezemskiy/eguard/internal/client/storage/credentials"
	"github.com/abezemskiy/eguard/internal/client/storage/pg"
	"github.com/abezemskiy/eguard/internal/client/storage/redis"

	"go.uber.org/zap"
)

// client - зависимости команд клиента.
type client struct {
	session *session.Session
	store   *credentials.Store
	durable bool // токены переживают завершение процесса
	closer  io.Closer
}

// newClient - создает хранилище токенов, восстанавливает сохраненную сессию и создает сессию API.
func newClient(ctx context.Context, nav identity.Navigator) (*client, error) {
	persister, closer, err := newPersister(ctx)
	if err != nil {
		return nil, err
	}

	store := credentials.NewStore(persister)
	restored, err := store.Restore(ctx)
	if err != nil {
		// сессию можно начать заново, поэтому ошибка не фатальна
		logger.ClientLog.Warn("failed to restore session", zap.String("error", err.Error()))
	}
	if restored {
		logger.ClientLog.Debug("session restored", zap.String("api", apiHost))
	}

	s := session.New(session.Config{
		BaseURL:      baseURL(),
		RenewTimeout: renewTimeout,
	}, store, nav)

	return &client{
		session: s,
		store:   store,
		durable: persister != nil,
		closer:  closer,
	}, nil
}

// Close - закрывает соединение с долговременным хранилищем.
func (c *client) Close() {
	if c.closer == nil {
		return
	}
	if err := c.closer.Close(); err != nil {
		logger.ClientLog.Warn("failed to close credential storage", zap.String("error", err.Error()))
	}
}

// newPersister - выбирает долговременное хранилище токенов: PostgreSQL, затем Redis.
// Если ни одно не настроено, токены хранятся только в памяти процесса.
func newPersister(ctx context.Context) (identity.Persister, io.Closer, error) {
	switch {
	case databaseDsn != "":
		stor, err := pg.NewStore(ctx, databaseDsn, apiHost)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create postgres credential storage, %w", err)
		}
		return stor, stor, nil
	case redisAddress != "":
		stor := redis.New(redisAddress, "", 0, apiHost)
		if err := stor.Ping(ctx); err != nil {
			stor.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis credential storage, %w", err)
		}
		return stor, stor, nil
	default:
		return nil, nil, nil
	}
}

// cliNavigator - сообщает пользователю командной строки о завершении сессии.
type cliNavigator struct {
	out io.Writer
}

// Navigate - вызывается сессией при принудительном выходе.
func (n cliNavigator) Navigate(path string) {
	logger.ClientLog.Info("session terminated", zap.String("view", path))
	fmt.Fprintln(n.out, "session has ended, log in again with `eguard login`")
}
