// redis - долговременное хранилище токенов сессии в Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abezemskiy/eguard/internal/client/identity"

	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "eguard:credentials:"

// Store - реализует интерфейс identity.Persister поверх Redis.
// Ключ записи содержит адрес API (origin), поэтому токены разных API не пересекаются.
type Store struct {
	client *backend.Client
	origin string
	prefix string
	ttl    time.Duration
}

var _ identity.Persister = (*Store)(nil)

// Option - функциональная опция хранилища.
type Option func(*Store)

// WithTTL - устанавливает время жизни записи. Обычно совпадает со сроком действия токена обновления.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix - устанавливает префикс ключей.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New - создает хранилище с новым соединением к Redis.
func New(address, password string, db int, origin string, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, origin, opts...)
}

// NewFromClient - создает хранилище из существующего клиента.
func NewFromClient(client *backend.Client, origin string, opts ...Option) *Store {
	store := &Store{
		client: client,
		origin: origin,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key() string {
	return s.prefix + s.origin
}

// Ping - проверяет соединение с Redis.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close - закрывает соединение с Redis.
func (s *Store) Close() error {
	return s.client.Close()
}

// Load - загружает токены текущего origin.
func (s *Store) Load(ctx context.Context) (identity.Credential, bool, error) {
	val, err := s.client.Get(ctx, s.key()).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return identity.Credential{}, false, nil
		}
		return identity.Credential{}, false, fmt.Errorf("failed to load credentials from redis: %w", err)
	}

	var cred identity.Credential
	if err := json.Unmarshal(val, &cred); err != nil {
		return identity.Credential{}, false, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}
	return cred, true, nil
}

// Save - сохраняет токены текущего origin. Нулевой ttl означает запись без срока действия.
func (s *Store) Save(ctx context.Context, cred identity.Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	if err := s.client.Set(ctx, s.key(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save credentials to redis: %w", err)
	}
	return nil
}

// Delete - удаляет токены текущего origin.
func (s *Store) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("failed to delete credentials from redis: %w", err)
	}
	return nil
}
