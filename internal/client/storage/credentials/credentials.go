// credentials - хранилище токенов сессии.
// Чтение выполняется из оперативной памяти, запись дублируется в долговременное хранилище (Persister).
package credentials

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/abezemskiy/eguard/internal/client/identity"
	"github.com/abezemskiy/eguard/internal/common/identity/tools/token"
)

// ErrNotAuthenticated - в хранилище нет токена доступа.
var ErrNotAuthenticated = errors.New("not authenticated")

// Store - потокобезопасное хранилище токенов сессии и кэш данных пользователя, извлеченных из токена доступа.
type Store struct {
	// wmu упорядочивает записи, чтобы порядок изменений в памяти и в persister совпадал.
	wmu sync.Mutex

	mu        sync.RWMutex
	cred      identity.Credential
	ident     token.SessionIdentity
	identFrom string // токен, из которого получен ident
	identErr  error

	persister identity.Persister
}

var _ identity.CredentialStore = (*Store)(nil)

// NewStore - фабричная функция хранилища токенов. persister может быть nil,
// тогда токены хранятся только в оперативной памяти.
func NewStore(persister identity.Persister) *Store {
	return &Store{persister: persister}
}

// Restore - загружает токены из долговременного хранилища, например после перезапуска клиента.
func (s *Store) Restore(ctx context.Context) (bool, error) {
	if s.persister == nil {
		return false, nil
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()

	cred, ok, err := s.persister.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load credentials, %w", err)
	}
	if !ok {
		return false, nil
	}

	s.mu.Lock()
	s.cred = cred
	s.mu.Unlock()
	return true, nil
}

// Get - возвращает копию текущих токенов.
func (s *Store) Get() identity.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred
}

// Set - заменяет обе пары токенов.
func (s *Store) Set(ctx context.Context, cred identity.Credential) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	s.mu.Lock()
	s.cred = cred
	s.mu.Unlock()

	return s.save(ctx, cred)
}

// SetAccessToken - заменяет токен доступа, сохраняя токен обновления.
func (s *Store) SetAccessToken(ctx context.Context, accessToken string) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	s.mu.Lock()
	s.cred.AccessToken = accessToken
	cred := s.cred
	s.mu.Unlock()

	return s.save(ctx, cred)
}

// Clear - удаляет оба токена и кэш данных пользователя.
// Память очищается всегда, даже если долговременное хранилище вернуло ошибку.
func (s *Store) Clear(ctx context.Context) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	s.mu.Lock()
	s.cred = identity.Credential{}
	s.ident = token.SessionIdentity{}
	s.identFrom = ""
	s.identErr = nil
	s.mu.Unlock()

	if s.persister == nil {
		return nil
	}
	if err := s.persister.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete credentials, %w", err)
	}
	return nil
}

// Identity - возвращает данные пользователя из текущего токена доступа.
// Токен декодируется повторно только после его замены.
func (s *Store) Identity() (token.SessionIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cred.AccessToken == "" {
		return token.SessionIdentity{}, ErrNotAuthenticated
	}
	if s.identFrom != s.cred.AccessToken {
		s.ident, s.identErr = token.Decode(s.cred.AccessToken)
		s.identFrom = s.cred.AccessToken
	}
	if s.identErr != nil {
		return token.SessionIdentity{}, fmt.Errorf("%w: %w", ErrNotAuthenticated, s.identErr)
	}
	return s.ident, nil
}

func (s *Store) save(ctx context.Context, cred identity.Credential) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(ctx, cred); err != nil {
		return fmt.Errorf("failed to save credentials, %w", err)
	}
	return nil
}
