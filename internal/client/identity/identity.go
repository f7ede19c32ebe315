//go:generate mockgen -destination=mocks/mock_identity.go -package=mocks github.com/abezemskiy/eguard/internal/client/identity Navigator,Persister

package identity

import "context"

// Credential - пара токенов текущей сессии.
type Credential struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Empty - сессия отсутствует, если нет ни одного токена.
func (c Credential) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

type (
	// CredentialReader - интерфейс для синхронного чтения текущих токенов без обращения к сети или диску.
	CredentialReader interface {
		Get() Credential // Возвращает копию текущих токенов.
	}

	// CredentialStore - интерфейс хранилища токенов сессии.
	// Каждая операция изменяет пару токенов атомарно.
	CredentialStore interface {
		CredentialReader
		Set(ctx context.Context, cred Credential) error              // Сохраняет новую пару токенов после входа.
		SetAccessToken(ctx context.Context, accessToken string) error // Заменяет только токен доступа после обновления.
		Clear(ctx context.Context) error                              // Удаляет оба токена.
	}
)

// Persister - интерфейс долговременного хранилища токенов, привязанного к адресу API.
type Persister interface {
	Load(ctx context.Context) (cred Credential, ok bool, err error) // Загружает токены, ok == false если их нет.
	Save(ctx context.Context, cred Credential) error                // Сохраняет токены.
	Delete(ctx context.Context) error                               // Удаляет токены.
}

// Navigator - граница пользовательского интерфейса. Принудительный выход переводит интерфейс
// на страницу входа, отбрасывая текущее состояние навигации.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc - адаптер для использования функции в качестве Navigator.
type NavigatorFunc func(path string)

// Navigate вызывает f(path).
func (f NavigatorFunc) Navigate(path string) {
	f(path)
}
