//go:generate mockgen -destination=mocks/mock_storage.go -package=mocks github.com/abezemskiy/eguard/internal/server/storage IStubStorage

package storage

import (
	"context"
	"errors"
	"time"

	"github.com/abezemskiy/eguard/internal/common/identity/tools/token"
)

// ErrAlreadyExists - учетная запись с таким адресом электронной почты уже существует.
var ErrAlreadyExists = errors.New("account already exists")

// Account - учетная запись сотрудника.
type Account struct {
	Identity     token.SessionIdentity
	PasswordHash string // bcrypt хэш пароля
	TwoFactor    bool   // включена ли двухфакторная аутентификация
}

// Record - запись справочника (сотрудник, компания, завод, участок, работа).
type Record map[string]any

type (
	// AccountKeeper - интерфейс хранилища учетных записей.
	AccountKeeper interface {
		AddAccount(ctx context.Context, acc Account) error                       // Добавляет учетную запись.
		Account(ctx context.Context, email string) (acc Account, ok bool, err error) // Возвращает учетную запись по адресу почты.
	}

	// CodeKeeper - интерфейс хранилища кодов двухфакторной аутентификации.
	CodeKeeper interface {
		SetAuthCode(ctx context.Context, email, code string) error               // Сохраняет код, заменяя предыдущий.
		ConsumeAuthCode(ctx context.Context, email, code string) (bool, error) // Проверяет код. Верный код удаляется.
	}

	// RefreshTokenKeeper - интерфейс хранилища токенов обновления.
	RefreshTokenKeeper interface {
		AddRefreshToken(ctx context.Context, refreshToken, email string, expires time.Time) error
		RefreshOwner(ctx context.Context, refreshToken string, now time.Time) (email string, ok bool, err error)
		RevokeRefreshTokens(ctx context.Context, email string) (int, error)
	}

	// RecordKeeper - интерфейс хранилища справочников компании.
	RecordKeeper interface {
		AddRecord(ctx context.Context, kind string, companyID int64, rec Record) error
		Records(ctx context.Context, kind string, companyID int64) ([]Record, error)
	}

	// IStubStorage - интерфейс хранилища тестового сервера API.
	IStubStorage interface {
		AccountKeeper
		CodeKeeper
		RefreshTokenKeeper
		RecordKeeper
	}
)
