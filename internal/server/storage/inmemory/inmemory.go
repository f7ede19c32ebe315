// inmemory - хранилище тестового сервера API в оперативной памяти.
package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/abezemskiy/eguard/internal/common/identity/tools/hasher"
	"github.com/abezemskiy/eguard/internal/common/identity/tools/token"
	"github.com/abezemskiy/eguard/internal/server/storage"
)

type refreshEntry struct {
	email   string
	expires time.Time
}

type recordKey struct {
	kind      string
	companyID int64
}

// Store - потокобезопасное хранилище учетных записей, кодов подтверждения, токенов обновления и справочников.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]storage.Account
	codes    map[string]string
	refresh  map[string]refreshEntry
	records  map[recordKey][]storage.Record
}

var _ storage.IStubStorage = (*Store)(nil)

// NewStore - фабричная функция хранилища.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]storage.Account),
		codes:    make(map[string]string),
		refresh:  make(map[string]refreshEntry),
		records:  make(map[recordKey][]storage.Record),
	}
}

// AddAccount - добавляет учетную запись.
func (s *Store) AddAccount(_ context.Context, acc storage.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := acc.Identity.EmployeeEmail
	if _, ok := s.accounts[email]; ok {
		return fmt.Errorf("%w: %s", storage.ErrAlreadyExists, email)
	}
	s.accounts[email] = acc
	return nil
}

// Account - возвращает учетную запись по адресу электронной почты.
func (s *Store) Account(_ context.Context, email string) (storage.Account, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[email]
	return acc, ok, nil
}

// SetAuthCode - сохраняет код подтверждения.
func (s *Store) SetAuthCode(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[email] = code
	return nil
}

// ConsumeAuthCode - проверяет код подтверждения. Код используется один раз.
func (s *Store) ConsumeAuthCode(_ context.Context, email, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.codes[email]
	if !ok || code == "" || stored != code {
		return false, nil
	}
	delete(s.codes, email)
	return true, nil
}

// AddRefreshToken - сохраняет токен обновления.
func (s *Store) AddRefreshToken(_ context.Context, refreshToken, email string, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[refreshToken] = refreshEntry{email: email, expires: expires}
	return nil
}

// RefreshOwner - возвращает владельца токена обновления. Истекший токен удаляется.
func (s *Store) RefreshOwner(_ context.Context, refreshToken string, now time.Time) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.refresh[refreshToken]
	if !ok {
		return "", false, nil
	}
	if !now.Before(entry.expires) {
		delete(s.refresh, refreshToken)
		return "", false, nil
	}
	return entry.email, true, nil
}

// RevokeRefreshTokens - удаляет все токены обновления сотрудника.
func (s *Store) RevokeRefreshTokens(_ context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for tok, entry := range s.refresh {
		if entry.email == email {
			delete(s.refresh, tok)
			count++
		}
	}
	return count, nil
}

// AddRecord - добавляет запись справочника компании.
func (s *Store) AddRecord(_ context.Context, kind string, companyID int64, rec storage.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey{kind: kind, companyID: companyID}
	s.records[key] = append(s.records[key], rec)
	return nil
}

// Records - возвращает записи справочника компании.
func (s *Store) Records(_ context.Context, kind string, companyID int64) ([]storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.records[recordKey{kind: kind, companyID: companyID}]
	return append([]storage.Record{}, recs...), nil
}

// Seed - заполняет хранилище демонстрационными данными.
// Все демонстрационные сотрудники используют пароль password.
func Seed(ctx context.Context, s storage.IStubStorage, password string) error {
	hash, err := hasher.CalkHash(password)
	if err != nil {
		return fmt.Errorf("failed to calculate hash, %w", err)
	}

	company := token.SessionIdentity{
		CompanyID:             1,
		CompanyName:           "eGuard Steel",
		CompanyAddress:        "Pohang, Nam-gu",
		CompanyBusinessNumber: "123-45-67890",
		FactoryID:             1,
		FactoryName:           "Pohang #1",
		HealthStatus:          "NORMAL",
		AuthenticationStatus:  "ACTIVE",
	}

	accounts := []storage.Account{
		{Identity: withEmployee(company, 1, "Kim", "kim@example.com", token.RoleAdmin, []int64{1, 2, 3, 4, 5}), TwoFactor: true},
		{Identity: withEmployee(company, 2, "Lee", "lee@example.com", token.RoleManager, []int64{1, 2, 3})},
		{Identity: withEmployee(company, 3, "Park", "park@example.com", token.RoleWorker, []int64{1})},
	}
	for _, acc := range accounts {
		acc.PasswordHash = hash
		if err := s.AddAccount(ctx, acc); err != nil {
			return err
		}
		err := s.AddRecord(ctx, "employee", company.CompanyID, storage.Record{
			"employeeId":    acc.Identity.EmployeeID,
			"employeeName":  acc.Identity.EmployeeName,
			"employeeEmail": acc.Identity.EmployeeEmail,
			"role":          acc.Identity.Role,
		})
		if err != nil {
			return err
		}
	}

	fixtures := []struct {
		kind string
		rec  storage.Record
	}{
		{kind: "company", rec: storage.Record{"companyId": company.CompanyID, "companyName": company.CompanyName}},
		{kind: "factory", rec: storage.Record{"factoryId": company.FactoryID, "factoryName": company.FactoryName}},
		{kind: "area", rec: storage.Record{"areaId": 1, "areaName": "Blast furnace", "factoryId": company.FactoryID}},
		{kind: "area", rec: storage.Record{"areaId": 2, "areaName": "Rolling mill", "factoryId": company.FactoryID}},
		{kind: "work", rec: storage.Record{"workId": 1, "workName": "Furnace inspection", "areaId": 1}},
	}
	for _, f := range fixtures {
		if err := s.AddRecord(ctx, f.kind, company.CompanyID, f.rec); err != nil {
			return err
		}
	}
	return nil
}

func withEmployee(base token.SessionIdentity, id int64, name, email, role string, menus []int64) token.SessionIdentity {
	base.EmployeeID = id
	base.EmployeeName = name
	base.EmployeeEmail = email
	base.Role = role
	base.AccessibleMenuIDs = menus
	return base
}
