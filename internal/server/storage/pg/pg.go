package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abezemskiy/eguard/internal/common/identity/tools/token"
	"github.com/abezemskiy/eguard/internal/server/storage"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// uniqueViolation - код ошибки PostgreSQL при нарушении уникальности.
const uniqueViolation = "23505"

// Store - реализует интерфейс storage.IStubStorage и позволяет взаимодествовать с СУБД PostgreSQL.
type Store struct {
	// Поле conn содержит объект соединения с СУБД
	conn *sql.DB
}

var _ storage.IStubStorage = (*Store)(nil)

// NewStore - возвращает новый экземпляр PostgreSQL-хранилища.
func NewStore(conn *sql.DB) *Store {
	return &Store{
		conn: conn,
	}
}

// Bootstrap - подготавливает БД к работе, создавая необходимы таблицы и индексы.
func (s Store) Bootstrap(ctx context.Context) error {
	// запускаю транзакцию
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction error, %w", err)
	}

	// откат транзакции в случае ошибки
	defer tx.Rollback()

	// создаю таблицу для хранения учетных записей сотрудников -------------------------
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			employee_email varchar(256) PRIMARY KEY,
			employee_id BIGINT NOT NULL,
			employee_name varchar(256) NOT NULL,
			employee_phone_number varchar(64) NOT NULL,
			role varchar(32) NOT NULL,
			company_id BIGINT NOT NULL,
			company_name varchar(256) NOT NULL,
			company_address varchar(512) NOT NULL,
			company_business_number varchar(64) NOT NULL,
			factory_id BIGINT NOT NULL,
			factory_name varchar(256) NOT NULL,
			health_status varchar(32) NOT NULL,
			authentication_status varchar(32) NOT NULL,
			accessible_menu_ids BIGINT[] NOT NULL,
			password_hash varchar(128) NOT NULL,
			two_factor BOOLEAN NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create table accounts error, %w", err)
	}

	// создаю таблицу для хранения кодов двухфакторной аутентификации ------------------
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS auth_codes (
			employee_email varchar(256) PRIMARY KEY,
			code varchar(16) NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create table auth_codes error, %w", err)
	}

	// создаю таблицу для хранения токенов обновления ---------------------------------
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS refresh_tokens (
			token varchar(128) PRIMARY KEY,
			employee_email varchar(256) NOT NULL,
			expires TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create table refresh_tokens error, %w", err)
	}
	_, err = tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS refresh_tokens_email ON refresh_tokens (employee_email)`)
	if err != nil {
		return fmt.Errorf("create index in refresh_tokens table error, %w", err)
	}

	// создаю таблицу для хранения справочников компании -------------------------------
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS records (
			id SERIAL PRIMARY KEY,
			kind varchar(64) NOT NULL,
			company_id BIGINT NOT NULL,
			body JSONB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create table records error, %w", err)
	}
	_, err = tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS records_kind_company ON records (kind, company_id)`)
	if err != nil {
		return fmt.Errorf("create index in records table error, %w", err)
	}

	// коммитим транзакцию
	return tx.Commit()
}

// Disable - очищает БД, удаляя записи из таблиц.
// Метод необходим для тестирования, чтобы в процессе удалять тестовые записи.
func (s Store) Disable(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, `TRUNCATE TABLE accounts, auth_codes, refresh_tokens, records`)
	if err != nil {
		return fmt.Errorf("truncate tables error, %w", err)
	}
	return nil
}

// AddAccount - сохраняет в базу учетную запись сотрудника.
func (s Store) AddAccount(ctx context.Context, acc storage.Account) error {
	query := `
	INSERT INTO accounts (employee_email, employee_id, employee_name, employee_phone_number, role,
		company_id, company_name, company_address, company_business_number, factory_id, factory_name,
		health_status, authentication_status, accessible_menu_ids, password_hash, two_factor)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	id := acc.Identity
	if id.AccessibleMenuIDs == nil {
		id.AccessibleMenuIDs = []int64{}
	}
	_, err := s.conn.ExecContext(ctx, query,
		id.EmployeeEmail, id.EmployeeID, id.EmployeeName, id.EmployeePhoneNumber, id.Role,
		id.CompanyID, id.CompanyName, id.CompanyAddress, id.CompanyBusinessNumber, id.FactoryID, id.FactoryName,
		id.HealthStatus, id.AuthenticationStatus, pq.Array(id.AccessibleMenuIDs), acc.PasswordHash, acc.TwoFactor)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("failed to add account, %w", err)
	}
	return nil
}

// Account - возвращает учетную запись сотрудника по адресу почты.
func (s Store) Account(ctx context.Context, email string) (storage.Account, bool, error) {
	query := `
	SELECT employee_email, employee_id, employee_name, employee_phone_number, role,
		company_id, company_name, company_address, company_business_number, factory_id, factory_name,
		health_status, authentication_status, accessible_menu_ids, password_hash, two_factor
	FROM accounts
	WHERE employee_email = $1
	`
	var (
		acc   storage.Account
		id    token.SessionIdentity
		menus pq.Int64Array
	)
	err := s.conn.QueryRowContext(ctx, query, email).Scan(
		&id.EmployeeEmail, &id.EmployeeID, &id.EmployeeName, &id.EmployeePhoneNumber, &id.Role,
		&id.CompanyID, &id.CompanyName, &id.CompanyAddress, &id.CompanyBusinessNumber, &id.FactoryID, &id.FactoryName,
		&id.HealthStatus, &id.AuthenticationStatus, &menus, &acc.PasswordHash, &acc.TwoFactor)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Account{}, false, nil
	}
	if err != nil {
		return storage.Account{}, false, fmt.Errorf("failed to get account, %w", err)
	}
	id.AccessibleMenuIDs = []int64(menus)
	acc.Identity = id
	return acc, true, nil
}

// SetAuthCode - сохраняет код подтверждения, заменяя предыдущий.
func (s Store) SetAuthCode(ctx context.Context, email, code string) error {
	query := `
	INSERT INTO auth_codes (employee_email, code)
	VALUES ($1, $2)
	ON CONFLICT (employee_email) DO UPDATE SET code = EXCLUDED.code
	`
	if _, err := s.conn.ExecContext(ctx, query, email, code); err != nil {
		return fmt.Errorf("failed to set auth code, %w", err)
	}
	return nil
}

// ConsumeAuthCode - проверяет код подтверждения. Верный код удаляется.
func (s Store) ConsumeAuthCode(ctx context.Context, email, code string) (bool, error) {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM auth_codes WHERE employee_email = $1 AND code = $2`, email, code)
	if err != nil {
		return false, fmt.Errorf("failed to consume auth code, %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows, %w", err)
	}
	return rows > 0, nil
}

// AddRefreshToken - сохраняет токен обновления сотрудника.
func (s Store) AddRefreshToken(ctx context.Context, refreshToken, email string, expires time.Time) error {
	query := `INSERT INTO refresh_tokens (token, employee_email, expires) VALUES ($1, $2, $3)`
	if _, err := s.conn.ExecContext(ctx, query, refreshToken, email, expires); err != nil {
		return fmt.Errorf("failed to add refresh token, %w", err)
	}
	return nil
}

// RefreshOwner - возвращает адрес почты владельца действующего токена обновления.
// Истекший токен удаляется.
func (s Store) RefreshOwner(ctx context.Context, refreshToken string, now time.Time) (string, bool, error) {
	var (
		email   string
		expires time.Time
	)
	err := s.conn.QueryRowContext(ctx, `SELECT employee_email, expires FROM refresh_tokens WHERE token = $1`, refreshToken).
		Scan(&email, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get refresh token, %w", err)
	}

	if !now.Before(expires) {
		if _, err := s.conn.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, refreshToken); err != nil {
			return "", false, fmt.Errorf("failed to delete expired refresh token, %w", err)
		}
		return "", false, nil
	}
	return email, true, nil
}

// RevokeRefreshTokens - удаляет все токены обновления сотрудника и возвращает их количество.
func (s Store) RevokeRefreshTokens(ctx context.Context, email string) (int, error) {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE employee_email = $1`, email)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke refresh tokens, %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows, %w", err)
	}
	return int(rows), nil
}

// AddRecord - добавляет запись справочника kind компании.
func (s Store) AddRecord(ctx context.Context, kind string, companyID int64, rec storage.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record, %w", err)
	}
	query := `INSERT INTO records (kind, company_id, body) VALUES ($1, $2, $3)`
	if _, err := s.conn.ExecContext(ctx, query, kind, companyID, body); err != nil {
		return fmt.Errorf("failed to add record, %w", err)
	}
	return nil
}

// Records - возвращает записи справочника kind компании в порядке добавления.
func (s Store) Records(ctx context.Context, kind string, companyID int64) ([]storage.Record, error) {
	query := `SELECT body FROM records WHERE kind = $1 AND company_id = $2 ORDER BY id`
	rows, err := s.conn.QueryContext(ctx, query, kind, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get records, %w", err)
	}
	defer rows.Close()

	recs := []storage.Record{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan record, %w", err)
		}
		var rec storage.Record
		if err := json.Unmarshal(body, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record, %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records, %w", err)
	}
	return recs, nil
}
