package pg

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/abezemskiy/eguard/internal/client/identity"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Store - реализует интерфейс identity.Persister и хранит токены сессии в СУБД PostgreSQL.
// Записи разделены по адресу API (origin), как cookie в браузере.
type Store struct {
	// Поле conn содержит объект соединения с СУБД
	conn   *sql.DB
	origin string
}

var _ identity.Persister = (*Store)(nil)

// NewStore - применяет миграции и возвращает новый экземпляр PostgreSQL-хранилища для указанного origin.
func NewStore(ctx context.Context, dsn, origin string) (*Store, error) {
	if err := runMigrations(dsn); err != nil {
		return nil, fmt.Errorf("failed to run DB migrations: %w", err)
	}

	// Подключение к базе данных
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("error connection to database: %w", err)
	}

	// Проверка соединения с БД
	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error checking connection with database: %w", err)
	}

	return &Store{
		conn:   db,
		origin: origin,
	}, nil
}

//go:embed migrations/*.sql
var migrationsDir embed.FS

func runMigrations(dsn string) error {
	d, err := iofs.New(migrationsDir, "migrations")
	if err != nil {
		return fmt.Errorf("failed to return an iofs driver: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, dsn)
	if err != nil {
		return fmt.Errorf("failed to get a new migrate instance: %w", err)
	}
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to apply migrations to the DB: %w", err)
		}
	}
	return nil
}

// Close - закрывает соединение с СУБД.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Disable - очищает БД, удаляя записи из таблиц.
// Метод необходим для тестирования, чтобы в процессе удалять тестовые записи.
func (s *Store) Disable(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, `
		TRUNCATE TABLE credentials
	`)
	if err != nil {
		return fmt.Errorf("truncate table credentials error, %w", err)
	}
	return nil
}

// Load - загружает токены для текущего origin. Если записи нет, возвращается ok == false.
func (s *Store) Load(ctx context.Context) (cred identity.Credential, ok bool, err error) {
	query := `
		SELECT  access_token,
				refresh_token
		FROM credentials
		WHERE origin = $1
	`
	row := s.conn.QueryRowContext(ctx, query, s.origin)

	err = row.Scan(&cred.AccessToken, &cred.RefreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// токены для данного origin не сохранялись
			return identity.Credential{}, false, nil
		}
		return identity.Credential{}, false, fmt.Errorf("query execution error, %w", err)
	}
	return cred, true, nil
}

// Save - сохраняет токены, заменяя предыдущую запись для текущего origin.
func (s *Store) Save(ctx context.Context, cred identity.Credential) error {
	query := `
		INSERT INTO credentials (origin, access_token, refresh_token, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (origin) DO UPDATE
		SET access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.conn.ExecContext(ctx, query, s.origin, cred.AccessToken, cred.RefreshToken)
	if err != nil {
		return fmt.Errorf("query execution error, %w", err)
	}
	return nil
}

// Delete - удаляет токены текущего origin.
func (s *Store) Delete(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM credentials WHERE origin = $1`, s.origin)
	if err != nil {
		return fmt.Errorf("query execution error, %w", err)
	}
	return nil
}
