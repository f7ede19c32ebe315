package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abezemskiy/eguard/internal/server/handlers"
	"github.com/abezemskiy/eguard/internal/server/identity/auth"
	"github.com/abezemskiy/eguard/internal/server/identity/forbider"
	"github.com/abezemskiy/eguard/internal/server/logger"
	"github.com/abezemskiy/eguard/internal/server/storage"
	"github.com/abezemskiy/eguard/internal/server/storage/inmemory"
	"github.com/abezemskiy/eguard/internal/server/storage/pg"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownWaitPeriod = 20 * time.Second // для установки в контекст для реализаации graceful shutdown

// recordMenus - справочники, доступные по токену доступа, и номера меню, к которым они относятся.
var recordMenus = []struct {
	kind string
	menu int64
}{
	{kind: "area", menu: 1},
	{kind: "work", menu: 1},
	{kind: "factory", menu: 2},
	{kind: "company", menu: 3},
	{kind: "employee", menu: 5},
}

func main() {
	err := parseVariables()
	if err != nil {
		log.Fatalf("failed to set global variables, %v", err)
	}

	ctx := context.Background()
	stor, closeStorage, err := newStorage(ctx)
	if err != nil {
		log.Fatalf("Failed to create storage: %v\n", err)
	}
	defer closeStorage()

	// заполняем хранилище демонстрационными данными, повторно данные не добавляются
	if err := inmemory.Seed(ctx, stor, seedPassword); err != nil && !errors.Is(err, storage.ErrAlreadyExists) {
		log.Fatalf("Failed to seed storage: %v\n", err)
	}
	// ------------------------------------------------------------------------------

	run(ctx, stor)
}

// newStorage - создает хранилище PostgreSQL, если задан адрес базы данных, иначе хранилище в памяти.
func newStorage(ctx context.Context) (storage.IStubStorage, func(), error) {
	if databaseDsn == "" {
		return inmemory.NewStore(), func() {}, nil
	}

	// Подключение к базе данных
	db, err := sql.Open("pgx", databaseDsn)
	if err != nil {
		return nil, nil, fmt.Errorf("error connection to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("error checking connection with database: %w", err)
	}

	stor := pg.NewStore(db)
	if err := stor.Bootstrap(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("error prepare database to work: %w", err)
	}
	return stor, func() { db.Close() }, nil
}

// функция run будет необходима для инициализации зависимостей сервера перед запуском
func run(ctx context.Context, stor storage.IStubStorage) {
	// Инициализация логера
	if err := logger.Initialize(logLevel); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}

	logger.ServerLog.Info("Running eguard stub server", zap.String("address", netAddr))

	cfg := handlers.TokenConfig{
		SecretKey:  secretKey,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}
	reg := prometheus.NewRegistry()

	// запускаю сам сервис с проверкой отмены контекста для реализации graceful shutdown--------------
	srv := &http.Server{
		Addr:    netAddr,
		Handler: MetricRouter(stor, cfg, reg),
	}
	// Канал для получения сигнала прерывания
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Горутина для запуска сервера
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	// Блокирование до тех пор, пока не поступит сигнал о прерывании
	<-quit
	logger.ServerLog.Info("Shutting down server...", zap.String("address", netAddr))

	ctx, cancel := context.WithTimeout(ctx, shutdownWaitPeriod)
	defer cancel()

	// останавливаю сервер, чтобы он перестал принимать новые запросы
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Stopping server error: %v", err)
	}

	logger.ServerLog.Info("Shutdown the server gracefully", zap.String("address", netAddr))
}

// MetricRouter - дирежирует обработку http запросов к серверу.
// Счетчики сервера регистрируются в reg и отдаются по адресу /metrics.
func MetricRouter(stor storage.IStubStorage, cfg handlers.TokenConfig, reg *prometheus.Registry) chi.Router {
	m := handlers.NewMetrics(reg)
	authorized := auth.Middleware(cfg.SecretKey)

	r := chi.NewRouter()

	r.Route("/eguard", func(r chi.Router) {
		r.Get("/setting", logger.RequestLogger(handlers.SettingHandler(stor)))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/2fa", logger.RequestLogger(handlers.AuthCodeHandler(stor)))
			r.Post("/login", logger.RequestLogger(handlers.LoginHandler(stor, cfg, m)))
			r.Post("/login/no-2fa", logger.RequestLogger(handlers.LoginNo2FAHandler(stor, cfg, m)))
			r.Post("/renew", logger.RequestLogger(handlers.RenewHandler(stor, cfg, m)))
			r.Post("/logout", logger.RequestLogger(authorized(handlers.LogoutHandler(stor))))
		})

		for _, rec := range recordMenus {
			guarded := forbider.MenuForbider(rec.menu)(handlers.RecordsHandler(stor, rec.kind))
			r.Get("/"+rec.kind, logger.RequestLogger(authorized(guarded)))
		}
	})

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Определяем маршрут по умолчанию для некорректных запросов
	r.NotFound(logger.RequestLogger(handlers.HandleOtherRequest()))

	return r
}
