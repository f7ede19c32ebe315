package logger

import (
	"net/http"
	"time"

	"github.com/abezemskiy/eguard/internal/common/identity/tools/header"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServerLog - синглтон логера тестового сервера eGuard. Изменяется только через Initialize.
var ServerLog *zap.Logger = zap.NewNop()

// Initialize - устанавливает ServerLog с уровнем level.
// При некорректном уровне ServerLog не изменяется.
func Initialize(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	ServerLog = zl.With(zap.String("role", "stub server"))
	return nil
}

// statusRecorder - http.ResponseWriter, который запоминает код и размер ответа.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	size, err := r.ResponseWriter.Write(b)
	r.size += size
	return size, err
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.status = statusCode
}

// levelFor - ответы 5xx пишутся как ошибки, остальные как информационные сообщения.
func levelFor(status int) zapcore.Level {
	if status >= http.StatusInternalServerError {
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

// RequestLogger - middleware-логер для входящих HTTP-запросов.
// Кроме метода, пути и кода ответа записывает, был ли у запроса токен доступа.
func RequestLogger(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)

		_, tokenErr := header.GetTokenFromHeader(r)
		ServerLog.Log(levelFor(rec.status), "got incoming HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Bool("bearer", tokenErr == nil),
			zap.Int("status", rec.status),
			zap.Int("size", rec.size),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
