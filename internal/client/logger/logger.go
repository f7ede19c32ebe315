package logger

import (
	"os"

	"go.uber.org/zap"
)

// ClientLog - синглтон логера клиента eGuard. Изменяется только через Initialize,
// до вызова Initialize сообщения не выводятся.
var ClientLog *zap.Logger = zap.NewNop()

// Initialize - устанавливает ClientLog с уровнем level.
// Терминальный интерфейс занимает stdout и stderr, поэтому для него логи пишутся в logFile.
// Файл очищается при каждом запуске клиента.
func Initialize(level, logFile string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	if logFile != "" {
		if err := os.Truncate(logFile, 0); err != nil && !os.IsNotExist(err) {
			return err
		}
		cfg.OutputPaths = []string{logFile}
		cfg.ErrorOutputPaths = []string{logFile}
	}

	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	ClientLog = zl.With(zap.String("role", "client"))
	return nil
}
