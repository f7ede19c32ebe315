package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abezemskiy/eguard/internal/client/config"
	"github.com/abezemskiy/eguard/internal/client/session"

	"github.com/spf13/pflag"
)

// apiRoot - путь API относительно адреса сервера.
const apiRoot = "/eguard"

var (
	apiHost      string        // адрес сервера API
	logLevel     string        // уровень логирования
	logFile      string        // файл для записи логов
	databaseDsn  string        // адрес базы данных для хранения токенов
	redisAddress string        // адрес redis для хранения токенов
	renewTimeout time.Duration // ограничение времени обновления токена
	configFile   string        // путь к файлу конфигурации
)

// bindFlags - регистрирует глобальные флаги клиента.
func bindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&apiHost, "api-host", "a", "", "address of eGuard API, for example http://localhost:8080")
	fs.StringVarP(&logLevel, "log-level", "l", "", "log level")
	fs.StringVar(&logFile, "log-file", "", "file to write logs to")
	fs.StringVarP(&databaseDsn, "database-dsn", "d", "", "postgres connection address to keep tokens")
	fs.StringVar(&redisAddress, "redis-address", "", "redis address to keep tokens")
	fs.DurationVar(&renewTimeout, "renew-timeout", 0, "token renewal timeout")
	fs.StringVarP(&configFile, "config", "c", "", "name of configuration file")
}

// parseVariables - функция для установки конфигурационных параметров приложения после разбора флагов.
// Конфигурирование приложения с приоритетом в порядке убывания: значения флагов, значения из файла, значения переменных окружения.
func parseVariables() error {
	if err := parseConfigFile(); err != nil {
		return err
	}
	parseEnvironment()
	setDefaults()

	// Проверка корректности установки глобальных переменных
	return checkVariables()
}

// parseConfigFile - функция для переопределения параметров конфигурации из файла конфигурации.
func parseConfigFile() error {
	// если не указан файл конфигурации, то оставляю параметры запуска без изменения
	if configFile == "" {
		return nil
	}
	configs, err := config.ParseConfigFile(configFile)
	if err != nil {
		return fmt.Errorf("parse config file error, %w", err)
	}

	// обновляю параметры запуска если они не определены флагами
	if apiHost == "" {
		apiHost = configs.APIHost
	}
	if logLevel == "" {
		logLevel = configs.LogLevel
	}
	if logFile == "" {
		logFile = configs.LogFile
	}
	if databaseDsn == "" {
		databaseDsn = configs.DatabaseDSN
	}
	if redisAddress == "" {
		redisAddress = configs.RedisAddress
	}
	if renewTimeout == 0 {
		renewTimeout = parseDuration(configs.RenewTimeout)
	}
	return nil
}

// parceEnvironment - функция для переопределения конфигурации из глобальных переменных.
// Переопределяет конфигурацию, если значения не установлены флагами или файлом конфигурации.
func parseEnvironment() {
	if apiHost == "" {
		apiHost = os.Getenv("EGUARD_API_HOST")
	}
	if logLevel == "" {
		logLevel = os.Getenv("EGUARD_LOG_LEVEL")
	}
	if logFile == "" {
		logFile = os.Getenv("EGUARD_LOG_FILE")
	}
	if databaseDsn == "" {
		databaseDsn = os.Getenv("EGUARD_DATABASE_URL")
	}
	if redisAddress == "" {
		redisAddress = os.Getenv("EGUARD_REDIS_ADDRESS")
	}
	if renewTimeout == 0 {
		renewTimeout = parseDuration(os.Getenv("EGUARD_RENEW_TIMEOUT"))
	}
}

// setDefaults - устанавливает значения по умолчанию для необязательных параметров.
func setDefaults() {
	if logLevel == "" {
		logLevel = "info"
	}
	if renewTimeout == 0 {
		renewTimeout = session.DefaultRenewTimeout
	}
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// checkVariables - функция для проверки корректности утсановки глобальных переменных.
func checkVariables() error {
	if apiHost == "" {
		return fmt.Errorf("address of eGuard API must be set")
	}
	if !strings.HasPrefix(apiHost, "http://") && !strings.HasPrefix(apiHost, "https://") {
		return fmt.Errorf("address of eGuard API must start with http:// or https://")
	}
	if renewTimeout < 0 {
		return fmt.Errorf("renew timeout must be positive")
	}
	return nil
}

// baseURL - базовый адрес API.
func baseURL() string {
	return strings.TrimRight(apiHost, "/") + apiRoot
}
