package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/abezemskiy/eguard/internal/server/config"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 24 * time.Hour
)

var (
	netAddr      string        // адрес запуска сервиса
	logLevel     string        // уровень логирования
	databaseDsn  string        // адрес базы данных, если не задан - данные хранятся в памяти
	configFile   string        // путь к файлу конфигурации
	secretKey    string        // секретный ключ для создания JWT
	accessTTL    time.Duration // время действия токена доступа
	refreshTTL   time.Duration // время действия токена обновления
	seedPassword string        // пароль демонстрационных сотрудников
)

// parseVariables - функция для установки конфигурационных параметров приложения.
// Конфигурирование приложения с приоритетом в порядке убывания: значения флагов, значения из файла, значения переменных окружения.
func parseVariables() error {
	parseFlags()
	parseConfigFile()
	parseEnvironment()
	setDefaults()

	// Проверяю корректность установки глобальных переменных
	err := checkVariables()
	if err != nil {
		return fmt.Errorf("failed to set global variable, %w", err)
	}
	return nil
}

// parseFlags - функция для определения параметров конфигурации из флагов.
func parseFlags() {
	flag.StringVar(&netAddr, "a", "", "address and port to run server")
	flag.StringVar(&logLevel, "l", "", "log level")
	flag.StringVar(&databaseDsn, "d", "", "database connection address, in-memory storage if not set")
	flag.StringVar(&configFile, "c", "", "name of configuration file")
	flag.StringVar(&secretKey, "secret-key", "", "secret key for generating JWT")
	flag.DurationVar(&accessTTL, "access-ttl", 0, "access token lifetime, for example 15m")
	flag.DurationVar(&refreshTTL, "refresh-ttl", 0, "refresh token lifetime, for example 24h")
	flag.StringVar(&seedPassword, "seed-password", "", "password of demo employees")

	// Вызов flag.Parse() для парсинга аргументов
	flag.Parse()
}

// parseConfigFile - функция для переопределения параметров конфигурации из файла конфигурации.
func parseConfigFile() {
	// если не указан файл конфигурации, то оставляю параметры запуска без изменения
	if configFile == "" {
		return
	}
	configs, err := config.ParseConfigFile(configFile)
	if err != nil {
		log.Fatalf("parse config file error: %v\n", err)
	}

	// обновляю параметры запуска если они не определены флагами
	if netAddr == "" {
		netAddr = configs.Address
	}
	if logLevel == "" {
		logLevel = configs.LogLevel
	}
	if databaseDsn == "" {
		databaseDsn = configs.DatabaseDSN
	}
	if secretKey == "" {
		secretKey = configs.SecretKey
	}
	if accessTTL == 0 {
		accessTTL = parseDuration(configs.AccessTTL)
	}
	if refreshTTL == 0 {
		refreshTTL = parseDuration(configs.RefreshTTL)
	}
	if seedPassword == "" {
		seedPassword = configs.SeedPassword
	}
}

// parceEnvironment - функция для переопределения конфигурации из глобальных переменных.
// Переопределяет конфигурацию, если значения не установлены флагами или файлом конфигурации.
func parseEnvironment() {
	if netAddr == "" {
		netAddr = os.Getenv("EGUARD_STUB_ADDRESS")
	}
	if logLevel == "" {
		logLevel = os.Getenv("EGUARD_STUB_LOG_LEVEL")
	}
	if databaseDsn == "" {
		databaseDsn = os.Getenv("EGUARD_STUB_DATABASE_URL")
	}
	if secretKey == "" {
		secretKey = os.Getenv("EGUARD_STUB_SECRET_KEY")
	}
	if accessTTL == 0 {
		accessTTL = parseDuration(os.Getenv("EGUARD_STUB_ACCESS_TTL"))
	}
	if refreshTTL == 0 {
		refreshTTL = parseDuration(os.Getenv("EGUARD_STUB_REFRESH_TTL"))
	}
	if seedPassword == "" {
		seedPassword = os.Getenv("EGUARD_STUB_SEED_PASSWORD")
	}
}

// setDefaults - устанавливает значения по умолчанию для необязательных параметров.
func setDefaults() {
	if accessTTL == 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL == 0 {
		refreshTTL = defaultRefreshTTL
	}
	if seedPassword == "" {
		seedPassword = "password"
	}
}

// parseDuration - возвращает 0 для пустой или некорректной строки.
func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// checkVariables - функция для проверки корректности утсановки глобальных переменных.
func checkVariables() error {
	if netAddr == "" {
		return fmt.Errorf("address and port to run server must be set")
	}
	if logLevel == "" {
		return fmt.Errorf("log level must be set")
	}
	if secretKey == "" {
		return fmt.Errorf("secret key must be set")
	}
	if accessTTL < 0 || refreshTTL < 0 {
		return fmt.Errorf("token lifetime must be positive")
	}
	return nil
}
