package config

import (
	common "github.com/abezemskiy/eguard/internal/common/config"
)

// Configs представляет структуру конфигурации клиента.
type Configs struct {
	APIHost      string `json:"api_host" yaml:"api_host"`           // аналог переменной окружения EGUARD_API_HOST или флага --api-host
	LogLevel     string `json:"log_level" yaml:"log_level"`         // аналог переменной окружения EGUARD_LOG_LEVEL или флага --log-level
	LogFile      string `json:"log_file" yaml:"log_file"`           // аналог переменной окружения EGUARD_LOG_FILE или флага --log-file
	DatabaseDSN  string `json:"database_dsn" yaml:"database_dsn"`   // аналог переменной окружения EGUARD_DATABASE_URL или флага --database-dsn
	RedisAddress string `json:"redis_address" yaml:"redis_address"` // аналог переменной окружения EGUARD_REDIS_ADDRESS или флага --redis-address
	RenewTimeout string `json:"renew_timeout" yaml:"renew_timeout"` // аналог переменной окружения EGUARD_RENEW_TIMEOUT или флага --renew-timeout
}

// ParseConfigFile - функция для переопределения параметров конфигурации из файла конфигурации.
func ParseConfigFile(configFileName string) (Configs, error) {
	var configs Configs
	if err := common.Decode(configFileName, &configs); err != nil {
		return Configs{}, err
	}
	return configs, nil
}
