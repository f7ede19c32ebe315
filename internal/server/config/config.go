package config

import (
	common "github.com/abezemskiy/eguard/internal/common/config"
)

// Configs представляет структуру конфигурации тестового сервера API.
type Configs struct {
	Address      string `json:"address" yaml:"address"`             // аналог переменной окружения EGUARD_STUB_ADDRESS или флага -a
	LogLevel     string `json:"log_level" yaml:"log_level"`         // аналог переменной окружения EGUARD_STUB_LOG_LEVEL или флага -l
	DatabaseDSN  string `json:"database_dsn" yaml:"database_dsn"`   // аналог переменной окружения EGUARD_STUB_DATABASE_URL или флага -d
	SecretKey    string `json:"secret_key" yaml:"secret_key"`       // аналог переменной окружения EGUARD_STUB_SECRET_KEY или флага -secret-key
	AccessTTL    string `json:"access_ttl" yaml:"access_ttl"`       // аналог переменной окружения EGUARD_STUB_ACCESS_TTL или флага -access-ttl
	RefreshTTL   string `json:"refresh_ttl" yaml:"refresh_ttl"`     // аналог переменной окружения EGUARD_STUB_REFRESH_TTL или флага -refresh-ttl
	SeedPassword string `json:"seed_password" yaml:"seed_password"` // аналог переменной окружения EGUARD_STUB_SEED_PASSWORD или флага -seed-password
}

// ParseConfigFile - функция для переопределения параметров конфигурации из файла конфигурации.
func ParseConfigFile(configFileName string) (Configs, error) {
	var configs Configs
	if err := common.Decode(configFileName, &configs); err != nil {
		return Configs{}, err
	}
	return configs, nil
}
