// config - чтение файлов конфигурации клиента и сервера.
package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode - функция для чтения файла конфигурации в v.
// Файлы с расширением .yaml и .yml читаются как YAML, остальные как JSON.
func Decode(name string, v any) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("open cofiguration file error: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		err = yaml.NewDecoder(reader).Decode(v)
	default:
		err = json.NewDecoder(reader).Decode(v)
	}
	if err != nil {
		return fmt.Errorf("parse cofiguration file error: %w", err)
	}
	return nil
}
