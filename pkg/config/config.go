package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigFile структура предоставляет путь к файлу, а также указатель на структуру.
// Config - указатель на структуру.
// Структуры могу содержать теги envconfig.
type ConfigFile struct {
	// Путь к файлу.
	Path string
	// Если true, отсутствие файла не считается ошибкой.
	Optional bool
	// Конфигурация - указатель на структуру.
	Config interface{}
}

// LoadConfigFiles предоставляет возможность загрузки сразу нескольких конфигурационных файлов
// и анмаршалинга в структуры.
// Переменные окружения, заданные до вызова, не перезаписываются значениями из файла.
func LoadConfigFiles(configFiles ...*ConfigFile) error {
	for _, configFile := range configFiles {
		if configFile.Path != "" {
			if err := godotenv.Load(configFile.Path); err != nil {
				if !configFile.Optional || !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}
		}

		err := envconfig.Process("", configFile.Config)
		if err != nil {
			return err
		}
	}
	return nil
}

// LoadConfigs предоставляет возможность загрузки сразу нескольких конфигураций и анмаршалинга в структуры.
//   - config - ссылки на структуры. Структуры могу содержать теги envconfig.
func LoadConfigs(config ...interface{}) error {
	for _, cfg := range config {
		err := envconfig.Process("", cfg)
		if err != nil {
			return err
		}
	}
	return nil
}

// Load загружает .env (если он есть) и заполняет структуры из окружения.
func Load(envPath string, config ...interface{}) error {
	files := make([]*ConfigFile, 0, len(config))
	for i, cfg := range config {
		path := ""
		// файл достаточно прочитать один раз
		if i == 0 {
			path = envPath
		}
		files = append(files, &ConfigFile{Path: path, Optional: true, Config: cfg})
	}
	return LoadConfigFiles(files...)
}
