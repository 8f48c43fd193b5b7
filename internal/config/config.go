package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "LUNABOOK_"

// Config описывает настройки клиента.
// Источники (по возрастанию приоритета): значения по умолчанию,
// yaml-файл, переменные окружения с префиксом LUNABOOK_.
type Config struct {
	Server  Server  `koanf:"server"`
	Storage Storage `koanf:"storage"`
	Push    Push    `koanf:"push"`
	Log     Log     `koanf:"log"`
}

type Server struct {
	// BaseURL - адрес API, например https://api.lunabook.app
	BaseURL string `koanf:"baseurl"`
	// Timeout - потолок ожидания для каждого сетевого вызова
	Timeout time.Duration `koanf:"timeout"`
}

type Storage struct {
	// Driver - бэкенд хранилища учетных данных: bolt или sqlite
	Driver string `koanf:"driver"`
	// Path - путь к файлу базы
	Path string `koanf:"path"`
	// KeyPath - путь к файлу install secret
	KeyPath string `koanf:"keypath"`
}

type Push struct {
	// Platform - платформа устройства для регистрации push-токена: ios или android
	Platform string `koanf:"platform"`
}

type Log struct {
	Level string `koanf:"level"`
}

// Load читает конфигурацию. Отсутствие файла не является ошибкой -
// клиент работает на значениях по умолчанию и переменных окружения.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	// Переменные окружения перекрывают файл:
	// LUNABOOK_SERVER_TIMEOUT=5s -> server.timeout
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.TrimPrefix(key, envPrefix)
			return strings.ReplaceAll(strings.ToLower(key), "_", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:8080"
	}
	if c.Server.Timeout <= 0 {
		c.Server.Timeout = 15 * time.Second
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "bolt"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "lunabook-client.db"
	}
	if c.Storage.KeyPath == "" {
		c.Storage.KeyPath = "lunabook-client.key"
	}
	if c.Push.Platform == "" {
		c.Push.Platform = "android"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "bolt", "sqlite":
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Storage.Driver)
	}
	switch c.Push.Platform {
	case "ios", "android":
	default:
		return fmt.Errorf("unknown push platform: %q", c.Push.Platform)
	}
	return nil
}
