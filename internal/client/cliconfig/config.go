// Package cliconfig - настройки marketctl: файл YAML и переменные MARKETCTL_*.
package cliconfig

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerURL  string        `mapstructure:"server_url"`
	SessionDir string        `mapstructure:"session_dir"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Env        string        `mapstructure:"env"`
}

func defaultSessionDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "marketvue")
	}
	return ".marketvue"
}

// Load читает конфиг. Пустой path - поиск marketctl.yaml в текущем каталоге
// и в каталоге сессии; отсутствие файла не ошибка.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("session_dir", defaultSessionDir())
	v.SetDefault("timeout", 15*time.Second)
	v.SetDefault("env", "production")

	v.SetEnvPrefix("MARKETCTL")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("marketctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(defaultSessionDir())
	}

	var c Config
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return c, err
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}
