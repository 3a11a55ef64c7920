package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host         string   `yaml:"host"`
		Port         int      `yaml:"port"`
		Env          string   `yaml:"env"`
		AllowOrigins []string `yaml:"allow_origins"`
	} `yaml:"server"`

	Database struct {
		Driver           string `yaml:"driver"` // postgres, mysql, memory
		DSN              string `yaml:"url"`
		FallbackToMemory bool   `yaml:"fallback_to_memory"`
	} `yaml:"database"`

	Email struct {
		Enabled      bool   `yaml:"enabled"`
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		UseTLS       bool   `yaml:"use_tls"`
	} `yaml:"email"`

	JWT struct {
		Secret          string `yaml:"secret"`
		TTL             int    `yaml:"ttl"`               // минуты
		RefreshTTLHours int    `yaml:"refresh_ttl_hours"` // часы
	} `yaml:"jwt"`

	Auth struct {
		AutoApprove        bool   `yaml:"auto_approve"`
		FirstAdminEmail    string `yaml:"first_admin_email"`
		FirstAdminPassword string `yaml:"first_admin_password"`
		FirstAdminName     string `yaml:"first_admin_name"`
	} `yaml:"auth"`

	Storage struct {
		Type      string `yaml:"type"`       // local, s3, cloudflare_r2
		BasePath  string `yaml:"base_path"`  // For local storage
		BaseURL   string `yaml:"base_url"`   // Public URL base
		Bucket    string `yaml:"bucket"`     // For S3/R2
		Region    string `yaml:"region"`     // For S3
		AccessKey string `yaml:"access_key"` // For S3/R2
		SecretKey string `yaml:"secret_key"` // For S3/R2
		Endpoint  string `yaml:"endpoint"`   // For R2 or custom S3
	} `yaml:"storage"`

	Upload struct {
		MaxSize        int64    `yaml:"max_size"`
		AllowedTypes   []string `yaml:"allowed_types"`
		ImageQuality   int      `yaml:"image_quality"`
		ThumbnailWidth int      `yaml:"thumbnail_width"`
	} `yaml:"upload"`

	Workers struct {
		TokenCleanupInterval time.Duration `yaml:"token_cleanup_interval"`
	} `yaml:"workers"`
}

var AppConfig *Config

// Default возвращает конфигурацию, с которой сервер поднимается без файла:
// in-memory хранилище, локальные файлы, без почты.
func Default() *Config {
	var cfg Config

	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Server.Env = "development"
	cfg.Server.AllowOrigins = []string{"*"}

	cfg.Database.Driver = "memory"

	cfg.Email.SMTPPort = 587
	cfg.Email.FromEmail = "no-reply@marketvue.local"
	cfg.Email.FromName = "MarketVUE"

	cfg.JWT.TTL = 60
	cfg.JWT.RefreshTTLHours = 7 * 24

	cfg.Auth.FirstAdminName = "Super Admin"

	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./uploads"
	cfg.Storage.BaseURL = "/uploads"

	cfg.Upload.MaxSize = 5 * 1024 * 1024 // 5MB
	cfg.Upload.AllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	cfg.Upload.ImageQuality = 85
	cfg.Upload.ThumbnailWidth = 320

	cfg.Workers.TokenCleanupInterval = time.Hour

	return &cfg
}

// Load читает .env (если есть), YAML-файл из CONFIG_PATH и переменные окружения.
// Отсутствующий файл не ошибка: остаются значения Default().
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("config file %s not found, using defaults", configPath)
	default:
		return nil, fmt.Errorf("read config file %s: %w", configPath, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
		if os.Getenv("DATABASE_DRIVER") == "" && cfg.Database.Driver == "memory" {
			cfg.Database.Driver = "postgres"
		}
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v, ok := envBool("USE_INMEMORY_STORE"); ok && v {
		cfg.Database.Driver = "memory"
	}
	if v := os.Getenv("SERVER_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("FIRST_ADMIN_EMAIL"); v != "" {
		cfg.Auth.FirstAdminEmail = v
	}
	if v := os.Getenv("FIRST_ADMIN_PASSWORD"); v != "" {
		cfg.Auth.FirstAdminPassword = v
	}
	if v, ok := envBool("AUTO_APPROVE_REGISTRATION"); ok {
		cfg.Auth.AutoApprove = v
	}
}

func envBool(key string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// Validate проверяет то, без чего сервер стартовать не должен.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "memory":
	case "postgres", "mysql":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.url is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.JWT.Secret == "" {
		if c.Server.Env == "production" {
			return errors.New("jwt.secret is required in production")
		}
		c.JWT.Secret = "dev-secret-change-me"
	}
	if c.JWT.TTL <= 0 {
		c.JWT.TTL = 60
	}
	if c.JWT.RefreshTTLHours <= 0 {
		c.JWT.RefreshTTLHours = 7 * 24
	}
	return nil
}

// AccessTTL - время жизни access-токена.
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.JWT.TTL) * time.Minute
}

// RefreshTTL - время жизни refresh-токена.
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.JWT.RefreshTTLHours) * time.Hour
}

// IsDevelopment включает подробные ошибки и debug-логи.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
