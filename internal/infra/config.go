package infra

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config — корневая структура конфигурации всей платформы.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Completion CompletionConfig `mapstructure:"completion"`
	Screenshot ScreenshotConfig `mapstructure:"screenshot"`
	Limits     LimitsConfig     `mapstructure:"limits"`
	Logger     LoggerConfig     `mapstructure:"logger"`
}

// ServerConfig описывает настройки HTTP-сервера.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig описывает подключение к PostgreSQL.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// RedisConfig описывает подключение к Redis (Usage Ledger).
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig содержит настройки проверки JWT (HS256, как у hosted-провайдера).
// SuperuserEmails — адреса с безлимитным доступом; флаг вычисляется один раз
// при разборе токена и дальше едет в Identity.
type AuthConfig struct {
	JWTSecret       string   `mapstructure:"jwt_secret"`
	SuperuserEmails []string `mapstructure:"superuser_emails"`
}

// CompletionConfig — настройки внешнего completion-сервиса (OpenAI-совместимый API).
type CompletionConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`

	// Настройки Circuit Breaker вокруг completion-клиента
	CBMaxRequests uint32        `mapstructure:"cb_max_requests"`
	CBInterval    time.Duration `mapstructure:"cb_interval"`
	CBTimeout     time.Duration `mapstructure:"cb_timeout"`

	// Лимитер исходящих вызовов (RPS и burst)
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// ScreenshotConfig — URL-шаблонные сервисы скриншотов/фавиконок.
type ScreenshotConfig struct {
	APIKey string `mapstructure:"api_key"` // "demo" для бесплатного тира APIFlash
}

// LimitsConfig — месячные лимиты аудитов по тарифам.
type LimitsConfig struct {
	Free int `mapstructure:"free"`
	Pro  int `mapstructure:"pro"`
	Team int `mapstructure:"team"`
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig инициализирует конфигурацию, объединяя значения из файла и ENV.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. Настройка поиска файла
	v.SetConfigName("config")    // имя файла без расширения
	v.SetConfigType("yaml")      // формат
	v.AddConfigPath(".")         // ищем в корне
	v.AddConfigPath("./configs") // и в папке с конфигами

	// 2. Настройка переменных окружения (ENV)
	// Позволяет перекрывать конфиг: SERVER_PORT=9000 перекроет server.port
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 3. Установка дефолтных значений
	setDefaults(v)

	// 4. Чтение файла
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Если файла нет — работаем на ENV и дефолтах
	}

	// 5. Маппинг в структуру
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// 6. Секреты из ENV имеют приоритет (для Docker/K8s)
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Completion.APIKey = key
	}
	if secret := os.Getenv("AUTH_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 5*time.Second)
	// Синхронный аудит держит соединение на весь пайплайн (до 3 минут)
	v.SetDefault("server.write_timeout", 200*time.Second)
	v.SetDefault("database.max_conns", 15)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")

	v.SetDefault("completion.base_url", "https://api.openai.com/v1")
	v.SetDefault("completion.model", "gpt-4o")
	v.SetDefault("completion.temperature", 0.5)
	v.SetDefault("completion.max_tokens", 4000)
	v.SetDefault("completion.timeout", 90*time.Second)
	v.SetDefault("completion.cb_max_requests", 3)
	v.SetDefault("completion.cb_interval", 5*time.Second)
	v.SetDefault("completion.cb_timeout", 30*time.Second)
	v.SetDefault("completion.rate_limit", 5)
	v.SetDefault("completion.rate_burst", 5)

	v.SetDefault("screenshot.api_key", "demo")

	v.SetDefault("limits.free", 3)
	v.SetDefault("limits.pro", 10)
	v.SetDefault("limits.team", 30)
}
