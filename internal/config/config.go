package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported quiz store drivers.
const (
	StoreStatic   = "static"
	StoreFile     = "file"
	StorePostgres = "postgres"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrUnknownStore                = errors.New("unknown quiz store")
	ErrInvalidSampleVariant        = errors.New("sample variant must be between 1 and 4")
	ErrMissingQuizFile             = errors.New("file store requires quiz.file_path")
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string `mapstructure:"env"`      // current application environment (local, dev, production etc)
	TelegramAPIToken string `mapstructure:"-"`        // Telegram API token loaded from environment, optional
	HTTP             HTTP   `mapstructure:"http"`     // websocket transport section
	Quiz             Quiz   `mapstructure:"quiz"`     // quiz store section
	DB               DB     `mapstructure:"database"` // database configuration section
	Redis            Redis  `mapstructure:"redis"`    // quiz cache section
}

// HTTP configures the websocket host transport.
type HTTP struct {
	Addr            string        `mapstructure:"addr"`             // listen address
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"` // graceful shutdown deadline
	RateLimit       int           `mapstructure:"rate_limit"`       // session upgrades per minute per IP, zero disables
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`  // websocket origins, empty allows any
}

// Quiz selects where quizzes come from.
type Quiz struct {
	Store         string `mapstructure:"store"`          // static, file or postgres
	SampleVariant int    `mapstructure:"sample_variant"` // sample served by the static store
	FilePath      string `mapstructure:"file_path"`      // quizzes JSON document for the file store
	SeedPath      string `mapstructure:"seed_path"`      // quizzes JSON document loaded into postgres at startup
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// Redis configures the optional quiz cache.
type Redis struct {
	Addr     string        `mapstructure:"addr"` // empty disables the cache
	Password string        `mapstructure:"-"`    // loaded from environment
	DB       int           `mapstructure:"db"`   // database number
	TTL      time.Duration `mapstructure:"ttl"`  // cached quiz lifetime
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Load reads configuration from ./config/config.yaml, a .env file and environment variables.
func Load() (*Config, error) {
	return LoadFrom("./config", ".env")
}

// LoadFrom reads configuration from configDir and envFile. Missing files are not an error.
func LoadFrom(configDir, envFile string) (*Config, error) {
	// Values already present in the environment win over the .env file.
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error loading env file: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetDefault("env", "local")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", "10s")
	v.SetDefault("http.rate_limit", 60)
	v.SetDefault("http.allowed_origins", []string{})
	v.SetDefault("quiz.store", StoreStatic)
	v.SetDefault("quiz.sample_variant", 1)
	v.SetDefault("quiz.file_path", "assets/quizzes.json")
	v.SetDefault("quiz.seed_path", "")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "5m")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("http.addr", "HTTP_ADDR")
	_ = v.BindEnv("quiz.store", "QUIZ_STORE")
	_ = v.BindEnv("quiz.sample_variant", "QUIZ_SAMPLE_VARIANT")
	_ = v.BindEnv("quiz.file_path", "QUIZ_FILE_PATH")
	_ = v.BindEnv("quiz.seed_path", "QUIZ_SEED_PATH")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("redis_password", "REDIS_PASSWORD")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Sensitive values come from the environment only.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	cfg.DB.URL = v.GetString("database_url")
	cfg.Redis.Password = v.GetString("redis_password")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the selected store has what it needs.
func (c *Config) Validate() error {
	switch c.Quiz.Store {
	case StoreStatic:
		if c.Quiz.SampleVariant < 1 || c.Quiz.SampleVariant > 4 {
			return fmt.Errorf("%w: got %d", ErrInvalidSampleVariant, c.Quiz.SampleVariant)
		}
	case StoreFile:
		if c.Quiz.FilePath == "" {
			return ErrMissingQuizFile
		}
	case StorePostgres:
		if c.DB.URL == "" {
			return fmt.Errorf("%w: DATABASE_URL", ErrMissingEnvironmentVariables)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.Quiz.Store)
	}

	return nil
}

// IsProduction reports whether the application runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

