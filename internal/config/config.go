package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server  ServerConfig
	App     AppConfig
	Session SessionConfig
	BankDB  BankDBConfig
	Admin   AdminConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"poe-item-bank"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// SessionConfig holds admin session storage settings.
type SessionConfig struct {
	Store string        `envconfig:"SESSION_STORE" default:"memory"` // memory or redis
	TTL   time.Duration `envconfig:"SESSION_TTL" default:"12h"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// BankDBConfig holds table store settings.
type BankDBConfig struct {
	Type string `envconfig:"BANK_DB_TYPE" default:"sqlite"` // sqlite, mysql, postgres or memory
	Path string `envconfig:"BANK_DB_PATH" default:"./data/bank.db"`

	Host     string `envconfig:"BANK_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"BANK_DB_PORT" default:"0"`
	Name     string `envconfig:"BANK_DB_NAME" default:"itembank"`
	User     string `envconfig:"BANK_DB_USER" default:"root"`
	Password string `envconfig:"BANK_DB_PASS" default:""`
	SSLMode  string `envconfig:"BANK_DB_SSLMODE" default:"disable"`
}

// AdminConfig holds the fixed admin credential allowlist.
type AdminConfig struct {
	// Credentials is a comma-separated list of user:password pairs.
	Credentials string `envconfig:"ADMIN_CREDENTIALS" default:"POEconomics:ADMINPOECONOMICS"`
}

// Allowlist parses the credential list into a username->password map.
// Malformed pairs are skipped.
func (a *AdminConfig) Allowlist() map[string]string {
	creds := make(map[string]string)
	for _, pair := range strings.Split(a.Credentials, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		user, pass, ok := strings.Cut(pair, ":")
		if !ok || user == "" {
			continue
		}
		creds[user] = pass
	}
	return creds
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (s *SessionConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", s.RedisHost, s.RedisPort)
}

// MySQLDSN returns the MySQL data source name.
func (b *BankDBConfig) MySQLDSN() string {
	port := b.Port
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		b.User, b.Password, b.Host, port, b.Name)
}

// PostgresDSN returns the PostgreSQL connection string.
func (b *BankDBConfig) PostgresDSN() string {
	port := b.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		b.User, b.Password, b.Host, port, b.Name, b.SSLMode)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
