package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config aggregates the settings of the server and of the CLI client.
type Config struct {
	AppName     string
	Environment string
	// Storage selects the backend repositories: postgres+redis or in-process memory.
	Storage    string
	HTTP       HTTPConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Context    ContextConfig
	Logger     LoggerConfig
	Migrations MigrationsConfig
	Monitor    MonitorConfig
	Client     ClientConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxConn      int
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
	// APIKey is the project key every client request must carry. Empty disables the check.
	APIKey string
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

type MonitorConfig struct {
	Interval time.Duration
}

type ClientConfig struct {
	APIURL      string
	APIKey      string
	SessionPath string
	SignUpGrace time.Duration
	Timeout     time.Duration
}

// Load reads configuration from environment variables (optionally .env)
// and applies sane defaults so the service can boot in any environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "taskboard"),
		Environment: getString("APP_ENV", "development"),
		Storage:     getString("STORAGE", StoragePostgres),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "0.0.0.0"),
			Port:         getString("SERVER_PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:      getInt("SERVER_MAX_CONN", 0),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "taskboard"),
			User:            getString("DB_USER", "taskboard"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:   os.Getenv("JWT_SECRET"),
			Issuer:   getString("JWT_ISSUER", "taskboard"),
			TokenTTL: getDuration("JWT_TOKEN_TTL", time.Hour),
			APIKey:   os.Getenv("JWT_API_KEY"),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
			Path:    getString("MIGRATIONS_PATH", "./assets/migrations"),
		},
		Monitor: MonitorConfig{
			Interval: getDuration("MONITOR_INTERVAL", 10*time.Second),
		},
		Client: ClientConfig{
			APIURL:      getString("API_URL", "http://localhost:8080"),
			APIKey:      os.Getenv("API_KEY"),
			SessionPath: getString("SESSION_PATH", defaultSessionPath()),
			SignUpGrace: getDuration("SIGNUP_GRACE", 1500*time.Millisecond),
			Timeout:     getDuration("CLIENT_TIMEOUT", 10*time.Second),
		},
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg)
	}

	return cfg, cfg.validate()
}

// LoadFile loads the environment and then overlays the YAML file at path.
// Keys mirror the section names, e.g. client.api_url or logger.level.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil || path == "" {
		return cfg, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	overlayString(v, "app_name", &cfg.AppName)
	overlayString(v, "storage", &cfg.Storage)
	overlayString(v, "http.host", &cfg.HTTP.Host)
	overlayString(v, "http.port", &cfg.HTTP.Port)
	overlayString(v, "database.url", &cfg.Database.URL)
	overlayString(v, "redis.url", &cfg.Redis.URL)
	overlayString(v, "jwt.secret", &cfg.JWT.Secret)
	overlayString(v, "jwt.api_key", &cfg.JWT.APIKey)
	overlayDuration(v, "jwt.token_ttl", &cfg.JWT.TokenTTL)
	overlayString(v, "logger.level", &cfg.Logger.Level)
	overlayString(v, "logger.encoding", &cfg.Logger.Encoding)
	overlayDuration(v, "monitor.interval", &cfg.Monitor.Interval)
	overlayString(v, "client.api_url", &cfg.Client.APIURL)
	overlayString(v, "client.api_key", &cfg.Client.APIKey)
	overlayString(v, "client.session_path", &cfg.Client.SessionPath)
	overlayDuration(v, "client.signup_grace", &cfg.Client.SignUpGrace)
	overlayDuration(v, "client.timeout", &cfg.Client.Timeout)

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Storage {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}
	if c.Client.SignUpGrace < 0 {
		return fmt.Errorf("signup grace must not be negative")
	}
	return nil
}

func overlayString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func overlayDuration(v *viper.Viper, key string, dst *time.Duration) {
	if v.IsSet(key) {
		*dst = v.GetDuration(key)
	}
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".taskboard", "session.db")
	}
	return filepath.Join(home, ".taskboard", "session.db")
}

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
