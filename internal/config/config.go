package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level
	APIPrefix   string

	// Storage backends
	DatabaseDriver string // "postgres" or "memory"
	DatabaseURL    string
	RedisURL       string
	CacheTTL       time.Duration

	CORSOrigins []string

	Casdoor CasdoorConfig
	Kafka   KafkaConfig
	Storage StorageConfig
	AI      AIConfig
}

type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

type KafkaConfig struct {
	Brokers       []string
	ConsumerGroup string
}

// StorageConfig selects where uploaded note files live. Bucket and Region
// are used by the S3 driver, LocalDir and PublicURL by the local driver.
type StorageConfig struct {
	Driver    string
	Bucket    string
	Region    string
	Endpoint  string
	LocalDir  string
	PublicURL string
}

type AIConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173,http://localhost:8080")
	v.SetDefault("KAFKA_CONSUMER_GROUP", "edunexus-indexer")
	v.SetDefault("STORAGE_DRIVER", "local")
	v.SetDefault("STORAGE_BUCKET", "notes")
	v.SetDefault("STORAGE_LOCAL_DIR", "./data/notes")
	v.SetDefault("STORAGE_PUBLIC_URL", "http://localhost:8000/files")
	v.SetDefault("AI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("AI_CHAT_MODEL", "gemini-2.5-flash")
	v.SetDefault("AI_EMBEDDING_MODEL", "text-embedding-004")
	v.SetDefault("AI_TIMEOUT", "60s")
}

func fromViper(v *viper.Viper) (*Config, error) {
	level, err := parseLogLevel(v.GetString("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:           v.GetString("PORT"),
		Environment:    v.GetString("APP_ENV"),
		LogLevel:       level,
		APIPrefix:      v.GetString("API_PREFIX"),
		DatabaseDriver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		RedisURL:       v.GetString("REDIS_URL"),
		CacheTTL:       v.GetDuration("CACHE_TTL"),
		CORSOrigins:    splitList(v.GetString("CORS_ORIGINS")),
		Casdoor: CasdoorConfig{
			Endpoint:     v.GetString("CASDOOR_ENDPOINT"),
			ClientID:     v.GetString("CASDOOR_CLIENT_ID"),
			ClientSecret: v.GetString("CASDOOR_CLIENT_SECRET"),
			Cert:         v.GetString("CASDOOR_CERT"),
			Organization: v.GetString("CASDOOR_ORGANIZATION"),
			Application:  v.GetString("CASDOOR_APPLICATION"),
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(v.GetString("KAFKA_BROKERS")),
			ConsumerGroup: v.GetString("KAFKA_CONSUMER_GROUP"),
		},
		Storage: StorageConfig{
			Driver:    strings.ToLower(v.GetString("STORAGE_DRIVER")),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			Region:    v.GetString("STORAGE_REGION"),
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			LocalDir:  v.GetString("STORAGE_LOCAL_DIR"),
			PublicURL: v.GetString("STORAGE_PUBLIC_URL"),
		},
		AI: AIConfig{
			APIKey:         v.GetString("AI_API_KEY"),
			BaseURL:        v.GetString("AI_BASE_URL"),
			ChatModel:      v.GetString("AI_CHAT_MODEL"),
			EmbeddingModel: v.GetString("AI_EMBEDDING_MODEL"),
			Timeout:        v.GetDuration("AI_TIMEOUT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks combinations that cannot work at runtime.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	switch c.Storage.Driver {
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("STORAGE_BUCKET is required for the s3 driver")
		}
	case "local":
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
