package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "memory driver with defaults",
			env:  map[string]string{"DATABASE_DRIVER": "memory"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "8000" {
					t.Errorf("Port = %s, want 8000", cfg.Port)
				}
				if cfg.APIPrefix != "/api/v1" {
					t.Errorf("APIPrefix = %s, want /api/v1", cfg.APIPrefix)
				}
				if cfg.LogLevel != slog.LevelInfo {
					t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
				}
				if len(cfg.CORSOrigins) != 3 {
					t.Errorf("CORSOrigins = %v, want 3 entries", cfg.CORSOrigins)
				}
				if cfg.AI.Timeout != 60*time.Second {
					t.Errorf("AI.Timeout = %v, want 60s", cfg.AI.Timeout)
				}
			},
		},
		{
			name:    "postgres without url",
			env:     map[string]string{"DATABASE_DRIVER": "postgres", "DATABASE_URL": ""},
			wantErr: true,
		},
		{
			name: "kafka brokers are split",
			env: map[string]string{
				"DATABASE_DRIVER": "memory",
				"KAFKA_BROKERS":   "k1:9092, k2:9092,",
				"LOG_LEVEL":       "debug",
			},
			check: func(t *testing.T, cfg *Config) {
				if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
					t.Errorf("Kafka.Brokers = %v", cfg.Kafka.Brokers)
				}
				if cfg.LogLevel != slog.LevelDebug {
					t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
				}
			},
		},
		{
			name:    "bad log level",
			env:     map[string]string{"DATABASE_DRIVER": "memory", "LOG_LEVEL": "loud"},
			wantErr: true,
		},
		{
			name:    "unknown storage driver",
			env:     map[string]string{"DATABASE_DRIVER": "memory", "STORAGE_DRIVER": "ftp"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadConfig()
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadConfig_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("DATABASE_DRIVER=memory\nPORT=9999\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENV_FILE", path)
	// godotenv does not override variables that are already set.
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")
	os.Unsetenv("DATABASE_DRIVER")
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("DATABASE_DRIVER")
	})

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != "9999" {
		t.Errorf("Port = %s, want 9999", cfg.Port)
	}
}
