package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the emulator.
type Config struct {
	Server   ServerConfig
	Gateway  GatewayConfig
	Webhook  WebhookConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// GatewayConfig holds the emulated terminal's credentials and public address.
type GatewayConfig struct {
	TerminalKey string
	Password    string
	BaseURL     string
}

// WebhookConfig holds outbound notification settings.
type WebhookConfig struct {
	Workers int
	Timeout time.Duration
}

// RedisConfig holds optional Redis configuration for the idempotency layer.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds optional New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// Load loads configuration from environment variables. Defaults mirror the
// emulator's documented local setup.
func Load() *Config {
	port := getEnv("PORT", "3000")
	return &Config{
		Server: ServerConfig{
			Port:         port,
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Gateway: GatewayConfig{
			TerminalKey: getEnv("TERMINAL_KEY", "TBankGatewayEmulatorLocal"),
			Password:    getEnv("PASSWORD", "emulator_secret_password"),
			BaseURL:     getEnv("BASE_URL", "http://localhost:"+port),
		},
		Webhook: WebhookConfig{
			Workers: getIntEnv("WEBHOOK_WORKERS", 4),
			Timeout: getDurationEnv("WEBHOOK_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "tbank-test-gateway"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
