package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AdaSouls/Cardano-Backend/internal/domain/model"
)

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Redis    RedisConfig
	Web3     Web3Config
	Provider ProviderConfig
	Codes    CodesConfig
	Alert    AlertConfig
	Tracing  TracingConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DBConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
	TTL time.Duration
}

// Web3Config describes the fan-out targets. SupportedChains, NetworkRPCURLs,
// and APIKeys align by position: chain i uses URL i and key i.
type Web3Config struct {
	SupportedChains []model.ChainID
	NetworkRPCURLs  []string
	APIKeys         []string
	ContentMethod   string
}

type ProviderConfig struct {
	MaxContractsPerCall int
	CallTimeout         time.Duration
	RPS                 float64
	Burst               int
}

type CodesConfig struct {
	Master string
}

type AlertConfig struct {
	WebhookURL string
	Cooldown   time.Duration
}

type TracingConfig struct {
	OTLPEndpoint string
	Insecure     bool
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvInt("HTTP_PORT", 5000),
			ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT_SEC", 15*time.Second),
			WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT_SEC", 30*time.Second),
			ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT_SEC", 5*time.Second),
		},
		DB: DBConfig{
			URL:             getEnv("DB_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30)) * time.Minute,
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
			TTL: getEnvDuration("REDIS_TTL_SEC", time.Hour),
		},
		Web3: Web3Config{
			NetworkRPCURLs: getEnvList("NETWORK_RPC_URLS"),
			APIKeys:        getEnvList("PROVIDER_API_KEYS"),
			ContentMethod:  getEnv("WALLET_CONTENT_METHOD", "alchemy"),
		},
		Provider: ProviderConfig{
			MaxContractsPerCall: getEnvInt("MAX_CONTRACTS_PER_CALL", 20),
			CallTimeout:         time.Duration(getEnvInt("PROVIDER_TIMEOUT_MS", 10000)) * time.Millisecond,
			RPS:                 getEnvFloat("PROVIDER_RPS", 10),
			Burst:               getEnvInt("PROVIDER_BURST", 20),
		},
		Codes: CodesConfig{
			Master: getEnv("FUNCTION_CODE_MASTER", ""),
		},
		Alert: AlertConfig{
			WebhookURL: getEnv("ALERT_WEBHOOK_URL", ""),
			Cooldown:   getEnvDuration("ALERT_COOLDOWN_SEC", 5*time.Minute),
		},
		Tracing: TracingConfig{
			OTLPEndpoint: getEnv("OTEL_ENDPOINT", ""),
			Insecure:     getEnvBool("OTEL_INSECURE", true),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	for _, raw := range getEnvList("SUPPORTED_CHAINS") {
		id, err := model.ParseChainID(raw)
		if err != nil {
			return nil, fmt.Errorf("SUPPORTED_CHAINS: %w", err)
		}
		cfg.Web3.SupportedChains = append(cfg.Web3.SupportedChains, id)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DB.URL == "" {
		return fmt.Errorf("DB_URL is required")
	}
	if len(c.Web3.SupportedChains) == 0 {
		return fmt.Errorf("SUPPORTED_CHAINS is required")
	}
	// Endpoint URLs and credentials resolve by position, so each configured
	// chain must have both.
	if len(c.Web3.NetworkRPCURLs) < len(c.Web3.SupportedChains) {
		return fmt.Errorf("NETWORK_RPC_URLS has %d entries for %d supported chains",
			len(c.Web3.NetworkRPCURLs), len(c.Web3.SupportedChains))
	}
	if len(c.Web3.APIKeys) < len(c.Web3.SupportedChains) {
		return fmt.Errorf("PROVIDER_API_KEYS has %d entries for %d supported chains",
			len(c.Web3.APIKeys), len(c.Web3.SupportedChains))
	}
	if c.Provider.MaxContractsPerCall < 1 {
		return fmt.Errorf("MAX_CONTRACTS_PER_CALL must be >= 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration reads a whole-second env value.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
