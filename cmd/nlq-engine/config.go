package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
)

// Config is the resolved process configuration
type Config struct {
	Host        string
	Port        int
	DatabaseURL string
	DocsDir     string
	CORSOrigins []string

	RedisURL      string
	CacheCapacity int
	CacheTTL      time.Duration

	DBMaxOpenConns int
	DBMaxIdleConns int

	RoutingRulesFile string
	AI               domain.AISettings

	LogLevel  string
	LogFormat string
}

// Defaults for keys without a flag
var configDefaults = map[string]any{
	"host":                 "0.0.0.0",
	"port":                 8000,
	"database-url":         "sqlite:///company_with_relations.db",
	"docs-dir":             "uploaded_docs",
	"cors-origins":         "*",
	"cache-capacity":       1000,
	"cache-ttl":            time.Hour,
	"db-max-open-conns":    10,
	"db-max-idle-conns":    2,
	"llm-provider":         string(domain.AIProviderGemini),
	"embedding-provider":   string(domain.AIProviderLocal),
	"embedding-dimensions": 0,
	"log-level":            "info",
	"log-format":           "text",
}

// newViper returns a viper instance reading flags and the environment.
// Keys use dashes; the matching variable is upper case with underscores
// (database-url reads DATABASE_URL).
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	// Hosted Gemini keys are commonly exported under this name
	if err := v.BindEnv("llm-api-key", "LLM_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, err
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}
	return v, nil
}

// loadConfig reads every key and validates the AI settings
func loadConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Host:             v.GetString("host"),
		Port:             v.GetInt("port"),
		DatabaseURL:      v.GetString("database-url"),
		DocsDir:          v.GetString("docs-dir"),
		CORSOrigins:      splitList(v.GetString("cors-origins")),
		RedisURL:         v.GetString("redis-url"),
		CacheCapacity:    v.GetInt("cache-capacity"),
		CacheTTL:         v.GetDuration("cache-ttl"),
		DBMaxOpenConns:   v.GetInt("db-max-open-conns"),
		DBMaxIdleConns:   v.GetInt("db-max-idle-conns"),
		RoutingRulesFile: v.GetString("routing-rules-file"),
		LogLevel:         v.GetString("log-level"),
		LogFormat:        v.GetString("log-format"),
		AI: domain.AISettings{
			Embedding: domain.EmbeddingSettings{
				Provider:   domain.AIProvider(strings.ToLower(v.GetString("embedding-provider"))),
				Model:      v.GetString("embedding-model"),
				APIKey:     v.GetString("embedding-api-key"),
				BaseURL:    v.GetString("embedding-base-url"),
				Dimensions: v.GetInt("embedding-dimensions"),
			},
			LLM: domain.LLMSettings{
				Provider: domain.AIProvider(strings.ToLower(v.GetString("llm-provider"))),
				Model:    v.GetString("llm-model"),
				APIKey:   v.GetString("llm-api-key"),
				BaseURL:  v.GetString("llm-base-url"),
			},
		},
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: port %d", domain.ErrInvalidInput, cfg.Port)
	}
	if err := cfg.AI.Validate(); err != nil {
		return nil, fmt.Errorf("ai settings: %w", err)
	}
	return cfg, nil
}

// CacheBackend names the result cache the config selects
func (c *Config) CacheBackend() string {
	if c.RedisURL != "" {
		return domain.CacheBackendRedis
	}
	return domain.CacheBackendMemory
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

// newLogger builds the process logger from LOG_LEVEL and LOG_FORMAT
func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
