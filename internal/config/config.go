// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigDir is the default configuration directory
	DefaultConfigDir = ".thread/configs"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.json"
	// EnvPrefix prefixes environment overrides, e.g. THREAD_SERVER_PORT
	EnvPrefix = "THREAD"
)

// Load reads configuration from ~/.thread/configs/config.json
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(homeDir, DefaultConfigDir))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults
	}
	return decode(v)
}

// LoadFromPath loads configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("server.host", def.Server.Host)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("server.tls.enabled", false)

	v.SetDefault("database.type", def.Database.Type)
	v.SetDefault("database.sqlite_path", def.Database.SQLitePath)
	v.SetDefault("database.postgres_dsn", "")

	v.SetDefault("auth.type", def.Auth.Type)
	v.SetDefault("auth.user_header", def.Auth.UserHeader)

	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)

	v.SetDefault("ai.enabled", def.AI.Enabled)
	v.SetDefault("ai.provider", def.AI.Provider)
	v.SetDefault("ai.base_url", def.AI.BaseURL)
	v.SetDefault("ai.model", def.AI.Model)
	v.SetDefault("ai.api_key_env", def.AI.APIKeyEnv)
	v.SetDefault("ai.timeout_seconds", def.AI.TimeoutSeconds)
	v.SetDefault("ai.failure_threshold", def.AI.FailureThreshold)
	v.SetDefault("ai.failure_window", def.AI.FailureWindow)
	v.SetDefault("ai.open_delay_seconds", def.AI.OpenDelaySeconds)
	v.SetDefault("ai.prompt_messages", def.AI.PromptMessages)

	v.SetDefault("insights.forgotten_days", def.Insights.ForgottenDays)
	v.SetDefault("insights.stale_days", def.Insights.StaleDays)
	v.SetDefault("insights.trending_window_hours", def.Insights.TrendingWindowHours)
	v.SetDefault("insights.trending_min_messages", def.Insights.TrendingMinMessages)
	v.SetDefault("insights.action_window_days", def.Insights.ActionWindowDays)
	v.SetDefault("insights.gap_min", def.Insights.GapMin)
	v.SetDefault("insights.gap_max", def.Insights.GapMax)
	v.SetDefault("insights.connection_min_shared", def.Insights.ConnectionMinShared)
	v.SetDefault("insights.min_relevance", def.Insights.MinRelevance)
	v.SetDefault("insights.max_connections", def.Insights.MaxConnections)
	v.SetDefault("insights.confidence.forgotten_thread", def.Insights.Confidence.ForgottenThread)
	v.SetDefault("insights.confidence.trending_topic", def.Insights.Confidence.TrendingTopic)
	v.SetDefault("insights.confidence.action_needed", def.Insights.Confidence.ActionNeeded)
	v.SetDefault("insights.confidence.knowledge_gap", def.Insights.Confidence.KnowledgeGap)
	v.SetDefault("insights.confidence.connection_opportunity", def.Insights.Confidence.ConnectionOpportunity)

	v.SetDefault("scheduler.enabled", def.Scheduler.Enabled)
	v.SetDefault("scheduler.interval_minutes", def.Scheduler.IntervalMinutes)

	v.SetDefault("store.demo_fallback", def.Store.DemoFallback)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Auth.Type == "" {
		cfg.Auth.Type = AuthTypeLocal
	}
	if !IsValidAuthType(cfg.Auth.Type) {
		return fmt.Errorf("auth.type must be 'local' or 'header', got '%s'", cfg.Auth.Type)
	}
	if cfg.Auth.Type == AuthTypeHeader && cfg.Auth.UserHeader == "" {
		return fmt.Errorf("auth.user_header is required when auth.type='header'")
	}

	if cfg.Database.Type != "sqlite" && cfg.Database.Type != "postgres" {
		return fmt.Errorf("database.type must be 'sqlite' or 'postgres', got '%s'", cfg.Database.Type)
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required when type is 'sqlite'")
	}
	if cfg.Database.Type == "postgres" && cfg.Database.PostgresDSN == "" {
		return fmt.Errorf("database.postgres_dsn is required when type is 'postgres'")
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	if cfg.Logging.Format != "json" && cfg.Logging.Format != "text" {
		return fmt.Errorf("logging.format must be 'json' or 'text', got '%s'", cfg.Logging.Format)
	}

	if cfg.AI.Enabled {
		if !IsValidAIProvider(cfg.AI.Provider) {
			return fmt.Errorf("ai.provider must be one of %v, got '%s'", ValidAIProviders(), cfg.AI.Provider)
		}
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai.enabled=true")
		}
	}
	if cfg.AI.TimeoutSeconds < 1 {
		return fmt.Errorf("ai.timeout_seconds must be at least 1, got %d", cfg.AI.TimeoutSeconds)
	}
	if cfg.AI.FailureThreshold < 1 || cfg.AI.FailureThreshold > cfg.AI.FailureWindow {
		return fmt.Errorf("ai.failure_threshold must be between 1 and ai.failure_window (%d), got %d",
			cfg.AI.FailureWindow, cfg.AI.FailureThreshold)
	}

	in := cfg.Insights
	if in.ForgottenDays < 1 {
		return fmt.Errorf("insights.forgotten_days must be at least 1, got %d", in.ForgottenDays)
	}
	if in.StaleDays < in.ForgottenDays {
		return fmt.Errorf("insights.stale_days (%d) must not be below insights.forgotten_days (%d)", in.StaleDays, in.ForgottenDays)
	}
	if in.TrendingWindowHours < 1 {
		return fmt.Errorf("insights.trending_window_hours must be at least 1, got %d", in.TrendingWindowHours)
	}
	if in.GapMin < 1 || in.GapMax < in.GapMin {
		return fmt.Errorf("insights.gap_min/gap_max must satisfy 1 <= min <= max, got %d/%d", in.GapMin, in.GapMax)
	}
	if in.MinRelevance < 0 || in.MinRelevance > 1 {
		return fmt.Errorf("insights.min_relevance must be between 0 and 1, got %v", in.MinRelevance)
	}
	if in.MaxConnections < 1 {
		return fmt.Errorf("insights.max_connections must be at least 1, got %d", in.MaxConnections)
	}
	for name, c := range map[string]float64{
		"forgotten_thread":       in.Confidence.ForgottenThread,
		"trending_topic":         in.Confidence.TrendingTopic,
		"action_needed":          in.Confidence.ActionNeeded,
		"knowledge_gap":          in.Confidence.KnowledgeGap,
		"connection_opportunity": in.Confidence.ConnectionOpportunity,
	} {
		if c < 0 || c > 1 {
			return fmt.Errorf("insights.confidence.%s must be between 0 and 1, got %v", name, c)
		}
	}

	if cfg.Scheduler.Enabled && cfg.Scheduler.IntervalMinutes < 1 {
		return fmt.Errorf("scheduler.interval_minutes must be at least 1, got %d", cfg.Scheduler.IntervalMinutes)
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, DefaultConfigDir)
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Type:       "sqlite",
			SQLitePath: filepath.Join(homeDir, ".thread/db/thread.db"),
		},
		Auth: AuthConfig{
			Type:       AuthTypeLocal,
			UserHeader: "X-Thread-User",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		AI: AIConfig{
			Provider:         AIProviderOpenAI,
			BaseURL:          "https://api.openai.com/v1",
			APIKeyEnv:        "OPENAI_API_KEY",
			TimeoutSeconds:   20,
			FailureThreshold: 3,
			FailureWindow:    5,
			OpenDelaySeconds: 30,
			PromptMessages:   10,
		},
		Insights: InsightsConfig{
			ForgottenDays:       3,
			StaleDays:           7,
			TrendingWindowHours: 24,
			TrendingMinMessages: 5,
			ActionWindowDays:    2,
			GapMin:              2,
			GapMax:              4,
			ConnectionMinShared: 2,
			MinRelevance:        0.3,
			MaxConnections:      5,
			Confidence: ConfidenceConfig{
				ForgottenThread:       0.85,
				TrendingTopic:         0.92,
				ActionNeeded:          0.88,
				KnowledgeGap:          0.70,
				ConnectionOpportunity: 0.75,
			},
		},
		Scheduler: SchedulerConfig{
			IntervalMinutes: 15,
		},
		Store: StoreConfig{
			DemoFallback: true,
		},
	}
}
