// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	AI        AIConfig        `mapstructure:"ai"`
	Insights  InsightsConfig  `mapstructure:"insights"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Store     StoreConfig     `mapstructure:"store"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	TLS  struct {
		Enabled  bool   `mapstructure:"enabled"`
		CertFile string `mapstructure:"cert_file"`
		KeyFile  string `mapstructure:"key_file"`
	} `mapstructure:"tls"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Type        string `mapstructure:"type"` // "sqlite" or "postgres"
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// AuthConfig holds how the accessing user is identified
type AuthConfig struct {
	Type       string `mapstructure:"type"`        // "local" or "header"
	UserHeader string `mapstructure:"user_header"` // HTTP header read when type is "header"
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

// AIConfig holds the completion provider and its guard settings
type AIConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Provider         string `mapstructure:"provider"`
	BaseURL          string `mapstructure:"base_url"`
	Model            string `mapstructure:"model"`
	APIKeyEnv        string `mapstructure:"api_key_env"` // Environment variable name for API key
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	FailureThreshold uint   `mapstructure:"failure_threshold"`
	FailureWindow    uint   `mapstructure:"failure_window"`
	OpenDelaySeconds int    `mapstructure:"open_delay_seconds"`
	PromptMessages   int    `mapstructure:"prompt_messages"`
}

// InsightsConfig holds the heuristic thresholds
type InsightsConfig struct {
	ForgottenDays       int              `mapstructure:"forgotten_days"`
	StaleDays           int              `mapstructure:"stale_days"`
	TrendingWindowHours int              `mapstructure:"trending_window_hours"`
	TrendingMinMessages int              `mapstructure:"trending_min_messages"`
	ActionWindowDays    int              `mapstructure:"action_window_days"`
	GapMin              int              `mapstructure:"gap_min"`
	GapMax              int              `mapstructure:"gap_max"`
	ConnectionMinShared int              `mapstructure:"connection_min_shared"`
	MinRelevance        float64          `mapstructure:"min_relevance"`
	MaxConnections      int              `mapstructure:"max_connections"`
	Vocabulary          []string         `mapstructure:"vocabulary"`
	Confidence          ConfidenceConfig `mapstructure:"confidence"`
}

// ConfidenceConfig holds the fixed confidence each rule assigns, in [0, 1]
type ConfidenceConfig struct {
	ForgottenThread       float64 `mapstructure:"forgotten_thread"`
	TrendingTopic         float64 `mapstructure:"trending_topic"`
	ActionNeeded          float64 `mapstructure:"action_needed"`
	KnowledgeGap          float64 `mapstructure:"knowledge_gap"`
	ConnectionOpportunity float64 `mapstructure:"connection_opportunity"`
}

// SchedulerConfig holds background refresh settings
type SchedulerConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	IntervalMinutes int      `mapstructure:"interval_minutes"`
	Users           []string `mapstructure:"users"`
}

// StoreConfig holds content store behaviour
type StoreConfig struct {
	DemoFallback bool `mapstructure:"demo_fallback"` // Serve demo data when reads fail
}

// Auth types
const (
	AuthTypeLocal  = "local"
	AuthTypeHeader = "header"
)

// AIProviderOpenAI is any OpenAI-compatible chat completions endpoint
const AIProviderOpenAI = "openai"

// ValidAIProviders returns all valid AI provider values
func ValidAIProviders() []string {
	return []string{
		AIProviderOpenAI,
	}
}

// ValidAuthTypes returns all valid auth types
func ValidAuthTypes() []string {
	return []string{
		AuthTypeLocal,
		AuthTypeHeader,
	}
}

// isValidType is a generic helper to check if a type is in a list of valid types
func isValidType(aType string, validTypes []string) bool {
	for _, valid := range validTypes {
		if aType == valid {
			return true
		}
	}
	return false
}

// IsValidAIProvider checks if a provider is valid
func IsValidAIProvider(provider string) bool {
	return isValidType(provider, ValidAIProviders())
}

// IsValidAuthType checks if an auth type is valid
func IsValidAuthType(authType string) bool {
	return isValidType(authType, ValidAuthTypes())
}
