// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tejzpr/thread-mcp/internal/ai"
	"github.com/tejzpr/thread-mcp/internal/config"
	"github.com/tejzpr/thread-mcp/internal/database"
	"github.com/tejzpr/thread-mcp/internal/logging"
	"github.com/tejzpr/thread-mcp/internal/metrics"
	"github.com/tejzpr/thread-mcp/internal/service"
	"github.com/tejzpr/thread-mcp/internal/store"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	configPath string
	dbType     string
	dbPath     string
	dbDSN      string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "thread",
	Short: "Thread - insights over your conversations",
	Long: `Thread reads a user's threads, messages, email and notifications and turns them
into ranked insights, related-content suggestions, a unified inbox and reply
suggestions. It serves them as MCP tools (stdio or HTTP) and a JSON API.`,
	SilenceUsage: true,
	// Bare invocation runs the stdio MCP server, matching how MCP clients launch it.
	RunE: runServe,
}

func init() {
	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("Thread version {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to config file (default: ~/.thread/configs/config.json)")
	pf.StringVar(&dbType, "db-type", "", "Database type (sqlite or postgres)")
	pf.StringVar(&dbPath, "db-path", "", "Database path (for sqlite)")
	pf.StringVar(&dbDSN, "db-dsn", "", "Database DSN (for postgres)")
	pf.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "", "Log format (json or text)")
}

func versionString() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

// loadConfig reads the config file and applies CLI overrides (highest priority)
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if dbType != "" {
		cfg.Database.Type = dbType
	}
	if dbPath != "" {
		cfg.Database.SQLitePath = dbPath
	}
	if dbDSN != "" {
		cfg.Database.PostgresDSN = dbDSN
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) logging.Logger {
	// Logs go to stderr; stdout carries MCP JSON-RPC in stdio mode.
	return logging.NewLogger(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
}

// openDB connects to the configured database and runs migrations
func openDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(&database.Config{
		Type:        cfg.Database.Type,
		SQLitePath:  cfg.Database.SQLitePath,
		PostgresDSN: cfg.Database.PostgresDSN,
		LogLevel:    gormlogger.Silent,
	})
}

// newStore wraps the database store with the demo fallback when enabled.
// A nil db means the database could not be opened.
func newStore(cfg *config.Config, db *gorm.DB, logger logging.Logger, m *metrics.Metrics) store.Store {
	var backing store.Store = store.Unavailable{}
	if db != nil {
		backing = store.NewGormStore(db)
	}
	if !cfg.Store.DemoFallback {
		return backing
	}
	return store.NewFallback(backing, logger, m)
}

// newCompleter builds the guarded AI client, or nil when AI is disabled
func newCompleter(cfg *config.Config, logger logging.Logger, m *metrics.Metrics) ai.Completer {
	if !cfg.AI.Enabled {
		logger.Info("AI disabled, insights use heuristics only")
		return nil
	}
	apiKey := os.Getenv(cfg.AI.APIKeyEnv)
	if apiKey == "" {
		logger.Warnf("%s is not set, AI requests will likely be rejected", cfg.AI.APIKeyEnv)
	}

	client := ai.NewOpenAIClient(cfg.AI.BaseURL, apiKey, cfg.AI.Model)
	return ai.NewGuarded(client, ai.GuardConfig{
		Timeout:          time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		FailureThreshold: cfg.AI.FailureThreshold,
		FailureWindow:    cfg.AI.FailureWindow,
		OpenDelay:        time.Duration(cfg.AI.OpenDelaySeconds) * time.Second,
		Logger:           logger,
		OnStateChange: func(_, to ai.BreakerState) {
			m.SetBreakerState(cfg.AI.Provider, float64(to))
		},
	})
}

// app bundles what every serving command needs
type app struct {
	cfg     *config.Config
	logger  logging.Logger
	metrics *metrics.Metrics
	db      *gorm.DB
	service *service.Service
}

// newApp loads config, opens the database and builds the service. A database
// that cannot be opened is fatal unless the demo fallback is enabled.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg)
	m := metrics.New()

	db, err := openDB(cfg)
	if err != nil {
		if !cfg.Store.DemoFallback {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		logger.WithError(err).Warn("Database unavailable, serving demo data")
		db = nil
	} else {
		logger.WithField("type", cfg.Database.Type).Info("Connected to database")
	}

	svc := service.New(service.Config{
		Store:          newStore(cfg, db, logger, m),
		Completer:      newCompleter(cfg, logger, m),
		Options:        service.OptionsFromConfig(cfg.Insights),
		AITimeout:      time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		PromptMessages: cfg.AI.PromptMessages,
		Navigator:      service.NewLogNavigator(logger),
		Logger:         logger,
		Metrics:        m,
	})

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		db:      db,
		service: svc,
	}, nil
}

func (a *app) Close() {
	a.service.Close()
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.logger.WithError(err).Warn("Failed to close database")
		}
	}
}
