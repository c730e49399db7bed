// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tejzpr/thread-mcp/internal/auth"
	"github.com/tejzpr/thread-mcp/internal/config"
	"github.com/tejzpr/thread-mcp/internal/server"
	"github.com/tejzpr/thread-mcp/pkg/scheduler"
)

var httpPort int

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Run the HTTP API and streamable MCP endpoint",
	Long: `Run the JSON API and the streamable MCP endpoint (/mcp). With auth type
"header" the user comes from the configured header on each request; with
"local" every request acts as the system user.`,
	RunE: runHTTP,
}

func init() {
	httpCmd.Flags().IntVar(&httpPort, "port", 0, "Server port (overrides config)")
	rootCmd.AddCommand(httpCmd)
}

func newAuthMiddleware(a *app) (*auth.Middleware, error) {
	if a.cfg.Auth.Type == config.AuthTypeHeader {
		a.logger.WithField("header", a.cfg.Auth.UserHeader).Info("Header authentication enabled")
		return auth.NewMiddleware(a.cfg.Auth.UserHeader, ""), nil
	}
	userID, err := resolveLocalUser(a)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate user: %w", err)
	}
	a.logger.WithField("user", userID).Info("Local authentication initialized")
	return auth.NewLocalMiddleware(userID), nil
}

func runHTTP(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if httpPort > 0 {
		a.cfg.Server.Port = httpPort
	}

	authMiddleware, err := newAuthMiddleware(a)
	if err != nil {
		return err
	}

	mcpServer := server.NewMCPServer(a.service, versionString())
	mcpServer.RegisterToolsForUser("")
	httpServer := server.NewHTTPServer(mcpServer, authMiddleware, a.metrics, a.logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.cfg.Scheduler.Enabled {
		sched := scheduler.NewScheduler(a.service, a.cfg.Scheduler.IntervalMinutes, a.cfg.Scheduler.Users, a.logger)
		sched.Start(ctx)
		defer sched.Stop()
		a.logger.WithField("interval_minutes", a.cfg.Scheduler.IntervalMinutes).Info("Background refresh scheduler started")
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpServer.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.WithField("addr", addr).Info("HTTP server starting")
		if a.cfg.Server.TLS.Enabled {
			a.logger.Info("TLS enabled")
			errCh <- srv.ListenAndServeTLS(a.cfg.Server.TLS.CertFile, a.cfg.Server.TLS.KeyFile)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
