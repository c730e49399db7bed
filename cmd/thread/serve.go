// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/tejzpr/thread-mcp/internal/auth"
	"github.com/tejzpr/thread-mcp/internal/server"
)

var withAccessingUser bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio",
	Long: `Run the MCP server over stdio for a single local user. The user is the
system user (whoami), or ACCESSING_USER with --with-accessinguser.`,
	RunE: runServe,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().BoolVar(&withAccessingUser, "with-accessinguser", false, "Use ACCESSING_USER env var for user identity")
	}
	rootCmd.AddCommand(serveCmd)
}

func newLocalAuthenticator() *auth.LocalAuthenticator {
	if withAccessingUser {
		return auth.NewLocalAuthenticatorWithAccessingUser()
	}
	return auth.NewLocalAuthenticator()
}

// resolveLocalUser registers the local user in the database when there is
// one, otherwise only resolves the name
func resolveLocalUser(a *app) (string, error) {
	localAuth := newLocalAuthenticator()
	if a.db == nil {
		return localAuth.GetLocalUsername()
	}
	user, err := localAuth.Authenticate(a.db)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	userID, err := resolveLocalUser(a)
	if err != nil {
		return fmt.Errorf("failed to authenticate user: %w", err)
	}
	if withAccessingUser {
		a.logger.WithField("user", userID).Info("User authenticated via ACCESSING_USER")
	} else {
		a.logger.WithField("user", userID).Info("Local user authenticated")
	}

	mcpServer := server.NewMCPServer(a.service, versionString())
	mcpServer.RegisterToolsForUser(userID)
	a.logger.Info("MCP server ready (stdio mode)")

	if err := mcpserver.ServeStdio(mcpServer.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
