// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package auth

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/tejzpr/thread-mcp/internal/database"
	"gorm.io/gorm"
)

// AccessingUserEnv names the variable consulted when the server acts for another user
const AccessingUserEnv = "ACCESSING_USER"

// LocalAuthenticator resolves the user the process acts for
type LocalAuthenticator struct {
	useAccessingUser bool // If true, use ACCESSING_USER env var instead of whoami
	lookup           func() (string, error)
}

// NewLocalAuthenticator creates a new local authenticator
func NewLocalAuthenticator() *LocalAuthenticator {
	return &LocalAuthenticator{lookup: whoami}
}

// NewLocalAuthenticatorWithAccessingUser creates a local authenticator that uses ACCESSING_USER env var
func NewLocalAuthenticatorWithAccessingUser() *LocalAuthenticator {
	return &LocalAuthenticator{useAccessingUser: true, lookup: whoami}
}

// GetLocalUsername gets the username based on configuration:
// - If useAccessingUser is true: use ACCESSING_USER env var (for MCP servers called by authenticated systems)
// - Otherwise: use whoami (default for standalone usage)
func (l *LocalAuthenticator) GetLocalUsername() (string, error) {
	if l.useAccessingUser {
		username := strings.TrimSpace(os.Getenv(AccessingUserEnv))
		if username == "" {
			return "", fmt.Errorf("%s environment variable is required but not set", AccessingUserEnv)
		}
		return username, nil
	}
	return l.lookup()
}

func whoami() (string, error) {
	output, err := exec.Command("whoami").Output()
	if err != nil {
		return "", fmt.Errorf("failed to get username via whoami: %w", err)
	}
	username := strings.TrimSpace(string(output))
	if username == "" {
		return "", fmt.Errorf("whoami returned empty username")
	}
	return username, nil
}

// Authenticate resolves the local username and makes sure it has a user row
func (l *LocalAuthenticator) Authenticate(db *gorm.DB) (*database.ThreadUser, error) {
	username, err := l.GetLocalUsername()
	if err != nil {
		return nil, err
	}
	return database.EnsureUser(db, username)
}
