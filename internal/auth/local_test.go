// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package auth

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejzpr/thread-mcp/internal/database"
	"gorm.io/gorm/logger"
)

func TestGetLocalUsername_AccessingUser(t *testing.T) {
	t.Setenv(AccessingUserEnv, "  carol ")

	username, err := NewLocalAuthenticatorWithAccessingUser().GetLocalUsername()
	require.NoError(t, err)
	assert.Equal(t, "carol", username)
}

func TestGetLocalUsername_AccessingUserMissing(t *testing.T) {
	t.Setenv(AccessingUserEnv, "")

	_, err := NewLocalAuthenticatorWithAccessingUser().GetLocalUsername()
	assert.Error(t, err)
}

func TestLocalAuthenticate(t *testing.T) {
	db, err := database.Open(&database.Config{
		Type:       "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
		LogLevel:   logger.Silent,
	})
	require.NoError(t, err)
	defer database.Close(db)

	localAuth := &LocalAuthenticator{lookup: func() (string, error) { return "dave", nil }}

	user, err := localAuth.Authenticate(db)
	require.NoError(t, err)
	assert.Equal(t, "dave", user.Username)
	assert.Equal(t, "dave@local", user.Email)

	again, err := localAuth.Authenticate(db)
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}
