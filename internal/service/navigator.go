// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package service

import (
	"context"

	"github.com/tejzpr/thread-mcp/internal/logging"
)

// LogNavigator records navigation requests. The MCP client and the HTTP
// caller perform the actual navigation from the returned target.
type LogNavigator struct {
	logger logging.Logger
}

// NewLogNavigator creates a navigator that logs at info level
func NewLogNavigator(logger logging.Logger) *LogNavigator {
	return &LogNavigator{logger: logging.OrDiscard(logger)}
}

func (n *LogNavigator) NavigateToThread(_ context.Context, id string) error {
	n.logger.WithField("thread", id).Info("navigate to thread")
	return nil
}

func (n *LogNavigator) NavigateToEmail(_ context.Context, id string) error {
	n.logger.WithField("email", id).Info("navigate to email")
	return nil
}
