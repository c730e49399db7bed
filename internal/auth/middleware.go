// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package auth

import (
	"context"
	"net/http"
	"strings"
)

// ContextKey is the type for context keys
type ContextKey string

// UserIDKey is the context key for user ID
const UserIDKey ContextKey = "user_id"

// Middleware places the accessing user id in the request context
type Middleware struct {
	header      string
	defaultUser string
}

// NewMiddleware creates a middleware that reads the user from header.
// Requests without the header act as defaultUser; an empty defaultUser
// makes the header mandatory.
func NewMiddleware(header, defaultUser string) *Middleware {
	return &Middleware{header: header, defaultUser: defaultUser}
}

// NewLocalMiddleware acts as user for every request
func NewLocalMiddleware(user string) *Middleware {
	return &Middleware{defaultUser: user}
}

// RequireUser rejects requests that cannot be attributed to a user
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := m.userFor(r)
		if userID == "" {
			http.Error(w, "Unauthorized: missing user", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func (m *Middleware) userFor(r *http.Request) string {
	if m.header != "" {
		if v := strings.TrimSpace(r.Header.Get(m.header)); v != "" {
			return v
		}
	}
	return m.defaultUser
}

// GetUserIDFromContext extracts the user ID from request context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// WithUserID adds a user ID to a context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}
