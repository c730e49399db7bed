// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"
	"github.com/tejzpr/thread-mcp/internal/auth"
	"github.com/tejzpr/thread-mcp/internal/logging"
	"github.com/tejzpr/thread-mcp/internal/metrics"
	"github.com/tejzpr/thread-mcp/internal/presenter"
	"github.com/tejzpr/thread-mcp/internal/service"
	"github.com/tejzpr/thread-mcp/internal/store"
)

// HTTPServer exposes the insight service as a JSON API next to the
// streamable MCP endpoint
type HTTPServer struct {
	mcpServer      *MCPServer
	service        *service.Service
	authMiddleware *auth.Middleware
	metrics        *metrics.Metrics
	logger         logging.Logger
}

// NewHTTPServer creates a new HTTP server. The MCP server must have its
// tools registered with an empty user so they read the user per request.
func NewHTTPServer(mcpServer *MCPServer, authMiddleware *auth.Middleware, m *metrics.Metrics, logger logging.Logger) *HTTPServer {
	return &HTTPServer{
		mcpServer:      mcpServer,
		service:        mcpServer.Service(),
		authMiddleware: authMiddleware,
		metrics:        m,
		logger:         logging.OrDiscard(logger),
	}
}

// Router builds the chi router with all routes and middleware
func (h *HTTPServer) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logger(h.logger))
	r.Use(Recovery(h.logger))

	r.Get("/health", h.Health)
	r.Handle("/metrics", h.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware.RequireUser)

		r.Handle("/mcp", server.NewStreamableHTTPServer(h.mcpServer.GetMCPServer()))

		r.Route("/insights", func(r chi.Router) {
			r.Get("/", h.ListInsights)
			r.Post("/refresh", h.TriggerRefresh)
			r.Post("/{id}/dismiss", h.DismissInsight)
			r.Post("/{id}/open", h.OpenInsight)
		})

		r.Route("/threads/{id}", func(r chi.Router) {
			r.Get("/connections", h.Connections)
			r.Get("/suggestions", h.SuggestReply)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.ListNotifications)
			r.Post("/read-all", h.MarkAllNotificationsRead)
			r.Post("/{id}/read", h.MarkNotificationRead)
		})

		r.Route("/inbox", func(r chi.Router) {
			r.Get("/", h.Inbox)
			r.Post("/{id}/open", h.OpenInboxEntry)
		})
	})

	return r
}

// Health reports liveness and how many users have live state
func (h *HTTPServer) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"users":  len(h.service.Users()),
	})
}

// ListInsights handles GET /insights
func (h *HTTPServer) ListInsights(w http.ResponseWriter, r *http.Request) {
	userID := mustUser(r)
	q := r.URL.Query()
	if refresh, _ := strconv.ParseBool(q.Get("refresh")); refresh {
		if _, err := h.service.Refresh(r.Context(), userID); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	view, err := h.service.Insights(r.Context(), userID, filterFrom(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view.Insights = truncate(view.Insights, limitFrom(r))
	writeJSON(w, http.StatusOK, view)
}

// TriggerRefresh handles POST /insights/refresh without waiting for it
func (h *HTTPServer) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	// Detached from the request so the generation outlives the response.
	gen := h.service.Trigger(context.WithoutCancel(r.Context()), mustUser(r))
	writeJSON(w, http.StatusAccepted, map[string]uint64{"generation": gen})
}

// DismissInsight handles POST /insights/{id}/dismiss
func (h *HTTPServer) DismissInsight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DismissInsight(mustUser(r), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"dismissed": id})
}

// OpenInsight handles POST /insights/{id}/open
func (h *HTTPServer) OpenInsight(w http.ResponseWriter, r *http.Request) {
	target, err := h.service.OpenInsight(r.Context(), mustUser(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, target)
}

// Connections handles GET /threads/{id}/connections
func (h *HTTPServer) Connections(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Connections(r.Context(), mustUser(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"connections": list})
}

// SuggestReply handles GET /threads/{id}/suggestions
func (h *HTTPServer) SuggestReply(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.SuggestReply(r.Context(), mustUser(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ListNotifications handles GET /notifications
func (h *HTTPServer) ListNotifications(w http.ResponseWriter, r *http.Request) {
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread_only"))
	view, err := h.service.Notifications(r.Context(), mustUser(r), unreadOnly)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// MarkNotificationRead handles POST /notifications/{id}/read
func (h *HTTPServer) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	unread, err := h.service.MarkNotificationRead(r.Context(), mustUser(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": unread})
}

// MarkAllNotificationsRead handles POST /notifications/read-all
func (h *HTTPServer) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	changed, err := h.service.MarkAllNotificationsRead(r.Context(), mustUser(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"changed": changed})
}

// Inbox handles GET /inbox
func (h *HTTPServer) Inbox(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Inbox(r.Context(), mustUser(r), filterFrom(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": truncate(entries, limitFrom(r))})
}

// OpenInboxEntry handles POST /inbox/{id}/open
func (h *HTTPServer) OpenInboxEntry(w http.ResponseWriter, r *http.Request) {
	target, err := h.service.OpenInboxEntry(r.Context(), mustUser(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, target)
}

// fail maps service errors onto HTTP statuses
func (h *HTTPServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, presenter.ErrNotFound), errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, presenter.ErrNoTarget):
		status = http.StatusConflict
	case errors.Is(err, service.ErrNoInsights), errors.Is(err, store.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.logger.WithFields(logging.Fields{
			"request_id": RequestIDFrom(r.Context()),
			"path":       r.URL.Path,
			"error":      err,
		}).Error("request failed")
	}
	writeError(w, status, err.Error())
}

// mustUser returns the user placed in the context by RequireUser
func mustUser(r *http.Request) string {
	userID, _ := auth.GetUserIDFromContext(r.Context())
	return userID
}

func filterFrom(r *http.Request) presenter.Filter {
	q := r.URL.Query()
	return presenter.Filter{
		Query:    q.Get("query"),
		Type:     q.Get("type"),
		Priority: q.Get("priority"),
	}
}

func limitFrom(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func truncate[T any](list []T, limit int) []T {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
