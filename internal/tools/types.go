// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tejzpr/thread-mcp/internal/auth"
	"github.com/tejzpr/thread-mcp/internal/presenter"
	"github.com/tejzpr/thread-mcp/internal/service"
)

// Handler is the signature mcp-go expects for tool handlers
type Handler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// ToolContext holds shared dependencies for all tools
type ToolContext struct {
	Service *service.Service
}

// NewToolContext creates a new tool context
func NewToolContext(svc *service.Service) *ToolContext {
	return &ToolContext{Service: svc}
}

// Tool pairs a definition with its handler
type Tool struct {
	Definition mcp.Tool
	Handler    Handler
}

// All returns every thread tool bound to userID. An empty userID makes the
// handlers read the user from the request context instead.
func All(ctx *ToolContext, userID string) []Tool {
	return []Tool{
		{NewInsightsTool(), InsightsHandler(ctx, userID)},
		{NewDismissTool(), DismissHandler(ctx, userID)},
		{NewOpenTool(), OpenHandler(ctx, userID)},
		{NewConnectionsTool(), ConnectionsHandler(ctx, userID)},
		{NewNotificationsTool(), NotificationsHandler(ctx, userID)},
		{NewMarkReadTool(), MarkReadHandler(ctx, userID)},
		{NewInboxTool(), InboxHandler(ctx, userID)},
		{NewSuggestReplyTool(), SuggestReplyHandler(ctx, userID)},
	}
}

func userFor(c context.Context, userID string) (string, bool) {
	if userID != "" {
		return userID, true
	}
	return auth.GetUserIDFromContext(c)
}

// filterOptions are the shared search/type/priority arguments
func filterOptions(typeDescription string) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("query",
			mcp.Description("Case-insensitive text search over titles, descriptions and keywords"),
		),
		mcp.WithString("type",
			mcp.Description(typeDescription),
		),
		mcp.WithString("priority",
			mcp.Description("Only this priority: low, medium, high, urgent or all"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results. Default: 20"),
		),
	}
}

func filterFrom(request mcp.CallToolRequest) (presenter.Filter, int) {
	return presenter.Filter{
		Query:    request.GetString("query", ""),
		Type:     request.GetString("type", ""),
		Priority: request.GetString("priority", ""),
	}, int(request.GetFloat("limit", 20.0))
}

func truncate[T any](list []T, limit int) []T {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}

func bullet(b *strings.Builder, format string, args ...any) {
	b.WriteString("- ")
	fmt.Fprintf(b, format, args...)
	b.WriteString("\n")
}
