// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tejzpr/thread-mcp/internal/store"
)

// NewNotificationsTool creates the thread_notifications tool definition
func NewNotificationsTool() mcp.Tool {
	return mcp.NewTool("thread_notifications",
		mcp.WithDescription("List the user's notifications, unread first, then by priority and recency."),
		mcp.WithBoolean("unread_only",
			mcp.Description("Only unread notifications (default: false)"),
		),
	)
}

// NotificationsHandler handles the thread_notifications tool
func NotificationsHandler(ctx *ToolContext, userID string) Handler {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		uid, ok := userFor(c, userID)
		if !ok {
			return mcp.NewToolResultError("no user for this request"), nil
		}
		view, err := ctx.Service.Notifications(c, uid, request.GetBool("unread_only", false))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load notifications: %v", err)), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Notifications (%d unread)\n\n", view.Unread)
		if len(view.Notifications) == 0 {
			b.WriteString("Nothing here.\n")
		}
		for _, n := range view.Notifications {
			state := "unread"
			if n.Read {
				state = "read"
			}
			bullet(&b, "[%s] %s (%s, %s)", n.Priority, n.Title, state, n.ID)
			if n.Body != "" {
				fmt.Fprintf(&b, "  %s\n", n.Body)
			}
			if reason := n.AIContext["reason"]; reason != "" {
				fmt.Fprintf(&b, "  why: %s\n", reason)
			}
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

// NewMarkReadTool creates the thread_mark_read tool definition
func NewMarkReadTool() mcp.Tool {
	return mcp.NewTool("thread_mark_read",
		mcp.WithDescription("Mark one notification, or all of them, as read."),
		mcp.WithString("id",
			mcp.Description("Notification to mark read"),
		),
		mcp.WithBoolean("all",
			mcp.Description("Mark every notification read"),
		),
	)
}

// MarkReadHandler handles the thread_mark_read tool
func MarkReadHandler(ctx *ToolContext, userID string) Handler {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		uid, ok := userFor(c, userID)
		if !ok {
			return mcp.NewToolResultError("no user for this request"), nil
		}
		if request.GetBool("all", false) {
			changed, err := ctx.Service.MarkAllNotificationsRead(c, uid)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to mark notifications read: %v", err)), nil
			}
			return mcp.NewToolResultText(fmt.Sprintf("Marked %d notifications read", changed)), nil
		}

		id := request.GetString("id", "")
		if id == "" {
			return mcp.NewToolResultError("please provide 'id' or set 'all' to true"), nil
		}
		unread, err := ctx.Service.MarkNotificationRead(c, uid, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("notification not found: %s", id)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("failed to mark notification read: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Notification '%s' marked read (%d unread)", id, unread)), nil
	}
}
