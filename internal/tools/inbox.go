// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// NewInboxTool creates the thread_inbox tool definition
func NewInboxTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Unified inbox: the latest message of every thread plus every email, most important first."),
	}
	opts = append(opts, filterOptions("Only this kind: message, email or all")...)
	return mcp.NewTool("thread_inbox", opts...)
}

// InboxHandler handles the thread_inbox tool
func InboxHandler(ctx *ToolContext, userID string) Handler {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		uid, ok := userFor(c, userID)
		if !ok {
			return mcp.NewToolResultError("no user for this request"), nil
		}
		filter, limit := filterFrom(request)
		entries, err := ctx.Service.Inbox(c, uid, filter)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to build inbox: %v", err)), nil
		}
		entries = truncate(entries, limit)
		if len(entries) == 0 {
			return mcp.NewToolResultText("Inbox is empty."), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Inbox (%d):\n\n", len(entries))
		for _, e := range entries {
			flags := []string{string(e.Kind), string(e.Sentiment)}
			if e.Unread {
				flags = append(flags, "unread")
			}
			if e.NeedsAction {
				flags = append(flags, "needs reply")
			}
			bullet(&b, "[%s] %s from %s (%s) %s", e.Priority, e.Title, e.Sender, strings.Join(flags, ", "), e.Timestamp.UTC().Format(time.RFC3339))
			fmt.Fprintf(&b, "  id: %s\n  %s\n", e.ID, e.Preview)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}
