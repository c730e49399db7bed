// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// NewConnectionsTool creates the thread_connections tool definition
func NewConnectionsTool() mcp.Tool {
	return mcp.NewTool("thread_connections",
		mcp.WithDescription("Find other threads and emails related to the thread the user is looking at. Uses shared keywords, shared participants and recency."),
		mcp.WithString("thread_id",
			mcp.Required(),
			mcp.Description("The active thread"),
		),
	)
}

// ConnectionsHandler handles the thread_connections tool
func ConnectionsHandler(ctx *ToolContext, userID string) Handler {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		uid, ok := userFor(c, userID)
		if !ok {
			return mcp.NewToolResultError("no user for this request"), nil
		}
		threadID, err := request.RequireString("thread_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		list, err := ctx.Service.Connections(c, uid, threadID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to find connections: %v", err)), nil
		}
		if len(list) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No related content found for thread '%s'.", threadID)), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Related to %s (%d):\n\n", threadID, len(list))
		for _, conn := range list {
			bullet(&b, "[%s] %s %s %q (relevance %.2f)", conn.Priority, conn.TargetKind, conn.TargetID, conn.Title, conn.Relevance)
			fmt.Fprintf(&b, "  %s\n", conn.Reason)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}
