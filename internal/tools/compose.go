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

// NewSuggestReplyTool creates the thread_suggest_reply tool definition
func NewSuggestReplyTool() mcp.Tool {
	return mcp.NewTool("thread_suggest_reply",
		mcp.WithDescription("Suggest short replies to the latest message in a thread and report its tone."),
		mcp.WithString("thread_id",
			mcp.Required(),
			mcp.Description("Thread to reply in"),
		),
	)
}

// SuggestReplyHandler handles the thread_suggest_reply tool
func SuggestReplyHandler(ctx *ToolContext, userID string) Handler {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		uid, ok := userFor(c, userID)
		if !ok {
			return mcp.NewToolResultError("no user for this request"), nil
		}
		threadID, err := request.RequireString("thread_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		s, err := ctx.Service.SuggestReply(c, uid, threadID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to suggest replies: %v", err)), nil
		}
		if len(s.Replies) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No messages to reply to in thread '%s'.", threadID)), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Suggested replies (tone: %s, source: %s):\n\n", s.Tone, s.Source)
		for _, r := range s.Replies {
			bullet(&b, "%s", r)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}
