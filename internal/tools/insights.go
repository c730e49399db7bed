// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tejzpr/thread-mcp/internal/insights"
	"github.com/tejzpr/thread-mcp/internal/presenter"
)

// NewInsightsTool creates the thread_insights tool definition
func NewInsightsTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("List insights about the user's threads and email: forgotten threads, trending topics, messages that need a response, knowledge gaps and connection opportunities. Ranked by priority, then confidence."),
		mcp.WithBoolean("refresh",
			mcp.Description("Regenerate before listing (default: false, reuses the latest generation)"),
		),
	}
	opts = append(opts, filterOptions("Only this insight type: forgotten_thread, trending_topic, action_needed, knowledge_gap, connection_opportunity or all")...)
	return mcp.NewTool("thread_insights", opts...)
}

// InsightsHandler handles the thread_insights tool
func InsightsHandler(ctx *ToolContext, userID string) Handler {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		uid, ok := userFor(c, userID)
		if !ok {
			return mcp.NewToolResultError("no user for this request"), nil
		}
		if request.GetBool("refresh", false) {
			if _, err := ctx.Service.Refresh(c, uid); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to refresh insights: %v", err)), nil
			}
		}

		filter, limit := filterFrom(request)
		view, err := ctx.Service.Insights(c, uid, filter)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load insights: %v", err)), nil
		}
		list := truncate(view.Insights, limit)

		var b strings.Builder
		fmt.Fprintf(&b, "Insights (%d of %d, source: %s", len(list), view.Total, view.Source)
		if view.Fallback != insights.FallbackNone {
			fmt.Fprintf(&b, ", fallback: %s", view.Fallback)
		}
		fmt.Fprintf(&b, ", generated %s)\n\n", view.GeneratedAt.UTC().Format(time.RFC3339))

		if len(list) == 0 {
			b.WriteString("No insights match.\n")
			return mcp.NewToolResultText(b.String()), nil
		}
		for _, ins := range list {
			fmt.Fprintf(&b, "[%s] %s (%s, confidence %.2f)\n", ins.Priority, ins.Title, ins.Kind, ins.Confidence)
			fmt.Fprintf(&b, "  id: %s\n", ins.ID)
			if ins.Description != "" {
				fmt.Fprintf(&b, "  %s\n", ins.Description)
			}
			if len(ins.Keywords) > 0 {
				fmt.Fprintf(&b, "  keywords: %s\n", strings.Join(ins.Keywords, ", "))
			}
			if len(ins.Actions) > 0 {
				fmt.Fprintf(&b, "  actions: %s\n", strings.Join(ins.Actions, "; "))
			}
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

// NewDismissTool creates the thread_dismiss tool definition
func NewDismissTool() mcp.Tool {
	return mcp.NewTool("thread_dismiss",
		mcp.WithDescription("Hide one insight until the next regeneration."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Insight id from thread_insights"),
		),
	)
}

// DismissHandler handles the thread_dismiss tool
func DismissHandler(ctx *ToolContext, userID string) Handler {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		uid, ok := userFor(c, userID)
		if !ok {
			return mcp.NewToolResultError("no user for this request"), nil
		}
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := ctx.Service.DismissInsight(uid, id); err != nil {
			if errors.Is(err, presenter.ErrNotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("insight not found: %s", id)), nil
			}
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Insight '%s' dismissed", id)), nil
	}
}

// NewOpenTool creates the thread_open tool definition
func NewOpenTool() mcp.Tool {
	return mcp.NewTool("thread_open",
		mcp.WithDescription("Open the thread or email an insight or inbox entry refers to."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Insight id, or inbox entry id when source is 'inbox'"),
		),
		mcp.WithString("source",
			mcp.Description("Where the id comes from: insights (default) or inbox"),
			mcp.Enum("insights", "inbox"),
		),
	)
}

// OpenHandler handles the thread_open tool
func OpenHandler(ctx *ToolContext, userID string) Handler {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		uid, ok := userFor(c, userID)
		if !ok {
			return mcp.NewToolResultError("no user for this request"), nil
		}
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var target presenter.Target
		switch source := request.GetString("source", "insights"); source {
		case "insights":
			target, err = ctx.Service.OpenInsight(c, uid, id)
		case "inbox":
			target, err = ctx.Service.OpenInboxEntry(c, uid, id)
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unknown source: %s", source)), nil
		}
		switch {
		case errors.Is(err, presenter.ErrNotFound):
			return mcp.NewToolResultError(fmt.Sprintf("entry not found: %s", id)), nil
		case errors.Is(err, presenter.ErrNoTarget):
			return mcp.NewToolResultError(fmt.Sprintf("entry '%s' does not reference a thread or email", id)), nil
		case err != nil:
			return mcp.NewToolResultError(fmt.Sprintf("failed to open: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Opened %s %s", target.Kind, target.ID)), nil
	}
}
