// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tejzpr/thread-mcp/internal/insights"
	"github.com/tejzpr/thread-mcp/internal/presenter"
)

var (
	insightsUser     string
	insightsType     string
	insightsPriority string
	insightsQuery    string
	insightsJSON     bool
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Generate and print insights for one user",
	RunE:  runInsights,
}

func init() {
	f := insightsCmd.Flags()
	f.StringVar(&insightsUser, "user", "", "User to generate for (default: local user)")
	f.StringVar(&insightsType, "type", "", "Only this insight type")
	f.StringVar(&insightsPriority, "priority", "", "Only this priority")
	f.StringVar(&insightsQuery, "query", "", "Text search over titles, descriptions and keywords")
	f.BoolVar(&insightsJSON, "json", false, "Print JSON instead of text")
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	userID := insightsUser
	if userID == "" {
		if userID, err = resolveLocalUser(a); err != nil {
			return fmt.Errorf("failed to authenticate user: %w", err)
		}
	}

	view, err := a.service.Insights(cmd.Context(), userID, presenter.Filter{
		Query:    insightsQuery,
		Type:     insightsType,
		Priority: insightsPriority,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if insightsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	fmt.Fprintf(out, "%d insights for %s (source: %s", len(view.Insights), userID, view.Source)
	if view.Fallback != insights.FallbackNone {
		fmt.Fprintf(out, ", fallback: %s", view.Fallback)
	}
	fmt.Fprintln(out, ")")
	for _, ins := range view.Insights {
		fmt.Fprintf(out, "\n[%s] %s\n  %s\n  type: %s, confidence: %.2f\n", ins.Priority, ins.Title, ins.Description, ins.Kind, ins.Confidence)
		for _, action := range ins.Actions {
			fmt.Fprintf(out, "  - %s\n", action)
		}
	}
	if len(view.Insights) == 0 {
		fmt.Fprintln(os.Stderr, "No insights.")
	}
	return nil
}
