// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tejzpr/thread-mcp/internal/database"
	"github.com/tejzpr/thread-mcp/internal/demo"
	"github.com/tejzpr/thread-mcp/internal/store"
)

var seedUser string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo dataset into the database",
	Long: `Load the demo threads, messages, email and notifications into the configured
database for one user, with timestamps relative to now. Existing demo records
are overwritten.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedUser, "user", "", "User to seed (default: local user)")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg)

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close(db)

	userID := seedUser
	if userID == "" {
		user, err := newLocalAuthenticator().Authenticate(db)
		if err != nil {
			return fmt.Errorf("failed to authenticate user: %w", err)
		}
		userID = user.Username
	} else if _, err := database.EnsureUser(db, userID); err != nil {
		return err
	}

	data, err := demo.Load(time.Now())
	if err != nil {
		return err
	}
	data = data.ForUser(userID)

	if err := store.NewGormStore(db).Import(cmd.Context(), userID, store.Dataset{
		Threads:       data.Threads,
		Messages:      data.Messages,
		Emails:        data.Emails,
		Notifications: data.Notifications,
	}); err != nil {
		return fmt.Errorf("failed to seed demo data: %w", err)
	}

	logger.WithField("user", userID).Info("Demo data seeded")
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d threads, %d messages, %d emails and %d notifications for %s\n",
		len(data.Threads), len(data.Messages), len(data.Emails), len(data.Notifications), userID)
	return nil
}
