// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// AllModels returns all database models for migration
func AllModels() []interface{} {
	return []interface{}{
		&ThreadUser{},
		&ThreadRecord{},
		&MessageRecord{},
		&EmailRecord{},
		&NotificationRecord{},
	}
}

// Migrate runs database migrations for all models
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// DropAllTables drops all tables (use with caution!)
func DropAllTables(db *gorm.DB) error {
	models := AllModels()
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	return nil
}

// CreateIndexes creates additional indexes for better query performance
func CreateIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		columns []string
		name    string
	}{
		{
			table:   "threads",
			columns: []string{"user_id", "updated_at"},
			name:    "idx_threads_user_updated",
		},
		{
			table:   "messages",
			columns: []string{"thread_id", "created_at"},
			name:    "idx_messages_thread_created",
		},
		{
			table:   "messages",
			columns: []string{"user_id", "created_at"},
			name:    "idx_messages_user_created",
		},
		{
			table:   "emails",
			columns: []string{"user_id", "received_at"},
			name:    "idx_emails_user_received",
		},
		{
			table:   "notifications",
			columns: []string{"user_id", "read"},
			name:    "idx_notifications_user_read",
		},
	}

	for _, idx := range indexes {
		if !db.Migrator().HasIndex(idx.table, idx.name) {
			sql := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
				idx.name,
				idx.table,
				joinColumns(idx.columns))

			if err := db.Exec(sql).Error; err != nil {
				return fmt.Errorf("failed to create index %s: %w", idx.name, err)
			}
		}
	}

	return nil
}

// joinColumns joins quoted column names with commas
func joinColumns(columns []string) string {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = `"` + col + `"`
	}
	return strings.Join(quoted, ", ")
}

// EnsureUser finds or creates the user row for username
func EnsureUser(db *gorm.DB, username string) (*ThreadUser, error) {
	var user ThreadUser
	result := db.Where("username = ?", username).FirstOrCreate(&user, ThreadUser{
		Username: username,
		Email:    username + "@local",
	})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create/find user: %w", result.Error)
	}
	return &user, nil
}
