// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package database

import (
	"time"

	"gorm.io/gorm"
)

// Records are stored flat: lists and maps as JSON text, booleans as 0/1,
// timestamps as RFC3339 strings in UTC.

// ThreadUser represents a user in the system
type ThreadUser struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;not null" json:"username"`
	Email     string         `json:"email"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName specifies the table name for ThreadUser
func (ThreadUser) TableName() string {
	return "thread_users"
}

// ThreadRecord is a stored conversation thread
type ThreadRecord struct {
	ID           string `gorm:"primaryKey" json:"id"`
	UserID       string `gorm:"index;not null" json:"user_id"`
	Name         string `gorm:"not null" json:"name"`
	Type         string `json:"type"`
	Participants string `gorm:"type:text" json:"participants"` // JSON array
	IsPrivate    int    `gorm:"default:0" json:"is_private"`
	CreatedAt    string `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt    string `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// TableName specifies the table name for ThreadRecord
func (ThreadRecord) TableName() string {
	return "threads"
}

// MessageRecord is a stored thread message
type MessageRecord struct {
	ID         string `gorm:"primaryKey" json:"id"`
	UserID     string `gorm:"index;not null" json:"user_id"`
	ThreadID   string `gorm:"index;not null" json:"thread_id"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Content    string `gorm:"type:text" json:"content"`
	CreatedAt  string `gorm:"autoCreateTime:false" json:"created_at"`
}

// TableName specifies the table name for MessageRecord
func (MessageRecord) TableName() string {
	return "messages"
}

// EmailRecord is a stored email
type EmailRecord struct {
	ID           string `gorm:"primaryKey" json:"id"`
	UserID       string `gorm:"index;not null" json:"user_id"`
	ThreadID     string `gorm:"index" json:"thread_id"`
	FromAddress  string `json:"from_address"`
	Subject      string `json:"subject"`
	Body         string `gorm:"type:text" json:"body"`
	Participants string `gorm:"type:text" json:"participants"` // JSON array
	IsRead       int    `gorm:"default:0" json:"is_read"`
	ReceivedAt   string `json:"received_at"`
}

// TableName specifies the table name for EmailRecord
func (EmailRecord) TableName() string {
	return "emails"
}

// NotificationRecord is a stored smart notification
type NotificationRecord struct {
	ID        string `gorm:"primaryKey" json:"id"`
	UserID    string `gorm:"index;not null" json:"user_id"`
	Title     string `gorm:"not null" json:"title"`
	Body      string `gorm:"type:text" json:"body"`
	Type      string `json:"type"`
	Priority  string `json:"priority"`
	Read      int    `gorm:"column:read;default:0" json:"read"`
	AIContext string `gorm:"column:ai_context;type:text" json:"ai_context"` // JSON object
	ThreadID  string `json:"thread_id"`
	EmailID   string `json:"email_id"`
	CreatedAt string `gorm:"autoCreateTime:false" json:"created_at"`
}

// TableName specifies the table name for NotificationRecord
func (NotificationRecord) TableName() string {
	return "notifications"
}

// ValidThreadTypes returns all valid thread types
func ValidThreadTypes() []string {
	return []string{"channel", "direct", "ai"}
}

// IsValidThreadType checks if a thread type is valid
func IsValidThreadType(tType string) bool {
	for _, valid := range ValidThreadTypes() {
		if tType == valid {
			return true
		}
	}
	return false
}
