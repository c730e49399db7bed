// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tejzpr/thread-mcp/internal/content"
	"github.com/tejzpr/thread-mcp/internal/database"
)

// TimeFormat is the storage representation of timestamps: RFC3339 in UTC
// with a fixed nine digit fraction, so stored values round-trip exactly and
// sort as strings.
const TimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeFormat)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// encodeList stores every empty list as "[]"
func encodeList(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(list)
	return string(b)
}

// decodeList reads "" and "[]" alike as a nil list
func decodeList(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(s), &list); err != nil {
		return nil, fmt.Errorf("invalid list %q: %w", s, err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list, nil
}

// ThreadToRecord flattens a thread for storage
func ThreadToRecord(t content.Thread) database.ThreadRecord {
	return database.ThreadRecord{
		ID:           t.ID,
		UserID:       t.UserID,
		Name:         t.Name,
		Type:         string(t.Kind),
		Participants: encodeList(t.Participants),
		IsPrivate:    boolToInt(t.IsPrivate),
		CreatedAt:    formatTime(t.CreatedAt),
		UpdatedAt:    formatTime(t.UpdatedAt),
	}
}

// ThreadFromRecord rebuilds a thread from storage
func ThreadFromRecord(r database.ThreadRecord) (content.Thread, error) {
	participants, err := decodeList(r.Participants)
	if err != nil {
		return content.Thread{}, fmt.Errorf("thread %s: %w", r.ID, err)
	}
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return content.Thread{}, fmt.Errorf("thread %s: %w", r.ID, err)
	}
	updated, err := parseTime(r.UpdatedAt)
	if err != nil {
		return content.Thread{}, fmt.Errorf("thread %s: %w", r.ID, err)
	}
	return content.Thread{
		ID:           r.ID,
		UserID:       r.UserID,
		Name:         r.Name,
		Kind:         content.ThreadKind(r.Type),
		Participants: participants,
		IsPrivate:    r.IsPrivate != 0,
		CreatedAt:    created,
		UpdatedAt:    updated,
	}, nil
}

// MessageToRecord flattens a message owned by userID
func MessageToRecord(userID string, m content.Message) database.MessageRecord {
	return database.MessageRecord{
		ID:         m.ID,
		UserID:     userID,
		ThreadID:   m.ThreadID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		Content:    m.Content,
		CreatedAt:  formatTime(m.CreatedAt),
	}
}

// MessageFromRecord rebuilds a message from storage
func MessageFromRecord(r database.MessageRecord) (content.Message, error) {
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return content.Message{}, fmt.Errorf("message %s: %w", r.ID, err)
	}
	return content.Message{
		ID:         r.ID,
		ThreadID:   r.ThreadID,
		SenderID:   r.SenderID,
		SenderName: r.SenderName,
		Content:    r.Content,
		CreatedAt:  created,
	}, nil
}

// EmailToRecord flattens an email owned by userID
func EmailToRecord(userID string, e content.Email) database.EmailRecord {
	return database.EmailRecord{
		ID:           e.ID,
		UserID:       userID,
		ThreadID:     e.ThreadID,
		FromAddress:  e.From,
		Subject:      e.Subject,
		Body:         e.Body,
		Participants: encodeList(e.Participants),
		IsRead:       boolToInt(e.IsRead),
		ReceivedAt:   formatTime(e.ReceivedAt),
	}
}

// EmailFromRecord rebuilds an email from storage
func EmailFromRecord(r database.EmailRecord) (content.Email, error) {
	participants, err := decodeList(r.Participants)
	if err != nil {
		return content.Email{}, fmt.Errorf("email %s: %w", r.ID, err)
	}
	received, err := parseTime(r.ReceivedAt)
	if err != nil {
		return content.Email{}, fmt.Errorf("email %s: %w", r.ID, err)
	}
	return content.Email{
		ID:           r.ID,
		ThreadID:     r.ThreadID,
		From:         r.FromAddress,
		Subject:      r.Subject,
		Body:         r.Body,
		Participants: participants,
		ReceivedAt:   received,
		IsRead:       r.IsRead != 0,
	}, nil
}

// NotificationToRecord flattens a notification for storage
func NotificationToRecord(n content.Notification) database.NotificationRecord {
	aiContext := ""
	if len(n.AIContext) > 0 {
		b, _ := json.Marshal(n.AIContext)
		aiContext = string(b)
	}
	return database.NotificationRecord{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Body:      n.Body,
		Type:      n.Type,
		Priority:  n.Priority,
		Read:      boolToInt(n.Read),
		AIContext: aiContext,
		ThreadID:  n.ThreadID,
		EmailID:   n.EmailID,
		CreatedAt: formatTime(n.CreatedAt),
	}
}

// NotificationFromRecord rebuilds a notification from storage
func NotificationFromRecord(r database.NotificationRecord) (content.Notification, error) {
	var aiContext map[string]string
	if r.AIContext != "" {
		if err := json.Unmarshal([]byte(r.AIContext), &aiContext); err != nil {
			return content.Notification{}, fmt.Errorf("notification %s: invalid ai_context: %w", r.ID, err)
		}
	}
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return content.Notification{}, fmt.Errorf("notification %s: %w", r.ID, err)
	}
	return content.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Body:      r.Body,
		Type:      r.Type,
		Priority:  r.Priority,
		Read:      r.Read != 0,
		AIContext: aiContext,
		ThreadID:  r.ThreadID,
		EmailID:   r.EmailID,
		CreatedAt: created,
	}, nil
}
