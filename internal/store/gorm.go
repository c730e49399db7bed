// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tejzpr/thread-mcp/internal/content"
	"github.com/tejzpr/thread-mcp/internal/database"
)

// collection describes the queryable columns of one table
type collection struct {
	name         string
	columns      map[string]bool
	boolColumns  map[string]bool
	defaultOrder string
	defaultDesc  bool
}

func columnSet(cols ...string) map[string]bool {
	set := make(map[string]bool, len(cols))
	for _, c := range cols {
		set[c] = true
	}
	return set
}

var (
	threadsCollection = collection{
		name:         "threads",
		columns:      columnSet("id", "name", "type", "is_private", "created_at", "updated_at"),
		boolColumns:  columnSet("is_private"),
		defaultOrder: "updated_at",
		defaultDesc:  true,
	}
	messagesCollection = collection{
		name:         "messages",
		columns:      columnSet("id", "thread_id", "sender_id", "created_at"),
		defaultOrder: "created_at",
	}
	emailsCollection = collection{
		name:         "emails",
		columns:      columnSet("id", "thread_id", "from_address", "is_read", "received_at"),
		boolColumns:  columnSet("is_read"),
		defaultOrder: "received_at",
		defaultDesc:  true,
	}
	notificationsCollection = collection{
		name:         "notifications",
		columns:      columnSet("id", "type", "priority", "read", "thread_id", "email_id", "created_at"),
		boolColumns:  columnSet("read"),
		defaultOrder: "created_at",
		defaultDesc:  true,
	}
)

// GormStore implements Store over the gorm database records
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store over an already migrated database
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB returns the underlying database handle
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) query(ctx context.Context, c collection, userID string, opts ListOptions) (*gorm.DB, error) {
	q := s.db.WithContext(ctx).Where(clause.Eq{Column: clause.Column{Name: "user_id"}, Value: userID})

	for col, val := range opts.Filter {
		if !c.columns[col] {
			return nil, fmt.Errorf("%w: %s has no filterable column %q", ErrInvalidQuery, c.name, col)
		}
		if b, ok := val.(bool); ok && c.boolColumns[col] {
			val = boolToInt(b)
		}
		q = q.Where(clause.Eq{Column: clause.Column{Name: col}, Value: val})
	}

	order := opts.OrderBy
	desc := opts.Descending
	if order == "" {
		order = c.defaultOrder
		desc = c.defaultDesc
	}
	if !c.columns[order] {
		return nil, fmt.Errorf("%w: %s cannot be ordered by %q", ErrInvalidQuery, c.name, order)
	}
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: order}, Desc: desc})

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	return q, nil
}

func (s *GormStore) ListThreads(ctx context.Context, userID string, opts ListOptions) ([]content.Thread, error) {
	q, err := s.query(ctx, threadsCollection, userID, opts)
	if err != nil {
		return nil, err
	}
	var records []database.ThreadRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	out := make([]content.Thread, 0, len(records))
	for _, r := range records {
		t, err := ThreadFromRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *GormStore) ListMessages(ctx context.Context, userID string, opts ListOptions) ([]content.Message, error) {
	q, err := s.query(ctx, messagesCollection, userID, opts)
	if err != nil {
		return nil, err
	}
	var records []database.MessageRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	out := make([]content.Message, 0, len(records))
	for _, r := range records {
		m, err := MessageFromRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *GormStore) ListEmails(ctx context.Context, userID string, opts ListOptions) ([]content.Email, error) {
	q, err := s.query(ctx, emailsCollection, userID, opts)
	if err != nil {
		return nil, err
	}
	var records []database.EmailRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	out := make([]content.Email, 0, len(records))
	for _, r := range records {
		e, err := EmailFromRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *GormStore) ListNotifications(ctx context.Context, userID string, opts ListOptions) ([]content.Notification, error) {
	q, err := s.query(ctx, notificationsCollection, userID, opts)
	if err != nil {
		return nil, err
	}
	var records []database.NotificationRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	out := make([]content.Notification, 0, len(records))
	for _, r := range records {
		n, err := NotificationFromRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *GormStore) UpdateNotification(ctx context.Context, userID, id string, patch NotificationPatch) error {
	updates := map[string]any{}
	if patch.Read != nil {
		updates["read"] = boolToInt(*patch.Read)
	}
	if len(updates) == 0 {
		return nil
	}

	result := s.db.WithContext(ctx).
		Model(&database.NotificationRecord{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}

// Dataset is a batch of content to import for one user
type Dataset struct {
	Threads       []content.Thread
	Messages      []content.Message
	Emails        []content.Email
	Notifications []content.Notification
}

// Import upserts a dataset for userID in one transaction
func (s *GormStore) Import(ctx context.Context, userID string, d Dataset) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := func(rec any) error {
			return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(rec).Error
		}
		for _, t := range d.Threads {
			t.UserID = userID
			rec := ThreadToRecord(t)
			if err := upsert(&rec); err != nil {
				return fmt.Errorf("failed to import thread %s: %w", t.ID, err)
			}
		}
		for _, m := range d.Messages {
			rec := MessageToRecord(userID, m)
			if err := upsert(&rec); err != nil {
				return fmt.Errorf("failed to import message %s: %w", m.ID, err)
			}
		}
		for _, e := range d.Emails {
			rec := EmailToRecord(userID, e)
			if err := upsert(&rec); err != nil {
				return fmt.Errorf("failed to import email %s: %w", e.ID, err)
			}
		}
		for _, n := range d.Notifications {
			n.UserID = userID
			rec := NotificationToRecord(n)
			if err := upsert(&rec); err != nil {
				return fmt.Errorf("failed to import notification %s: %w", n.ID, err)
			}
		}
		return nil
	})
}
