// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package demo provides the fixed workspace shown when no backend is reachable.
package demo

import (
	"embed"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tejzpr/thread-mcp/internal/content"
)

//go:embed fixtures.yaml
var embeddedFS embed.FS

// UserID owns the demo data until it is assigned to a real user
const UserID = "demo"

type threadSpec struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Kind         string   `yaml:"kind"`
	Participants []string `yaml:"participants"`
	Private      bool     `yaml:"private"`
	CreatedHours float64  `yaml:"created_hours_ago"`
	UpdatedHours float64  `yaml:"updated_hours_ago"`
}

type messageSpec struct {
	ID         string  `yaml:"id"`
	Thread     string  `yaml:"thread"`
	Sender     string  `yaml:"sender"`
	SenderName string  `yaml:"sender_name"`
	Content    string  `yaml:"content"`
	Hours      float64 `yaml:"hours_ago"`
}

type emailSpec struct {
	ID           string   `yaml:"id"`
	Thread       string   `yaml:"thread"`
	From         string   `yaml:"from"`
	Subject      string   `yaml:"subject"`
	Body         string   `yaml:"body"`
	Participants []string `yaml:"participants"`
	Hours        float64  `yaml:"hours_ago"`
	Read         bool     `yaml:"read"`
}

type notificationSpec struct {
	ID        string            `yaml:"id"`
	Title     string            `yaml:"title"`
	Body      string            `yaml:"body"`
	Type      string            `yaml:"type"`
	Priority  string            `yaml:"priority"`
	Thread    string            `yaml:"thread"`
	Email     string            `yaml:"email"`
	Hours     float64           `yaml:"hours_ago"`
	Read      bool              `yaml:"read"`
	AIContext map[string]string `yaml:"ai_context"`
}

type fixtures struct {
	Threads       []threadSpec       `yaml:"threads"`
	Messages      []messageSpec      `yaml:"messages"`
	Emails        []emailSpec        `yaml:"emails"`
	Notifications []notificationSpec `yaml:"notifications"`
}

// Dataset is the materialised demo workspace
type Dataset struct {
	Threads       []content.Thread
	Messages      []content.Message
	Emails        []content.Email
	Notifications []content.Notification
}

// Snapshot wraps the dataset content for the insight engine
func (d Dataset) Snapshot(now time.Time) *content.Snapshot {
	return content.NewSnapshot(d.Threads, d.Messages, d.Emails, now)
}

// ForUser returns a copy owned by userID
func (d Dataset) ForUser(userID string) Dataset {
	out := Dataset{
		Threads:       append([]content.Thread(nil), d.Threads...),
		Messages:      append([]content.Message(nil), d.Messages...),
		Emails:        append([]content.Email(nil), d.Emails...),
		Notifications: append([]content.Notification(nil), d.Notifications...),
	}
	for i := range out.Threads {
		out.Threads[i].UserID = userID
	}
	for i := range out.Notifications {
		out.Notifications[i].UserID = userID
	}
	return out
}

func loadFixtures() (fixtures, error) {
	var f fixtures
	b, err := fs.ReadFile(embeddedFS, "fixtures.yaml")
	if err != nil {
		return f, fmt.Errorf("failed to read demo fixtures: %w", err)
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("failed to parse demo fixtures: %w", err)
	}
	return f, nil
}

func hoursBefore(now time.Time, h float64) time.Time {
	return now.Add(-time.Duration(h * float64(time.Hour)))
}

// Load materialises the fixtures relative to now
func Load(now time.Time) (Dataset, error) {
	f, err := loadFixtures()
	if err != nil {
		return Dataset{}, err
	}

	var d Dataset
	for _, t := range f.Threads {
		d.Threads = append(d.Threads, content.Thread{
			ID:           t.ID,
			UserID:       UserID,
			Name:         t.Name,
			Kind:         content.ThreadKind(t.Kind),
			Participants: t.Participants,
			IsPrivate:    t.Private,
			CreatedAt:    hoursBefore(now, t.CreatedHours),
			UpdatedAt:    hoursBefore(now, t.UpdatedHours),
		})
	}
	for _, m := range f.Messages {
		d.Messages = append(d.Messages, content.Message{
			ID:         m.ID,
			ThreadID:   m.Thread,
			SenderID:   m.Sender,
			SenderName: m.SenderName,
			Content:    m.Content,
			CreatedAt:  hoursBefore(now, m.Hours),
		})
	}
	for _, e := range f.Emails {
		d.Emails = append(d.Emails, content.Email{
			ID:           e.ID,
			ThreadID:     e.Thread,
			From:         e.From,
			Subject:      e.Subject,
			Body:         e.Body,
			Participants: e.Participants,
			ReceivedAt:   hoursBefore(now, e.Hours),
			IsRead:       e.Read,
		})
	}
	for _, n := range f.Notifications {
		d.Notifications = append(d.Notifications, content.Notification{
			ID:        n.ID,
			UserID:    UserID,
			Title:     n.Title,
			Body:      n.Body,
			Type:      n.Type,
			Priority:  n.Priority,
			Read:      n.Read,
			AIContext: n.AIContext,
			ThreadID:  n.Thread,
			EmailID:   n.Email,
			CreatedAt: hoursBefore(now, n.Hours),
		})
	}
	return d, nil
}

// MustLoad is Load for the embedded fixtures, which are known to parse
func MustLoad(now time.Time) Dataset {
	d, err := Load(now)
	if err != nil {
		panic(err)
	}
	return d
}
