// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package service holds per-user insight state and the operations the
// MCP tools and the HTTP API expose.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tejzpr/thread-mcp/internal/ai"
	"github.com/tejzpr/thread-mcp/internal/compose"
	"github.com/tejzpr/thread-mcp/internal/config"
	"github.com/tejzpr/thread-mcp/internal/content"
	"github.com/tejzpr/thread-mcp/internal/inbox"
	"github.com/tejzpr/thread-mcp/internal/insights"
	"github.com/tejzpr/thread-mcp/internal/logging"
	"github.com/tejzpr/thread-mcp/internal/metrics"
	"github.com/tejzpr/thread-mcp/internal/notifications"
	"github.com/tejzpr/thread-mcp/internal/presenter"
	"github.com/tejzpr/thread-mcp/internal/store"
)

// ErrNoInsights is returned when no generation has ever completed for a user
var ErrNoInsights = errors.New("insights unavailable")

// Config wires a Service
type Config struct {
	Store          store.Store
	Completer      ai.Completer
	Options        insights.Options
	AITimeout      time.Duration
	PromptMessages int
	Navigator      presenter.Navigator
	Logger         logging.Logger
	Metrics        *metrics.Metrics
	Now            func() time.Time
}

// Service serves insights, connections, notifications, the inbox and
// reply suggestions for any number of users
type Service struct {
	store     store.Store
	generator *insights.Generator
	connector *insights.Connector
	assistant *compose.Assistant
	nav       presenter.Navigator
	logger    logging.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	mu    sync.Mutex
	users map[string]*userState
}

type userState struct {
	refresher *insights.Refresher
	board     *presenter.Board[insights.Insight]
	inbox     *presenter.Board[inbox.Entry]
	center    *notifications.Center
}

// InsightsView is a filtered page of the latest committed generation
type InsightsView struct {
	Insights    []insights.Insight      `json:"insights"`
	Source      insights.Source         `json:"source"`
	Fallback    insights.FallbackReason `json:"fallback,omitempty"`
	GeneratedAt time.Time               `json:"generated_at"`
	Generation  uint64                  `json:"generation"`
	Total       int                     `json:"total"`
}

// NotificationsView is the notification list of one user
type NotificationsView struct {
	Notifications []content.Notification `json:"notifications"`
	Unread        int                    `json:"unread"`
}

// New creates a service
func New(cfg Config) *Service {
	if cfg.Store == nil {
		cfg.Store = store.Unavailable{}
	}
	if cfg.Navigator == nil {
		cfg.Navigator = presenter.NopNavigator{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := logging.OrDiscard(cfg.Logger)

	return &Service{
		store: cfg.Store,
		generator: insights.NewGenerator(insights.GeneratorConfig{
			Options:        cfg.Options,
			Completer:      cfg.Completer,
			AITimeout:      cfg.AITimeout,
			PromptMessages: cfg.PromptMessages,
			Logger:         logger,
			Metrics:        cfg.Metrics,
		}),
		connector: insights.NewConnector(cfg.Options, nil),
		assistant: compose.NewAssistant(compose.Config{
			Completer: cfg.Completer,
			Timeout:   cfg.AITimeout,
			Context:   cfg.PromptMessages,
			Logger:    logger,
		}),
		nav:     cfg.Navigator,
		logger:  logger,
		metrics: cfg.Metrics,
		now:     cfg.Now,
		users:   make(map[string]*userState),
	}
}

// OptionsFromConfig maps the configured thresholds onto engine options
func OptionsFromConfig(c config.InsightsConfig) insights.Options {
	opts := insights.DefaultOptions()
	opts.ForgottenDays = c.ForgottenDays
	opts.StaleDays = c.StaleDays
	opts.TrendingWindow = time.Duration(c.TrendingWindowHours) * time.Hour
	opts.TrendingMinMessages = c.TrendingMinMessages
	opts.ActionWindowDays = c.ActionWindowDays
	opts.GapMin = c.GapMin
	opts.GapMax = c.GapMax
	opts.ConnectionMinShared = c.ConnectionMinShared
	opts.MinRelevance = c.MinRelevance
	opts.MaxConnections = c.MaxConnections
	if len(c.Vocabulary) > 0 {
		opts.Vocabulary = c.Vocabulary
	}
	opts.Confidence = insights.Confidence{
		ForgottenThread:       c.Confidence.ForgottenThread,
		TrendingTopic:         c.Confidence.TrendingTopic,
		ActionNeeded:          c.Confidence.ActionNeeded,
		KnowledgeGap:          c.Confidence.KnowledgeGap,
		ConnectionOpportunity: c.Confidence.ConnectionOpportunity,
	}
	return opts
}

func (s *Service) user(userID string) *userState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userID]; ok {
		return u
	}

	log := s.logger.WithField("user", userID)
	u := &userState{
		board: presenter.NewBoard[insights.Insight](s.nav, func(id string) {
			log.WithField("insight", id).Debug("insight dismissed")
		}),
		inbox:  presenter.NewBoard[inbox.Entry](s.nav, nil),
		center: notifications.NewCenter(userID, s.store, s.logger, s.metrics),
	}
	u.refresher = insights.NewRefresher(
		func(ctx context.Context) (insights.Result, error) {
			snap, err := s.Snapshot(ctx, userID)
			if err != nil {
				return insights.Result{}, err
			}
			return s.generator.Generate(ctx, snap), nil
		},
		func(res insights.Result) {
			u.board.Replace(res.Insights)
			log.WithFields(logging.Fields{
				"source":   string(res.Source),
				"fallback": string(res.Fallback),
				"count":    len(res.Insights),
			}).Info("insights refreshed")
		},
		s.logger,
		s.metrics,
	)
	s.users[userID] = u
	return u
}

// Users returns the users with live state, sorted
func (s *Service) Users() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.users))
	for id := range s.users {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Snapshot loads a user's threads, messages and emails concurrently
func (s *Service) Snapshot(ctx context.Context, userID string) (*content.Snapshot, error) {
	var (
		threads  []content.Thread
		messages []content.Message
		emails   []content.Email
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		threads, err = s.store.ListThreads(gctx, userID, store.ListOptions{})
		return err
	})
	g.Go(func() error {
		var err error
		messages, err = s.store.ListMessages(gctx, userID, store.ListOptions{})
		return err
	})
	g.Go(func() error {
		var err error
		emails, err = s.store.ListEmails(gctx, userID, store.ListOptions{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load content for %s: %w", userID, err)
	}

	return content.NewSnapshot(threads, messages, emails, s.now()), nil
}

// Refresh regenerates a user's insights and waits for the result. When
// another generation overtakes this one, Refresh waits for that instead.
func (s *Service) Refresh(ctx context.Context, userID string) (insights.Result, error) {
	u := s.user(userID)
	if res, ok := u.refresher.Refresh(ctx); ok {
		return res, nil
	}
	if res, ok := u.refresher.Await(ctx); ok {
		return res, nil
	}
	return insights.Result{}, fmt.Errorf("refresh for %s: %w", userID, ErrNoInsights)
}

// Trigger starts a background regeneration and returns its generation number
func (s *Service) Trigger(ctx context.Context, userID string) uint64 {
	return s.user(userID).refresher.Trigger(ctx)
}

// Insights returns the latest generation filtered for display. The first
// call for a user generates synchronously, and so does any call after the
// user's content ids changed. Entries pointing at deleted content are
// never returned.
func (s *Service) Insights(ctx context.Context, userID string, f presenter.Filter) (InsightsView, error) {
	u := s.user(userID)
	log := s.logger.WithField("user", userID)

	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		log.WithError(err).Warn("content unavailable, serving cached insights")
		snap = nil
	}

	res, ok := u.refresher.Latest()
	if !ok {
		if res, err = s.Refresh(ctx, userID); err != nil {
			return InsightsView{}, err
		}
	} else if snap != nil && snap.Fingerprint() != res.Fingerprint {
		log.Debug("content changed, regenerating insights")
		if fresh, err := s.Refresh(ctx, userID); err == nil {
			res = fresh
		}
	}

	list := u.board.View(f)
	total := u.board.Len()
	if snap != nil {
		list = insights.DropStale(list, snap)
		total = len(insights.DropStale(u.board.Items(), snap))
	}
	return InsightsView{
		Insights:    list,
		Source:      res.Source,
		Fallback:    res.Fallback,
		GeneratedAt: res.GeneratedAt,
		Generation:  u.refresher.Generation(),
		Total:       total,
	}, nil
}

// DismissInsight hides one insight until the next generation
func (s *Service) DismissInsight(userID, id string) error {
	return s.user(userID).board.Dismiss(id)
}

// OpenInsight navigates to what the insight references. An insight whose
// content has been deleted is treated as gone.
func (s *Service) OpenInsight(ctx context.Context, userID, id string) (presenter.Target, error) {
	u := s.user(userID)
	if ins, ok := u.board.Get(id); ok {
		snap, err := s.Snapshot(ctx, userID)
		if err == nil && len(insights.DropStale([]insights.Insight{ins}, snap)) == 0 {
			return presenter.Target{}, fmt.Errorf("open %s: content deleted: %w", id, presenter.ErrNotFound)
		}
	}
	return u.board.Click(ctx, id)
}

// Connections relates the active thread to the user's other content
func (s *Service) Connections(ctx context.Context, userID, threadID string) ([]insights.Connection, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.connector.Connect(snap, threadID), nil
}

// Notifications reloads and returns a user's notifications
func (s *Service) Notifications(ctx context.Context, userID string, unreadOnly bool) (NotificationsView, error) {
	c := s.user(userID).center
	list, err := c.Load(ctx)
	if err != nil {
		return NotificationsView{}, err
	}
	if unreadOnly {
		unread := make([]content.Notification, 0, len(list))
		for _, n := range list {
			if !n.Read {
				unread = append(unread, n)
			}
		}
		list = unread
	}
	return NotificationsView{Notifications: list, Unread: c.UnreadCount()}, nil
}

// MarkNotificationRead marks one notification read, loading the list first if needed
func (s *Service) MarkNotificationRead(ctx context.Context, userID, id string) (int, error) {
	c := s.user(userID).center
	if len(c.List()) == 0 {
		if _, err := c.Load(ctx); err != nil {
			return 0, err
		}
	}
	if !c.MarkRead(ctx, id) {
		return 0, fmt.Errorf("notification %s: %w", id, store.ErrNotFound)
	}
	return c.UnreadCount(), nil
}

// MarkAllNotificationsRead marks every notification read and returns how many changed
func (s *Service) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	c := s.user(userID).center
	if len(c.List()) == 0 {
		if _, err := c.Load(ctx); err != nil {
			return 0, err
		}
	}
	return c.MarkAllRead(ctx), nil
}

// Inbox rebuilds and returns the unified inbox
func (s *Service) Inbox(ctx context.Context, userID string, f presenter.Filter) ([]inbox.Entry, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	u := s.user(userID)
	u.inbox.Replace(inbox.Build(snap))
	return u.inbox.View(f), nil
}

// OpenInboxEntry navigates to the thread or email behind an inbox row
func (s *Service) OpenInboxEntry(ctx context.Context, userID, id string) (presenter.Target, error) {
	u := s.user(userID)
	if u.inbox.Len() == 0 {
		if _, err := s.Inbox(ctx, userID, presenter.Filter{}); err != nil {
			return presenter.Target{}, err
		}
	}
	return u.inbox.Click(ctx, id)
}

// SuggestReply proposes replies for a thread
func (s *Service) SuggestReply(ctx context.Context, userID, threadID string) (compose.Suggestions, error) {
	msgs, err := s.store.ListMessages(ctx, userID, store.ListOptions{
		Filter: map[string]any{"thread_id": threadID},
	})
	if err != nil {
		return compose.Suggestions{}, fmt.Errorf("failed to load thread %s: %w", threadID, err)
	}
	return s.assistant.Suggest(ctx, msgs), nil
}

// Close stops background refreshes
func (s *Service) Close() {
	s.mu.Lock()
	users := make([]*userState, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	s.mu.Unlock()

	for _, u := range users {
		u.refresher.Stop()
	}
}
