// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package notify queues publication notifications for asynchronous delivery.
// Delivery channels (email, push) are pluggable; the default sender records
// the notification in the log only.
package notify

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"

	"github.com/relayhq/relay-go/internal/store"
)

// Notification is one queued delivery for a single recipient.
type Notification struct {
	PublicationID string
	PageID        string
	PageTitle     string
	RecipientID   string
	Email         bool
	Push          bool
}

// Sender delivers a single notification over its channels.
type Sender interface {
	Send(ctx context.Context, n *Notification) error
}

// Config holds dispatcher configuration.
type Config struct {
	Workers int // Number of concurrent delivery workers
}

// DefaultConfig returns default dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		Workers: 3,
	}
}

// Dispatcher fans queued notifications out to delivery workers.
type Dispatcher struct {
	db      *sql.DB
	queries *store.Queries
	logger  *slog.Logger
	sender  Sender
	queue   chan *Notification
	workers int
	wg      sync.WaitGroup
	done    chan struct{}
	mu      sync.RWMutex
	running bool
}

// NewDispatcher creates a new notification dispatcher.
func NewDispatcher(db *sql.DB, logger *slog.Logger, cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		db:      db,
		queries: store.New(db),
		logger:  logger,
		sender:  &logSender{logger: logger},
		queue:   make(chan *Notification, 100),
		workers: cfg.Workers,
		done:    make(chan struct{}),
	}
}

// SetSender replaces the delivery backend. Must be called before Start.
func (d *Dispatcher) SetSender(s Sender) {
	d.sender = s
}

// Start starts the dispatcher workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.logger.Info("starting notification dispatcher", "workers", d.workers)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

// Stop stops the dispatcher and waits for workers to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	d.logger.Info("stopping notification dispatcher")
	close(d.done)
	d.wg.Wait()
	d.logger.Info("notification dispatcher stopped")
}

// worker processes queued notifications.
func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	d.logger.Debug("notification worker started", "worker_id", id)

	for {
		select {
		case <-d.done:
			d.logger.Debug("notification worker stopping", "worker_id", id)
			return
		case <-ctx.Done():
			d.logger.Debug("notification worker context cancelled", "worker_id", id)
			return
		case n := <-d.queue:
			if err := d.sender.Send(ctx, n); err != nil {
				d.logger.Error("notification delivery failed",
					"error", err,
					"publication_id", n.PublicationID,
					"recipient_id", n.RecipientID)
			}
		}
	}
}

// DispatchPublication resolves the publication's recipients and queues one
// notification per recipient. It never fails the publish itself: resolution
// errors are logged and swallowed.
func (d *Dispatcher) DispatchPublication(ctx context.Context, pub store.Publication, pageTitle string) {
	d.mu.RLock()
	running := d.running
	d.mu.RUnlock()

	if !running {
		d.logger.Warn("dispatcher not running, cannot dispatch publication", "publication_id", pub.ID)
		return
	}

	if pub.NotifyEmail == 0 && pub.NotifyPush == 0 {
		return
	}

	recipients, err := d.resolveRecipients(ctx, pub)
	if err != nil {
		d.logger.Error("failed to resolve notification recipients",
			"error", err, "publication_id", pub.ID)
		return
	}

	for _, userID := range recipients {
		n := &Notification{
			PublicationID: pub.ID,
			PageID:        pub.PageID,
			PageTitle:     pageTitle,
			RecipientID:   userID,
			Email:         pub.NotifyEmail != 0,
			Push:          pub.NotifyPush != 0,
		}

		select {
		case d.queue <- n:
			d.logger.Debug("notification queued",
				"publication_id", pub.ID, "recipient_id", userID)
		default:
			d.logger.Warn("notification queue full, dropping notification",
				"publication_id", pub.ID, "recipient_id", userID)
		}
	}
}

// resolveRecipients expands the publication's targets to active user IDs.
func (d *Dispatcher) resolveRecipients(ctx context.Context, pub store.Publication) ([]string, error) {
	page, err := d.queries.GetPageByID(ctx, pub.PageID)
	if err != nil {
		return nil, err
	}

	if pub.TargetType == "all" {
		return d.queries.ListActiveUserIDsByCompany(ctx, page.CompanyID)
	}

	targets, err := d.queries.ListTargetsByPublication(ctx, pub.ID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var recipients []string
	add := func(ids []string) {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			recipients = append(recipients, id)
		}
	}

	var groupIDs []string
	for _, t := range targets {
		switch t.TargetType {
		case "contacts":
			add([]string{t.TargetID})
		case "groups":
			groupIDs = append(groupIDs, t.TargetID)
		}
	}

	if len(groupIDs) > 0 {
		ids, err := d.queries.ListActiveUserIDsInGroups(ctx, groupIDs)
		if err != nil {
			return nil, err
		}
		add(ids)
	}

	return recipients, nil
}

// logSender is the default delivery backend. It writes the notification to
// the log and delivers nothing.
type logSender struct {
	logger *slog.Logger
}

func (s *logSender) Send(_ context.Context, n *Notification) error {
	s.logger.Info("notification delivered",
		"publication_id", n.PublicationID,
		"page_id", n.PageID,
		"recipient_id", n.RecipientID,
		"email", n.Email,
		"push", n.Push)
	return nil
}
