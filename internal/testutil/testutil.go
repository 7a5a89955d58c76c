// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the Relay project.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/relayhq/relay-go/internal/model"
	"github.com/relayhq/relay-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary test database with migrations applied.
// Returns the database and a cleanup function that should be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "relay-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}

// CreateCompany inserts a company row for tests.
func CreateCompany(t *testing.T, db *sql.DB, name string) store.Company {
	t.Helper()

	now := time.Now()
	company, err := store.New(db).CreateCompany(context.Background(), store.CreateCompanyParams{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      name,
		Status:    model.CompanyStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateCompany: %v", err)
	}
	return company
}

// CreateUser inserts an active user row for tests.
func CreateUser(t *testing.T, db *sql.DB, companyID, email, role string) store.User {
	t.Helper()

	now := time.Now()
	user, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Email:     email,
		Role:      role,
		Status:    model.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

// CreatePage inserts a page row for tests. Published pages also get a
// published_at timestamp.
func CreatePage(t *testing.T, db *sql.DB, companyID, createdBy, title, slug, status string) store.Page {
	t.Helper()

	ctx := context.Background()
	now := time.Now()
	queries := store.New(db)
	page, err := queries.CreatePage(ctx, store.CreatePageParams{
		ID:            uuid.NewString(),
		CompanyID:     companyID,
		Title:         title,
		Slug:          slug,
		Content:       `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"Hello"}]}]}`,
		SocialEnabled: "{}",
		Status:        model.PageStatusDraft,
		CreatedBy:     createdBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	switch status {
	case model.PageStatusPublished:
		page, err = queries.MarkPagePublished(ctx, store.MarkPagePublishedParams{
			ID:          page.ID,
			PublishedAt: now,
			UpdatedAt:   now,
		})
		if err != nil {
			t.Fatalf("MarkPagePublished: %v", err)
		}
	case model.PageStatusArchived:
		page, err = queries.UpdatePage(ctx, store.UpdatePageParams{
			ID:            page.ID,
			Title:         page.Title,
			Slug:          page.Slug,
			Content:       page.Content,
			SocialEnabled: page.SocialEnabled,
			Status:        model.PageStatusArchived,
			UpdatedAt:     now,
		})
		if err != nil {
			t.Fatalf("UpdatePage: %v", err)
		}
	}
	return page
}

// CreateGroup inserts a group row for tests.
func CreateGroup(t *testing.T, db *sql.DB, companyID, createdBy, name string) store.Group {
	t.Helper()

	now := time.Now()
	group, err := store.New(db).CreateGroup(context.Background(), store.CreateGroupParams{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Name:      name,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	return group
}

// AddGroupMember adds a user to a group for tests.
func AddGroupMember(t *testing.T, db *sql.DB, groupID, userID string) {
	t.Helper()

	if _, err := store.New(db).AddGroupMember(context.Background(), store.AddGroupMemberParams{
		GroupID:  groupID,
		UserID:   userID,
		JoinedAt: time.Now(),
	}); err != nil {
		t.Fatalf("AddGroupMember: %v", err)
	}
}

// Publish creates an 'all' publication for a page and marks it published.
func Publish(t *testing.T, db *sql.DB, pageID, createdBy string) store.Publication {
	t.Helper()

	ctx := context.Background()
	now := time.Now()
	queries := store.New(db)
	pub, err := queries.CreatePublication(ctx, store.CreatePublicationParams{
		ID:          uuid.NewString(),
		PageID:      pageID,
		PublishedBy: createdBy,
		TargetType:  model.TargetAll,
		PublishedAt: now,
	})
	if err != nil {
		t.Fatalf("CreatePublication: %v", err)
	}
	if _, err := queries.MarkPagePublished(ctx, store.MarkPagePublishedParams{
		ID:          pageID,
		PublishedAt: now,
		UpdatedAt:   now,
	}); err != nil {
		t.Fatalf("MarkPagePublished: %v", err)
	}
	return pub
}
