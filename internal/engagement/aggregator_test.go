// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package engagement

import (
	"context"
	"strings"
	"testing"

	"github.com/relayhq/relay-go/internal/apperr"
	"github.com/relayhq/relay-go/internal/identity"
	"github.com/relayhq/relay-go/internal/model"
	"github.com/relayhq/relay-go/internal/store"
	"github.com/relayhq/relay-go/internal/testutil"
)

func TestDeviceClass(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		want      string
	}{
		{
			name:      "iphone",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			want:      "mobile",
		},
		{
			name:      "ipad",
			userAgent: "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1",
			want:      "tablet",
		},
		{
			name:      "desktop chrome",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			want:      "desktop",
		},
		{
			name:      "googlebot",
			userAgent: "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			want:      "bot",
		},
		{
			name:      "empty",
			userAgent: "",
			want:      "unknown",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeviceClass(tt.userAgent); got != tt.want {
				t.Errorf("DeviceClass(%q) = %q, want %q", tt.userAgent, got, tt.want)
			}
		})
	}
}

func TestRecordView(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "viewco")
	editorRow := testutil.CreateUser(t, db, company.ID, "editor@v.co", model.RoleEditor)
	employeeRow := testutil.CreateUser(t, db, company.ID, "emp@v.co", model.RoleEmployee)
	page := testutil.CreatePage(t, db, company.ID, editorRow.ID, "Viewed", "viewed", model.PageStatusPublished)
	draft := testutil.CreatePage(t, db, company.ID, editorRow.ID, "Draft", "draft", model.PageStatusDraft)

	agg := NewAggregator(db, testutil.TestLogger())
	employee := identity.UserFromRow(employeeRow)

	duration := int64(42)
	if err := agg.RecordView(ctx, employee, page.ID, &duration, "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0"); err != nil {
		t.Fatalf("RecordView: %v", err)
	}

	negative := int64(-1)
	err := agg.RecordView(ctx, employee, page.ID, &negative, "")
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("negative duration: kind = %v, want KindValidation", apperr.KindOf(err))
	}

	err = agg.RecordView(ctx, employee, draft.ID, nil, "")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("draft page: kind = %v, want KindNotFound", apperr.KindOf(err))
	}

	stats, err := agg.StatsFor(ctx, page.ID)
	if err != nil {
		t.Fatalf("StatsFor: %v", err)
	}
	if stats.TotalViews != 1 {
		t.Errorf("TotalViews = %d, want 1", stats.TotalViews)
	}
	if stats.Devices["desktop"] != 1 {
		t.Errorf("Devices = %v, want one desktop view", stats.Devices)
	}
}

func TestSetReaction_SocialGate(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "gateco")
	editorRow := testutil.CreateUser(t, db, company.ID, "editor@ga.co", model.RoleEditor)
	employeeRow := testutil.CreateUser(t, db, company.ID, "emp@ga.co", model.RoleEmployee)
	page := testutil.CreatePage(t, db, company.ID, editorRow.ID, "Locked", "locked", model.PageStatusPublished)

	// Disable reactions on the page.
	q := store.New(db)
	if _, err := q.UpdatePage(ctx, store.UpdatePageParams{
		ID:            page.ID,
		Title:         page.Title,
		Slug:          page.Slug,
		Content:       page.Content,
		SocialEnabled: `{"reactions":false,"comments":true,"share":true}`,
		Status:        page.Status,
		UpdatedAt:     page.UpdatedAt,
	}); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}

	agg := NewAggregator(db, testutil.TestLogger())
	employee := identity.UserFromRow(employeeRow)

	_, err := agg.SetReaction(ctx, employee, page.ID, model.ReactionLike)
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("kind = %v, want KindForbidden", apperr.KindOf(err))
	}

	// Comments stay enabled.
	if _, err := agg.AddComment(ctx, employee, page.ID, "still works"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
}

func TestSetReaction_ReplacesPrevious(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "reactco")
	editorRow := testutil.CreateUser(t, db, company.ID, "editor@r.co", model.RoleEditor)
	employeeRow := testutil.CreateUser(t, db, company.ID, "emp@r.co", model.RoleEmployee)
	page := testutil.CreatePage(t, db, company.ID, editorRow.ID, "React", "react", model.PageStatusPublished)

	agg := NewAggregator(db, testutil.TestLogger())
	employee := identity.UserFromRow(employeeRow)

	if _, err := agg.SetReaction(ctx, employee, page.ID, model.ReactionLike); err != nil {
		t.Fatalf("SetReaction: %v", err)
	}
	if _, err := agg.SetReaction(ctx, employee, page.ID, model.ReactionLove); err != nil {
		t.Fatalf("SetReaction (replace): %v", err)
	}

	_, err := agg.SetReaction(ctx, employee, page.ID, "angry")
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("invalid reaction type: kind = %v, want KindValidation", apperr.KindOf(err))
	}

	stats, err := agg.StatsFor(ctx, page.ID)
	if err != nil {
		t.Fatalf("StatsFor: %v", err)
	}
	if stats.Reactions != 1 {
		t.Errorf("Reactions = %d, want 1", stats.Reactions)
	}
	if stats.ReactionTypes[model.ReactionLove] != 1 || stats.ReactionTypes[model.ReactionLike] != 0 {
		t.Errorf("ReactionTypes = %v, want single love", stats.ReactionTypes)
	}

	if err := agg.RemoveReaction(ctx, employee, page.ID); err != nil {
		t.Fatalf("RemoveReaction: %v", err)
	}
	stats, err = agg.StatsFor(ctx, page.ID)
	if err != nil {
		t.Fatalf("StatsFor: %v", err)
	}
	if stats.Reactions != 0 {
		t.Errorf("Reactions after removal = %d, want 0", stats.Reactions)
	}
}

func TestAddComment(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "commentco")
	editorRow := testutil.CreateUser(t, db, company.ID, "editor@c.co", model.RoleEditor)
	employeeRow := testutil.CreateUser(t, db, company.ID, "emp@c.co", model.RoleEmployee)
	page := testutil.CreatePage(t, db, company.ID, editorRow.ID, "Discussed", "discussed", model.PageStatusPublished)

	agg := NewAggregator(db, testutil.TestLogger())
	employee := identity.UserFromRow(employeeRow)

	if _, err := agg.AddComment(ctx, employee, page.ID, "<script>alert(1)</script>Nice post"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	_, err := agg.AddComment(ctx, employee, page.ID, "   ")
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("blank comment: kind = %v, want KindValidation", apperr.KindOf(err))
	}

	_, err = agg.AddComment(ctx, employee, page.ID, strings.Repeat("a", model.MaxCommentLength+1))
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("oversized comment: kind = %v, want KindValidation", apperr.KindOf(err))
	}

	// Markup counts toward the bound even though it is stripped from the
	// stored text.
	markupHeavy := strings.Repeat("<b>x</b>", (model.MaxCommentLength/8)+1)
	_, err = agg.AddComment(ctx, employee, page.ID, markupHeavy)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("oversized markup comment: kind = %v, want KindValidation", apperr.KindOf(err))
	}

	comments, err := agg.Comments(ctx, employee, page.ID, 50, 0)
	if err != nil {
		t.Fatalf("Comments: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("len(comments) = %d, want 1", len(comments))
	}
	if strings.Contains(comments[0].Text, "<script>") {
		t.Errorf("comment text not sanitized: %q", comments[0].Text)
	}
	if !strings.Contains(comments[0].Text, "Nice post") {
		t.Errorf("comment text lost content: %q", comments[0].Text)
	}
	if comments[0].AuthorName != "emp@c.co" {
		t.Errorf("AuthorName = %q, want email fallback", comments[0].AuthorName)
	}
}

func TestSanitizeComment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text passes", "hello world", "hello world"},
		{"tags stripped", "<b>bold</b> move", "bold move"},
		{"script dropped", "<script>x()</script>ok", "ok"},
		{"whitespace trimmed", "  spaced  ", "spaced"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeComment(tt.in); got != tt.want {
				t.Errorf("SanitizeComment(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildFeed(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "feedco")
	editorRow := testutil.CreateUser(t, db, company.ID, "editor@f.co", model.RoleEditor)
	employeeRow := testutil.CreateUser(t, db, company.ID, "emp@f.co", model.RoleEmployee)
	seen := testutil.CreatePage(t, db, company.ID, editorRow.ID, "Seen", "seen", model.PageStatusPublished)
	unseen := testutil.CreatePage(t, db, company.ID, editorRow.ID, "Unseen", "unseen", model.PageStatusPublished)

	agg := NewAggregator(db, testutil.TestLogger())
	employee := identity.UserFromRow(employeeRow)

	if err := agg.RecordView(ctx, employee, seen.ID, nil, ""); err != nil {
		t.Fatalf("RecordView: %v", err)
	}
	if _, err := agg.SetReaction(ctx, employee, seen.ID, model.ReactionLike); err != nil {
		t.Fatalf("SetReaction: %v", err)
	}

	items, err := agg.BuildFeed(ctx, employee, []store.Page{seen, unseen})
	if err != nil {
		t.Fatalf("BuildFeed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if !items[0].Viewed {
		t.Error("items[0].Viewed = false, want true")
	}
	if items[0].Reactions != 1 {
		t.Errorf("items[0].Reactions = %d, want 1", items[0].Reactions)
	}
	if items[0].MyReaction != model.ReactionLike {
		t.Errorf("items[0].MyReaction = %q, want %q", items[0].MyReaction, model.ReactionLike)
	}
	if items[0].UniqueViewers != 1 {
		t.Errorf("items[0].UniqueViewers = %d, want 1", items[0].UniqueViewers)
	}
	if items[1].Viewed {
		t.Error("items[1].Viewed = true, want false")
	}
	if items[1].MyReaction != "" {
		t.Errorf("items[1].MyReaction = %q, want empty", items[1].MyReaction)
	}
	if items[1].UniqueViewers != 0 {
		t.Errorf("items[1].UniqueViewers = %d, want 0", items[1].UniqueViewers)
	}
	if items[0].Preview != "Hello" {
		t.Errorf("Preview = %q, want %q", items[0].Preview, "Hello")
	}
}
