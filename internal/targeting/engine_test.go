// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package targeting

import (
	"context"
	"testing"

	"github.com/relayhq/relay-go/internal/apperr"
	"github.com/relayhq/relay-go/internal/identity"
	"github.com/relayhq/relay-go/internal/membership"
	"github.com/relayhq/relay-go/internal/model"
	"github.com/relayhq/relay-go/internal/testutil"
)

func TestPublish_Broadcast(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "pubco")
	editorRow := testutil.CreateUser(t, db, company.ID, "editor@p.co", model.RoleEditor)
	employeeRow := testutil.CreateUser(t, db, company.ID, "emp@p.co", model.RoleEmployee)
	page := testutil.CreatePage(t, db, company.ID, editorRow.ID, "News", "news", model.PageStatusDraft)

	logger := testutil.TestLogger()
	engine := NewEngine(db, membership.NewIndex(db, logger), logger)
	editor := identity.UserFromRow(editorRow)
	employee := identity.UserFromRow(employeeRow)

	pub, err := engine.Publish(ctx, editor, PublishRequest{
		PageID:     page.ID,
		TargetType: model.TargetAll,
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if pub.TargetType != model.TargetAll {
		t.Errorf("TargetType = %q, want %q", pub.TargetType, model.TargetAll)
	}

	ok, err := engine.Authorized(ctx, employee, page.ID)
	if err != nil {
		t.Fatalf("Authorized: %v", err)
	}
	if !ok {
		t.Error("employee not authorized after broadcast publish")
	}
}

func TestPublish_RestampsPublishedAt(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "stampco")
	editorRow := testutil.CreateUser(t, db, company.ID, "editor@st.co", model.RoleEditor)
	page := testutil.CreatePage(t, db, company.ID, editorRow.ID, "Stamped", "stamped", model.PageStatusPublished)
	firstPublishedAt := page.PublishedAt.Time

	logger := testutil.TestLogger()
	engine := NewEngine(db, membership.NewIndex(db, logger), logger)
	editor := identity.UserFromRow(editorRow)

	if _, err := engine.Publish(ctx, editor, PublishRequest{
		PageID:     page.ID,
		TargetType: model.TargetAll,
	}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	pubs, err := engine.Publications(ctx, page.ID)
	if err != nil {
		t.Fatalf("Publications: %v", err)
	}
	if len(pubs) != 1 {
		t.Fatalf("len(pubs) = %d, want 1", len(pubs))
	}
	if !pubs[0].Publication.PublishedAt.After(firstPublishedAt) {
		t.Errorf("republish did not restamp: %v not after %v",
			pubs[0].Publication.PublishedAt, firstPublishedAt)
	}
}

func TestPublish_Validation(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "valco")
	other := testutil.CreateCompany(t, db, "otherco")
	editorRow := testutil.CreateUser(t, db, company.ID, "editor@v.co", model.RoleEditor)
	employeeRow := testutil.CreateUser(t, db, company.ID, "emp@v.co", model.RoleEmployee)
	strangerRow := testutil.CreateUser(t, db, other.ID, "stranger@o.co", model.RoleEmployee)
	page := testutil.CreatePage(t, db, company.ID, editorRow.ID, "Guard", "guard", model.PageStatusDraft)
	foreignPage := testutil.CreatePage(t, db, other.ID, strangerRow.ID, "Foreign", "foreign", model.PageStatusDraft)
	group := testutil.CreateGroup(t, db, company.ID, editorRow.ID, "Ops")
	foreignGroup := testutil.CreateGroup(t, db, other.ID, strangerRow.ID, "Theirs")

	logger := testutil.TestLogger()
	engine := NewEngine(db, membership.NewIndex(db, logger), logger)
	editor := identity.UserFromRow(editorRow)

	tests := []struct {
		name string
		user *model.User
		req  PublishRequest
		kind apperr.Kind
	}{
		{
			name: "employee cannot publish",
			user: identity.UserFromRow(employeeRow),
			req:  PublishRequest{PageID: page.ID, TargetType: model.TargetAll},
			kind: apperr.KindForbidden,
		},
		{
			name: "invalid target type",
			user: editor,
			req:  PublishRequest{PageID: page.ID, TargetType: "everyone"},
			kind: apperr.KindValidation,
		},
		{
			name: "targeted publish needs target ids",
			user: editor,
			req:  PublishRequest{PageID: page.ID, TargetType: model.TargetGroups},
			kind: apperr.KindValidation,
		},
		{
			name: "broadcast must not carry target ids",
			user: editor,
			req:  PublishRequest{PageID: page.ID, TargetType: model.TargetAll, TargetIDs: []string{group.ID}},
			kind: apperr.KindValidation,
		},
		{
			name: "page of another company is invisible",
			user: editor,
			req:  PublishRequest{PageID: foreignPage.ID, TargetType: model.TargetAll},
			kind: apperr.KindNotFound,
		},
		{
			name: "unknown group",
			user: editor,
			req:  PublishRequest{PageID: page.ID, TargetType: model.TargetGroups, TargetIDs: []string{"missing"}},
			kind: apperr.KindValidation,
		},
		{
			name: "group of another company",
			user: editor,
			req:  PublishRequest{PageID: page.ID, TargetType: model.TargetGroups, TargetIDs: []string{foreignGroup.ID}},
			kind: apperr.KindValidation,
		},
		{
			name: "contact of another company",
			user: editor,
			req:  PublishRequest{PageID: page.ID, TargetType: model.TargetContacts, TargetIDs: []string{strangerRow.ID}},
			kind: apperr.KindValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Publish(ctx, tt.user, tt.req)
			if apperr.KindOf(err) != tt.kind {
				t.Errorf("kind = %v, want %v (err: %v)", apperr.KindOf(err), tt.kind, err)
			}
		})
	}
}

func TestAuthorized_GroupTargeting(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "groupco")
	editorRow := testutil.CreateUser(t, db, company.ID, "editor@g.co", model.RoleEditor)
	memberRow := testutil.CreateUser(t, db, company.ID, "member@g.co", model.RoleEmployee)
	outsiderRow := testutil.CreateUser(t, db, company.ID, "outsider@g.co", model.RoleEmployee)
	page := testutil.CreatePage(t, db, company.ID, editorRow.ID, "Team News", "team-news", model.PageStatusDraft)
	group := testutil.CreateGroup(t, db, company.ID, editorRow.ID, "Team")
	testutil.AddGroupMember(t, db, group.ID, memberRow.ID)

	logger := testutil.TestLogger()
	engine := NewEngine(db, membership.NewIndex(db, logger), logger)

	if _, err := engine.Publish(ctx, identity.UserFromRow(editorRow), PublishRequest{
		PageID:     page.ID,
		TargetType: model.TargetGroups,
		TargetIDs:  []string{group.ID},
	}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	ok, err := engine.Authorized(ctx, identity.UserFromRow(memberRow), page.ID)
	if err != nil {
		t.Fatalf("Authorized (member): %v", err)
	}
	if !ok {
		t.Error("group member not authorized")
	}

	// A user with no group memberships must not match a group-targeted page.
	ok, err = engine.Authorized(ctx, identity.UserFromRow(outsiderRow), page.ID)
	if err != nil {
		t.Fatalf("Authorized (outsider): %v", err)
	}
	if ok {
		t.Error("user without memberships authorized for group-targeted page")
	}
}

func TestAuthorized_DraftAndForeignPages(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "invisco")
	other := testutil.CreateCompany(t, db, "elsewhereco")
	editorRow := testutil.CreateUser(t, db, company.ID, "editor@i.co", model.RoleEditor)
	employeeRow := testutil.CreateUser(t, db, company.ID, "emp@i.co", model.RoleEmployee)
	otherEditorRow := testutil.CreateUser(t, db, other.ID, "editor@e.co", model.RoleEditor)

	draft := testutil.CreatePage(t, db, company.ID, editorRow.ID, "Draft", "draft", model.PageStatusDraft)
	foreign := testutil.CreatePage(t, db, other.ID, otherEditorRow.ID, "Foreign", "foreign", model.PageStatusPublished)

	logger := testutil.TestLogger()
	engine := NewEngine(db, membership.NewIndex(db, logger), logger)
	employee := identity.UserFromRow(employeeRow)

	ok, err := engine.Authorized(ctx, employee, draft.ID)
	if err != nil {
		t.Fatalf("Authorized (draft): %v", err)
	}
	if ok {
		t.Error("draft page authorized")
	}

	ok, err = engine.Authorized(ctx, employee, foreign.ID)
	if err != nil {
		t.Fatalf("Authorized (foreign): %v", err)
	}
	if ok {
		t.Error("foreign company page authorized")
	}

	ok, err = engine.Authorized(ctx, employee, "missing")
	if err != nil {
		t.Fatalf("Authorized (missing): %v", err)
	}
	if ok {
		t.Error("missing page authorized")
	}
}

func TestAudiencePages_UnionAcrossPublications(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "unionco")
	editorRow := testutil.CreateUser(t, db, company.ID, "editor@u.co", model.RoleEditor)
	employeeRow := testutil.CreateUser(t, db, company.ID, "emp@u.co", model.RoleEmployee)
	page := testutil.CreatePage(t, db, company.ID, editorRow.ID, "Twice", "twice", model.PageStatusDraft)

	logger := testutil.TestLogger()
	engine := NewEngine(db, membership.NewIndex(db, logger), logger)
	editor := identity.UserFromRow(editorRow)

	// Published twice with overlapping audiences.
	if _, err := engine.Publish(ctx, editor, PublishRequest{
		PageID:     page.ID,
		TargetType: model.TargetAll,
	}); err != nil {
		t.Fatalf("Publish (all): %v", err)
	}
	if _, err := engine.Publish(ctx, editor, PublishRequest{
		PageID:     page.ID,
		TargetType: model.TargetContacts,
		TargetIDs:  []string{employeeRow.ID},
	}); err != nil {
		t.Fatalf("Publish (contacts): %v", err)
	}

	pages, err := engine.AudiencePages(ctx, identity.UserFromRow(employeeRow), 10, 0)
	if err != nil {
		t.Fatalf("AudiencePages: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("len(pages) = %d, want 1 (deduplicated)", len(pages))
	}
	if pages[0].ID != page.ID {
		t.Errorf("pages[0].ID = %q, want %q", pages[0].ID, page.ID)
	}
}
