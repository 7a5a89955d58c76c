// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package membership

import (
	"context"
	"testing"

	"github.com/relayhq/relay-go/internal/apperr"
	"github.com/relayhq/relay-go/internal/model"
	"github.com/relayhq/relay-go/internal/testutil"
)

func TestAddMembers(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "memberco")
	admin := testutil.CreateUser(t, db, company.ID, "admin@m.co", model.RoleAdmin)
	alice := testutil.CreateUser(t, db, company.ID, "alice@m.co", model.RoleEmployee)
	bob := testutil.CreateUser(t, db, company.ID, "bob@m.co", model.RoleEmployee)
	group := testutil.CreateGroup(t, db, company.ID, admin.ID, "Sales")

	ix := NewIndex(db, testutil.TestLogger())

	result, err := ix.AddMembers(ctx, group.ID, []string{alice.ID, bob.ID})
	if err != nil {
		t.Fatalf("AddMembers: %v", err)
	}
	if result.Added != 2 || result.Skipped != 0 {
		t.Errorf("result = %+v, want 2 added", result)
	}

	// Re-adding is a no-op counted as skipped.
	result, err = ix.AddMembers(ctx, group.ID, []string{alice.ID})
	if err != nil {
		t.Fatalf("AddMembers (again): %v", err)
	}
	if result.Added != 0 || result.Skipped != 1 {
		t.Errorf("result = %+v, want 1 skipped", result)
	}

	ids, err := ix.GroupIDs(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GroupIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != group.ID {
		t.Errorf("GroupIDs = %v, want [%s]", ids, group.ID)
	}
}

func TestAddMembers_Validation(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "valmemco")
	other := testutil.CreateCompany(t, db, "othermemco")
	admin := testutil.CreateUser(t, db, company.ID, "admin@vm.co", model.RoleAdmin)
	alice := testutil.CreateUser(t, db, company.ID, "alice@vm.co", model.RoleEmployee)
	stranger := testutil.CreateUser(t, db, other.ID, "stranger@om.co", model.RoleEmployee)
	group := testutil.CreateGroup(t, db, company.ID, admin.ID, "Guarded")

	ix := NewIndex(db, testutil.TestLogger())

	tests := []struct {
		name    string
		groupID string
		userIDs []string
		kind    apperr.Kind
	}{
		{"empty batch", group.ID, nil, apperr.KindValidation},
		{"unknown group", "missing", []string{alice.ID}, apperr.KindNotFound},
		{"unknown user", group.ID, []string{"missing"}, apperr.KindValidation},
		{"cross-company user", group.ID, []string{stranger.ID}, apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ix.AddMembers(ctx, tt.groupID, tt.userIDs)
			if apperr.KindOf(err) != tt.kind {
				t.Errorf("kind = %v, want %v", apperr.KindOf(err), tt.kind)
			}
		})
	}

	// A failed batch must not leave partial members behind.
	if _, err := ix.AddMembers(ctx, group.ID, []string{alice.ID, "missing"}); err == nil {
		t.Fatal("AddMembers with unknown user should fail")
	}
	ids, err := ix.GroupIDs(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GroupIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("GroupIDs after failed batch = %v, want none", ids)
	}
}

func TestRemoveMembers(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "removeco")
	admin := testutil.CreateUser(t, db, company.ID, "admin@rm.co", model.RoleAdmin)
	alice := testutil.CreateUser(t, db, company.ID, "alice@rm.co", model.RoleEmployee)
	group := testutil.CreateGroup(t, db, company.ID, admin.ID, "Shrinking")
	testutil.AddGroupMember(t, db, group.ID, alice.ID)

	ix := NewIndex(db, testutil.TestLogger())

	result, err := ix.RemoveMembers(ctx, group.ID, []string{alice.ID, "not-a-member"})
	if err != nil {
		t.Fatalf("RemoveMembers: %v", err)
	}
	if result.Removed != 1 {
		t.Errorf("Removed = %d, want 1", result.Removed)
	}

	_, err = ix.RemoveMembers(ctx, "missing", []string{alice.ID})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("kind = %v, want KindNotFound", apperr.KindOf(err))
	}
}
