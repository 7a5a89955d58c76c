// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package identity

import (
	"context"
	"testing"
	"time"

	"github.com/relayhq/relay-go/internal/apperr"
	"github.com/relayhq/relay-go/internal/model"
	"github.com/relayhq/relay-go/internal/store"
	"github.com/relayhq/relay-go/internal/testutil"
)

func TestStoreResolver_Resolve(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	company := testutil.CreateCompany(t, db, "idco")
	active := testutil.CreateUser(t, db, company.ID, "active@id.co", model.RoleEmployee)
	inactiveRow := testutil.CreateUser(t, db, company.ID, "inactive@id.co", model.RoleEmployee)

	resolver := NewStoreResolver(db)

	user, err := resolver.Resolve(ctx, active.ID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if user.ID != active.ID || user.CompanyID != company.ID {
		t.Errorf("user = %+v, want id %s in company %s", user, active.ID, company.ID)
	}

	// Deactivate and resolve again.
	if _, err := store.New(db).UpdateUser(ctx, store.UpdateUserParams{
		ID:        inactiveRow.ID,
		Email:     inactiveRow.Email,
		Role:      inactiveRow.Role,
		Status:    model.UserStatusInactive,
		UpdatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("deactivating user: %v", err)
	}
	_, err = resolver.Resolve(ctx, inactiveRow.ID)
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Errorf("inactive user: kind = %v, want KindUnauthorized", apperr.KindOf(err))
	}

	tests := []struct {
		name      string
		principal string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"unknown", "no-such-user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.Resolve(ctx, tt.principal)
			if apperr.KindOf(err) != apperr.KindUnauthorized {
				t.Errorf("kind = %v, want KindUnauthorized", apperr.KindOf(err))
			}
		})
	}
}
