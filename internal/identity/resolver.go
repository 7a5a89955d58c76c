// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package identity resolves bearer principals to platform users. Credential
// verification happens at the external identity provider; this package maps
// the provider's subject to a local user record and enforces account status.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/relayhq/relay-go/internal/apperr"
	"github.com/relayhq/relay-go/internal/model"
	"github.com/relayhq/relay-go/internal/store"
)

// Resolver maps an authenticated principal to a platform user.
type Resolver interface {
	Resolve(ctx context.Context, principalID string) (*model.User, error)
}

// StoreResolver resolves principals against the users table. The identity
// provider issues subjects equal to local user IDs.
type StoreResolver struct {
	queries *store.Queries
}

// NewStoreResolver creates a StoreResolver over the given database.
func NewStoreResolver(db *sql.DB) *StoreResolver {
	return &StoreResolver{queries: store.New(db)}
}

// Resolve looks the principal up and rejects missing or inactive accounts.
func (r *StoreResolver) Resolve(ctx context.Context, principalID string) (*model.User, error) {
	principalID = strings.TrimSpace(principalID)
	if principalID == "" {
		return nil, apperr.Unauthorized("missing credentials")
	}

	row, err := r.queries.GetUserByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Unauthorized("unknown principal")
		}
		return nil, apperr.Internal("resolving principal", err)
	}

	user := userFromRow(row)
	if !user.IsActive() {
		return nil, apperr.Unauthorized("account is not active")
	}
	return user, nil
}

func userFromRow(row store.User) *model.User {
	return &model.User{
		ID:           row.ID,
		CompanyID:    row.CompanyID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Role:         row.Role,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		AvatarURL:    row.AvatarURL,
		Status:       row.Status,
		LastLogin:    row.LastLogin,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

// UserFromRow converts a store user row to the domain model.
func UserFromRow(row store.User) *model.User {
	return userFromRow(row)
}
