// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/relayhq/relay-go/internal/auth"
	"github.com/relayhq/relay-go/internal/model"
)

// Seed inserts a demo company with an admin and a few employees when the
// database is empty. It is a no-op unless enabled and runs at most once.
func Seed(ctx context.Context, db *sql.DB, enabled bool) error {
	if !enabled {
		return nil
	}

	queries := New(db)
	count, err := queries.CountCompanies(ctx)
	if err != nil {
		return fmt.Errorf("checking companies: %w", err)
	}
	if count > 0 {
		return nil
	}

	passwordHash, err := auth.HashPassword("changeme")
	if err != nil {
		return fmt.Errorf("hashing seed password: %w", err)
	}

	return ExecTx(ctx, db, func(q *Queries) error {
		now := time.Now()

		company, err := q.CreateCompany(ctx, CreateCompanyParams{
			ID:        uuid.NewString(),
			Name:      "Acme Inc",
			Slug:      "acme",
			Status:    model.CompanyStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("seeding company: %w", err)
		}

		seedUsers := []struct {
			email string
			role  string
			first string
			last  string
		}{
			{"admin@acme.test", model.RoleAdmin, "Ada", "Admin"},
			{"editor@acme.test", model.RoleEditor, "Evan", "Editor"},
			{"alice@acme.test", model.RoleEmployee, "Alice", "Archer"},
			{"bob@acme.test", model.RoleEmployee, "Bob", "Barker"},
		}

		var adminID string
		var memberIDs []string
		for _, su := range seedUsers {
			user, err := q.CreateUser(ctx, CreateUserParams{
				ID:           uuid.NewString(),
				CompanyID:    company.ID,
				Email:        su.email,
				PasswordHash: passwordHash,
				Role:         su.role,
				FirstName:    sql.NullString{String: su.first, Valid: true},
				LastName:     sql.NullString{String: su.last, Valid: true},
				Status:       model.UserStatusActive,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
			if err != nil {
				return fmt.Errorf("seeding user %s: %w", su.email, err)
			}
			switch su.role {
			case model.RoleAdmin:
				adminID = user.ID
			case model.RoleEmployee:
				memberIDs = append(memberIDs, user.ID)
			}
		}

		group, err := q.CreateGroup(ctx, CreateGroupParams{
			ID:          uuid.NewString(),
			CompanyID:   company.ID,
			Name:        "Everyone",
			Description: sql.NullString{String: "All employees", Valid: true},
			CreatedBy:   adminID,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("seeding group: %w", err)
		}

		for _, id := range memberIDs {
			if _, err := q.AddGroupMember(ctx, AddGroupMemberParams{
				GroupID:  group.ID,
				UserID:   id,
				JoinedAt: now,
			}); err != nil {
				return fmt.Errorf("seeding group member: %w", err)
			}
		}

		slog.Info("seeded demo data",
			"company_id", company.ID,
			"users", len(seedUsers),
			"group_id", group.ID)
		return nil
	})
}
