// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package membership maintains the group membership index used by
// publication targeting. Membership is a plain set: adding an existing
// member is a no-op, removal of a non-member is ignored.
package membership

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/relayhq/relay-go/internal/apperr"
	"github.com/relayhq/relay-go/internal/store"
)

// Index provides group membership lookups and bulk mutations.
type Index struct {
	db      *sql.DB
	queries *store.Queries
	logger  *slog.Logger
}

// NewIndex creates a membership index over the given database.
func NewIndex(db *sql.DB, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		db:      db,
		queries: store.New(db),
		logger:  logger,
	}
}

// GroupIDs returns the ids of all groups the user belongs to.
func (ix *Index) GroupIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := ix.queries.GetUserGroupIDs(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("loading group memberships", err)
	}
	return ids, nil
}

// MutationResult reports the outcome of a bulk membership change.
type MutationResult struct {
	Added   int `json:"added,omitempty"`
	Skipped int `json:"skipped,omitempty"`
	Removed int `json:"removed,omitempty"`
}

// AddMembers adds the users to the group. Users already in the group are
// counted as skipped. Every user must exist in the group's company; the
// whole batch fails on the first violation.
func (ix *Index) AddMembers(ctx context.Context, groupID string, userIDs []string) (MutationResult, error) {
	if len(userIDs) == 0 {
		return MutationResult{}, apperr.Validation("userIds must not be empty")
	}

	var result MutationResult
	err := store.ExecTx(ctx, ix.db, func(q *store.Queries) error {
		group, err := q.GetGroupByID(ctx, groupID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound("group")
			}
			return err
		}

		now := time.Now()
		for _, userID := range userIDs {
			user, err := q.GetUserByID(ctx, userID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return apperr.Validation("unknown user: " + userID)
				}
				return err
			}
			if user.CompanyID != group.CompanyID {
				return apperr.Validation("user belongs to a different company: " + userID)
			}

			inserted, err := q.AddGroupMember(ctx, store.AddGroupMemberParams{
				GroupID:  groupID,
				UserID:   userID,
				JoinedAt: now,
			})
			if err != nil {
				return err
			}
			if inserted {
				result.Added++
			} else {
				result.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return MutationResult{}, err
		}
		return MutationResult{}, apperr.Internal("adding group members", err)
	}

	ix.logger.Info("group members added",
		"category", "group",
		"group_id", groupID,
		"added", result.Added,
		"skipped", result.Skipped)
	return result, nil
}

// RemoveMembers removes the users from the group. Unknown users and
// non-members are ignored.
func (ix *Index) RemoveMembers(ctx context.Context, groupID string, userIDs []string) (MutationResult, error) {
	if len(userIDs) == 0 {
		return MutationResult{}, apperr.Validation("userIds must not be empty")
	}

	if _, err := ix.queries.GetGroupByID(ctx, groupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return MutationResult{}, apperr.NotFound("group")
		}
		return MutationResult{}, apperr.Internal("loading group", err)
	}

	removed, err := ix.queries.RemoveGroupMembers(ctx, store.RemoveGroupMembersParams{
		GroupID: groupID,
		UserIDs: userIDs,
	})
	if err != nil {
		return MutationResult{}, apperr.Internal("removing group members", err)
	}

	ix.logger.Info("group members removed",
		"category", "group",
		"group_id", groupID,
		"removed", removed)
	return MutationResult{Removed: int(removed)}, nil
}
