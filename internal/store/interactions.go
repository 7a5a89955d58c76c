// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Interaction is a page_interactions table row.
type Interaction struct {
	ID              string
	PageID          string
	UserID          string
	InteractionType string
	InteractionData string
	CreatedAt       time.Time
}

const interactionColumns = `id, page_id, user_id, interaction_type, interaction_data, created_at`

func scanInteraction(row interface{ Scan(...any) error }) (Interaction, error) {
	var i Interaction
	err := row.Scan(&i.ID, &i.PageID, &i.UserID, &i.InteractionType,
		&i.InteractionData, &i.CreatedAt)
	return i, err
}

// UpsertReactionParams holds the parameters for UpsertReaction.
type UpsertReactionParams struct {
	ID              string
	PageID          string
	UserID          string
	InteractionData string
	CreatedAt       time.Time
}

const upsertReaction = `
INSERT INTO page_interactions (id, page_id, user_id, interaction_type, interaction_data, created_at)
VALUES (?, ?, ?, 'reaction', ?, ?)
ON CONFLICT (page_id, user_id) WHERE interaction_type = 'reaction'
DO UPDATE SET interaction_data = excluded.interaction_data
RETURNING ` + interactionColumns

// UpsertReaction inserts the user's reaction on the page, replacing the
// reaction payload in place when one already exists. The original row's id
// and created_at survive a replace.
func (q *Queries) UpsertReaction(ctx context.Context, arg UpsertReactionParams) (Interaction, error) {
	row := q.db.QueryRowContext(ctx, upsertReaction,
		arg.ID, arg.PageID, arg.UserID, arg.InteractionData, arg.CreatedAt)
	return scanInteraction(row)
}

// GetReactionParams holds the parameters for GetReaction.
type GetReactionParams struct {
	PageID string
	UserID string
}

const getReaction = `
SELECT ` + interactionColumns + `
FROM page_interactions
WHERE page_id = ? AND user_id = ? AND interaction_type = 'reaction'
`

// GetReaction fetches the user's reaction on the page, if any.
func (q *Queries) GetReaction(ctx context.Context, arg GetReactionParams) (Interaction, error) {
	row := q.db.QueryRowContext(ctx, getReaction, arg.PageID, arg.UserID)
	return scanInteraction(row)
}

// DeleteReactionParams holds the parameters for DeleteReaction.
type DeleteReactionParams struct {
	PageID string
	UserID string
}

const deleteReaction = `
DELETE FROM page_interactions
WHERE page_id = ? AND user_id = ? AND interaction_type = 'reaction'
`

// DeleteReaction removes the user's reaction on the page. Returns true when
// a row was deleted.
func (q *Queries) DeleteReaction(ctx context.Context, arg DeleteReactionParams) (bool, error) {
	res, err := q.db.ExecContext(ctx, deleteReaction, arg.PageID, arg.UserID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CreateInteractionParams holds the parameters for CreateInteraction.
type CreateInteractionParams struct {
	ID              string
	PageID          string
	UserID          string
	InteractionType string
	InteractionData string
	CreatedAt       time.Time
}

const createInteraction = `
INSERT INTO page_interactions (id, page_id, user_id, interaction_type, interaction_data, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + interactionColumns

// CreateInteraction inserts a comment or share row. Reactions go through
// UpsertReaction instead.
func (q *Queries) CreateInteraction(ctx context.Context, arg CreateInteractionParams) (Interaction, error) {
	row := q.db.QueryRowContext(ctx, createInteraction,
		arg.ID, arg.PageID, arg.UserID, arg.InteractionType,
		arg.InteractionData, arg.CreatedAt)
	return scanInteraction(row)
}

// CommentRow is a comment interaction joined with its author.
type CommentRow struct {
	Interaction
	AuthorFirstName sql.NullString
	AuthorLastName  sql.NullString
	AuthorEmail     string
}

// ListCommentsParams holds the parameters for ListComments.
type ListCommentsParams struct {
	PageID string
	Limit  int64
	Offset int64
}

const listComments = `
SELECT i.id, i.page_id, i.user_id, i.interaction_type, i.interaction_data, i.created_at,
       u.first_name, u.last_name, u.email
FROM page_interactions i
JOIN users u ON u.id = i.user_id
WHERE i.page_id = ? AND i.interaction_type = 'comment'
ORDER BY i.created_at DESC
LIMIT ? OFFSET ?
`

// ListComments lists the page's comments with author details, newest first.
func (q *Queries) ListComments(ctx context.Context, arg ListCommentsParams) ([]CommentRow, error) {
	rows, err := q.db.QueryContext(ctx, listComments, arg.PageID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []CommentRow
	for rows.Next() {
		var c CommentRow
		if err := rows.Scan(&c.ID, &c.PageID, &c.UserID, &c.InteractionType,
			&c.InteractionData, &c.CreatedAt,
			&c.AuthorFirstName, &c.AuthorLastName, &c.AuthorEmail); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// CountInteractionsParams holds the parameters for CountInteractions.
type CountInteractionsParams struct {
	PageID          string
	InteractionType string
}

const countInteractions = `
SELECT COUNT(*) FROM page_interactions WHERE page_id = ? AND interaction_type = ?
`

// CountInteractions counts the page's interactions of one type.
func (q *Queries) CountInteractions(ctx context.Context, arg CountInteractionsParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countInteractions, arg.PageID, arg.InteractionType).Scan(&count)
	return count, err
}

// ReactionCount is one row of a per-type reaction breakdown.
type ReactionCount struct {
	ReactionType string
	Count        int64
}

const reactionBreakdown = `
SELECT json_extract(interaction_data, '$.reactionType'), COUNT(*)
FROM page_interactions
WHERE page_id = ? AND interaction_type = 'reaction'
GROUP BY json_extract(interaction_data, '$.reactionType')
ORDER BY COUNT(*) DESC
`

// ReactionBreakdown counts the page's reactions grouped by reaction type.
func (q *Queries) ReactionBreakdown(ctx context.Context, pageID string) ([]ReactionCount, error) {
	rows, err := q.db.QueryContext(ctx, reactionBreakdown, pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []ReactionCount
	for rows.Next() {
		var rc ReactionCount
		if err := rows.Scan(&rc.ReactionType, &rc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, rc)
	}
	return counts, rows.Err()
}

const countInteractionsByCompany = `
SELECT COUNT(*) FROM page_interactions i
JOIN pages p ON p.id = i.page_id
WHERE p.company_id = ?
`

// CountInteractionsByCompany counts interactions across all pages of the company.
func (q *Queries) CountInteractionsByCompany(ctx context.Context, companyID string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countInteractionsByCompany, companyID).Scan(&count)
	return count, err
}
