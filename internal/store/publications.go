// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// Publication is a page_publications table row.
type Publication struct {
	ID          string
	PageID      string
	PublishedBy string
	TargetType  string
	NotifyEmail int64
	NotifyPush  int64
	PublishedAt time.Time
}

const publicationColumns = `id, page_id, published_by, target_type, notify_email, notify_push, published_at`

func scanPublication(row interface{ Scan(...any) error }) (Publication, error) {
	var p Publication
	err := row.Scan(&p.ID, &p.PageID, &p.PublishedBy, &p.TargetType,
		&p.NotifyEmail, &p.NotifyPush, &p.PublishedAt)
	return p, err
}

// CreatePublicationParams holds the parameters for CreatePublication.
type CreatePublicationParams struct {
	ID          string
	PageID      string
	PublishedBy string
	TargetType  string
	NotifyEmail int64
	NotifyPush  int64
	PublishedAt time.Time
}

const createPublication = `
INSERT INTO page_publications (id, page_id, published_by, target_type, notify_email, notify_push, published_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + publicationColumns

// CreatePublication inserts a publication row.
func (q *Queries) CreatePublication(ctx context.Context, arg CreatePublicationParams) (Publication, error) {
	row := q.db.QueryRowContext(ctx, createPublication,
		arg.ID, arg.PageID, arg.PublishedBy, arg.TargetType,
		arg.NotifyEmail, arg.NotifyPush, arg.PublishedAt)
	return scanPublication(row)
}

// PublicationTarget is a publication_targets table row.
type PublicationTarget struct {
	ID            string
	PublicationID string
	TargetType    string
	TargetID      string
}

// CreatePublicationTargetParams holds the parameters for CreatePublicationTarget.
type CreatePublicationTargetParams struct {
	ID            string
	PublicationID string
	TargetType    string
	TargetID      string
}

const createPublicationTarget = `
INSERT INTO publication_targets (id, publication_id, target_type, target_id)
VALUES (?, ?, ?, ?)
`

// CreatePublicationTarget inserts a target row for a publication.
func (q *Queries) CreatePublicationTarget(ctx context.Context, arg CreatePublicationTargetParams) error {
	_, err := q.db.ExecContext(ctx, createPublicationTarget,
		arg.ID, arg.PublicationID, arg.TargetType, arg.TargetID)
	return err
}

const listPublicationsByPage = `
SELECT ` + publicationColumns + `
FROM page_publications WHERE page_id = ?
ORDER BY published_at
`

// ListPublicationsByPage lists all publications of a page, oldest first.
// Earlier publications are never deleted: a page's audience is the union
// over every row returned here.
func (q *Queries) ListPublicationsByPage(ctx context.Context, pageID string) ([]Publication, error) {
	rows, err := q.db.QueryContext(ctx, listPublicationsByPage, pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pubs []Publication
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, p)
	}
	return pubs, rows.Err()
}

const listTargetsByPublication = `
SELECT id, publication_id, target_type, target_id
FROM publication_targets WHERE publication_id = ?
`

// ListTargetsByPublication lists the target rows of one publication.
func (q *Queries) ListTargetsByPublication(ctx context.Context, publicationID string) ([]PublicationTarget, error) {
	rows, err := q.db.QueryContext(ctx, listTargetsByPublication, publicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []PublicationTarget
	for rows.Next() {
		var t PublicationTarget
		if err := rows.Scan(&t.ID, &t.PublicationID, &t.TargetType, &t.TargetID); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// audienceCondition builds the publication-match predicate shared by the
// authorization check and the feed query. The groups branch is emitted only
// when the membership set is non-empty: an empty IN list must never be
// treated as "matches everything".
func audienceCondition(userID string, groupIDs []string) (string, []any) {
	cond := `(pp.target_type = 'all'
		OR (pt.target_type = 'contacts' AND pt.target_id = ?)`
	args := []any{userID}

	if len(groupIDs) > 0 {
		cond += `
		OR (pt.target_type = 'groups' AND pt.target_id IN (` + inPlaceholders(len(groupIDs)) + `))`
		args = append(args, idArgs(groupIDs)...)
	}
	cond += `)`
	return cond, args
}

// PageAudienceMatchParams holds the parameters for PageAudienceMatch.
type PageAudienceMatchParams struct {
	PageID   string
	UserID   string
	GroupIDs []string
}

// PageAudienceMatch reports whether any publication of the page reaches the
// user, either by broadcast, by one of the user's groups, or directly.
func (q *Queries) PageAudienceMatch(ctx context.Context, arg PageAudienceMatchParams) (bool, error) {
	cond, condArgs := audienceCondition(arg.UserID, arg.GroupIDs)
	query := `
SELECT COUNT(*)
FROM page_publications pp
LEFT JOIN publication_targets pt ON pt.publication_id = pp.id
WHERE pp.page_id = ? AND ` + cond

	args := append([]any{arg.PageID}, condArgs...)
	var count int64
	if err := q.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListAudiencePagesParams holds the parameters for ListAudiencePages.
type ListAudiencePagesParams struct {
	CompanyID string
	UserID    string
	GroupIDs  []string
	Limit     int64
	Offset    int64
}

// ListAudiencePages lists published pages of the company whose audience
// includes the user, newest publishedAt first. A page qualifying under
// several publications or target rows appears exactly once.
func (q *Queries) ListAudiencePages(ctx context.Context, arg ListAudiencePagesParams) ([]Page, error) {
	cond, condArgs := audienceCondition(arg.UserID, arg.GroupIDs)
	query := `
SELECT DISTINCT p.id, p.company_id, p.title, p.slug, p.content, p.social_enabled,
       p.status, p.created_by, p.published_at, p.created_at, p.updated_at
FROM pages p
JOIN page_publications pp ON pp.page_id = p.id
LEFT JOIN publication_targets pt ON pt.publication_id = pp.id
WHERE p.company_id = ? AND p.status = 'published' AND ` + cond + `
ORDER BY p.published_at DESC
LIMIT ? OFFSET ?`

	args := append([]any{arg.CompanyID}, condArgs...)
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPages(rows)
}
