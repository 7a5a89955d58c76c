// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package targeting decides who can see which page. A page becomes visible
// to an employee only through at least one publication whose audience
// includes them: a broadcast to the whole company, one of their groups, or
// a direct target. Republishing adds a publication; it never narrows the
// audience established by earlier ones.
package targeting

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/relayhq/relay-go/internal/apperr"
	"github.com/relayhq/relay-go/internal/membership"
	"github.com/relayhq/relay-go/internal/model"
	"github.com/relayhq/relay-go/internal/store"
)

// Engine evaluates page visibility and records publications.
type Engine struct {
	db      *sql.DB
	queries *store.Queries
	members *membership.Index
	logger  *slog.Logger
}

// NewEngine creates a targeting engine over the given database.
func NewEngine(db *sql.DB, members *membership.Index, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		db:      db,
		queries: store.New(db),
		members: members,
		logger:  logger,
	}
}

// Authorized reports whether the user may read the page as an employee.
// Drafts and archived pages are invisible regardless of targeting; company
// admins and editors see every page of their company through the admin
// surface instead.
func (e *Engine) Authorized(ctx context.Context, user *model.User, pageID string) (bool, error) {
	page, err := e.queries.GetPageByID(ctx, pageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, apperr.Internal("loading page", err)
	}

	if page.CompanyID != user.CompanyID || page.Status != model.PageStatusPublished {
		return false, nil
	}

	groupIDs, err := e.members.GroupIDs(ctx, user.ID)
	if err != nil {
		return false, err
	}

	ok, err := e.queries.PageAudienceMatch(ctx, store.PageAudienceMatchParams{
		PageID:   pageID,
		UserID:   user.ID,
		GroupIDs: groupIDs,
	})
	if err != nil {
		return false, apperr.Internal("evaluating page audience", err)
	}
	return ok, nil
}

// PublishRequest describes one publish operation.
type PublishRequest struct {
	PageID      string
	TargetType  string
	TargetIDs   []string // group or user ids, required unless TargetType is "all"
	NotifyEmail bool
	NotifyPush  bool
}

// Publish records a publication of the page with the given audience and
// flips the page to published, restamping published_at. The publisher must
// hold a publishing role in the page's company.
func (e *Engine) Publish(ctx context.Context, user *model.User, req PublishRequest) (store.Publication, error) {
	if !user.CanPublish() {
		return store.Publication{}, apperr.Forbidden("publishing requires an editor or admin role")
	}
	if !model.ValidTargetType(req.TargetType) {
		return store.Publication{}, apperr.Validation("invalid target type: " + req.TargetType)
	}
	if req.TargetType != model.TargetAll && len(req.TargetIDs) == 0 {
		return store.Publication{}, apperr.Validation("targetIds must not be empty for targeted publications")
	}
	if req.TargetType == model.TargetAll && len(req.TargetIDs) > 0 {
		return store.Publication{}, apperr.Validation("targetIds must be empty when targeting the whole company")
	}

	var pub store.Publication
	err := store.ExecTx(ctx, e.db, func(q *store.Queries) error {
		page, err := q.GetPageByID(ctx, req.PageID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound("page")
			}
			return err
		}
		if page.CompanyID != user.CompanyID {
			return apperr.NotFound("page")
		}

		if err := e.validateTargets(ctx, q, user.CompanyID, req); err != nil {
			return err
		}

		now := time.Now()
		pub, err = q.CreatePublication(ctx, store.CreatePublicationParams{
			ID:          uuid.NewString(),
			PageID:      req.PageID,
			PublishedBy: user.ID,
			TargetType:  req.TargetType,
			NotifyEmail: boolToInt(req.NotifyEmail),
			NotifyPush:  boolToInt(req.NotifyPush),
			PublishedAt: now,
		})
		if err != nil {
			return err
		}

		for _, targetID := range req.TargetIDs {
			if err := q.CreatePublicationTarget(ctx, store.CreatePublicationTargetParams{
				ID:            uuid.NewString(),
				PublicationID: pub.ID,
				TargetType:    req.TargetType,
				TargetID:      targetID,
			}); err != nil {
				return err
			}
		}

		_, err = q.MarkPagePublished(ctx, store.MarkPagePublishedParams{
			ID:          req.PageID,
			PublishedAt: now,
			UpdatedAt:   now,
		})
		return err
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return store.Publication{}, err
		}
		return store.Publication{}, apperr.Internal("publishing page", err)
	}

	e.logger.Info("page published",
		"category", "publish",
		"user_id", user.ID,
		"page_id", req.PageID,
		"publication_id", pub.ID,
		"target_type", req.TargetType,
		"targets", len(req.TargetIDs))
	return pub, nil
}

// validateTargets checks every target id against the publisher's company.
func (e *Engine) validateTargets(ctx context.Context, q *store.Queries, companyID string, req PublishRequest) error {
	switch req.TargetType {
	case model.TargetGroups:
		for _, id := range req.TargetIDs {
			group, err := q.GetGroupByID(ctx, id)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return apperr.Validation("unknown group: " + id)
				}
				return err
			}
			if group.CompanyID != companyID {
				return apperr.Validation("group belongs to a different company: " + id)
			}
		}
	case model.TargetContacts:
		for _, id := range req.TargetIDs {
			user, err := q.GetUserByID(ctx, id)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return apperr.Validation("unknown contact: " + id)
				}
				return err
			}
			if user.CompanyID != companyID {
				return apperr.Validation("contact belongs to a different company: " + id)
			}
		}
	}
	return nil
}

// PublicationDetail is a publication with its resolved target ids.
type PublicationDetail struct {
	Publication store.Publication
	TargetIDs   []string
}

// Publications lists a page's publication history, oldest first, with the
// target ids attached.
func (e *Engine) Publications(ctx context.Context, pageID string) ([]PublicationDetail, error) {
	pubs, err := e.queries.ListPublicationsByPage(ctx, pageID)
	if err != nil {
		return nil, apperr.Internal("listing publications", err)
	}

	details := make([]PublicationDetail, 0, len(pubs))
	for _, pub := range pubs {
		detail := PublicationDetail{Publication: pub}
		if pub.TargetType != model.TargetAll {
			targets, err := e.queries.ListTargetsByPublication(ctx, pub.ID)
			if err != nil {
				return nil, apperr.Internal("listing publication targets", err)
			}
			for _, t := range targets {
				detail.TargetIDs = append(detail.TargetIDs, t.TargetID)
			}
		}
		details = append(details, detail)
	}
	return details, nil
}

// AudiencePages lists the published pages visible to the user, newest first.
func (e *Engine) AudiencePages(ctx context.Context, user *model.User, limit, offset int64) ([]store.Page, error) {
	groupIDs, err := e.members.GroupIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	pages, err := e.queries.ListAudiencePages(ctx, store.ListAudiencePagesParams{
		CompanyID: user.CompanyID,
		UserID:    user.ID,
		GroupIDs:  groupIDs,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, apperr.Internal("listing audience pages", err)
	}
	return pages, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
