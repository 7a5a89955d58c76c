// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package engagement records views, reactions and comments on published
// pages and aggregates them into per-page stats and the employee feed.
package engagement

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"

	"github.com/relayhq/relay-go/internal/apperr"
	"github.com/relayhq/relay-go/internal/content"
	"github.com/relayhq/relay-go/internal/model"
	"github.com/relayhq/relay-go/internal/store"
	"github.com/relayhq/relay-go/internal/util"
)

// Aggregator records interaction events and builds engagement summaries.
type Aggregator struct {
	db      *sql.DB
	queries *store.Queries
	logger  *slog.Logger
}

// NewAggregator creates an aggregator over the given database.
func NewAggregator(db *sql.DB, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		db:      db,
		queries: store.New(db),
		logger:  logger,
	}
}

// loadInteractablePage fetches the page and checks it is published and
// belongs to the user's company. Social checks happen per operation.
func (a *Aggregator) loadInteractablePage(ctx context.Context, user *model.User, pageID string) (store.Page, error) {
	page, err := a.queries.GetPageByID(ctx, pageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Page{}, apperr.NotFound("page")
		}
		return store.Page{}, apperr.Internal("loading page", err)
	}
	if page.CompanyID != user.CompanyID || page.Status != model.PageStatusPublished {
		return store.Page{}, apperr.NotFound("page")
	}
	return page, nil
}

func socialSettings(page store.Page) model.SocialSettings {
	settings := model.DefaultSocialSettings()
	if page.SocialEnabled != "" {
		_ = json.Unmarshal([]byte(page.SocialEnabled), &settings)
	}
	return settings
}

// RecordView appends a view event. durationSeconds is optional; the device
// class is derived from the User-Agent header.
func (a *Aggregator) RecordView(ctx context.Context, user *model.User, pageID string, durationSeconds *int64, userAgent string) error {
	page, err := a.loadInteractablePage(ctx, user, pageID)
	if err != nil {
		return err
	}
	if durationSeconds != nil && *durationSeconds < 0 {
		return apperr.Validation("durationSeconds must not be negative")
	}

	err = a.queries.CreatePageView(ctx, store.CreatePageViewParams{
		ID:              uuid.NewString(),
		PageID:          page.ID,
		UserID:          user.ID,
		DurationSeconds: util.NullInt64FromPtr(durationSeconds),
		Device:          DeviceClass(userAgent),
		ViewedAt:        time.Now(),
	})
	if err != nil {
		return apperr.Internal("recording view", err)
	}
	return nil
}

// DeviceClass maps a User-Agent header to a coarse device class.
func DeviceClass(userAgent string) string {
	if userAgent == "" {
		return "unknown"
	}
	ua := useragent.Parse(userAgent)
	switch {
	case ua.Mobile:
		return "mobile"
	case ua.Tablet:
		return "tablet"
	case ua.Desktop:
		return "desktop"
	case ua.Bot:
		return "bot"
	default:
		return "unknown"
	}
}

// SetReaction records the user's reaction on the page, replacing any earlier
// one. One reaction per user per page.
func (a *Aggregator) SetReaction(ctx context.Context, user *model.User, pageID, reactionType string) (store.Interaction, error) {
	page, err := a.loadInteractablePage(ctx, user, pageID)
	if err != nil {
		return store.Interaction{}, err
	}
	if !socialSettings(page).Reactions {
		return store.Interaction{}, apperr.Forbidden("reactions are disabled on this page")
	}

	data, err := model.NewReactionData(reactionType)
	if err != nil {
		return store.Interaction{}, apperr.Validation(err.Error())
	}
	payload, err := data.Marshal()
	if err != nil {
		return store.Interaction{}, apperr.Internal("encoding reaction", err)
	}

	row, err := a.queries.UpsertReaction(ctx, store.UpsertReactionParams{
		ID:              uuid.NewString(),
		PageID:          page.ID,
		UserID:          user.ID,
		InteractionData: payload,
		CreatedAt:       time.Now(),
	})
	if err != nil {
		return store.Interaction{}, apperr.Internal("recording reaction", err)
	}
	return row, nil
}

// RemoveReaction deletes the user's reaction on the page, if present.
func (a *Aggregator) RemoveReaction(ctx context.Context, user *model.User, pageID string) error {
	page, err := a.loadInteractablePage(ctx, user, pageID)
	if err != nil {
		return err
	}
	if _, err := a.queries.DeleteReaction(ctx, store.DeleteReactionParams{
		PageID: page.ID,
		UserID: user.ID,
	}); err != nil {
		return apperr.Internal("removing reaction", err)
	}
	return nil
}

// AddComment records a comment on the page. Text is sanitized and bounded;
// empty or oversized comments are rejected.
func (a *Aggregator) AddComment(ctx context.Context, user *model.User, pageID, text string) (store.Interaction, error) {
	page, err := a.loadInteractablePage(ctx, user, pageID)
	if err != nil {
		return store.Interaction{}, err
	}
	if !socialSettings(page).Comments {
		return store.Interaction{}, apperr.Forbidden("comments are disabled on this page")
	}

	// The length bound applies to the submitted text, before sanitizing.
	if len(text) > model.MaxCommentLength {
		return store.Interaction{}, apperr.Validation(fmt.Sprintf("comment text is too long (max %d characters)", model.MaxCommentLength))
	}
	data, err := model.NewCommentData(SanitizeComment(text), "")
	if err != nil {
		return store.Interaction{}, apperr.Validation(err.Error())
	}
	payload, err := data.Marshal()
	if err != nil {
		return store.Interaction{}, apperr.Internal("encoding comment", err)
	}

	row, err := a.queries.CreateInteraction(ctx, store.CreateInteractionParams{
		ID:              uuid.NewString(),
		PageID:          page.ID,
		UserID:          user.ID,
		InteractionType: model.InteractionComment,
		InteractionData: payload,
		CreatedAt:       time.Now(),
	})
	if err != nil {
		return store.Interaction{}, apperr.Internal("recording comment", err)
	}
	return row, nil
}

// Comment is a page comment with author details for API responses.
type Comment struct {
	ID         string    `json:"id"`
	PageID     string    `json:"pageId"`
	UserID     string    `json:"userId"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Comments lists the page's comments, newest first.
func (a *Aggregator) Comments(ctx context.Context, user *model.User, pageID string, limit, offset int64) ([]Comment, error) {
	page, err := a.loadInteractablePage(ctx, user, pageID)
	if err != nil {
		return nil, err
	}

	rows, err := a.queries.ListComments(ctx, store.ListCommentsParams{
		PageID: page.ID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, apperr.Internal("listing comments", err)
	}

	comments := make([]Comment, 0, len(rows))
	for _, row := range rows {
		data, err := model.ParseInteractionData(row.InteractionData)
		if err != nil {
			continue
		}
		comments = append(comments, Comment{
			ID:         row.ID,
			PageID:     row.PageID,
			UserID:     row.UserID,
			AuthorName: authorName(row),
			Text:       data.CommentText,
			CreatedAt:  row.CreatedAt,
		})
	}
	return comments, nil
}

func authorName(row store.CommentRow) string {
	u := model.User{
		FirstName: row.AuthorFirstName,
		LastName:  row.AuthorLastName,
		Email:     row.AuthorEmail,
	}
	name := u.DisplayName()
	if name == "Unknown" {
		return row.AuthorEmail
	}
	return name
}

// Stats is the engagement summary of one page.
type Stats struct {
	PageID        string           `json:"pageId"`
	UniqueViewers int64            `json:"uniqueViewers"`
	TotalViews    int64            `json:"totalViews"`
	Reactions     int64            `json:"reactions"`
	ReactionTypes map[string]int64 `json:"reactionTypes"`
	Comments      int64            `json:"comments"`
	Devices       map[string]int64 `json:"devices"`
}

// StatsFor aggregates the page's engagement counters. Viewer counts are
// distinct per user; reactions are broken down by type.
func (a *Aggregator) StatsFor(ctx context.Context, pageID string) (Stats, error) {
	stats := Stats{
		PageID:        pageID,
		ReactionTypes: make(map[string]int64),
		Devices:       make(map[string]int64),
	}

	var err error
	if stats.UniqueViewers, err = a.queries.CountDistinctViewers(ctx, pageID); err != nil {
		return Stats{}, apperr.Internal("counting viewers", err)
	}
	if stats.TotalViews, err = a.queries.CountPageViews(ctx, pageID); err != nil {
		return Stats{}, apperr.Internal("counting views", err)
	}
	if stats.Reactions, err = a.queries.CountInteractions(ctx, store.CountInteractionsParams{
		PageID:          pageID,
		InteractionType: model.InteractionReaction,
	}); err != nil {
		return Stats{}, apperr.Internal("counting reactions", err)
	}
	if stats.Comments, err = a.queries.CountInteractions(ctx, store.CountInteractionsParams{
		PageID:          pageID,
		InteractionType: model.InteractionComment,
	}); err != nil {
		return Stats{}, apperr.Internal("counting comments", err)
	}

	breakdown, err := a.queries.ReactionBreakdown(ctx, pageID)
	if err != nil {
		return Stats{}, apperr.Internal("reading reaction breakdown", err)
	}
	for _, rc := range breakdown {
		stats.ReactionTypes[rc.ReactionType] = rc.Count
	}

	devices, err := a.queries.CountViewsByDevice(ctx, pageID)
	if err != nil {
		return Stats{}, apperr.Internal("reading device breakdown", err)
	}
	for _, dc := range devices {
		stats.Devices[dc.Device] = dc.Count
	}

	return stats, nil
}

// PageEngagement is the viewer-scoped engagement block attached to an
// employee page payload.
type PageEngagement struct {
	Viewed        bool             `json:"viewed"`
	MyReaction    string           `json:"myReaction,omitempty"`
	Reactions     int64            `json:"reactions"`
	ReactionTypes map[string]int64 `json:"reactionTypes"`
	Comments      int64            `json:"comments"`
}

// EngagementFor summarizes a page's engagement from one viewer's side:
// whether they viewed it, their own reaction, and the shared counters.
func (a *Aggregator) EngagementFor(ctx context.Context, user *model.User, pageID string) (PageEngagement, error) {
	eng := PageEngagement{ReactionTypes: make(map[string]int64)}

	var err error
	if eng.Viewed, err = a.queries.HasViewed(ctx, store.HasViewedParams{
		PageID: pageID,
		UserID: user.ID,
	}); err != nil {
		return PageEngagement{}, apperr.Internal("checking viewed state", err)
	}

	reaction, err := a.queries.GetReaction(ctx, store.GetReactionParams{
		PageID: pageID,
		UserID: user.ID,
	})
	switch {
	case err == nil:
		data, err := model.ParseInteractionData(reaction.InteractionData)
		if err != nil {
			return PageEngagement{}, apperr.Internal("parsing reaction payload", err)
		}
		eng.MyReaction = data.ReactionType
	case errors.Is(err, sql.ErrNoRows):
	default:
		return PageEngagement{}, apperr.Internal("reading reaction", err)
	}

	if eng.Reactions, err = a.queries.CountInteractions(ctx, store.CountInteractionsParams{
		PageID:          pageID,
		InteractionType: model.InteractionReaction,
	}); err != nil {
		return PageEngagement{}, apperr.Internal("counting reactions", err)
	}
	if eng.Comments, err = a.queries.CountInteractions(ctx, store.CountInteractionsParams{
		PageID:          pageID,
		InteractionType: model.InteractionComment,
	}); err != nil {
		return PageEngagement{}, apperr.Internal("counting comments", err)
	}

	breakdown, err := a.queries.ReactionBreakdown(ctx, pageID)
	if err != nil {
		return PageEngagement{}, apperr.Internal("reading reaction breakdown", err)
	}
	for _, rc := range breakdown {
		eng.ReactionTypes[rc.ReactionType] = rc.Count
	}

	return eng, nil
}

// FeedItem is one card in the employee feed.
type FeedItem struct {
	PageID        string    `json:"pageId"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Preview       string    `json:"preview"`
	PublishedAt   time.Time `json:"publishedAt"`
	Viewed        bool      `json:"viewed"`
	MyReaction    string    `json:"myReaction,omitempty"`
	UniqueViewers int64     `json:"uniqueViewers"`
	Reactions     int64     `json:"reactions"`
	Comments      int64     `json:"comments"`
}

// BuildFeed decorates the user's visible pages with previews and engagement
// counters. Pages arrive deduplicated and ordered newest first.
func (a *Aggregator) BuildFeed(ctx context.Context, user *model.User, pages []store.Page) ([]FeedItem, error) {
	items := make([]FeedItem, 0, len(pages))
	for _, page := range pages {
		item := FeedItem{
			PageID:  page.ID,
			Title:   page.Title,
			Slug:    page.Slug,
			Preview: content.Preview(json.RawMessage(page.Content)),
		}
		if page.PublishedAt.Valid {
			item.PublishedAt = page.PublishedAt.Time
		}

		var err error
		if item.Viewed, err = a.queries.HasViewed(ctx, store.HasViewedParams{
			PageID: page.ID,
			UserID: user.ID,
		}); err != nil {
			return nil, apperr.Internal("checking viewed state", err)
		}

		reaction, err := a.queries.GetReaction(ctx, store.GetReactionParams{
			PageID: page.ID,
			UserID: user.ID,
		})
		switch {
		case err == nil:
			data, err := model.ParseInteractionData(reaction.InteractionData)
			if err != nil {
				return nil, apperr.Internal("parsing reaction payload", err)
			}
			item.MyReaction = data.ReactionType
		case errors.Is(err, sql.ErrNoRows):
		default:
			return nil, apperr.Internal("reading reaction", err)
		}

		if item.UniqueViewers, err = a.queries.CountDistinctViewers(ctx, page.ID); err != nil {
			return nil, apperr.Internal("counting viewers", err)
		}
		if item.Reactions, err = a.queries.CountInteractions(ctx, store.CountInteractionsParams{
			PageID:          page.ID,
			InteractionType: model.InteractionReaction,
		}); err != nil {
			return nil, apperr.Internal("counting reactions", err)
		}
		if item.Comments, err = a.queries.CountInteractions(ctx, store.CountInteractionsParams{
			PageID:          page.ID,
			InteractionType: model.InteractionComment,
		}); err != nil {
			return nil, apperr.Internal("counting comments", err)
		}

		items = append(items, item)
	}
	return items, nil
}
