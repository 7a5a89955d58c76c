// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/relayhq/relay-go/internal/engagement"
	"github.com/relayhq/relay-go/internal/middleware"
	"github.com/relayhq/relay-go/internal/model"
	"github.com/relayhq/relay-go/internal/store"
	"github.com/relayhq/relay-go/internal/validation"
)

// Feed handles GET /api/v1/feed. It lists the published pages whose audience
// includes the caller, newest first, decorated with previews and counters.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, 20, 100)

	pages, err := h.targets.AudiencePages(r.Context(), user,
		int64(perPage), int64((page-1)*perPage))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	items, err := h.engage.BuildFeed(r.Context(), user, pages)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	WriteSuccess(w, items, &Meta{
		Page:    page,
		PerPage: perPage,
	})
}

// PageView is the employee-facing page payload.
type PageView struct {
	ID            string                      `json:"id"`
	Title         string                      `json:"title"`
	Slug          string                      `json:"slug"`
	Content       json.RawMessage             `json:"content"`
	SocialEnabled model.SocialSettings        `json:"socialEnabled"`
	PublishedAt   *time.Time                  `json:"publishedAt,omitempty"`
	Engagement    engagement.PageEngagement   `json:"engagement"`
	Validations   []validation.ValidationView `json:"validations,omitempty"`
}

// GetPage handles GET /api/v1/pages/{slug}. The page must be published and
// its audience must include the caller.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	slug := chi.URLParam(r, "slug")

	page, err := h.queries.GetPublishedPageByCompanySlug(r.Context(), store.GetPageByCompanySlugParams{
		CompanyID: user.CompanyID,
		Slug:      slug,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Page not found")
		} else {
			WriteInternalError(w, "Failed to load page")
		}
		return
	}

	authorized, err := h.targets.Authorized(r.Context(), user, page.ID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	if !authorized {
		WriteNotFound(w, "Page not found")
		return
	}

	views, err := h.checks.ForPage(r.Context(), user, page.ID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	eng, err := h.engage.EngagementFor(r.Context(), user, page.ID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	view := PageView{
		ID:            page.ID,
		Title:         page.Title,
		Slug:          page.Slug,
		Content:       json.RawMessage(page.Content),
		SocialEnabled: socialSettingsOf(page.SocialEnabled),
		Engagement:    eng,
		Validations:   views,
	}
	if page.PublishedAt.Valid {
		t := page.PublishedAt.Time
		view.PublishedAt = &t
	}

	WriteSuccess(w, view, nil)
}

func socialSettingsOf(raw string) model.SocialSettings {
	settings := model.DefaultSocialSettings()
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &settings)
	}
	return settings
}

// RecordView handles POST /api/v1/pages/{id}/view.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	pageID := chi.URLParam(r, "id")

	var req struct {
		DurationSeconds *int64 `json:"durationSeconds"`
	}
	if r.ContentLength > 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}

	if err := h.engage.RecordView(r.Context(), user, pageID,
		req.DurationSeconds, r.UserAgent()); err != nil {
		h.WriteAppError(w, err)
		return
	}
	WriteNoContent(w)
}

// SetReaction handles PUT /api/v1/pages/{id}/reaction.
func (h *Handler) SetReaction(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	pageID := chi.URLParam(r, "id")

	var req struct {
		ReactionType string `json:"reactionType"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	row, err := h.engage.SetReaction(r.Context(), user, pageID, req.ReactionType)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	data, _ := model.ParseInteractionData(row.InteractionData)
	WriteSuccess(w, map[string]any{
		"id":           row.ID,
		"pageId":       row.PageID,
		"reactionType": data.ReactionType,
		"createdAt":    row.CreatedAt,
	}, nil)
}

// RemoveReaction handles DELETE /api/v1/pages/{id}/reaction.
func (h *Handler) RemoveReaction(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	pageID := chi.URLParam(r, "id")

	if err := h.engage.RemoveReaction(r.Context(), user, pageID); err != nil {
		h.WriteAppError(w, err)
		return
	}
	WriteNoContent(w)
}

// ListComments handles GET /api/v1/pages/{id}/comments.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	pageID := chi.URLParam(r, "id")
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, 50, 200)

	comments, err := h.engage.Comments(r.Context(), user, pageID,
		int64(perPage), int64((page-1)*perPage))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	WriteSuccess(w, comments, &Meta{
		Page:    page,
		PerPage: perPage,
	})
}

// AddComment handles POST /api/v1/pages/{id}/comments.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	pageID := chi.URLParam(r, "id")

	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	row, err := h.engage.AddComment(r.Context(), user, pageID, req.Text)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	data, _ := model.ParseInteractionData(row.InteractionData)
	WriteCreated(w, map[string]any{
		"id":        row.ID,
		"pageId":    row.PageID,
		"text":      data.CommentText,
		"createdAt": row.CreatedAt,
	})
}

// ListPageValidations handles GET /api/v1/pages/{id}/validations.
func (h *Handler) ListPageValidations(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	pageID := chi.URLParam(r, "id")

	authorized, err := h.targets.Authorized(r.Context(), user, pageID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	if !authorized {
		WriteNotFound(w, "Page not found")
		return
	}

	views, err := h.checks.ForPage(r.Context(), user, pageID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	WriteSuccess(w, views, nil)
}

// SubmitResponse handles POST /api/v1/validations/{id}/response. Quiz
// answers are graded server side; resubmitting replaces the earlier
// response.
func (h *Handler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	validationID := chi.URLParam(r, "id")

	var req struct {
		Answers   map[string]any `json:"answers"`
		Confirmed bool           `json:"confirmed"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.checks.Submit(r.Context(), user, validation.SubmitRequest{
		ValidationID: validationID,
		Answers:      req.Answers,
		Confirmed:    req.Confirmed,
	})
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{
		"id":           result.Response.ID,
		"validationId": result.Response.ValidationID,
		"data":         result.Data,
		"submittedAt":  result.Response.SubmittedAt,
	}, nil)
}
