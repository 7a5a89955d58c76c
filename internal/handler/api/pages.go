// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/relayhq/relay-go/internal/middleware"
	"github.com/relayhq/relay-go/internal/model"
	"github.com/relayhq/relay-go/internal/store"
	"github.com/relayhq/relay-go/internal/targeting"
	"github.com/relayhq/relay-go/internal/util"
	"github.com/relayhq/relay-go/internal/validation"
)

// AdminPage is the staff-facing page payload.
type AdminPage struct {
	ID            string               `json:"id"`
	CompanyID     string               `json:"companyId"`
	Title         string               `json:"title"`
	Slug          string               `json:"slug"`
	Content       json.RawMessage      `json:"content"`
	SocialEnabled model.SocialSettings `json:"socialEnabled"`
	Status        string               `json:"status"`
	CreatedBy     string               `json:"createdBy"`
	PublishedAt   *time.Time           `json:"publishedAt,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

func adminPageOf(page store.Page) AdminPage {
	view := AdminPage{
		ID:            page.ID,
		CompanyID:     page.CompanyID,
		Title:         page.Title,
		Slug:          page.Slug,
		Content:       json.RawMessage(page.Content),
		SocialEnabled: socialSettingsOf(page.SocialEnabled),
		Status:        page.Status,
		CreatedBy:     page.CreatedBy,
		CreatedAt:     page.CreatedAt,
		UpdatedAt:     page.UpdatedAt,
	}
	if page.PublishedAt.Valid {
		t := page.PublishedAt.Time
		view.PublishedAt = &t
	}
	return view
}

// requireCompanyPage loads a page and checks it belongs to the caller's
// company. Writes the error response on failure.
func (h *Handler) requireCompanyPage(w http.ResponseWriter, ctx context.Context, companyID, pageID string) (store.Page, bool) {
	page, err := h.queries.GetPageByID(ctx, pageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Page not found")
		} else {
			WriteInternalError(w, "Failed to load page")
		}
		return store.Page{}, false
	}
	if page.CompanyID != companyID {
		WriteNotFound(w, "Page not found")
		return store.Page{}, false
	}
	return page, true
}

// ListPages handles GET /api/v1/admin/pages.
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, 20, 100)

	rows, err := h.queries.ListPagesByCompany(r.Context(), store.ListPagesByCompanyParams{
		CompanyID: user.CompanyID,
		Limit:     int64(perPage),
		Offset:    int64((page - 1) * perPage),
	})
	if err != nil {
		WriteInternalError(w, "Failed to list pages")
		return
	}
	total, err := h.queries.CountPagesByCompany(r.Context(), user.CompanyID)
	if err != nil {
		WriteInternalError(w, "Failed to count pages")
		return
	}

	pages := make([]AdminPage, 0, len(rows))
	for _, row := range rows {
		pages = append(pages, adminPageOf(row))
	}

	WriteSuccess(w, pages, &Meta{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   totalPages(total, perPage),
	})
}

type pageRequest struct {
	Title         string                `json:"title"`
	Slug          string                `json:"slug"`
	Content       json.RawMessage       `json:"content"`
	SocialEnabled *model.SocialSettings `json:"socialEnabled"`
}

// CreatePage handles POST /api/v1/admin/pages. Pages start as drafts; a slug
// is derived from the title when not supplied.
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req pageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" {
		WriteBadRequest(w, "Validation failed", map[string]string{"title": "Title is required"})
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = util.Slugify(req.Title)
	}
	if !util.IsValidSlug(slug) {
		WriteBadRequest(w, "Validation failed", map[string]string{"slug": "Invalid slug"})
		return
	}

	exists, err := h.queries.SlugExistsInCompany(r.Context(), store.SlugExistsInCompanyParams{
		CompanyID: user.CompanyID,
		Slug:      slug,
	})
	if err != nil {
		WriteInternalError(w, "Failed to check slug")
		return
	}
	if exists {
		WriteConflict(w, "Slug already exists")
		return
	}

	settings := model.DefaultSocialSettings()
	if req.SocialEnabled != nil {
		settings = *req.SocialEnabled
	}
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		WriteInternalError(w, "Failed to encode social settings")
		return
	}

	content := "{}"
	if len(req.Content) > 0 {
		if !json.Valid(req.Content) {
			WriteBadRequest(w, "Validation failed", map[string]string{"content": "Content must be a JSON document"})
			return
		}
		content = string(req.Content)
	}

	now := time.Now()
	row, err := h.queries.CreatePage(r.Context(), store.CreatePageParams{
		ID:            uuid.NewString(),
		CompanyID:     user.CompanyID,
		Title:         req.Title,
		Slug:          slug,
		Content:       content,
		SocialEnabled: string(settingsJSON),
		Status:        model.PageStatusDraft,
		CreatedBy:     user.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		WriteInternalError(w, "Failed to create page")
		return
	}

	h.logger.Info("page created",
		"category", "page",
		"user_id", user.ID,
		"page_id", row.ID,
		"slug", slug)
	WriteCreated(w, adminPageOf(row))
}

// GetAdminPage handles GET /api/v1/admin/pages/{id}.
func (h *Handler) GetAdminPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	page, ok := h.requireCompanyPage(w, r.Context(), user.CompanyID, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	WriteSuccess(w, adminPageOf(page), nil)
}

// UpdatePage handles PUT /api/v1/admin/pages/{id}. The slug and status are
// immutable here; publishing is its own operation.
func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	page, ok := h.requireCompanyPage(w, r.Context(), user.CompanyID, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req pageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	title := page.Title
	if req.Title != "" {
		title = req.Title
	}
	content := page.Content
	if len(req.Content) > 0 {
		if !json.Valid(req.Content) {
			WriteBadRequest(w, "Validation failed", map[string]string{"content": "Content must be a JSON document"})
			return
		}
		content = string(req.Content)
	}
	settings := page.SocialEnabled
	if req.SocialEnabled != nil {
		settingsJSON, err := json.Marshal(*req.SocialEnabled)
		if err != nil {
			WriteInternalError(w, "Failed to encode social settings")
			return
		}
		settings = string(settingsJSON)
	}

	row, err := h.queries.UpdatePage(r.Context(), store.UpdatePageParams{
		ID:            page.ID,
		Title:         title,
		Slug:          page.Slug,
		Content:       content,
		SocialEnabled: settings,
		Status:        page.Status,
		UpdatedAt:     time.Now(),
	})
	if err != nil {
		WriteInternalError(w, "Failed to update page")
		return
	}
	WriteSuccess(w, adminPageOf(row), nil)
}

// DeletePage handles DELETE /api/v1/admin/pages/{id}. Publications, views,
// interactions and validations cascade away with the page.
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	page, ok := h.requireCompanyPage(w, r.Context(), user.CompanyID, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.queries.DeletePage(r.Context(), page.ID); err != nil {
		WriteInternalError(w, "Failed to delete page")
		return
	}

	h.logger.Info("page deleted",
		"category", "page",
		"user_id", user.ID,
		"page_id", page.ID)
	WriteNoContent(w)
}

// PublishPage handles POST /api/v1/admin/pages/{id}/publish. Each publish
// appends a publication; earlier audiences stay in effect.
func (h *Handler) PublishPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	pageID := chi.URLParam(r, "id")

	var req struct {
		TargetType  string   `json:"targetType"`
		TargetIDs   []string `json:"targetIds"`
		NotifyEmail bool     `json:"notifyEmail"`
		NotifyPush  bool     `json:"notifyPush"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	pub, err := h.targets.Publish(r.Context(), user, targeting.PublishRequest{
		PageID:      pageID,
		TargetType:  req.TargetType,
		TargetIDs:   req.TargetIDs,
		NotifyEmail: req.NotifyEmail,
		NotifyPush:  req.NotifyPush,
	})
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	if h.notifier != nil {
		page, err := h.queries.GetPageByID(r.Context(), pageID)
		if err == nil {
			h.notifier.DispatchPublication(r.Context(), pub, page.Title)
		}
	}

	WriteCreated(w, publicationOf(pub, req.TargetIDs))
}

// PublicationView is one publication in a page's history.
type PublicationView struct {
	ID          string    `json:"id"`
	PageID      string    `json:"pageId"`
	PublishedBy string    `json:"publishedBy"`
	TargetType  string    `json:"targetType"`
	TargetIDs   []string  `json:"targetIds,omitempty"`
	NotifyEmail bool      `json:"notifyEmail"`
	NotifyPush  bool      `json:"notifyPush"`
	PublishedAt time.Time `json:"publishedAt"`
}

func publicationOf(pub store.Publication, targetIDs []string) PublicationView {
	return PublicationView{
		ID:          pub.ID,
		PageID:      pub.PageID,
		PublishedBy: pub.PublishedBy,
		TargetType:  pub.TargetType,
		TargetIDs:   targetIDs,
		NotifyEmail: pub.NotifyEmail != 0,
		NotifyPush:  pub.NotifyPush != 0,
		PublishedAt: pub.PublishedAt,
	}
}

// ListPublications handles GET /api/v1/admin/pages/{id}/publications.
func (h *Handler) ListPublications(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	page, ok := h.requireCompanyPage(w, r.Context(), user.CompanyID, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	details, err := h.targets.Publications(r.Context(), page.ID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	views := make([]PublicationView, 0, len(details))
	for _, d := range details {
		views = append(views, publicationOf(d.Publication, d.TargetIDs))
	}
	WriteSuccess(w, views, nil)
}

// PageStats handles GET /api/v1/admin/pages/{id}/stats.
func (h *Handler) PageStats(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	page, ok := h.requireCompanyPage(w, r.Context(), user.CompanyID, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	stats, err := h.engage.StatsFor(r.Context(), page.ID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	WriteSuccess(w, stats, nil)
}

// CreateValidation handles POST /api/v1/admin/pages/{id}/validations.
func (h *Handler) CreateValidation(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	pageID := chi.URLParam(r, "id")

	var req struct {
		ValidationType string                 `json:"validationType"`
		Config         model.ValidationConfig `json:"config"`
		Required       bool                   `json:"required"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	row, err := h.checks.Create(r.Context(), user, validation.CreateRequest{
		PageID:         pageID,
		ValidationType: req.ValidationType,
		Config:         req.Config,
		Required:       req.Required,
	})
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	config, _ := model.ParseValidationConfig(row.Config)
	WriteCreated(w, map[string]any{
		"id":             row.ID,
		"pageId":         row.PageID,
		"validationType": row.ValidationType,
		"config":         config,
		"required":       row.Required != 0,
		"createdAt":      row.CreatedAt,
	})
}

// DeleteValidation handles DELETE /api/v1/admin/validations/{id}.
func (h *Handler) DeleteValidation(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if err := h.checks.Delete(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		h.WriteAppError(w, err)
		return
	}
	WriteNoContent(w)
}

// ValidationSummary handles GET /api/v1/admin/validations/{id}/summary.
func (h *Handler) ValidationSummary(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	summary, err := h.checks.Summary(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	WriteSuccess(w, summary, nil)
}
