// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/relayhq/relay-go/internal/middleware"
)

// DashboardStats summarizes a company's activity for the admin dashboard.
type DashboardStats struct {
	Pages          int64 `json:"pages"`
	PublishedPages int64 `json:"publishedPages"`
	Contacts       int64 `json:"contacts"`
	Groups         int64 `json:"groups"`
	Views          int64 `json:"views"`
	Interactions   int64 `json:"interactions"`
}

// Dashboard handles GET /api/v1/admin/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	ctx := r.Context()

	var stats DashboardStats
	var err error

	if stats.Pages, err = h.queries.CountPagesByCompany(ctx, user.CompanyID); err != nil {
		WriteInternalError(w, "Failed to count pages")
		return
	}
	if stats.PublishedPages, err = h.queries.CountPublishedPagesByCompany(ctx, user.CompanyID); err != nil {
		WriteInternalError(w, "Failed to count published pages")
		return
	}
	if stats.Contacts, err = h.queries.CountUsersByCompany(ctx, user.CompanyID); err != nil {
		WriteInternalError(w, "Failed to count contacts")
		return
	}
	if stats.Groups, err = h.queries.CountGroupsByCompany(ctx, user.CompanyID); err != nil {
		WriteInternalError(w, "Failed to count groups")
		return
	}
	if stats.Views, err = h.queries.CountViewsByCompany(ctx, user.CompanyID); err != nil {
		WriteInternalError(w, "Failed to count views")
		return
	}
	if stats.Interactions, err = h.queries.CountInteractionsByCompany(ctx, user.CompanyID); err != nil {
		WriteInternalError(w, "Failed to count interactions")
		return
	}

	WriteSuccess(w, stats, nil)
}
