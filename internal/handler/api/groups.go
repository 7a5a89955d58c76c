// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/relayhq/relay-go/internal/middleware"
	"github.com/relayhq/relay-go/internal/store"
	"github.com/relayhq/relay-go/internal/util"
)

// GroupView is the staff-facing group payload.
type GroupView struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"companyId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Members     int64     `json:"members"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (h *Handler) groupViewOf(ctx context.Context, group store.Group) GroupView {
	members, err := h.queries.CountGroupMembers(ctx, group.ID)
	if err != nil {
		members = 0
	}
	return GroupView{
		ID:          group.ID,
		CompanyID:   group.CompanyID,
		Name:        group.Name,
		Description: util.StringFromNull(group.Description),
		Members:     members,
		CreatedAt:   group.CreatedAt,
	}
}

// requireCompanyGroup loads a group and checks it belongs to the caller's
// company. Writes the error response on failure.
func (h *Handler) requireCompanyGroup(w http.ResponseWriter, ctx context.Context, companyID, groupID string) (store.Group, bool) {
	group, err := h.queries.GetGroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Group not found")
		} else {
			WriteInternalError(w, "Failed to load group")
		}
		return store.Group{}, false
	}
	if group.CompanyID != companyID {
		WriteNotFound(w, "Group not found")
		return store.Group{}, false
	}
	return group, true
}

// ListGroups handles GET /api/v1/admin/groups.
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, 20, 100)

	rows, err := h.queries.ListGroupsByCompany(r.Context(), store.ListGroupsByCompanyParams{
		CompanyID: user.CompanyID,
		Limit:     int64(perPage),
		Offset:    int64((page - 1) * perPage),
	})
	if err != nil {
		WriteInternalError(w, "Failed to list groups")
		return
	}
	total, err := h.queries.CountGroupsByCompany(r.Context(), user.CompanyID)
	if err != nil {
		WriteInternalError(w, "Failed to count groups")
		return
	}

	groups := make([]GroupView, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, h.groupViewOf(r.Context(), row))
	}

	WriteSuccess(w, groups, &Meta{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   totalPages(total, perPage),
	})
}

type groupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateGroup handles POST /api/v1/admin/groups.
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req groupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		WriteBadRequest(w, "Validation failed", map[string]string{"name": "Name is required"})
		return
	}

	now := time.Now()
	row, err := h.queries.CreateGroup(r.Context(), store.CreateGroupParams{
		ID:          uuid.NewString(),
		CompanyID:   user.CompanyID,
		Name:        req.Name,
		Description: util.NullStringFromValue(req.Description),
		CreatedBy:   user.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		WriteInternalError(w, "Failed to create group")
		return
	}

	h.logger.Info("group created",
		"category", "group",
		"user_id", user.ID,
		"group_id", row.ID)
	WriteCreated(w, h.groupViewOf(r.Context(), row))
}

// GetGroup handles GET /api/v1/admin/groups/{id}.
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	group, ok := h.requireCompanyGroup(w, r.Context(), user.CompanyID, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	WriteSuccess(w, h.groupViewOf(r.Context(), group), nil)
}

// UpdateGroup handles PUT /api/v1/admin/groups/{id}.
func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	group, ok := h.requireCompanyGroup(w, r.Context(), user.CompanyID, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req groupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	name := group.Name
	if req.Name != "" {
		name = req.Name
	}
	description := group.Description
	if req.Description != "" {
		description = util.NullStringFromValue(req.Description)
	}

	row, err := h.queries.UpdateGroup(r.Context(), store.UpdateGroupParams{
		ID:          group.ID,
		Name:        name,
		Description: description,
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		WriteInternalError(w, "Failed to update group")
		return
	}
	WriteSuccess(w, h.groupViewOf(r.Context(), row), nil)
}

// DeleteGroup handles DELETE /api/v1/admin/groups/{id}. Membership edges
// cascade away; publications that targeted the group keep their target rows
// and simply stop matching anyone.
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	group, ok := h.requireCompanyGroup(w, r.Context(), user.CompanyID, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.queries.DeleteGroup(r.Context(), group.ID); err != nil {
		WriteInternalError(w, "Failed to delete group")
		return
	}

	h.logger.Info("group deleted",
		"category", "group",
		"user_id", user.ID,
		"group_id", group.ID)
	WriteNoContent(w)
}

// GroupMemberView is one member row in a group listing.
type GroupMemberView struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// ListGroupMembers handles GET /api/v1/admin/groups/{id}/members.
func (h *Handler) ListGroupMembers(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	group, ok := h.requireCompanyGroup(w, r.Context(), user.CompanyID, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	rows, err := h.queries.ListGroupMembers(r.Context(), group.ID)
	if err != nil {
		WriteInternalError(w, "Failed to list group members")
		return
	}

	members := make([]GroupMemberView, 0, len(rows))
	for _, row := range rows {
		members = append(members, GroupMemberView{
			UserID:    row.UserID,
			Email:     row.Email,
			FirstName: util.StringFromNull(row.FirstName),
			LastName:  util.StringFromNull(row.LastName),
			Role:      row.Role,
			Status:    row.Status,
			JoinedAt:  row.JoinedAt,
		})
	}
	WriteSuccess(w, members, nil)
}

type memberBatchRequest struct {
	UserIDs []string `json:"userIds"`
}

// AddGroupMembers handles POST /api/v1/admin/groups/{id}/members. Users
// already in the group are skipped, not errors.
func (h *Handler) AddGroupMembers(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	group, ok := h.requireCompanyGroup(w, r.Context(), user.CompanyID, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req memberBatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.members.AddMembers(r.Context(), group.ID, req.UserIDs)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	WriteSuccess(w, result, nil)
}

// RemoveGroupMembers handles DELETE /api/v1/admin/groups/{id}/members.
func (h *Handler) RemoveGroupMembers(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	group, ok := h.requireCompanyGroup(w, r.Context(), user.CompanyID, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req memberBatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.members.RemoveMembers(r.Context(), group.ID, req.UserIDs)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	WriteSuccess(w, result, nil)
}
