// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/relayhq/relay-go/internal/auth"
	"github.com/relayhq/relay-go/internal/middleware"
	"github.com/relayhq/relay-go/internal/model"
	"github.com/relayhq/relay-go/internal/store"
	"github.com/relayhq/relay-go/internal/util"
)

// ContactView is the staff-facing contact payload.
type ContactView struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func contactViewOf(row store.User) ContactView {
	return ContactView{
		ID:        row.ID,
		CompanyID: row.CompanyID,
		Email:     row.Email,
		FirstName: util.StringFromNull(row.FirstName),
		LastName:  util.StringFromNull(row.LastName),
		Role:      row.Role,
		Status:    row.Status,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

// requireCompanyContact loads a user and checks they belong to the caller's
// company. Writes the error response on failure.
func (h *Handler) requireCompanyContact(w http.ResponseWriter, ctx context.Context, companyID, contactID string) (store.User, bool) {
	row, err := h.queries.GetUserByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Contact not found")
		} else {
			WriteInternalError(w, "Failed to load contact")
		}
		return store.User{}, false
	}
	if row.CompanyID != companyID {
		WriteNotFound(w, "Contact not found")
		return store.User{}, false
	}
	return row, true
}

// ListContacts handles GET /api/v1/admin/contacts.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, 20, 100)

	rows, err := h.queries.ListUsersByCompany(r.Context(), store.ListUsersByCompanyParams{
		CompanyID: user.CompanyID,
		Limit:     int64(perPage),
		Offset:    int64((page - 1) * perPage),
	})
	if err != nil {
		WriteInternalError(w, "Failed to list contacts")
		return
	}
	total, err := h.queries.CountUsersByCompany(r.Context(), user.CompanyID)
	if err != nil {
		WriteInternalError(w, "Failed to count contacts")
		return
	}

	contacts := make([]ContactView, 0, len(rows))
	for _, row := range rows {
		contacts = append(contacts, contactViewOf(row))
	}

	WriteSuccess(w, contacts, &Meta{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   totalPages(total, perPage),
	})
}

type contactRequest struct {
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Role      string   `json:"role"`
	Status    string   `json:"status"`
	GroupIDs  []string `json:"groupIds"`
}

// CreatedContact is the creation payload: the contact plus a one-time
// temporary password for first login.
type CreatedContact struct {
	ContactView
	TemporaryPassword string `json:"temporaryPassword"`
}

// CreateContact handles POST /api/v1/admin/contacts. Emails are unique per
// company; duplicates answer 409. The response carries a temporary password
// shown exactly once.
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req contactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		WriteBadRequest(w, "Validation failed", map[string]string{"email": "A valid email is required"})
		return
	}
	role := req.Role
	if role == "" {
		role = model.RoleEmployee
	}
	if !model.ValidRole(role) {
		WriteBadRequest(w, "Validation failed", map[string]string{"role": "Unknown role"})
		return
	}

	exists, err := h.queries.EmailExistsInCompany(r.Context(), store.EmailExistsInCompanyParams{
		CompanyID: user.CompanyID,
		Email:     email,
	})
	if err != nil {
		WriteInternalError(w, "Failed to check email")
		return
	}
	if exists {
		WriteConflict(w, "A contact with this email already exists")
		return
	}

	// Optional initial group memberships; groups must exist in the company.
	for _, groupID := range req.GroupIDs {
		group, err := h.queries.GetGroupByID(r.Context(), groupID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				WriteBadRequest(w, "Validation failed", map[string]string{"groupIds": "Unknown group: " + groupID})
				return
			}
			WriteInternalError(w, "Failed to check group")
			return
		}
		if group.CompanyID != user.CompanyID {
			WriteBadRequest(w, "Validation failed", map[string]string{"groupIds": "Unknown group: " + groupID})
			return
		}
	}

	tempPassword, err := auth.GenerateTemporaryPassword()
	if err != nil {
		WriteInternalError(w, "Failed to generate credentials")
		return
	}
	passwordHash, err := auth.HashPassword(tempPassword)
	if err != nil {
		WriteInternalError(w, "Failed to hash credentials")
		return
	}

	now := time.Now()
	row, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		ID:           uuid.NewString(),
		CompanyID:    user.CompanyID,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		FirstName:    util.NullStringFromValue(req.FirstName),
		LastName:     util.NullStringFromValue(req.LastName),
		Status:       model.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// The unique index backs up the pre-check under concurrency.
		if strings.Contains(err.Error(), "UNIQUE") {
			WriteConflict(w, "A contact with this email already exists")
			return
		}
		WriteInternalError(w, "Failed to create contact")
		return
	}

	for _, groupID := range req.GroupIDs {
		if _, err := h.members.AddMembers(r.Context(), groupID, []string{row.ID}); err != nil {
			h.WriteAppError(w, err)
			return
		}
	}

	h.logger.Info("contact created",
		"category", "contact",
		"user_id", user.ID,
		"contact_id", row.ID)
	WriteCreated(w, CreatedContact{
		ContactView:       contactViewOf(row),
		TemporaryPassword: tempPassword,
	})
}

// GetContact handles GET /api/v1/admin/contacts/{id}.
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	row, ok := h.requireCompanyContact(w, r.Context(), user.CompanyID, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	WriteSuccess(w, contactViewOf(row), nil)
}

// UpdateContact handles PUT /api/v1/admin/contacts/{id}.
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	row, ok := h.requireCompanyContact(w, r.Context(), user.CompanyID, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req contactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	email := row.Email
	if req.Email != "" {
		email = strings.ToLower(strings.TrimSpace(req.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			WriteBadRequest(w, "Validation failed", map[string]string{"email": "A valid email is required"})
			return
		}
		exists, err := h.queries.EmailExistsInCompany(r.Context(), store.EmailExistsInCompanyParams{
			CompanyID: user.CompanyID,
			Email:     email,
			ExcludeID: row.ID,
		})
		if err != nil {
			WriteInternalError(w, "Failed to check email")
			return
		}
		if exists {
			WriteConflict(w, "A contact with this email already exists")
			return
		}
	}

	role := row.Role
	if req.Role != "" {
		if !model.ValidRole(req.Role) {
			WriteBadRequest(w, "Validation failed", map[string]string{"role": "Unknown role"})
			return
		}
		role = req.Role
	}
	status := row.Status
	if req.Status != "" {
		if !model.ValidUserStatus(req.Status) {
			WriteBadRequest(w, "Validation failed", map[string]string{"status": "Unknown status"})
			return
		}
		status = req.Status
	}

	firstName := row.FirstName
	if req.FirstName != "" {
		firstName = util.NullStringFromValue(req.FirstName)
	}
	lastName := row.LastName
	if req.LastName != "" {
		lastName = util.NullStringFromValue(req.LastName)
	}

	updated, err := h.queries.UpdateUser(r.Context(), store.UpdateUserParams{
		ID:        row.ID,
		Email:     email,
		Role:      role,
		FirstName: firstName,
		LastName:  lastName,
		AvatarURL: row.AvatarURL,
		Status:    status,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		WriteInternalError(w, "Failed to update contact")
		return
	}
	WriteSuccess(w, contactViewOf(updated), nil)
}

// DeactivateContact handles DELETE /api/v1/admin/contacts/{id}. Contacts
// are never hard-deleted; their engagement history must survive. The row is
// flipped to inactive, which also revokes sign-in.
func (h *Handler) DeactivateContact(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	row, ok := h.requireCompanyContact(w, r.Context(), user.CompanyID, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if row.ID == user.ID {
		WriteBadRequest(w, "You cannot deactivate your own account", nil)
		return
	}

	if _, err := h.queries.UpdateUser(r.Context(), store.UpdateUserParams{
		ID:        row.ID,
		Email:     row.Email,
		Role:      row.Role,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		AvatarURL: row.AvatarURL,
		Status:    model.UserStatusInactive,
		UpdatedAt: time.Now(),
	}); err != nil {
		WriteInternalError(w, "Failed to deactivate contact")
		return
	}

	h.logger.Info("contact deactivated",
		"category", "contact",
		"user_id", user.ID,
		"contact_id", row.ID)
	WriteNoContent(w)
}
