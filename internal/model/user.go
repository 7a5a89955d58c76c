// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including Company, User, Group, Page, Publication and the
// tagged JSON payload types carried by interactions and validations.
package model

import (
	"database/sql"
	"time"
)

// User roles.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleEditor     = "editor"
	RoleEmployee   = "employee"
)

// User statuses.
const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

// User represents a company member. Users are never hard-deleted; they go
// away only when their company is removed (cascade).
type User struct {
	ID           string         `json:"id"`
	CompanyID    string         `json:"company_id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"` // Never expose in JSON
	Role         string         `json:"role"`
	FirstName    sql.NullString `json:"first_name,omitempty"`
	LastName     sql.NullString `json:"last_name,omitempty"`
	AvatarURL    sql.NullString `json:"avatar_url,omitempty"`
	Status       string         `json:"status"`
	LastLogin    sql.NullTime   `json:"last_login,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// IsAdmin returns true if the user has admin or super_admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// CanPublish returns true if the user's role allows publishing pages.
func (u *User) CanPublish() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin || u.Role == RoleEditor
}

// IsActive returns true if the user's status permits signing in.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// DisplayName returns "First Last" with missing parts dropped, or "Unknown".
func (u *User) DisplayName() string {
	name := ""
	if u.FirstName.Valid {
		name = u.FirstName.String
	}
	if u.LastName.Valid && u.LastName.String != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName.String
	}
	if name == "" {
		return "Unknown"
	}
	return name
}

// ValidRole reports whether s is one of the known user roles.
func ValidRole(s string) bool {
	switch s {
	case RoleSuperAdmin, RoleAdmin, RoleEditor, RoleEmployee:
		return true
	}
	return false
}

// ValidUserStatus reports whether s is one of the known user statuses.
func ValidUserStatus(s string) bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusSuspended:
		return true
	}
	return false
}
