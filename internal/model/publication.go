// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Publication target types.
const (
	TargetAll      = "all"
	TargetGroups   = "groups"
	TargetContacts = "contacts"
)

// Publication is an immutable record of one publish action on a page.
// Republishing creates a new Publication; earlier ones are never deleted,
// so a page's audience is the union over all its publications.
type Publication struct {
	ID          string    `json:"id"`
	PageID      string    `json:"page_id"`
	PublishedBy string    `json:"published_by"`
	TargetType  string    `json:"target_type"`
	NotifyEmail bool      `json:"notify_email"`
	NotifyPush  bool      `json:"notify_push"`
	PublishedAt time.Time `json:"published_at"`
}

// PublicationTarget is one targeted group or user of a non-broadcast
// publication.
type PublicationTarget struct {
	ID            string `json:"id"`
	PublicationID string `json:"publication_id"`
	TargetType    string `json:"target_type"`
	TargetID      string `json:"target_id"` // group id or user id
}

// ValidTargetType reports whether s is a known publication target type.
func ValidTargetType(s string) bool {
	switch s {
	case TargetAll, TargetGroups, TargetContacts:
		return true
	}
	return false
}
