// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Page statuses
const (
	PageStatusDraft     = "draft"
	PageStatusPublished = "published"
	PageStatusArchived  = "archived"
)

// SocialSettings controls which engagement features are enabled on a page.
type SocialSettings struct {
	Reactions bool `json:"reactions"`
	Comments  bool `json:"comments"`
	Share     bool `json:"share"`
}

// DefaultSocialSettings enables everything, matching the editor default.
func DefaultSocialSettings() SocialSettings {
	return SocialSettings{Reactions: true, Comments: true, Share: true}
}

// Page represents a company-scoped document with a block-structured content
// body. Content is the editor's JSON document, treated as opaque here except
// for plain-text preview extraction.
type Page struct {
	ID            string          `json:"id"`
	CompanyID     string          `json:"company_id"`
	Title         string          `json:"title"`
	Slug          string          `json:"slug"`
	Content       json.RawMessage `json:"content"`
	SocialEnabled SocialSettings  `json:"social_enabled"`
	Status        string          `json:"status"`
	CreatedBy     string          `json:"created_by"`
	PublishedAt   sql.NullTime    `json:"published_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsPublished returns true if the page is published.
func (p *Page) IsPublished() bool {
	return p.Status == PageStatusPublished
}

// IsDraft returns true if the page is a draft.
func (p *Page) IsDraft() bool {
	return p.Status == PageStatusDraft
}

// ValidPageStatus reports whether s is a known page status.
func ValidPageStatus(s string) bool {
	switch s {
	case PageStatusDraft, PageStatusPublished, PageStatusArchived:
		return true
	}
	return false
}
