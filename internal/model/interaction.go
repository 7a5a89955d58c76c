// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Interaction types.
const (
	InteractionReaction = "reaction"
	InteractionComment  = "comment"
	InteractionShare    = "share"
)

// Reaction types.
const (
	ReactionLike       = "like"
	ReactionLove       = "love"
	ReactionCelebrate  = "celebrate"
	ReactionInsightful = "insightful"
	ReactionSupport    = "support"
)

// ReactionTypes lists the allowed reaction values in display order.
var ReactionTypes = []string{
	ReactionLike, ReactionLove, ReactionCelebrate, ReactionInsightful, ReactionSupport,
}

// MaxCommentLength is the upper bound on comment text.
const MaxCommentLength = 2000

// InteractionData is the tagged payload of a page interaction. Which fields
// are populated depends on the owning row's interaction type: reactions carry
// ReactionType, comments carry CommentText (and optionally ParentCommentID,
// stored but not threaded), shares carry ShareMethod.
type InteractionData struct {
	ReactionType    string `json:"reactionType,omitempty"`
	CommentText     string `json:"commentText,omitempty"`
	ParentCommentID string `json:"parentCommentId,omitempty"`
	ShareMethod     string `json:"shareMethod,omitempty"`
}

// NewReactionData validates the reaction type and builds the payload.
func NewReactionData(reactionType string) (InteractionData, error) {
	if !ValidReactionType(reactionType) {
		return InteractionData{}, fmt.Errorf("invalid reaction type %q", reactionType)
	}
	return InteractionData{ReactionType: reactionType}, nil
}

// NewCommentData validates and trims comment text and builds the payload.
func NewCommentData(text, parentCommentID string) (InteractionData, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return InteractionData{}, fmt.Errorf("comment text is required")
	}
	if len(text) > MaxCommentLength {
		return InteractionData{}, fmt.Errorf("comment text is too long (max %d characters)", MaxCommentLength)
	}
	return InteractionData{CommentText: trimmed, ParentCommentID: parentCommentID}, nil
}

// ValidReactionType reports whether s is one of the fixed reaction values.
func ValidReactionType(s string) bool {
	switch s {
	case ReactionLike, ReactionLove, ReactionCelebrate, ReactionInsightful, ReactionSupport:
		return true
	}
	return false
}

// Marshal encodes the payload as its stored JSON form.
func (d InteractionData) Marshal() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshaling interaction data: %w", err)
	}
	return string(b), nil
}

// ParseInteractionData decodes a stored payload. Unknown fields are dropped;
// rows written by older builds stay readable.
func ParseInteractionData(raw string) (InteractionData, error) {
	var d InteractionData
	if raw == "" {
		return d, nil
	}
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return d, fmt.Errorf("parsing interaction data: %w", err)
	}
	return d, nil
}

// Interaction is a page-scoped, user-scoped engagement event.
type Interaction struct {
	ID              string          `json:"id"`
	PageID          string          `json:"page_id"`
	UserID          string          `json:"user_id"`
	InteractionType string          `json:"interaction_type"`
	Data            InteractionData `json:"data"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PageView is one view event. Views are not deduplicated at write time;
// distinct-viewer counting happens at aggregation.
type PageView struct {
	ID              string        `json:"id"`
	PageID          string        `json:"page_id"`
	UserID          string        `json:"user_id"`
	ViewedAt        time.Time     `json:"viewed_at"`
	DurationSeconds sql.NullInt64 `json:"duration_seconds,omitempty"`
	Device          string        `json:"device,omitempty"`
}
