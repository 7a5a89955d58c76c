// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Validation types.
const (
	ValidationQuiz    = "quiz"
	ValidationConfirm = "confirm"
	ValidationSurvey  = "survey"
)

// QuizPassScore is the minimum quiz score (percent) counted as passed.
const QuizPassScore = 70

// QuizQuestion is one graded question of a quiz validation.
type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Type          string   `json:"type"` // multiple_choice, true_false, text
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
}

// SurveyQuestion is one ungraded question of a survey validation.
type SurveyQuestion struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Type     string   `json:"type"` // text, multiple_choice, rating
	Options  []string `json:"options,omitempty"`
}

// ValidationConfig is the tagged configuration payload of a validation.
// Quiz validations use Questions, confirm validations use ConfirmText,
// surveys use SurveyQuestions.
type ValidationConfig struct {
	Questions       []QuizQuestion   `json:"questions,omitempty"`
	ConfirmText     string           `json:"confirmText,omitempty"`
	SurveyQuestions []SurveyQuestion `json:"surveyQuestions,omitempty"`
}

// Marshal encodes the config as its stored JSON form.
func (c ValidationConfig) Marshal() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshaling validation config: %w", err)
	}
	return string(b), nil
}

// ParseValidationConfig decodes a stored validation config.
func ParseValidationConfig(raw string) (ValidationConfig, error) {
	var c ValidationConfig
	if raw == "" {
		return c, nil
	}
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return c, fmt.Errorf("parsing validation config: %w", err)
	}
	return c, nil
}

// ResponseData is the stored result of one validation response. Quiz
// responses carry Answers plus Score/Passed, confirm responses carry
// Confirmed, survey responses carry Answers verbatim.
type ResponseData struct {
	Answers   map[string]any `json:"answers,omitempty"`
	Score     *int           `json:"score,omitempty"`
	Passed    *bool          `json:"passed,omitempty"`
	Confirmed *bool          `json:"confirmed,omitempty"`
}

// Marshal encodes the response data as its stored JSON form.
func (d ResponseData) Marshal() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshaling response data: %w", err)
	}
	return string(b), nil
}

// ParseResponseData decodes stored response data.
func ParseResponseData(raw string) (ResponseData, error) {
	var d ResponseData
	if raw == "" {
		return d, nil
	}
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return d, fmt.Errorf("parsing response data: %w", err)
	}
	return d, nil
}

// Validation is a page-scoped structured check.
type Validation struct {
	ID             string           `json:"id"`
	PageID         string           `json:"page_id"`
	ValidationType string           `json:"validation_type"`
	Config         ValidationConfig `json:"config"`
	Required       bool             `json:"required"`
	CreatedAt      time.Time        `json:"created_at"`
}

// ValidationResponse is the single response of one user to one validation.
type ValidationResponse struct {
	ID           string       `json:"id"`
	ValidationID string       `json:"validation_id"`
	UserID       string       `json:"user_id"`
	Data         ResponseData `json:"data"`
	SubmittedAt  time.Time    `json:"submitted_at"`
}

// ValidValidationType reports whether s is a known validation type.
func ValidValidationType(s string) bool {
	switch s {
	case ValidationQuiz, ValidationConfirm, ValidationSurvey:
		return true
	}
	return false
}
