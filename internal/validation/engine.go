// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package validation manages structured checks attached to pages: graded
// quizzes, read confirmations and ungraded surveys. Each user holds at most
// one response per validation; resubmitting replaces it.
package validation

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/relayhq/relay-go/internal/apperr"
	"github.com/relayhq/relay-go/internal/model"
	"github.com/relayhq/relay-go/internal/store"
)

// Engine grades and records validation responses.
type Engine struct {
	db      *sql.DB
	queries *store.Queries
	logger  *slog.Logger
}

// NewEngine creates a validation engine over the given database.
func NewEngine(db *sql.DB, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		db:      db,
		queries: store.New(db),
		logger:  logger,
	}
}

// CreateRequest describes a validation to attach to a page.
type CreateRequest struct {
	PageID         string
	ValidationType string
	Config         model.ValidationConfig
	Required       bool
}

// Create attaches a validation to a page of the user's company. Only staff
// with a publishing role may attach validations.
func (e *Engine) Create(ctx context.Context, user *model.User, req CreateRequest) (store.Validation, error) {
	if !user.CanPublish() {
		return store.Validation{}, apperr.Forbidden("managing validations requires an editor or admin role")
	}
	if !model.ValidValidationType(req.ValidationType) {
		return store.Validation{}, apperr.Validation("invalid validation type: " + req.ValidationType)
	}
	if err := validateConfig(req.ValidationType, req.Config); err != nil {
		return store.Validation{}, err
	}

	page, err := e.queries.GetPageByID(ctx, req.PageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Validation{}, apperr.NotFound("page")
		}
		return store.Validation{}, apperr.Internal("loading page", err)
	}
	if page.CompanyID != user.CompanyID {
		return store.Validation{}, apperr.NotFound("page")
	}

	config, err := req.Config.Marshal()
	if err != nil {
		return store.Validation{}, apperr.Internal("encoding validation config", err)
	}

	var required int64
	if req.Required {
		required = 1
	}

	row, err := e.queries.CreateValidation(ctx, store.CreateValidationParams{
		ID:             uuid.NewString(),
		PageID:         req.PageID,
		ValidationType: req.ValidationType,
		Config:         config,
		Required:       required,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		return store.Validation{}, apperr.Internal("creating validation", err)
	}

	e.logger.Info("validation created",
		"category", "validation",
		"user_id", user.ID,
		"page_id", req.PageID,
		"validation_id", row.ID,
		"validation_type", req.ValidationType)
	return row, nil
}

func validateConfig(validationType string, config model.ValidationConfig) error {
	switch validationType {
	case model.ValidationQuiz:
		for _, q := range config.Questions {
			if strings.TrimSpace(q.ID) == "" || strings.TrimSpace(q.Question) == "" {
				return apperr.Validation("quiz questions require id and question text")
			}
		}
	case model.ValidationConfirm:
		if strings.TrimSpace(config.ConfirmText) == "" {
			return apperr.Validation("confirmText is required for confirm validations")
		}
	case model.ValidationSurvey:
		if len(config.SurveyQuestions) == 0 {
			return apperr.Validation("surveyQuestions must not be empty")
		}
	}
	return nil
}

// SubmitRequest describes one response submission.
type SubmitRequest struct {
	ValidationID string
	Answers      map[string]any
	Confirmed    bool
}

// Result is one recorded response with grading, when applicable.
type Result struct {
	Response store.ValidationResponse
	Data     model.ResponseData
}

// Submit records the user's response. Quiz answers are graded server side;
// client-supplied scores are ignored. The page must be published and belong
// to the user's company.
func (e *Engine) Submit(ctx context.Context, user *model.User, req SubmitRequest) (Result, error) {
	v, err := e.queries.GetValidationWithPage(ctx, req.ValidationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, apperr.NotFound("validation")
		}
		return Result{}, apperr.Internal("loading validation", err)
	}
	if v.CompanyID != user.CompanyID || v.PageStatus != model.PageStatusPublished {
		return Result{}, apperr.NotFound("validation")
	}

	config, err := model.ParseValidationConfig(v.Config)
	if err != nil {
		return Result{}, apperr.Internal("parsing validation config", err)
	}

	var data model.ResponseData
	switch v.ValidationType {
	case model.ValidationQuiz:
		data = GradeQuiz(config.Questions, req.Answers)
	case model.ValidationConfirm:
		// A decline is still a recorded response.
		confirmed := req.Confirmed
		data = model.ResponseData{Confirmed: &confirmed}
	case model.ValidationSurvey:
		answers := req.Answers
		if answers == nil {
			answers = map[string]any{}
		}
		data = model.ResponseData{Answers: answers}
	default:
		return Result{}, apperr.Internal("unknown validation type", nil)
	}

	payload, err := data.Marshal()
	if err != nil {
		return Result{}, apperr.Internal("encoding response", err)
	}

	row, err := e.queries.UpsertResponse(ctx, store.UpsertResponseParams{
		ID:           uuid.NewString(),
		ValidationID: req.ValidationID,
		UserID:       user.ID,
		ResponseData: payload,
		SubmittedAt:  time.Now(),
	})
	if err != nil {
		return Result{}, apperr.Internal("recording response", err)
	}

	e.logger.Info("validation response recorded",
		"category", "validation",
		"user_id", user.ID,
		"validation_id", req.ValidationID,
		"validation_type", v.ValidationType)
	return Result{Response: row, Data: data}, nil
}

// GradeQuiz scores the answers against the quiz questions. The score is the
// rounded percentage of correct answers; a quiz with no questions scores 0
// and never passes. Answers must equal the correct value exactly.
func GradeQuiz(questions []model.QuizQuestion, answers map[string]any) model.ResponseData {
	score := 0
	if len(questions) > 0 {
		correct := 0
		for _, q := range questions {
			if answerMatches(q, answers[q.ID]) {
				correct++
			}
		}
		score = int(math.Round(100 * float64(correct) / float64(len(questions))))
	}
	passed := len(questions) > 0 && score >= model.QuizPassScore

	return model.ResponseData{
		Answers: answers,
		Score:   &score,
		Passed:  &passed,
	}
}

func answerMatches(q model.QuizQuestion, answer any) bool {
	given, ok := answer.(string)
	if !ok {
		return false
	}
	return given == q.CorrectAnswer
}

// ValidationView is a validation with the requesting user's response status.
type ValidationView struct {
	ID             string                 `json:"id"`
	PageID         string                 `json:"pageId"`
	ValidationType string                 `json:"validationType"`
	Config         model.ValidationConfig `json:"config"`
	Required       bool                   `json:"required"`
	CreatedAt      time.Time              `json:"createdAt"`
	Response       *model.ResponseData    `json:"response,omitempty"`
	SubmittedAt    *time.Time             `json:"submittedAt,omitempty"`
}

// ForPage lists the page's validations with the user's own responses. Quiz
// correct answers are stripped before the config leaves the server.
func (e *Engine) ForPage(ctx context.Context, user *model.User, pageID string) ([]ValidationView, error) {
	rows, err := e.queries.ListValidationsWithUserResponse(ctx, store.ListValidationsWithUserResponseParams{
		PageID: pageID,
		UserID: user.ID,
	})
	if err != nil {
		return nil, apperr.Internal("listing validations", err)
	}

	views := make([]ValidationView, 0, len(rows))
	for _, row := range rows {
		config, err := model.ParseValidationConfig(row.Config)
		if err != nil {
			return nil, apperr.Internal("parsing validation config", err)
		}
		if !user.CanPublish() {
			config = StripAnswers(config)
		}

		view := ValidationView{
			ID:             row.ID,
			PageID:         row.PageID,
			ValidationType: row.ValidationType,
			Config:         config,
			Required:       row.Required != 0,
			CreatedAt:      row.CreatedAt,
		}
		if row.ResponseData.Valid {
			data, err := model.ParseResponseData(row.ResponseData.String)
			if err == nil {
				view.Response = &data
			}
		}
		if row.SubmittedAt.Valid {
			t := row.SubmittedAt.Time
			view.SubmittedAt = &t
		}
		views = append(views, view)
	}
	return views, nil
}

// StripAnswers removes quiz answer keys from a config before sending it to
// employees.
func StripAnswers(config model.ValidationConfig) model.ValidationConfig {
	if len(config.Questions) == 0 {
		return config
	}
	stripped := make([]model.QuizQuestion, len(config.Questions))
	for i, q := range config.Questions {
		q.CorrectAnswer = ""
		stripped[i] = q
	}
	config.Questions = stripped
	return config
}

// Delete removes a validation from a page of the user's company.
func (e *Engine) Delete(ctx context.Context, user *model.User, validationID string) error {
	if !user.CanPublish() {
		return apperr.Forbidden("managing validations requires an editor or admin role")
	}

	v, err := e.queries.GetValidationWithPage(ctx, validationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("validation")
		}
		return apperr.Internal("loading validation", err)
	}
	if v.CompanyID != user.CompanyID {
		return apperr.NotFound("validation")
	}

	if err := e.queries.DeleteValidation(ctx, validationID); err != nil {
		return apperr.Internal("deleting validation", err)
	}
	return nil
}

// ResponseSummary aggregates responses to one validation for staff review.
type ResponseSummary struct {
	ValidationID string `json:"validationId"`
	Responses    int64  `json:"responses"`
}

// Summary counts submissions to a validation.
func (e *Engine) Summary(ctx context.Context, user *model.User, validationID string) (ResponseSummary, error) {
	v, err := e.queries.GetValidationWithPage(ctx, validationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ResponseSummary{}, apperr.NotFound("validation")
		}
		return ResponseSummary{}, apperr.Internal("loading validation", err)
	}
	if v.CompanyID != user.CompanyID {
		return ResponseSummary{}, apperr.NotFound("validation")
	}

	count, err := e.queries.CountResponses(ctx, validationID)
	if err != nil {
		return ResponseSummary{}, apperr.Internal("counting responses", err)
	}
	return ResponseSummary{ValidationID: validationID, Responses: count}, nil
}
