// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Validation is a validations table row.
type Validation struct {
	ID             string
	PageID         string
	ValidationType string
	Config         string
	Required       int64
	CreatedAt      time.Time
}

const validationColumns = `id, page_id, validation_type, config, required, created_at`

func scanValidation(row interface{ Scan(...any) error }) (Validation, error) {
	var v Validation
	err := row.Scan(&v.ID, &v.PageID, &v.ValidationType, &v.Config, &v.Required, &v.CreatedAt)
	return v, err
}

// CreateValidationParams holds the parameters for CreateValidation.
type CreateValidationParams struct {
	ID             string
	PageID         string
	ValidationType string
	Config         string
	Required       int64
	CreatedAt      time.Time
}

const createValidation = `
INSERT INTO validations (id, page_id, validation_type, config, required, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + validationColumns

// CreateValidation attaches a validation to a page.
func (q *Queries) CreateValidation(ctx context.Context, arg CreateValidationParams) (Validation, error) {
	row := q.db.QueryRowContext(ctx, createValidation,
		arg.ID, arg.PageID, arg.ValidationType, arg.Config, arg.Required, arg.CreatedAt)
	return scanValidation(row)
}

// GetValidationByID fetches one validation.
func (q *Queries) GetValidationByID(ctx context.Context, id string) (Validation, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+validationColumns+` FROM validations WHERE id = ?`, id)
	return scanValidation(row)
}

// ValidationWithPage is a validation joined with its page's company and status.
type ValidationWithPage struct {
	Validation
	CompanyID  string
	PageStatus string
}

const getValidationWithPage = `
SELECT v.id, v.page_id, v.validation_type, v.config, v.required, v.created_at,
       p.company_id, p.status
FROM validations v
JOIN pages p ON p.id = v.page_id
WHERE v.id = ?
`

// GetValidationWithPage fetches a validation together with the owning page's
// company and status, for authorization checks.
func (q *Queries) GetValidationWithPage(ctx context.Context, id string) (ValidationWithPage, error) {
	var v ValidationWithPage
	err := q.db.QueryRowContext(ctx, getValidationWithPage, id).Scan(
		&v.ID, &v.PageID, &v.ValidationType, &v.Config, &v.Required, &v.CreatedAt,
		&v.CompanyID, &v.PageStatus)
	return v, err
}

const listValidationsByPage = `
SELECT ` + validationColumns + `
FROM validations WHERE page_id = ?
ORDER BY created_at
`

// ListValidationsByPage lists the page's validations, oldest first.
func (q *Queries) ListValidationsByPage(ctx context.Context, pageID string) ([]Validation, error) {
	rows, err := q.db.QueryContext(ctx, listValidationsByPage, pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var validations []Validation
	for rows.Next() {
		v, err := scanValidation(rows)
		if err != nil {
			return nil, err
		}
		validations = append(validations, v)
	}
	return validations, rows.Err()
}

// DeleteValidation removes a validation and, via cascade, its responses.
func (q *Queries) DeleteValidation(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM validations WHERE id = ?`, id)
	return err
}

// ValidationResponse is a validation_responses table row.
type ValidationResponse struct {
	ID           string
	ValidationID string
	UserID       string
	ResponseData string
	SubmittedAt  time.Time
}

const responseColumns = `id, validation_id, user_id, response_data, submitted_at`

func scanResponse(row interface{ Scan(...any) error }) (ValidationResponse, error) {
	var r ValidationResponse
	err := row.Scan(&r.ID, &r.ValidationID, &r.UserID, &r.ResponseData, &r.SubmittedAt)
	return r, err
}

// UpsertResponseParams holds the parameters for UpsertResponse.
type UpsertResponseParams struct {
	ID           string
	ValidationID string
	UserID       string
	ResponseData string
	SubmittedAt  time.Time
}

const upsertResponse = `
INSERT INTO validation_responses (id, validation_id, user_id, response_data, submitted_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (validation_id, user_id)
DO UPDATE SET response_data = excluded.response_data, submitted_at = excluded.submitted_at
RETURNING ` + responseColumns

// UpsertResponse records the user's response to a validation, replacing any
// earlier submission. submitted_at always reflects the latest submission.
func (q *Queries) UpsertResponse(ctx context.Context, arg UpsertResponseParams) (ValidationResponse, error) {
	row := q.db.QueryRowContext(ctx, upsertResponse,
		arg.ID, arg.ValidationID, arg.UserID, arg.ResponseData, arg.SubmittedAt)
	return scanResponse(row)
}

// GetResponseParams holds the parameters for GetResponse.
type GetResponseParams struct {
	ValidationID string
	UserID       string
}

const getResponse = `
SELECT ` + responseColumns + `
FROM validation_responses WHERE validation_id = ? AND user_id = ?
`

// GetResponse fetches the user's response to a validation, if any.
func (q *Queries) GetResponse(ctx context.Context, arg GetResponseParams) (ValidationResponse, error) {
	row := q.db.QueryRowContext(ctx, getResponse, arg.ValidationID, arg.UserID)
	return scanResponse(row)
}

// ValidationUserRow is a validation with the requesting user's response
// attached when one exists.
type ValidationUserRow struct {
	Validation
	ResponseData sql.NullString
	SubmittedAt  sql.NullTime
}

// ListValidationsWithUserResponseParams holds the parameters for
// ListValidationsWithUserResponse.
type ListValidationsWithUserResponseParams struct {
	PageID string
	UserID string
}

const listValidationsWithUserResponse = `
SELECT v.id, v.page_id, v.validation_type, v.config, v.required, v.created_at,
       r.response_data, r.submitted_at
FROM validations v
LEFT JOIN validation_responses r ON r.validation_id = v.id AND r.user_id = ?
WHERE v.page_id = ?
ORDER BY v.created_at
`

// ListValidationsWithUserResponse lists the page's validations, each carrying
// the user's own response when submitted.
func (q *Queries) ListValidationsWithUserResponse(ctx context.Context, arg ListValidationsWithUserResponseParams) ([]ValidationUserRow, error) {
	rows, err := q.db.QueryContext(ctx, listValidationsWithUserResponse, arg.UserID, arg.PageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ValidationUserRow
	for rows.Next() {
		var v ValidationUserRow
		if err := rows.Scan(&v.ID, &v.PageID, &v.ValidationType, &v.Config, &v.Required, &v.CreatedAt,
			&v.ResponseData, &v.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

const countResponses = `
SELECT COUNT(*) FROM validation_responses WHERE validation_id = ?
`

// CountResponses counts submissions to a validation.
func (q *Queries) CountResponses(ctx context.Context, validationID string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countResponses, validationID).Scan(&count)
	return count, err
}
