// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// Company is a companies table row.
type Company struct {
	ID        string
	Name      string
	Slug      string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateCompanyParams holds the parameters for CreateCompany.
type CreateCompanyParams struct {
	ID        string
	Name      string
	Slug      string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const createCompany = `
INSERT INTO companies (id, name, slug, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, name, slug, status, created_at, updated_at
`

// CreateCompany inserts a company row.
func (q *Queries) CreateCompany(ctx context.Context, arg CreateCompanyParams) (Company, error) {
	row := q.db.QueryRowContext(ctx, createCompany,
		arg.ID, arg.Name, arg.Slug, arg.Status, arg.CreatedAt, arg.UpdatedAt)
	var c Company
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// CountCompanies returns the number of company rows.
func (q *Queries) CountCompanies(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM companies`).Scan(&count)
	return count, err
}

const getCompanyByID = `
SELECT id, name, slug, status, created_at, updated_at
FROM companies WHERE id = ?
`

// GetCompanyByID fetches a company by id.
func (q *Queries) GetCompanyByID(ctx context.Context, id string) (Company, error) {
	row := q.db.QueryRowContext(ctx, getCompanyByID, id)
	var c Company
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
