// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Page is a pages table row. Content and SocialEnabled hold raw JSON.
type Page struct {
	ID            string
	CompanyID     string
	Title         string
	Slug          string
	Content       string
	SocialEnabled string
	Status        string
	CreatedBy     string
	PublishedAt   sql.NullTime
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const pageColumns = `id, company_id, title, slug, content, social_enabled, status, created_by, published_at, created_at, updated_at`

func scanPage(row interface{ Scan(...any) error }) (Page, error) {
	var p Page
	err := row.Scan(&p.ID, &p.CompanyID, &p.Title, &p.Slug, &p.Content,
		&p.SocialEnabled, &p.Status, &p.CreatedBy, &p.PublishedAt,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreatePageParams holds the parameters for CreatePage.
type CreatePageParams struct {
	ID            string
	CompanyID     string
	Title         string
	Slug          string
	Content       string
	SocialEnabled string
	Status        string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const createPage = `
INSERT INTO pages (id, company_id, title, slug, content, social_enabled, status, created_by, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + pageColumns

// CreatePage inserts a page row.
func (q *Queries) CreatePage(ctx context.Context, arg CreatePageParams) (Page, error) {
	row := q.db.QueryRowContext(ctx, createPage,
		arg.ID, arg.CompanyID, arg.Title, arg.Slug, arg.Content,
		arg.SocialEnabled, arg.Status, arg.CreatedBy, arg.CreatedAt, arg.UpdatedAt)
	return scanPage(row)
}

// GetPageByID fetches a page by id.
func (q *Queries) GetPageByID(ctx context.Context, id string) (Page, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = ?`, id)
	return scanPage(row)
}

// GetPageByCompanySlugParams holds the parameters for the slug lookups.
type GetPageByCompanySlugParams struct {
	CompanyID string
	Slug      string
}

// GetPageByCompanySlug fetches a page by (company, slug) regardless of status.
func (q *Queries) GetPageByCompanySlug(ctx context.Context, arg GetPageByCompanySlugParams) (Page, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE company_id = ? AND slug = ?`,
		arg.CompanyID, arg.Slug)
	return scanPage(row)
}

// GetPublishedPageByCompanySlug fetches a published page by (company, slug).
func (q *Queries) GetPublishedPageByCompanySlug(ctx context.Context, arg GetPageByCompanySlugParams) (Page, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE company_id = ? AND slug = ? AND status = 'published'`,
		arg.CompanyID, arg.Slug)
	return scanPage(row)
}

// UpdatePageParams holds the parameters for UpdatePage.
type UpdatePageParams struct {
	ID            string
	Title         string
	Slug          string
	Content       string
	SocialEnabled string
	Status        string
	UpdatedAt     time.Time
}

const updatePage = `
UPDATE pages
SET title = ?, slug = ?, content = ?, social_enabled = ?, status = ?, updated_at = ?
WHERE id = ?
RETURNING ` + pageColumns

// UpdatePage updates a page's editable fields.
func (q *Queries) UpdatePage(ctx context.Context, arg UpdatePageParams) (Page, error) {
	row := q.db.QueryRowContext(ctx, updatePage,
		arg.Title, arg.Slug, arg.Content, arg.SocialEnabled, arg.Status,
		arg.UpdatedAt, arg.ID)
	return scanPage(row)
}

// MarkPagePublishedParams holds the parameters for MarkPagePublished.
type MarkPagePublishedParams struct {
	ID          string
	PublishedAt time.Time
	UpdatedAt   time.Time
}

const markPagePublished = `
UPDATE pages SET status = 'published', published_at = ?, updated_at = ?
WHERE id = ?
RETURNING ` + pageColumns

// MarkPagePublished transitions a page into the published status and stamps
// publishedAt. Republishing stamps it again.
func (q *Queries) MarkPagePublished(ctx context.Context, arg MarkPagePublishedParams) (Page, error) {
	row := q.db.QueryRowContext(ctx, markPagePublished, arg.PublishedAt, arg.UpdatedAt, arg.ID)
	return scanPage(row)
}

// DeletePage removes a page; dependent rows cascade.
func (q *Queries) DeletePage(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
	return err
}

// ListPagesByCompanyParams holds the parameters for ListPagesByCompany.
type ListPagesByCompanyParams struct {
	CompanyID string
	Limit     int64
	Offset    int64
}

const listPagesByCompany = `
SELECT ` + pageColumns + `
FROM pages WHERE company_id = ?
ORDER BY updated_at DESC
LIMIT ? OFFSET ?
`

// ListPagesByCompany lists a company's pages, most recently edited first.
func (q *Queries) ListPagesByCompany(ctx context.Context, arg ListPagesByCompanyParams) ([]Page, error) {
	rows, err := q.db.QueryContext(ctx, listPagesByCompany, arg.CompanyID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPages(rows)
}

func collectPages(rows *sql.Rows) ([]Page, error) {
	var pages []Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// CountPagesByCompany counts a company's pages.
func (q *Queries) CountPagesByCompany(ctx context.Context, companyID string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pages WHERE company_id = ?`, companyID).Scan(&count)
	return count, err
}

// CountPublishedPagesByCompany counts a company's published pages.
func (q *Queries) CountPublishedPagesByCompany(ctx context.Context, companyID string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pages WHERE company_id = ? AND status = 'published'`, companyID).Scan(&count)
	return count, err
}

// SlugExistsInCompanyParams holds the parameters for SlugExistsInCompany.
type SlugExistsInCompanyParams struct {
	CompanyID string
	Slug      string
	ExcludeID string // empty to check all rows
}

// SlugExistsInCompany reports whether another page in the company already
// uses the slug.
func (q *Queries) SlugExistsInCompany(ctx context.Context, arg SlugExistsInCompanyParams) (bool, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pages WHERE company_id = ? AND slug = ? AND id != ?`,
		arg.CompanyID, arg.Slug, arg.ExcludeID).Scan(&count)
	return count > 0, err
}

// GetPageAuthor returns the creator of a page.
func (q *Queries) GetPageAuthor(ctx context.Context, pageID string) (User, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+userColumnsPrefixed("u")+`
		 FROM users u JOIN pages p ON p.created_by = u.id
		 WHERE p.id = ?`, pageID)
	return scanUser(row)
}

func userColumnsPrefixed(alias string) string {
	return alias + `.id, ` + alias + `.company_id, ` + alias + `.email, ` + alias + `.password_hash, ` +
		alias + `.role, ` + alias + `.first_name, ` + alias + `.last_name, ` + alias + `.avatar_url, ` +
		alias + `.status, ` + alias + `.last_login, ` + alias + `.created_at, ` + alias + `.updated_at`
}
