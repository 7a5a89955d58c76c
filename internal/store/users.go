// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// User is a users table row.
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string
	Role         string
	FirstName    sql.NullString
	LastName     sql.NullString
	AvatarURL    sql.NullString
	Status       string
	LastLogin    sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const userColumns = `id, company_id, email, password_hash, role, first_name, last_name, avatar_url, status, last_login, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.CompanyID, &u.Email, &u.PasswordHash, &u.Role,
		&u.FirstName, &u.LastName, &u.AvatarURL, &u.Status, &u.LastLogin,
		&u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetUserByID fetches a user by id.
func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByCompanyEmail fetches a user by (company, email).
func (q *Queries) GetUserByCompanyEmail(ctx context.Context, companyID, email string) (User, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE company_id = ? AND email = ?`, companyID, email)
	return scanUser(row)
}

// CreateUserParams holds the parameters for CreateUser.
type CreateUserParams struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string
	Role         string
	FirstName    sql.NullString
	LastName     sql.NullString
	AvatarURL    sql.NullString
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const createUser = `
INSERT INTO users (id, company_id, email, password_hash, role, first_name, last_name, avatar_url, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + userColumns

// CreateUser inserts a user row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.ID, arg.CompanyID, arg.Email, arg.PasswordHash, arg.Role,
		arg.FirstName, arg.LastName, arg.AvatarURL, arg.Status,
		arg.CreatedAt, arg.UpdatedAt)
	return scanUser(row)
}

// UpdateUserParams holds the parameters for UpdateUser.
type UpdateUserParams struct {
	ID        string
	Email     string
	Role      string
	FirstName sql.NullString
	LastName  sql.NullString
	AvatarURL sql.NullString
	Status    string
	UpdatedAt time.Time
}

const updateUser = `
UPDATE users
SET email = ?, role = ?, first_name = ?, last_name = ?, avatar_url = ?, status = ?, updated_at = ?
WHERE id = ?
RETURNING ` + userColumns

// UpdateUser updates a user's profile fields.
func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, updateUser,
		arg.Email, arg.Role, arg.FirstName, arg.LastName, arg.AvatarURL,
		arg.Status, arg.UpdatedAt, arg.ID)
	return scanUser(row)
}

// ListUsersByCompanyParams holds the parameters for ListUsersByCompany.
type ListUsersByCompanyParams struct {
	CompanyID string
	Limit     int64
	Offset    int64
}

const listUsersByCompany = `
SELECT ` + userColumns + `
FROM users WHERE company_id = ?
ORDER BY created_at DESC
LIMIT ? OFFSET ?
`

// ListUsersByCompany lists a company's users, newest first.
func (q *Queries) ListUsersByCompany(ctx context.Context, arg ListUsersByCompanyParams) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsersByCompany, arg.CompanyID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsersByCompany counts a company's users.
func (q *Queries) CountUsersByCompany(ctx context.Context, companyID string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE company_id = ?`, companyID).Scan(&count)
	return count, err
}

// EmailExistsInCompanyParams holds the parameters for EmailExistsInCompany.
type EmailExistsInCompanyParams struct {
	CompanyID string
	Email     string
	ExcludeID string // empty to check all rows
}

// EmailExistsInCompany reports whether another user in the company already
// uses the email.
func (q *Queries) EmailExistsInCompany(ctx context.Context, arg EmailExistsInCompanyParams) (bool, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE company_id = ? AND email = ? AND id != ?`,
		arg.CompanyID, arg.Email, arg.ExcludeID).Scan(&count)
	return count > 0, err
}

const listActiveUserIDsByCompany = `
SELECT id FROM users WHERE company_id = ? AND status = 'active'
`

// ListActiveUserIDsByCompany lists the IDs of the company's active users.
func (q *Queries) ListActiveUserIDsByCompany(ctx context.Context, companyID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listActiveUserIDsByCompany, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIDs(rows)
}

func collectIDs(rows *sql.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
