// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Group is a groups table row.
type Group struct {
	ID          string
	CompanyID   string
	Name        string
	Description sql.NullString
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const groupColumns = `id, company_id, name, description, created_by, created_at, updated_at`

func scanGroup(row interface{ Scan(...any) error }) (Group, error) {
	var g Group
	err := row.Scan(&g.ID, &g.CompanyID, &g.Name, &g.Description, &g.CreatedBy,
		&g.CreatedAt, &g.UpdatedAt)
	return g, err
}

// CreateGroupParams holds the parameters for CreateGroup.
type CreateGroupParams struct {
	ID          string
	CompanyID   string
	Name        string
	Description sql.NullString
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const createGroup = `
INSERT INTO groups (id, company_id, name, description, created_by, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + groupColumns

// CreateGroup inserts a group row.
func (q *Queries) CreateGroup(ctx context.Context, arg CreateGroupParams) (Group, error) {
	row := q.db.QueryRowContext(ctx, createGroup,
		arg.ID, arg.CompanyID, arg.Name, arg.Description, arg.CreatedBy,
		arg.CreatedAt, arg.UpdatedAt)
	return scanGroup(row)
}

// GetGroupByID fetches a group by id.
func (q *Queries) GetGroupByID(ctx context.Context, id string) (Group, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = ?`, id)
	return scanGroup(row)
}

// UpdateGroupParams holds the parameters for UpdateGroup.
type UpdateGroupParams struct {
	ID          string
	Name        string
	Description sql.NullString
	UpdatedAt   time.Time
}

const updateGroup = `
UPDATE groups SET name = ?, description = ?, updated_at = ?
WHERE id = ?
RETURNING ` + groupColumns

// UpdateGroup renames a group and edits its description.
func (q *Queries) UpdateGroup(ctx context.Context, arg UpdateGroupParams) (Group, error) {
	row := q.db.QueryRowContext(ctx, updateGroup, arg.Name, arg.Description, arg.UpdatedAt, arg.ID)
	return scanGroup(row)
}

// DeleteGroup removes a group; memberships cascade.
func (q *Queries) DeleteGroup(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
	return err
}

// ListGroupsByCompanyParams holds the parameters for ListGroupsByCompany.
type ListGroupsByCompanyParams struct {
	CompanyID string
	Limit     int64
	Offset    int64
}

const listGroupsByCompany = `
SELECT ` + groupColumns + `
FROM groups WHERE company_id = ?
ORDER BY name
LIMIT ? OFFSET ?
`

// ListGroupsByCompany lists a company's groups by name.
func (q *Queries) ListGroupsByCompany(ctx context.Context, arg ListGroupsByCompanyParams) ([]Group, error) {
	rows, err := q.db.QueryContext(ctx, listGroupsByCompany, arg.CompanyID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// CountGroupsByCompany counts a company's groups.
func (q *Queries) CountGroupsByCompany(ctx context.Context, companyID string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM groups WHERE company_id = ?`, companyID).Scan(&count)
	return count, err
}

// AddGroupMemberParams holds the parameters for AddGroupMember.
type AddGroupMemberParams struct {
	GroupID  string
	UserID   string
	JoinedAt time.Time
}

const addGroupMember = `
INSERT INTO group_members (group_id, user_id, joined_at)
VALUES (?, ?, ?)
ON CONFLICT (group_id, user_id) DO NOTHING
`

// AddGroupMember inserts a membership edge, skipping existing pairs.
// Returns true when a row was inserted.
func (q *Queries) AddGroupMember(ctx context.Context, arg AddGroupMemberParams) (bool, error) {
	res, err := q.db.ExecContext(ctx, addGroupMember, arg.GroupID, arg.UserID, arg.JoinedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// RemoveGroupMembersParams holds the parameters for RemoveGroupMembers.
type RemoveGroupMembersParams struct {
	GroupID string
	UserIDs []string
}

// RemoveGroupMembers deletes the given membership edges and returns how many
// rows were removed.
func (q *Queries) RemoveGroupMembers(ctx context.Context, arg RemoveGroupMembersParams) (int64, error) {
	if len(arg.UserIDs) == 0 {
		return 0, nil
	}
	query := `DELETE FROM group_members WHERE group_id = ? AND user_id IN (` +
		inPlaceholders(len(arg.UserIDs)) + `)`
	args := append([]any{arg.GroupID}, idArgs(arg.UserIDs)...)
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetUserGroupIDs returns the ids of all groups the user belongs to.
func (q *Queries) GetUserGroupIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT group_id FROM group_members WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

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

// GroupMemberRow is a membership edge joined with the member's profile.
type GroupMemberRow struct {
	UserID    string
	Email     string
	FirstName sql.NullString
	LastName  sql.NullString
	Role      string
	Status    string
	JoinedAt  time.Time
}

const listGroupMembers = `
SELECT u.id, u.email, u.first_name, u.last_name, u.role, u.status, gm.joined_at
FROM group_members gm
JOIN users u ON u.id = gm.user_id
WHERE gm.group_id = ?
ORDER BY gm.joined_at
`

// ListGroupMembers lists a group's members with profile fields.
func (q *Queries) ListGroupMembers(ctx context.Context, groupID string) ([]GroupMemberRow, error) {
	rows, err := q.db.QueryContext(ctx, listGroupMembers, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []GroupMemberRow
	for rows.Next() {
		var m GroupMemberRow
		if err := rows.Scan(&m.UserID, &m.Email, &m.FirstName, &m.LastName,
			&m.Role, &m.Status, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// CountGroupMembers counts a group's members.
func (q *Queries) CountGroupMembers(ctx context.Context, groupID string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM group_members WHERE group_id = ?`, groupID).Scan(&count)
	return count, err
}

// ListActiveUserIDsInGroups lists the distinct active users across the groups.
func (q *Queries) ListActiveUserIDsInGroups(ctx context.Context, groupIDs []string) ([]string, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	query := `SELECT DISTINCT gm.user_id
FROM group_members gm
JOIN users u ON u.id = gm.user_id
WHERE u.status = 'active' AND gm.group_id IN (` + inPlaceholders(len(groupIDs)) + `)`
	rows, err := q.db.QueryContext(ctx, query, idArgs(groupIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIDs(rows)
}
