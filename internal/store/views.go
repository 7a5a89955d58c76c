// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// PageView is a page_views table row.
type PageView struct {
	ID              string
	PageID          string
	UserID          string
	DurationSeconds sql.NullInt64
	Device          string
	ViewedAt        time.Time
}

// CreatePageViewParams holds the parameters for CreatePageView.
type CreatePageViewParams struct {
	ID              string
	PageID          string
	UserID          string
	DurationSeconds sql.NullInt64
	Device          string
	ViewedAt        time.Time
}

const createPageView = `
INSERT INTO page_views (id, page_id, user_id, duration_seconds, device, viewed_at)
VALUES (?, ?, ?, ?, ?, ?)
`

// CreatePageView records one view event. Repeat views by the same user insert
// additional rows; distinct-viewer counts collapse them at query time.
func (q *Queries) CreatePageView(ctx context.Context, arg CreatePageViewParams) error {
	_, err := q.db.ExecContext(ctx, createPageView,
		arg.ID, arg.PageID, arg.UserID, arg.DurationSeconds, arg.Device, arg.ViewedAt)
	return err
}

const countDistinctViewers = `
SELECT COUNT(DISTINCT user_id) FROM page_views WHERE page_id = ?
`

// CountDistinctViewers counts unique users that viewed the page.
func (q *Queries) CountDistinctViewers(ctx context.Context, pageID string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countDistinctViewers, pageID).Scan(&count)
	return count, err
}

const countPageViews = `
SELECT COUNT(*) FROM page_views WHERE page_id = ?
`

// CountPageViews counts all view events of the page, repeats included.
func (q *Queries) CountPageViews(ctx context.Context, pageID string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPageViews, pageID).Scan(&count)
	return count, err
}

// HasViewedParams holds the parameters for HasViewed.
type HasViewedParams struct {
	PageID string
	UserID string
}

const hasViewed = `
SELECT COUNT(*) FROM page_views WHERE page_id = ? AND user_id = ?
`

// HasViewed reports whether the user has viewed the page at least once.
func (q *Queries) HasViewed(ctx context.Context, arg HasViewedParams) (bool, error) {
	var count int64
	if err := q.db.QueryRowContext(ctx, hasViewed, arg.PageID, arg.UserID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

const countViewsByCompany = `
SELECT COUNT(*) FROM page_views pv
JOIN pages p ON p.id = pv.page_id
WHERE p.company_id = ?
`

// CountViewsByCompany counts view events across all pages of the company.
func (q *Queries) CountViewsByCompany(ctx context.Context, companyID string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countViewsByCompany, companyID).Scan(&count)
	return count, err
}

// DeviceCount is one row of a per-device view breakdown.
type DeviceCount struct {
	Device string
	Count  int64
}

const countViewsByDevice = `
SELECT device, COUNT(*) FROM page_views WHERE page_id = ?
GROUP BY device ORDER BY COUNT(*) DESC
`

// CountViewsByDevice breaks the page's view events down by device class.
func (q *Queries) CountViewsByDevice(ctx context.Context, pageID string) ([]DeviceCount, error) {
	rows, err := q.db.QueryContext(ctx, countViewsByDevice, pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []DeviceCount
	for rows.Next() {
		var dc DeviceCount
		if err := rows.Scan(&dc.Device, &dc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, dc)
	}
	return counts, rows.Err()
}
