// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"plume/internal/model"
)

// CreateEventParams holds fields for an event log entry.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent appends an entry to the event log.
func (q *Queries) CreateEvent(ctx context.Context, params CreateEventParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO events (
			level, category, message, metadata, created_at
		) VALUES (?, ?, ?, ?, ?)`,
		params.Level, params.Category, params.Message, params.Metadata, params.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListEvents returns the newest limit entries from the event log.
func (q *Queries) ListEvents(ctx context.Context, limit int64) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, level, category, message, metadata, created_at
		FROM events ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// PruneEvents deletes event log entries older than cutoff. Returns the number
// of rows removed.
func (q *Queries) PruneEvents(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CreateViewLogParams holds fields for a best-effort view log row.
type CreateViewLogParams struct {
	PostID    int64
	Country   string
	UABrowser string
	CreatedAt time.Time
}

// CreateViewLog records a counted view for later aggregation.
func (q *Queries) CreateViewLog(ctx context.Context, params CreateViewLogParams) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO view_log (
			post_id, country, ua_browser, created_at
		) VALUES (?, ?, ?, ?)`,
		params.PostID, params.Country, params.UABrowser, params.CreatedAt,
	)
	return err
}

// CountViewLog returns the number of logged views for a post.
func (q *Queries) CountViewLog(ctx context.Context, postID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM view_log WHERE post_id = ?`, postID).Scan(&n)
	return n, err
}

// PruneViewLog deletes view log rows older than cutoff.
func (q *Queries) PruneViewLog(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM view_log WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
