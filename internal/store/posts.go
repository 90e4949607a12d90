// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"plume/internal/model"
)

const postColumns = `id, slug, title, excerpt, body, category, tags,
	is_published, published_at, scheduled_at, created_at, updated_at,
	seo_title, seo_description, seo_image, views, likes, shares`

// scanPost scans a single post row in postColumns order.
func scanPost(row interface{ Scan(...any) error }) (model.Post, error) {
	var p model.Post
	var tags string

	err := row.Scan(
		&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Body, &p.Category, &tags,
		&p.IsPublished, &p.PublishedAt, &p.ScheduledAt, &p.CreatedAt, &p.UpdatedAt,
		&p.SEOTitle, &p.SEODescription, &p.SEOImage, &p.Views, &p.Likes, &p.Shares,
	)
	if err != nil {
		return model.Post{}, err
	}

	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return model.Post{}, fmt.Errorf("decoding tags for post %d: %w", p.ID, err)
	}
	return p, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	return string(b), nil
}

// ListPosts returns posts ordered by publication time descending; drafts sort
// by creation time in the same key. When includeUnpublished is false the
// published filter is applied in SQL.
func (q *Queries) ListPosts(ctx context.Context, includeUnpublished bool) ([]model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		ORDER BY COALESCE(published_at, created_at) DESC, id DESC`
	if !includeUnpublished {
		query = `SELECT ` + postColumns + ` FROM posts
			WHERE is_published = 1
			ORDER BY COALESCE(published_at, created_at) DESC, id DESC`
	}

	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListPostsByCategory returns published posts in a category, newest first,
// excluding the given post id. Used for the related-posts endpoint.
func (q *Queries) ListPostsByCategory(ctx context.Context, category string, excludeID int64, limit int64) ([]model.Post, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts
		WHERE is_published = 1 AND category = ? AND id != ?
		ORDER BY COALESCE(published_at, created_at) DESC, id DESC
		LIMIT ?`, category, excludeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// GetPostByID returns a single post by id.
func (q *Queries) GetPostByID(ctx context.Context, id int64) (model.Post, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return scanPost(row)
}

// GetPostBySlug returns the first post matching slug. Slug uniqueness is not
// enforced, so with duplicate slugs the newest row wins.
func (q *Queries) GetPostBySlug(ctx context.Context, slug string) (model.Post, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts
		WHERE slug = ? ORDER BY id DESC LIMIT 1`, slug)
	return scanPost(row)
}

// GetPublishedPostBySlug returns the first published post matching slug.
func (q *Queries) GetPublishedPostBySlug(ctx context.Context, slug string) (model.Post, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts
		WHERE slug = ? AND is_published = 1 ORDER BY id DESC LIMIT 1`, slug)
	return scanPost(row)
}

// CreatePostParams holds fields for creating a post.
type CreatePostParams struct {
	Slug           string
	Title          string
	Excerpt        string
	Body           string
	Category       string
	Tags           []string
	IsPublished    bool
	PublishedAt    sql.NullTime
	ScheduledAt    sql.NullTime
	SEOTitle       string
	SEODescription string
	SEOImage       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreatePost inserts a post with zeroed engagement counters and returns it.
func (q *Queries) CreatePost(ctx context.Context, params CreatePostParams) (model.Post, error) {
	tags, err := encodeTags(params.Tags)
	if err != nil {
		return model.Post{}, err
	}

	res, err := q.db.ExecContext(ctx, `INSERT INTO posts (
			slug, title, excerpt, body, category, tags,
			is_published, published_at, scheduled_at, created_at, updated_at,
			seo_title, seo_description, seo_image, views, likes, shares
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, 0)`,
		params.Slug, params.Title, params.Excerpt, params.Body, params.Category, tags,
		params.IsPublished, params.PublishedAt, params.ScheduledAt, params.CreatedAt, params.UpdatedAt,
		params.SEOTitle, params.SEODescription, params.SEOImage,
	)
	if err != nil {
		return model.Post{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Post{}, err
	}
	return q.GetPostByID(ctx, id)
}

// UpdatePostParams holds the full row state for an update. Handlers populate
// it from the existing row and overlay the partial request on top, so a
// single UPDATE covers every partial-edit combination.
type UpdatePostParams struct {
	ID             int64
	Slug           string
	Title          string
	Excerpt        string
	Body           string
	Category       string
	Tags           []string
	IsPublished    bool
	PublishedAt    sql.NullTime
	ScheduledAt    sql.NullTime
	SEOTitle       string
	SEODescription string
	SEOImage       string
	UpdatedAt      time.Time
}

// UpdatePost rewrites a post row. The updated_at refresh is the caller's
// responsibility via params; counters are never touched here.
func (q *Queries) UpdatePost(ctx context.Context, params UpdatePostParams) (model.Post, error) {
	tags, err := encodeTags(params.Tags)
	if err != nil {
		return model.Post{}, err
	}

	_, err = q.db.ExecContext(ctx, `UPDATE posts SET
			slug = ?, title = ?, excerpt = ?, body = ?, category = ?, tags = ?,
			is_published = ?, published_at = ?, scheduled_at = ?, updated_at = ?,
			seo_title = ?, seo_description = ?, seo_image = ?
		WHERE id = ?`,
		params.Slug, params.Title, params.Excerpt, params.Body, params.Category, tags,
		params.IsPublished, params.PublishedAt, params.ScheduledAt, params.UpdatedAt,
		params.SEOTitle, params.SEODescription, params.SEOImage,
		params.ID,
	)
	if err != nil {
		return model.Post{}, err
	}
	return q.GetPostByID(ctx, params.ID)
}

// DeletePost removes a post permanently. Associated images are not touched.
func (q *Queries) DeletePost(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	return err
}

// IncrementViews bumps the view counter by one. The increment happens inside
// the database, so concurrent calls never lose updates.
func (q *Queries) IncrementViews(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE posts SET views = views + 1 WHERE id = ?`, id)
	return err
}

// AdjustLikes applies delta (+1 or -1) to the like counter, flooring at zero.
// The caller tracks its own liked-state; the store applies the delta blindly.
func (q *Queries) AdjustLikes(ctx context.Context, id int64, delta int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE posts SET likes = MAX(likes + ?, 0) WHERE id = ?`, delta, id)
	return err
}

// IncrementShares bumps the share counter by one.
func (q *Queries) IncrementShares(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE posts SET shares = shares + 1 WHERE id = ?`, id)
	return err
}

// ListDueScheduledPosts returns unpublished posts whose scheduled_at is at or
// before now.
func (q *Queries) ListDueScheduledPosts(ctx context.Context, now time.Time) ([]model.Post, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts
		WHERE is_published = 0 AND scheduled_at IS NOT NULL AND scheduled_at <= ?
		ORDER BY scheduled_at ASC`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// PublishScheduledPost flips a scheduled post to published and clears the
// schedule marker.
func (q *Queries) PublishScheduledPost(ctx context.Context, id int64, now time.Time) error {
	_, err := q.db.ExecContext(ctx, `UPDATE posts SET
			is_published = 1, published_at = ?, scheduled_at = NULL, updated_at = ?
		WHERE id = ? AND is_published = 0`, now, now, id)
	return err
}
