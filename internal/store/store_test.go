// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// testDB creates an in-memory SQLite database with the application schema.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// A single connection keeps every query on the same in-memory database.
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			last_login_at DATETIME
		);

		CREATE TABLE posts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			slug TEXT NOT NULL,
			title TEXT NOT NULL,
			excerpt TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT 'notes',
			tags TEXT NOT NULL DEFAULT '[]',
			is_published BOOLEAN NOT NULL DEFAULT 0,
			published_at DATETIME,
			scheduled_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			seo_title TEXT NOT NULL DEFAULT '',
			seo_description TEXT NOT NULL DEFAULT '',
			seo_image TEXT NOT NULL DEFAULT '',
			views INTEGER NOT NULL DEFAULT 0,
			likes INTEGER NOT NULL DEFAULT 0,
			shares INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX idx_posts_slug ON posts(slug);

		CREATE TABLE images (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid TEXT NOT NULL UNIQUE,
			post_id INTEGER,
			filename TEXT NOT NULL,
			mime_type TEXT NOT NULL,
			size INTEGER NOT NULL,
			width INTEGER,
			height INTEGER,
			alt TEXT NOT NULL DEFAULT '',
			data TEXT NOT NULL,
			thumbnail TEXT NOT NULL DEFAULT '',
			uploaded_by TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level TEXT NOT NULL,
			category TEXT NOT NULL,
			message TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL
		);

		CREATE TABLE view_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			post_id INTEGER NOT NULL,
			country TEXT NOT NULL DEFAULT '',
			ua_browser TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// testQueries creates a test database and its Queries instance.
func testQueries(t *testing.T) *Queries {
	t.Helper()
	return New(testDB(t))
}

// createTestPost inserts a post through CreatePost with sensible defaults.
func createTestPost(t *testing.T, q *Queries, slug string, published bool, publishedAt time.Time) int64 {
	t.Helper()
	now := time.Now().UTC()

	params := CreatePostParams{
		Slug:      slug,
		Title:     slug,
		Body:      "body of " + slug,
		Category:  "notes",
		Tags:      []string{"test"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if published {
		params.IsPublished = true
		params.PublishedAt = sql.NullTime{Time: publishedAt, Valid: true}
	}

	post, err := q.CreatePost(context.Background(), params)
	if err != nil {
		t.Fatalf("failed to create test post %q: %v", slug, err)
	}
	return post.ID
}
