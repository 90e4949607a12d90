// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package engagement

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"plume/internal/store"
)

const (
	chromeUA    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	googlebotUA = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func testStore(t *testing.T) (*sql.DB, *store.Queries) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "plume-engagement-test.db")
	db, err := store.NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	})
	return db, store.New(db)
}

func seedPost(t *testing.T, q *store.Queries) int64 {
	t.Helper()
	now := time.Now().UTC()
	post, err := q.CreatePost(context.Background(), store.CreatePostParams{
		Slug:        "tracked",
		Title:       "Tracked",
		Body:        "body",
		Category:    "notes",
		Tags:        []string{},
		IsPublished: true,
		PublishedAt: sql.NullTime{Time: now, Valid: true},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	return post.ID
}

func TestViewCountsBrowser(t *testing.T) {
	_, q := testStore(t)
	tracker := NewTracker(q, nil)
	ctx := context.Background()
	id := seedPost(t, q)

	tracker.View(ctx, id, chromeUA, "203.0.113.9")

	post, err := q.GetPostByID(ctx, id)
	if err != nil {
		t.Fatalf("GetPostByID: %v", err)
	}
	if post.Views != 1 {
		t.Errorf("views = %d, want 1", post.Views)
	}

	logged, err := q.CountViewLog(ctx, id)
	if err != nil {
		t.Fatalf("CountViewLog: %v", err)
	}
	if logged != 1 {
		t.Errorf("view log rows = %d, want 1", logged)
	}
}

func TestViewIgnoresBots(t *testing.T) {
	_, q := testStore(t)
	tracker := NewTracker(q, nil)
	ctx := context.Background()
	id := seedPost(t, q)

	tracker.View(ctx, id, googlebotUA, "203.0.113.9")

	post, err := q.GetPostByID(ctx, id)
	if err != nil {
		t.Fatalf("GetPostByID: %v", err)
	}
	if post.Views != 0 {
		t.Errorf("views = %d after bot visit, want 0", post.Views)
	}
}

func TestLikeToggle(t *testing.T) {
	_, q := testStore(t)
	tracker := NewTracker(q, nil)
	ctx := context.Background()
	id := seedPost(t, q)

	if err := tracker.Like(ctx, id, DirectionLike); err != nil {
		t.Fatalf("Like: %v", err)
	}
	if err := tracker.Like(ctx, id, DirectionLike); err != nil {
		t.Fatalf("Like: %v", err)
	}
	if err := tracker.Like(ctx, id, DirectionUnlike); err != nil {
		t.Fatalf("Unlike: %v", err)
	}

	post, _ := q.GetPostByID(ctx, id)
	if post.Likes != 1 {
		t.Errorf("likes = %d, want 1", post.Likes)
	}

	// Over-unliking floors at zero.
	_ = tracker.Like(ctx, id, DirectionUnlike)
	_ = tracker.Like(ctx, id, DirectionUnlike)
	post, _ = q.GetPostByID(ctx, id)
	if post.Likes != 0 {
		t.Errorf("likes = %d after over-unliking, want 0", post.Likes)
	}
}

func TestShare(t *testing.T) {
	_, q := testStore(t)
	tracker := NewTracker(q, nil)
	ctx := context.Background()
	id := seedPost(t, q)

	for i := 0; i < 3; i++ {
		if err := tracker.Share(ctx, id); err != nil {
			t.Fatalf("Share: %v", err)
		}
	}

	post, _ := q.GetPostByID(ctx, id)
	if post.Shares != 3 {
		t.Errorf("shares = %d, want 3", post.Shares)
	}
}

func TestIsBot(t *testing.T) {
	if !IsBot(googlebotUA) {
		t.Error("Googlebot not detected as bot")
	}
	if IsBot(chromeUA) {
		t.Error("Chrome detected as bot")
	}
}
