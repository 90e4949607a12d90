// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the recurring maintenance jobs: publishing
// scheduled posts and pruning aged log rows.
package scheduler

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"plume/internal/geoip"
	"plume/internal/model"
	"plume/internal/store"
)

// Scheduler owns the cron instance and its jobs.
type Scheduler struct {
	db            *sql.DB
	cron          *cron.Cron
	logger        *slog.Logger
	geo           *geoip.Lookup
	retentionDays int
}

// New creates a scheduler. geo may be nil; retentionDays bounds how long
// event and view log rows are kept.
func New(db *sql.DB, logger *slog.Logger, geo *geoip.Lookup, retentionDays int) *Scheduler {
	return &Scheduler{
		db:            db,
		cron:          cron.New(),
		logger:        logger,
		geo:           geo,
		retentionDays: retentionDays,
	}
}

// Start registers the jobs and begins ticking: scheduled-post publishing
// every minute, log pruning and GeoIP reload daily.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		if err := s.publishDuePosts(); err != nil {
			s.logger.Error("failed to process scheduled posts", "error", err)
		}
	})
	if err != nil {
		return err
	}

	_, err = s.cron.AddFunc("30 3 * * *", func() {
		s.pruneLogs()
		if s.geo != nil {
			if err := s.geo.Reload(); err != nil {
				s.logger.Warn("GeoIP reload failed", "error", err)
			}
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// publishDuePosts publishes every draft whose scheduled time has passed.
func (s *Scheduler) publishDuePosts() error {
	ctx := context.Background()
	queries := store.New(s.db)
	now := time.Now().UTC()

	posts, err := queries.ListDueScheduledPosts(ctx, now)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return nil
	}

	s.logger.Info("processing scheduled posts", "count", len(posts))

	for _, post := range posts {
		if err := s.publishPost(ctx, queries, post, now); err != nil {
			s.logger.Error("failed to publish scheduled post",
				"post_id", post.ID,
				"post_title", post.Title,
				"error", err,
			)
			continue
		}

		s.logger.Info("published scheduled post",
			"post_id", post.ID,
			"post_title", post.Title,
			"scheduled_at", post.ScheduledAt.Time,
		)
	}
	return nil
}

// publishPost publishes one scheduled post and records the event.
func (s *Scheduler) publishPost(ctx context.Context, queries *store.Queries, post model.Post, now time.Time) error {
	if err := queries.PublishScheduledPost(ctx, post.ID, now); err != nil {
		return err
	}

	metadata, _ := json.Marshal(map[string]any{
		"post_id":      post.ID,
		"post_slug":    post.Slug,
		"scheduled_at": post.ScheduledAt.Time.Format(time.RFC3339),
		"published_at": now.Format(time.RFC3339),
	})

	_, err := queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     model.EventLevelInfo,
		Category:  model.EventCategoryPost,
		Message:   "Post published by scheduler: " + post.Title,
		Metadata:  string(metadata),
		CreatedAt: now,
	})
	if err != nil {
		s.logger.Warn("failed to log scheduled publish event", "error", err)
	}
	return nil
}

// pruneLogs deletes event and view log rows past the retention window.
func (s *Scheduler) pruneLogs() {
	ctx := context.Background()
	queries := store.New(s.db)
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)

	events, err := queries.PruneEvents(ctx, cutoff)
	if err != nil {
		s.logger.Error("event prune failed", "error", err)
	}
	views, err := queries.PruneViewLog(ctx, cutoff)
	if err != nil {
		s.logger.Error("view log prune failed", "error", err)
	}
	if events > 0 || views > 0 {
		s.logger.Info("pruned aged log rows", "events", events, "views", views, "cutoff", cutoff)
	}
}
