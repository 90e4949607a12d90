// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package engagement mutates post counters for reader view, like, and
// share events. Everything here is best-effort: a failed write never
// fails the reader's request.
package engagement

import (
	"context"
	"log/slog"
	"time"

	"github.com/mileusna/useragent"

	"plume/internal/geoip"
	"plume/internal/model"
	"plume/internal/store"
)

// Like directions accepted by Tracker.Like.
const (
	DirectionLike   = "like"
	DirectionUnlike = "unlike"
)

// Tracker applies engagement events to the store.
type Tracker struct {
	queries *store.Queries
	geo     *geoip.Lookup
}

// NewTracker creates a tracker. geo may be nil when GeoIP is not
// configured.
func NewTracker(queries *store.Queries, geo *geoip.Lookup) *Tracker {
	return &Tracker{queries: queries, geo: geo}
}

// View counts one view of a post. Bot user agents are not counted. When
// the view counts, a view log row records the browser and, if GeoIP is
// available, the reader's country.
func (t *Tracker) View(ctx context.Context, postID int64, uaString, ip string) {
	if IsBot(uaString) {
		return
	}

	if err := t.queries.IncrementViews(ctx, postID); err != nil {
		slog.Error("view increment failed", "category", model.EventCategoryCounter,
			"post_id", postID, "error", err)
		return
	}

	browser := useragent.Parse(uaString).Name
	if browser == "" {
		browser = "Unknown"
	}
	country := ""
	if t.geo != nil {
		country = t.geo.LookupCountry(ip)
	}

	err := t.queries.CreateViewLog(ctx, store.CreateViewLogParams{
		PostID:    postID,
		Country:   country,
		UABrowser: browser,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("view log write failed", "category", model.EventCategoryCounter,
			"post_id", postID, "error", err)
	}
}

// Like applies a like or unlike to a post. The caller tracks its own
// liked state; the server applies the delta blindly, flooring at zero.
func (t *Tracker) Like(ctx context.Context, postID int64, direction string) error {
	delta := int64(1)
	if direction == DirectionUnlike {
		delta = -1
	}
	return t.queries.AdjustLikes(ctx, postID, delta)
}

// Share increments a post's share counter unconditionally.
func (t *Tracker) Share(ctx context.Context, postID int64) error {
	return t.queries.IncrementShares(ctx, postID)
}

// IsBot reports whether a user agent string belongs to a crawler.
func IsBot(uaString string) bool {
	return useragent.Parse(uaString).Bot
}
