// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"plume/internal/engagement"
	"plume/internal/middleware"
)

// CountersResponse carries the engagement counters of a single post.
type CountersResponse struct {
	Views  int64 `json:"views"`
	Likes  int64 `json:"likes"`
	Shares int64 `json:"shares"`
	Liked  bool  `json:"liked"`
}

// LikeRequest is the body of the like toggle endpoint.
type LikeRequest struct {
	Direction string `json:"direction"`
}

// publishedPost loads a post and checks it is visible to readers. It writes
// the error response itself and reports whether the caller may proceed.
func (h *Handler) publishedPost(w http.ResponseWriter, r *http.Request, id int64) bool {
	post, err := h.queries.GetPostByID(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !post.IsPublished) {
		WriteNotFound(w, "Post not found")
		return false
	}
	if err != nil {
		slog.Error("Failed to load post", "error", err, "post_id", id)
		WriteInternalError(w, "Failed to load post")
		return false
	}
	return true
}

// counters re-reads the post row and returns its current counter values.
func (h *Handler) counters(w http.ResponseWriter, r *http.Request, id int64, liked bool) {
	post, err := h.queries.GetPostByID(r.Context(), id)
	if err != nil {
		slog.Error("Failed to load post counters", "error", err, "post_id", id)
		WriteInternalError(w, "Failed to load post")
		return
	}
	WriteSuccess(w, CountersResponse{
		Views:  post.Views,
		Likes:  post.Likes,
		Shares: post.Shares,
		Liked:  liked,
	}, nil)
}

// TrackView handles POST /api/posts/{id}/view. Bot traffic is counted as a
// success but recorded nowhere.
func (h *Handler) TrackView(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid post ID", nil)
		return
	}
	if !h.publishedPost(w, r, id) {
		return
	}

	h.tracker.View(r.Context(), id, r.UserAgent(), middleware.ClientIP(r))

	settings := h.readSettings(r)
	h.counters(w, r, id, settings.HasLiked(id))
}

// ToggleLike handles POST /api/posts/{id}/like. The direction is applied
// blindly to the counter; the session liked set only drives the UI state
// returned to this browser.
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid post ID", nil)
		return
	}

	var req LikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if req.Direction != engagement.DirectionLike && req.Direction != engagement.DirectionUnlike {
		WriteBadRequest(w, "Direction must be \"like\" or \"unlike\"", nil)
		return
	}

	if !h.publishedPost(w, r, id) {
		return
	}

	if err := h.tracker.Like(r.Context(), id, req.Direction); err != nil {
		slog.Error("Failed to record like", "error", err, "post_id", id)
		WriteInternalError(w, "Failed to record like")
		return
	}

	settings := h.readSettings(r)
	settings.MarkLiked(id, req.Direction == engagement.DirectionLike)
	h.writeSettings(r, settings)

	h.counters(w, r, id, settings.HasLiked(id))
}

// TrackShare handles POST /api/posts/{id}/share.
func (h *Handler) TrackShare(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid post ID", nil)
		return
	}
	if !h.publishedPost(w, r, id) {
		return
	}

	if err := h.tracker.Share(r.Context(), id); err != nil {
		slog.Error("Failed to record share", "error", err, "post_id", id)
		WriteInternalError(w, "Failed to record share")
		return
	}

	settings := h.readSettings(r)
	h.counters(w, r, id, settings.HasLiked(id))
}
